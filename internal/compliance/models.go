// Package compliance evaluates persons against the field schema's rules and
// aggregates per-field findings into a single compliance verdict.
package compliance

import (
	"time"

	personmodels "siteguard/internal/person/models"
	id "siteguard/pkg/domain"
)

// CheckStatus is the verdict of a single rule check.
type CheckStatus string

const (
	CheckOK      CheckStatus = "valid"
	CheckWarning CheckStatus = "warning"
	CheckError   CheckStatus = "error"
)

// Verdict is the outcome of evaluating one rule against one value.
type Verdict struct {
	Status  CheckStatus
	Message string

	// DaysOverdue is set on expiry errors, DaysUntil on expiry warnings.
	DaysOverdue *int
	DaysUntil   *int
}

func verdictOK() Verdict {
	return Verdict{Status: CheckOK}
}

func verdictError(message string) Verdict {
	return Verdict{Status: CheckError, Message: message}
}

// Finding is one warning or error in a compliance report, tied to the field
// that produced it.
type Finding struct {
	FieldID    id.FieldID `json:"field_id"`
	FieldName  string     `json:"field_name"`
	FieldLabel string     `json:"field_label"`
	Message    string     `json:"message"`

	DaysOverdue *int       `json:"days_overdue,omitempty"`
	DaysUntil   *int       `json:"days_until_expiry,omitempty"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
}

// Report is the full compliance evaluation for one person. Findings appear
// in registry order, so two evaluations of the same data produce identical
// reports.
//
// A person with warnings but no errors is still compliant: warnings exist to
// drive renewals before they become errors.
type Report struct {
	Status      personmodels.ComplianceStatus `json:"status"`
	IsCompliant bool                          `json:"is_compliant"`
	Warnings    []Finding                     `json:"warnings"`
	Errors      []Finding                     `json:"errors"`
	CheckedAt   time.Time                     `json:"checked_at"`
}

// ExpiringField is one date-bearing field approaching its expiry.
type ExpiringField struct {
	FieldID    id.FieldID `json:"field_id"`
	FieldName  string     `json:"field_name"`
	FieldLabel string     `json:"field_label"`
	ExpiryDate time.Time  `json:"expiry_date"`
	DaysUntil  int        `json:"days_until"`
}

// ExpiringPerson pairs a person with their expiring fields.
type ExpiringPerson struct {
	Person         *personmodels.Person `json:"person"`
	ExpiringFields []ExpiringField      `json:"expiring_fields"`
}

// RevalidationSummary reports the outcome of a full compliance sweep.
type RevalidationSummary struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Warning int `json:"warning"`
	Expired int `json:"expired"`
	Failed  int `json:"failed"`
}
