// Package models defines the person record tracked against the field schema.
package models

import (
	"time"

	schemamodels "siteguard/internal/schema/models"
	id "siteguard/pkg/domain"
	dErrors "siteguard/pkg/domain-errors"
)

// ComplianceStatus is the aggregate verdict stored on a person after the
// last compliance evaluation.
type ComplianceStatus string

const (
	// StatusValid: every finding passed.
	StatusValid ComplianceStatus = "valid"
	// StatusWarning: at least one warning, no errors. Still compliant.
	StatusWarning ComplianceStatus = "warning"
	// StatusExpired: at least one error finding. Not compliant.
	StatusExpired ComplianceStatus = "expired"
)

// Person is a tracked individual. All schema-driven attributes live in
// FieldData keyed by field definition ID; the record itself carries only
// lifecycle state.
type Person struct {
	ID               id.PersonID               `json:"id"`
	FieldData        schemamodels.AttributeMap `json:"field_data"`
	ComplianceStatus ComplianceStatus          `json:"compliance_status"`
	IsActive         bool                      `json:"is_active"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
	DeletedAt        *time.Time                `json:"deleted_at,omitempty"`
}

// NewPerson constructs an active person with an empty attribute map. A fresh
// person starts as valid: compliance is recomputed on the first evaluation.
func NewPerson(personID id.PersonID, now time.Time) (*Person, error) {
	if personID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "person id cannot be nil")
	}
	return &Person{
		ID:               personID,
		FieldData:        schemamodels.AttributeMap{},
		ComplianceStatus: StatusValid,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Clone returns a deep copy for store snapshot isolation.
func (p *Person) Clone() *Person {
	c := *p
	if p.FieldData != nil {
		c.FieldData = make(schemamodels.AttributeMap, len(p.FieldData))
		for k, v := range p.FieldData {
			c.FieldData[k] = v
		}
	}
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

// IsDeleted reports whether the person was soft-deleted.
func (p *Person) IsDeleted() bool {
	return p.DeletedAt != nil
}
