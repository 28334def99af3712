package handler

import (
	"time"

	"siteguard/internal/compliance"
)

// ReportResponse is the HTTP response for POST /persons/{personID}/validate.
type ReportResponse struct {
	Status      string               `json:"status"`
	IsCompliant bool                 `json:"is_compliant"`
	Warnings    []compliance.Finding `json:"warnings"`
	Errors      []compliance.Finding `json:"errors"`
	CheckedAt   time.Time            `json:"checked_at"`
}

// FromReport converts a domain report to an HTTP response.
func FromReport(report *compliance.Report) *ReportResponse {
	warnings := report.Warnings
	if warnings == nil {
		warnings = []compliance.Finding{}
	}
	errs := report.Errors
	if errs == nil {
		errs = []compliance.Finding{}
	}
	return &ReportResponse{
		Status:      string(report.Status),
		IsCompliant: report.IsCompliant,
		Warnings:    warnings,
		Errors:      errs,
		CheckedAt:   report.CheckedAt,
	}
}

// ExpiringPersonResponse is one entry of the expiring-documents listing.
type ExpiringPersonResponse struct {
	PersonID         string                     `json:"person_id"`
	ComplianceStatus string                     `json:"compliance_status"`
	ExpiringFields   []compliance.ExpiringField `json:"expiring_fields"`
}

// ExpiringResponse is the HTTP response for GET /validation/expiring.
type ExpiringResponse struct {
	Persons []ExpiringPersonResponse `json:"persons"`
	Total   int                      `json:"total"`
}

// FromExpiring converts the expiring-persons listing to an HTTP response.
func FromExpiring(expiring []compliance.ExpiringPerson) *ExpiringResponse {
	out := make([]ExpiringPersonResponse, 0, len(expiring))
	for _, e := range expiring {
		out = append(out, ExpiringPersonResponse{
			PersonID:         e.Person.ID.String(),
			ComplianceStatus: string(e.Person.ComplianceStatus),
			ExpiringFields:   e.ExpiringFields,
		})
	}
	return &ExpiringResponse{Persons: out, Total: len(out)}
}
