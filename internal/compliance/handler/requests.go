package handler

import (
	schemamodels "siteguard/internal/schema/models"
	dErrors "siteguard/pkg/domain-errors"
)

// FieldDataRequest is the HTTP request body for POST /validation/field-data.
type FieldDataRequest struct {
	FieldData schemamodels.AttributeMap `json:"field_data"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *FieldDataRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.FieldData == nil {
		r.FieldData = schemamodels.AttributeMap{}
	}
	return nil
}
