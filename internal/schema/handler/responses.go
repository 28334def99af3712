package handler

import (
	"time"

	"siteguard/internal/capability"
	"siteguard/internal/schema/models"
)

// FieldResponse is the HTTP representation of a field definition.
type FieldResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	FieldType   string `json:"field_type"`
	Category    string `json:"category,omitempty"`
	Order       int    `json:"field_order"`

	IsSystem     bool `json:"is_system"`
	IsRequired   bool `json:"is_required"`
	IsSearchable bool `json:"is_searchable"`
	IsUnique     bool `json:"is_unique"`

	Configuration  models.Configuration `json:"configuration,omitempty"`
	ComplianceRule *models.Rule         `json:"compliance_rules,omitempty"`
	ShowWhen       *ConditionPayload    `json:"show_when,omitempty"`

	VisibleToRoles  []string `json:"visible_to_roles,omitempty"`
	EditableByRoles []string `json:"editable_by_roles,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromField converts a domain definition to an HTTP response.
func FromField(field *models.FieldDefinition) *FieldResponse {
	resp := &FieldResponse{
		ID:             field.ID.String(),
		Name:           field.Name,
		Label:          field.Label,
		Description:    field.Description,
		FieldType:      string(field.Type),
		Category:       field.Category,
		Order:          field.Order,
		IsSystem:       field.IsSystem,
		IsRequired:     field.IsRequired,
		IsSearchable:   field.IsSearchable,
		IsUnique:       field.IsUnique,
		Configuration:  field.Configuration,
		ComplianceRule: field.ComplianceRule,
		CreatedAt:      field.CreatedAt,
		UpdatedAt:      field.UpdatedAt,
	}
	if field.ShowWhen != nil {
		resp.ShowWhen = &ConditionPayload{
			FieldID:  field.ShowWhen.FieldID.String(),
			Operator: string(field.ShowWhen.Operator),
			Value:    field.ShowWhen.Value,
		}
	}
	for _, roleID := range field.VisibleToRoles {
		resp.VisibleToRoles = append(resp.VisibleToRoles, roleID.String())
	}
	for _, roleID := range field.EditableByRoles {
		resp.EditableByRoles = append(resp.EditableByRoles, roleID.String())
	}
	return resp
}

// ListResponse is the HTTP response for GET /fields.
type ListResponse struct {
	Fields []*FieldResponse `json:"fields"`
	Total  int              `json:"total"`
}

// FromFields converts a definitions slice, preserving registry order.
func FromFields(fields []*models.FieldDefinition) *ListResponse {
	out := make([]*FieldResponse, 0, len(fields))
	for _, field := range fields {
		out = append(out, FromField(field))
	}
	return &ListResponse{Fields: out, Total: len(out)}
}

// CategoriesResponse is the HTTP response for GET /fields/categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// MetadataResponse is the HTTP response for GET /fields/metadata: the closed
// vocabularies an administration UI needs to build the field editor.
type MetadataResponse struct {
	FieldTypes         []string `json:"field_types"`
	CheckTypes         []string `json:"check_types"`
	ConditionOperators []string `json:"condition_operators"`
}

// VisibilityResponse is the HTTP response for POST /fields/visibility:
// field ID (string form) to whether its show_when condition is satisfied.
type VisibilityResponse struct {
	Visibility map[string]bool `json:"visibility"`
}

// FieldSetResponse is one resolved capability: either every field, or an
// explicit ID list.
type FieldSetResponse struct {
	All      bool     `json:"all"`
	FieldIDs []string `json:"field_ids"`
}

// CapabilitiesResponse is the HTTP response for GET /fields/capabilities.
type CapabilitiesResponse struct {
	View FieldSetResponse `json:"view"`
	Edit FieldSetResponse `json:"edit"`
}

// FromCapabilities converts resolved field sets to an HTTP response.
func FromCapabilities(view, edit capability.FieldSet) *CapabilitiesResponse {
	return &CapabilitiesResponse{
		View: fromFieldSet(view),
		Edit: fromFieldSet(edit),
	}
}

func fromFieldSet(set capability.FieldSet) FieldSetResponse {
	ids := set.IDs()
	if ids == nil {
		ids = []string{}
	}
	return FieldSetResponse{All: set.All(), FieldIDs: ids}
}
