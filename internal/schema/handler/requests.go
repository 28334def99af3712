package handler

import (
	"encoding/json"
	"strings"

	"siteguard/internal/schema/models"
	"siteguard/internal/schema/service"
	id "siteguard/pkg/domain"
	dErrors "siteguard/pkg/domain-errors"
)

// ConditionPayload is the wire form of a show_when dependency.
type ConditionPayload struct {
	FieldID  string `json:"field_id"`
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
}

func (p *ConditionPayload) parse() (*models.Condition, error) {
	fieldID, err := id.ParseFieldID(strings.TrimSpace(p.FieldID))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "show_when.field_id is not a valid field ID")
	}
	if strings.TrimSpace(p.Operator) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "show_when.operator is required")
	}
	return &models.Condition{
		FieldID:  fieldID,
		Operator: models.ConditionOperator(strings.TrimSpace(p.Operator)),
		Value:    p.Value,
	}, nil
}

func parseRoleIDs(raw []string, key string) ([]id.RoleID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]id.RoleID, 0, len(raw))
	for _, s := range raw {
		roleID, err := id.ParseRoleID(strings.TrimSpace(s))
		if err != nil {
			return nil, dErrors.Newf(dErrors.CodeValidation, "%s contains an invalid role ID", key)
		}
		out = append(out, roleID)
	}
	return out, nil
}

// CreateFieldRequest is the HTTP request body for POST /fields.
type CreateFieldRequest struct {
	Name            string               `json:"name"`
	Label           string               `json:"label"`
	Description     string               `json:"description"`
	FieldType       string               `json:"field_type"`
	Category        string               `json:"category"`
	Order           int                  `json:"field_order"`
	IsRequired      bool                 `json:"is_required"`
	IsSearchable    bool                 `json:"is_searchable"`
	IsUnique        bool                 `json:"is_unique"`
	Configuration   models.Configuration `json:"configuration"`
	ComplianceRule  *models.Rule         `json:"compliance_rules"`
	ShowWhen        *ConditionPayload    `json:"show_when"`
	VisibleToRoles  []string             `json:"visible_to_roles"`
	EditableByRoles []string             `json:"editable_by_roles"`

	// Parsed values (populated by Validate)
	parsedShowWhen *models.Condition
	parsedVisible  []id.RoleID
	parsedEditable []id.RoleID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateFieldRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	r.FieldType = strings.TrimSpace(r.FieldType)
	if r.FieldType == "" {
		return dErrors.New(dErrors.CodeValidation, "field_type is required")
	}
	if _, err := models.ParseFieldType(r.FieldType); err != nil {
		return err
	}

	if r.ShowWhen != nil {
		cond, err := r.ShowWhen.parse()
		if err != nil {
			return err
		}
		r.parsedShowWhen = cond
	}

	visible, err := parseRoleIDs(r.VisibleToRoles, "visible_to_roles")
	if err != nil {
		return err
	}
	r.parsedVisible = visible

	editable, err := parseRoleIDs(r.EditableByRoles, "editable_by_roles")
	if err != nil {
		return err
	}
	r.parsedEditable = editable

	return nil
}

// ToCommand converts the validated request to the service command.
func (r *CreateFieldRequest) ToCommand() service.CreateField {
	return service.CreateField{
		Name:            r.Name,
		Label:           r.Label,
		Description:     r.Description,
		Type:            r.FieldType,
		Category:        r.Category,
		Order:           r.Order,
		IsRequired:      r.IsRequired,
		IsSearchable:    r.IsSearchable,
		IsUnique:        r.IsUnique,
		Configuration:   r.Configuration,
		ComplianceRule:  r.ComplianceRule,
		ShowWhen:        r.parsedShowWhen,
		VisibleToRoles:  r.parsedVisible,
		EditableByRoles: r.parsedEditable,
	}
}

// UpdateFieldRequest is the HTTP request body for PUT /fields/{fieldID}.
// Absent keys leave the stored value unchanged; compliance_rules and
// show_when distinguish "absent" from an explicit null, which clears them.
type UpdateFieldRequest struct {
	Label           *string               `json:"label"`
	Description     *string               `json:"description"`
	FieldType       *string               `json:"field_type"`
	Category        *string               `json:"category"`
	Order           *int                  `json:"field_order"`
	IsRequired      *bool                 `json:"is_required"`
	IsSearchable    *bool                 `json:"is_searchable"`
	IsUnique        *bool                 `json:"is_unique"`
	Configuration   *models.Configuration `json:"configuration"`
	ComplianceRule  json.RawMessage       `json:"compliance_rules"`
	ShowWhen        json.RawMessage       `json:"show_when"`
	VisibleToRoles  *[]string             `json:"visible_to_roles"`
	EditableByRoles *[]string             `json:"editable_by_roles"`

	// Parsed values (populated by Validate)
	parsedRule     *models.Rule
	clearRule      bool
	parsedShowWhen *models.Condition
	clearShowWhen  bool
	parsedVisible  *[]id.RoleID
	parsedEditable *[]id.RoleID
}

func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *UpdateFieldRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	if r.FieldType != nil {
		trimmed := strings.TrimSpace(*r.FieldType)
		r.FieldType = &trimmed
		if _, err := models.ParseFieldType(trimmed); err != nil {
			return err
		}
	}

	if len(r.ComplianceRule) > 0 {
		if isJSONNull(r.ComplianceRule) {
			r.clearRule = true
		} else {
			var rule models.Rule
			if err := json.Unmarshal(r.ComplianceRule, &rule); err != nil {
				return dErrors.New(dErrors.CodeValidation, "compliance_rules is not a valid rule object")
			}
			r.parsedRule = &rule
		}
	}

	if len(r.ShowWhen) > 0 {
		if isJSONNull(r.ShowWhen) {
			r.clearShowWhen = true
		} else {
			var payload ConditionPayload
			if err := json.Unmarshal(r.ShowWhen, &payload); err != nil {
				return dErrors.New(dErrors.CodeValidation, "show_when is not a valid condition object")
			}
			cond, err := payload.parse()
			if err != nil {
				return err
			}
			r.parsedShowWhen = cond
		}
	}

	if r.VisibleToRoles != nil {
		visible, err := parseRoleIDs(*r.VisibleToRoles, "visible_to_roles")
		if err != nil {
			return err
		}
		if visible == nil {
			visible = []id.RoleID{}
		}
		r.parsedVisible = &visible
	}
	if r.EditableByRoles != nil {
		editable, err := parseRoleIDs(*r.EditableByRoles, "editable_by_roles")
		if err != nil {
			return err
		}
		if editable == nil {
			editable = []id.RoleID{}
		}
		r.parsedEditable = &editable
	}

	return nil
}

// ToCommand converts the validated request to the service command.
func (r *UpdateFieldRequest) ToCommand() service.UpdateField {
	return service.UpdateField{
		Label:           r.Label,
		Description:     r.Description,
		Category:        r.Category,
		Order:           r.Order,
		IsRequired:      r.IsRequired,
		IsSearchable:    r.IsSearchable,
		IsUnique:        r.IsUnique,
		Configuration:   r.Configuration,
		ComplianceRule:  r.parsedRule,
		ClearRule:       r.clearRule,
		ShowWhen:        r.parsedShowWhen,
		ClearShowWhen:   r.clearShowWhen,
		VisibleToRoles:  r.parsedVisible,
		EditableByRoles: r.parsedEditable,
		RequestedType:   r.FieldType,
	}
}

// VisibilityRequest is the HTTP request body for POST /fields/visibility.
type VisibilityRequest struct {
	FieldData models.AttributeMap `json:"field_data"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *VisibilityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.FieldData == nil {
		r.FieldData = models.AttributeMap{}
	}
	return nil
}
