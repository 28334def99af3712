package models

import (
	"strings"
	"time"

	id "siteguard/pkg/domain"
	dErrors "siteguard/pkg/domain-errors"
)

// FieldDefinition is the schema unit: one administrator-configured attribute
// tracked per person.
//
// Invariants:
//   - Name is non-empty, globally unique, and immutable once created
//   - Type is one of the closed FieldType set and fixed after creation
//   - System fields cannot be deleted and keep their Type forever; every
//     other attribute of a system field stays editable
//
// Category plus Order define a stable display ordering. They carry no
// semantic weight for validation; the compliance engine only relies on the
// ordering being reproducible.
type FieldDefinition struct {
	ID          id.FieldID `json:"id"`
	Name        string     `json:"name"`
	Label       string     `json:"label"`
	Description string     `json:"description,omitempty"`
	Type        FieldType  `json:"field_type"`

	Category string `json:"category,omitempty"`
	Order    int    `json:"field_order"`

	IsSystem     bool `json:"is_system"`
	IsRequired   bool `json:"is_required"`
	IsSearchable bool `json:"is_searchable"`
	IsUnique     bool `json:"is_unique"`

	// Configuration is the open, type-specific key→value map. Typed accessors
	// on Configuration apply per-type defaults so callers never read raw keys.
	Configuration Configuration `json:"configuration,omitempty"`

	// ComplianceRule, when set, attaches a configured check evaluated per
	// person by the compliance engine. Nil means the field participates in
	// compliance only through IsRequired.
	ComplianceRule *Rule `json:"compliance_rules,omitempty"`

	// ShowWhen, when set, makes this field's visibility conditional on
	// another field's current value. Visibility is a UI concern: a hidden
	// field is still compliance-checked.
	ShowWhen *Condition `json:"show_when,omitempty"`

	// Empty grant lists mean "all actors".
	VisibleToRoles  []id.RoleID `json:"visible_to_roles,omitempty"`
	EditableByRoles []id.RoleID `json:"editable_by_roles,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFieldDefinition constructs a definition and enforces creation invariants.
func NewFieldDefinition(fieldID id.FieldID, name, label string, fieldType FieldType, now time.Time) (*FieldDefinition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "field name cannot be empty")
	}
	if len(name) > 255 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "field name must be 255 characters or less")
	}
	if !fieldType.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "unknown field type %q", fieldType)
	}
	if strings.TrimSpace(label) == "" {
		label = name
	}
	return &FieldDefinition{
		ID:        fieldID,
		Name:      name,
		Label:     label,
		Type:      fieldType,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Clone returns a deep copy so stores can hand out per-call snapshots
// without exposing their internal records to mutation.
func (f *FieldDefinition) Clone() *FieldDefinition {
	c := *f
	if f.Configuration != nil {
		c.Configuration = make(Configuration, len(f.Configuration))
		for k, v := range f.Configuration {
			c.Configuration[k] = v
		}
	}
	if f.ComplianceRule != nil {
		rule := *f.ComplianceRule
		c.ComplianceRule = &rule
	}
	if f.ShowWhen != nil {
		cond := *f.ShowWhen
		c.ShowWhen = &cond
	}
	c.VisibleToRoles = append([]id.RoleID(nil), f.VisibleToRoles...)
	c.EditableByRoles = append([]id.RoleID(nil), f.EditableByRoles...)
	return &c
}

// HasComplianceRule reports whether an explicit rule is configured.
func (f *FieldDefinition) HasComplianceRule() bool {
	return f.ComplianceRule != nil && f.ComplianceRule.CheckType != ""
}

// RequiresComplianceCheck reports whether the compliance engine has anything
// to evaluate for this field: an explicit rule or a required flag. Optional
// fields without rules are free-form data and never affect a person's
// status, date_expiry included.
func (f *FieldDefinition) RequiresComplianceCheck() bool {
	return f.IsRequired || f.HasComplianceRule()
}

// IsAbsent reports whether a raw attribute value counts as missing for
// required-field and rule-skip purposes.
func IsAbsent(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	return false
}

// AttributeMap is a person's field data: FieldDefinition ID (string form) →
// raw value. Unknown keys are tolerated; missing keys read as absent.
type AttributeMap map[string]any

// Value returns the raw value stored for a field, or nil when absent.
func (m AttributeMap) Value(fieldID id.FieldID) any {
	if m == nil {
		return nil
	}
	return m[fieldID.String()]
}
