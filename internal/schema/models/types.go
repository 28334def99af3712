package models

import (
	dErrors "siteguard/pkg/domain-errors"
)

// FieldType enumerates the closed set of supported field types. Adding a new
// type means adding one more case to the validator dispatch, not a new object
// hierarchy.
type FieldType string

const (
	FieldTypeText       FieldType = "text"
	FieldTypeTextarea   FieldType = "textarea"
	FieldTypeEmail      FieldType = "email"
	FieldTypeNumber     FieldType = "number"
	FieldTypeDate       FieldType = "date"
	FieldTypeDateExpiry FieldType = "date_expiry"
	FieldTypeCheckbox   FieldType = "checkbox"
	FieldTypeDropdown   FieldType = "dropdown"
	FieldTypePhoto      FieldType = "photo"
	FieldTypeDocument   FieldType = "document"
)

// fieldTypes is the canonical registry of valid types.
var fieldTypes = map[FieldType]struct{}{
	FieldTypeText:       {},
	FieldTypeTextarea:   {},
	FieldTypeEmail:      {},
	FieldTypeNumber:     {},
	FieldTypeDate:       {},
	FieldTypeDateExpiry: {},
	FieldTypeCheckbox:   {},
	FieldTypeDropdown:   {},
	FieldTypePhoto:      {},
	FieldTypeDocument:   {},
}

func (t FieldType) IsValid() bool {
	_, ok := fieldTypes[t]
	return ok
}

// ParseFieldType validates a raw field type string at trust boundaries.
func ParseFieldType(raw string) (FieldType, error) {
	t := FieldType(raw)
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown field type %q", raw)
	}
	return t, nil
}

// FieldTypes returns all valid field types in a stable order, for the
// metadata endpoint and for seed validation.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeTextarea,
		FieldTypeEmail,
		FieldTypeNumber,
		FieldTypeDate,
		FieldTypeDateExpiry,
		FieldTypeCheckbox,
		FieldTypeDropdown,
		FieldTypePhoto,
		FieldTypeDocument,
	}
}

// Per-type configuration defaults.
const (
	DefaultTextMaxLength     = 255
	DefaultTextareaMaxLength = 5000
	DefaultWarningDays       = 30
	DefaultCriticalDays      = 7
)

// Configuration is the open key→value map carried by each definition. The
// typed accessors below replace dynamic attribute access: each field type
// reads only its own parameter subset, with defaults, and ignores the rest.
type Configuration map[string]any

// Int reads an integer parameter, tolerating the float64 that JSON decoding
// produces. Returns def when missing or non-numeric.
func (c Configuration) Int(key string, def int) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// Float reads a numeric parameter. The second return reports presence.
func (c Configuration) Float(key string) (float64, bool) {
	switch v := c[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// String reads a string parameter, returning def when missing or mistyped.
func (c Configuration) String(key, def string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return def
}

// Bool reads a boolean parameter, returning def when missing or mistyped.
func (c Configuration) Bool(key string, def bool) bool {
	if v, ok := c[key].(bool); ok {
		return v
	}
	return def
}

// Strings reads a string list parameter, accepting both []string and the
// []any that JSON decoding produces.
func (c Configuration) Strings(key string) []string {
	switch v := c[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// MaxLength returns the configured text limit with the per-type default.
func (f *FieldDefinition) MaxLength() int {
	def := DefaultTextMaxLength
	if f.Type == FieldTypeTextarea {
		def = DefaultTextareaMaxLength
	}
	return f.Configuration.Int("max_length", def)
}

// Regex returns the configured text pattern, empty when unset.
func (f *FieldDefinition) Regex() string {
	return f.Configuration.String("regex", "")
}

// Min returns the configured lower bound for number fields.
func (f *FieldDefinition) Min() (float64, bool) {
	return f.Configuration.Float("min")
}

// Max returns the configured upper bound for number fields.
func (f *FieldDefinition) Max() (float64, bool) {
	return f.Configuration.Float("max")
}

// Options returns the dropdown option list.
func (f *FieldDefinition) Options() []string {
	return f.Configuration.Strings("options")
}

// MultiSelect reports whether a dropdown accepts multiple values.
func (f *FieldDefinition) MultiSelect() bool {
	return f.Configuration.Bool("multi_select", false)
}

// AllowOther reports whether a dropdown accepts values outside its options.
func (f *FieldDefinition) AllowOther() bool {
	return f.Configuration.Bool("allow_other", false)
}

// WarningDays returns the expiry warning window for date_expiry fields.
func (f *FieldDefinition) WarningDays() int {
	return f.Configuration.Int("warning_days", DefaultWarningDays)
}

// CriticalDays returns the expiry critical window for date_expiry fields.
func (f *FieldDefinition) CriticalDays() int {
	return f.Configuration.Int("critical_days", DefaultCriticalDays)
}
