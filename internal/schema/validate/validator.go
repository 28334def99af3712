// Package validate checks raw attribute values against field definitions.
//
// This is a closed-set dispatch over the field type, not open polymorphism:
// supporting a new type means one more case in the switch. The validator
// knows nothing about persons or compliance; it answers "is this value the
// right shape for this field" and nothing more.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"siteguard/internal/schema/models"
)

// Result is the verdict for a single (definition, value) pair. Error is a
// human-readable, field-scoped message; it is data, never a Go error, so the
// caller always receives a verdict object.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
	Value any    `json:"value"`
}

func ok(value any) Result {
	return Result{Valid: true, Value: value}
}

func fail(value any, format string, args ...any) Result {
	return Result{Valid: false, Error: fmt.Sprintf(format, args...), Value: value}
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Value validates a raw value against a field definition and returns the
// normalized value on success.
func Value(def *models.FieldDefinition, raw any) Result {
	if models.IsAbsent(raw) {
		if def.IsRequired {
			return fail(nil, "Field '%s' is required", def.Label)
		}
		return ok(nil)
	}

	switch def.Type {
	case models.FieldTypeText, models.FieldTypeTextarea:
		return validateText(def, raw)
	case models.FieldTypeEmail:
		return validateEmail(raw)
	case models.FieldTypeNumber:
		return validateNumber(def, raw)
	case models.FieldTypeDate, models.FieldTypeDateExpiry:
		return validateDate(raw)
	case models.FieldTypeCheckbox:
		return validateCheckbox(raw)
	case models.FieldTypeDropdown:
		return validateDropdown(def, raw)
	default:
		// photo, document: upload validation is a collaborator concern; the
		// stored value (a file reference) passes through unchanged.
		return ok(raw)
	}
}

// FieldData bulk-validates an attribute map without a person context. Keys
// that match no definition are ignored.
type FieldDataResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// FieldData validates every non-system definition against the supplied
// attribute map. Required-but-absent fields fail; absent optional fields are
// skipped.
func FieldData(defs []*models.FieldDefinition, data models.AttributeMap) FieldDataResult {
	errs := make(map[string]string)
	for _, def := range defs {
		if def.IsSystem {
			continue
		}
		value := data.Value(def.ID)
		if models.IsAbsent(value) && !def.IsRequired {
			continue
		}
		if res := Value(def, value); !res.Valid {
			errs[def.ID.String()] = res.Error
		}
	}
	return FieldDataResult{Valid: len(errs) == 0, Errors: errs}
}

func validateText(def *models.FieldDefinition, raw any) Result {
	value := stringify(raw)

	if maxLen := def.MaxLength(); len(value) > maxLen {
		return fail(value, "Text exceeds maximum length of %d", maxLen)
	}
	if pattern := def.Regex(); pattern != "" {
		// Configured patterns match from the start of the value, not anywhere
		// inside it.
		re, err := regexp.Compile("^(?:" + pattern + ")")
		if err != nil {
			// A broken pattern is an administrator misconfiguration; skipping
			// the check keeps data entry working (fail-open).
			return ok(value)
		}
		if !re.MatchString(value) {
			return fail(value, "Text does not match required format")
		}
	}
	return ok(value)
}

func validateEmail(raw any) Result {
	value := stringify(raw)
	if !emailPattern.MatchString(value) {
		return fail(value, "Invalid email format")
	}
	return ok(value)
}

func validateNumber(def *models.FieldDefinition, raw any) Result {
	value, err := toFloat(raw)
	if err != nil {
		return fail(raw, "Invalid number")
	}
	if min, has := def.Min(); has && value < min {
		return fail(value, "Value must be at least %v", min)
	}
	if max, has := def.Max(); has && value > max {
		return fail(value, "Value must be at most %v", max)
	}
	return ok(value)
}

func validateDate(raw any) Result {
	if _, err := models.ParseDate(raw); err != nil {
		return fail(raw, "Invalid date format (use ISO format)")
	}
	return ok(raw)
}

func validateCheckbox(raw any) Result {
	if b, isBool := raw.(bool); isBool {
		return ok(b)
	}
	switch strings.ToLower(strings.TrimSpace(stringify(raw))) {
	case "true", "1", "yes", "ja":
		return ok(true)
	case "false", "0", "no", "nein":
		return ok(false)
	default:
		return fail(raw, "Invalid boolean value")
	}
}

func validateDropdown(def *models.FieldDefinition, raw any) Result {
	options := def.Options()

	if def.MultiSelect() {
		values := toList(raw)
		if !def.AllowOther() {
			for _, v := range values {
				if !containsOption(options, stringify(v)) {
					return fail(values, "Invalid option: %v", v)
				}
			}
		}
		return ok(values)
	}

	if !def.AllowOther() && !containsOption(options, stringify(raw)) {
		return fail(raw, "Invalid option: %v", raw)
	}
	return ok(raw)
}

func containsOption(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}

// toList coerces a raw value to a slice; scalars become a single-element
// list so a multi_select dropdown tolerates a scalar submission.
func toList(raw any) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	default:
		return []any{raw}
	}
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("not a number")
	}
}

func stringify(raw any) string {
	if s, isString := raw.(string); isString {
		return s
	}
	return fmt.Sprintf("%v", raw)
}
