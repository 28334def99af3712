// Package visibility evaluates show_when dependency conditions: whether each
// field should currently be displayed given a person's attribute values.
//
// Visibility is purely a presentation concern. A field hidden by its
// condition keeps its data and is still evaluated by the compliance engine.
package visibility

import (
	"fmt"
	"strconv"
	"strings"

	"siteguard/internal/schema/models"
	id "siteguard/pkg/domain"
)

// Evaluate returns the visibility of every definition against the given
// attribute values. Fields without a condition are always visible.
func Evaluate(defs []*models.FieldDefinition, attrs models.AttributeMap) map[id.FieldID]bool {
	out := make(map[id.FieldID]bool, len(defs))
	for _, def := range defs {
		out[def.ID] = Shown(def.ShowWhen, attrs)
	}
	return out
}

// Shown evaluates a single condition. A nil condition and an unknown
// operator both yield true: a misconfigured dependency must never hide data
// entry (fail-open).
func Shown(cond *models.Condition, attrs models.AttributeMap) bool {
	if cond == nil {
		return true
	}
	value := attrs.Value(cond.FieldID)

	switch cond.Operator {
	case models.OpEquals:
		return looseEqual(value, cond.Value)
	case models.OpNotEquals:
		return !looseEqual(value, cond.Value)
	case models.OpContains:
		return contains(value, cond.Value)
	case models.OpGreaterThan:
		return numericCompare(value, cond.Value, func(a, b float64) bool { return a > b })
	case models.OpLessThan:
		return numericCompare(value, cond.Value, func(a, b float64) bool { return a < b })
	case models.OpIsEmpty:
		return isEmpty(value)
	case models.OpIsNotEmpty:
		return !isEmpty(value)
	default:
		return true
	}
}

// isEmpty extends absence with empty lists: a cleared multi-select reads as
// empty for the emptiness operators.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return models.IsAbsent(value)
	}
}

// looseEqual compares values in their string form, case-insensitively, so
// true matches "true" and 5 matches "5" regardless of how the client
// serialized the attribute.
func looseEqual(a, b any) bool {
	return strings.EqualFold(stringify(a), stringify(b))
}

// contains checks list membership for multi-value attributes and substring
// containment for strings.
func contains(value, needle any) bool {
	want := stringify(needle)
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if strings.EqualFold(stringify(item), want) {
				return true
			}
		}
		return false
	case []string:
		for _, item := range v {
			if strings.EqualFold(item, want) {
				return true
			}
		}
		return false
	default:
		return strings.Contains(strings.ToLower(stringify(value)), strings.ToLower(want))
	}
}

// numericCompare parses both sides as numbers; a side that does not parse
// means the condition is not satisfied.
func numericCompare(value, against any, cmp func(a, b float64) bool) bool {
	a, errA := toFloat(value)
	b, errB := toFloat(against)
	if errA != nil || errB != nil {
		return false
	}
	return cmp(a, b)
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
	default:
		return strconv.ParseFloat(strings.TrimSpace(stringify(raw)), 64)
	}
}

func stringify(raw any) string {
	if raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", raw)
}
