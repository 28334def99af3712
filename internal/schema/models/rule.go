package models

import (
	id "siteguard/pkg/domain"
)

// CheckType enumerates the configurable compliance checks. Unknown check
// types evaluate to ok (fail-open) so an administrator misconfiguration can
// never take down person listing.
type CheckType string

const (
	CheckDateNotExpired    CheckType = "date_not_expired"
	CheckDateBefore        CheckType = "date_before"
	CheckDateAfter         CheckType = "date_after"
	CheckCheckboxIsTrue    CheckType = "checkbox_is_true"
	CheckCheckboxIsFalse   CheckType = "checkbox_is_false"
	CheckValueEquals       CheckType = "value_equals"
	CheckValueNotEquals    CheckType = "value_not_equals"
	CheckNumberGreaterThan CheckType = "number_greater_than"
	CheckNumberLessThan    CheckType = "number_less_than"
	CheckNotEmpty          CheckType = "not_empty"
)

// CheckTypes returns all known check types in a stable order, for the
// metadata endpoint.
func CheckTypes() []CheckType {
	return []CheckType{
		CheckDateNotExpired,
		CheckDateBefore,
		CheckDateAfter,
		CheckCheckboxIsTrue,
		CheckCheckboxIsFalse,
		CheckValueEquals,
		CheckValueNotEquals,
		CheckNumberGreaterThan,
		CheckNumberLessThan,
		CheckNotEmpty,
	}
}

// CompareToToday is the CompareTo sentinel for date checks against the
// current day instead of a configured literal.
const CompareToToday = "today"

// Rule is a configured compliance check attached to a field definition. The
// parameter subset each check reads:
//
//	date_not_expired:                WarningDays (default 30)
//	date_before / date_after:        CompareTo ("today" or empty), CompareValue
//	value_* / number_* comparisons:  CompareValue
//	checkbox_* / not_empty:          no parameters
//
// ErrorMessage, when set, overrides the templated default on error verdicts.
type Rule struct {
	CheckType    CheckType `json:"check_type" yaml:"check_type"`
	WarningDays  int       `json:"warning_days,omitempty" yaml:"warning_days,omitempty"`
	CompareTo    string    `json:"compare_to,omitempty" yaml:"compare_to,omitempty"`
	CompareValue string    `json:"compare_value,omitempty" yaml:"compare_value,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// EffectiveWarningDays applies the default warning window.
func (r *Rule) EffectiveWarningDays() int {
	if r == nil || r.WarningDays <= 0 {
		return DefaultWarningDays
	}
	return r.WarningDays
}

// ConditionOperator enumerates the show_when dependency operators.
type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not_equals"
	OpContains    ConditionOperator = "contains"
	OpGreaterThan ConditionOperator = "greater_than"
	OpLessThan    ConditionOperator = "less_than"
	OpIsEmpty     ConditionOperator = "is_empty"
	OpIsNotEmpty  ConditionOperator = "is_not_empty"
)

// ConditionOperators returns all known operators in a stable order, for the
// metadata endpoint.
func ConditionOperators() []ConditionOperator {
	return []ConditionOperator{
		OpEquals,
		OpNotEquals,
		OpContains,
		OpGreaterThan,
		OpLessThan,
		OpIsEmpty,
		OpIsNotEmpty,
	}
}

// Condition is a single-condition dependency expression: this field is shown
// when the referenced field's current value satisfies the operator.
type Condition struct {
	FieldID  id.FieldID        `json:"field_id" yaml:"field_id"`
	Operator ConditionOperator `json:"operator" yaml:"operator"`
	Value    any               `json:"value,omitempty" yaml:"value,omitempty"`
}
