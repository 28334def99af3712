package compliance

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	schemamodels "siteguard/internal/schema/models"
)

// EvaluateRule runs a field's configured compliance check against a raw
// value. Pure: all time handling flows through now.
//
// Unknown check types and malformed rule parameters evaluate to ok. A
// misconfigured rule must degrade to "no check", never to a blanket error
// across every person (fail-open).
func EvaluateRule(field *schemamodels.FieldDefinition, value any, now time.Time) Verdict {
	rule := field.ComplianceRule
	if rule == nil || rule.CheckType == "" {
		return verdictOK()
	}

	switch rule.CheckType {
	case schemamodels.CheckDateNotExpired:
		return checkDateNotExpired(field, rule, value, now)
	case schemamodels.CheckDateBefore:
		return checkDateCompare(field, rule, value, now, true)
	case schemamodels.CheckDateAfter:
		return checkDateCompare(field, rule, value, now, false)
	case schemamodels.CheckCheckboxIsTrue:
		if !isChecked(value) {
			return verdictError(ruleMessage(rule, "'%s' must be checked", field.Label))
		}
		return verdictOK()
	case schemamodels.CheckCheckboxIsFalse:
		if isChecked(value) {
			return verdictError(ruleMessage(rule, "'%s' must be unchecked", field.Label))
		}
		return verdictOK()
	case schemamodels.CheckValueEquals:
		if rule.CompareValue == "" {
			return verdictOK()
		}
		if asString(value) != rule.CompareValue {
			return verdictError(ruleMessage(rule, "'%s' must be '%s'", field.Label, rule.CompareValue))
		}
		return verdictOK()
	case schemamodels.CheckValueNotEquals:
		if rule.CompareValue == "" {
			return verdictOK()
		}
		if asString(value) == rule.CompareValue {
			return verdictError(ruleMessage(rule, "'%s' must not be '%s'", field.Label, rule.CompareValue))
		}
		return verdictOK()
	case schemamodels.CheckNumberGreaterThan:
		return checkNumberCompare(field, rule, value, true)
	case schemamodels.CheckNumberLessThan:
		return checkNumberCompare(field, rule, value, false)
	case schemamodels.CheckNotEmpty:
		if schemamodels.IsAbsent(value) || strings.TrimSpace(asString(value)) == "" {
			return verdictError(ruleMessage(rule, "'%s' must not be empty", field.Label))
		}
		return verdictOK()
	default:
		return verdictOK()
	}
}

// checkDateNotExpired is the renewal workhorse: error when the date lies in
// the past, warning inside the configured window before it.
func checkDateNotExpired(field *schemamodels.FieldDefinition, rule *schemamodels.Rule, value any, now time.Time) Verdict {
	if schemamodels.IsAbsent(value) {
		return verdictError(ruleMessage(rule, "'%s' is missing", field.Label))
	}

	date, err := schemamodels.ParseDate(value)
	if err != nil {
		return verdictError(fmt.Sprintf("Invalid date format for '%s'", field.Label))
	}

	daysDiff := schemamodels.DaysBetween(now, date)
	switch {
	case daysDiff < 0:
		overdue := -daysDiff
		v := verdictError(ruleMessage(rule, "'%s' has expired", field.Label))
		v.DaysOverdue = &overdue
		return v
	case daysDiff <= rule.EffectiveWarningDays():
		until := daysDiff
		return Verdict{
			Status:    CheckWarning,
			Message:   fmt.Sprintf("'%s' expires in %d days", field.Label, daysDiff),
			DaysUntil: &until,
		}
	default:
		return verdictOK()
	}
}

func checkDateCompare(field *schemamodels.FieldDefinition, rule *schemamodels.Rule, value any, now time.Time, before bool) Verdict {
	if schemamodels.IsAbsent(value) {
		return verdictOK()
	}

	date, err := schemamodels.ParseDate(value)
	if err != nil {
		return verdictError(fmt.Sprintf("Invalid date format for '%s'", field.Label))
	}

	var compare time.Time
	compareTo := rule.CompareTo
	if compareTo == "" {
		compareTo = schemamodels.CompareToToday
	}
	if compareTo == schemamodels.CompareToToday {
		compare = schemamodels.Midnight(now)
	} else {
		if rule.CompareValue == "" {
			return verdictOK()
		}
		if compare, err = schemamodels.ParseDate(rule.CompareValue); err != nil {
			return verdictError(fmt.Sprintf("Invalid date format for '%s'", field.Label))
		}
	}

	if before && !date.Before(compare) {
		return verdictError(ruleMessage(rule, "'%s' must be before the specified date", field.Label))
	}
	if !before && !date.After(compare) {
		return verdictError(ruleMessage(rule, "'%s' must be after the specified date", field.Label))
	}
	return verdictOK()
}

func checkNumberCompare(field *schemamodels.FieldDefinition, rule *schemamodels.Rule, value any, greater bool) Verdict {
	if rule.CompareValue == "" {
		return verdictOK()
	}

	num, errValue := strconv.ParseFloat(strings.TrimSpace(asString(value)), 64)
	compare, errCompare := strconv.ParseFloat(strings.TrimSpace(rule.CompareValue), 64)
	if errValue != nil || errCompare != nil {
		return verdictError(fmt.Sprintf("Invalid number format for '%s'", field.Label))
	}

	if greater && num <= compare {
		return verdictError(ruleMessage(rule, "'%s' must be greater than %s", field.Label, rule.CompareValue))
	}
	if !greater && num >= compare {
		return verdictError(ruleMessage(rule, "'%s' must be less than %s", field.Label, rule.CompareValue))
	}
	return verdictOK()
}

// ExpiryInfo describes the expiry window state of a legacy date_expiry value.
type ExpiryInfo struct {
	ExpiryDate  time.Time
	IsExpired   bool
	IsWarning   bool
	IsCritical  bool
	DaysUntil   *int
	DaysOverdue *int
}

// CheckExpiry evaluates a date_expiry field through its configured windows
// without an explicit rule. Returns nil when the value does not parse; the
// validator owns format errors.
func CheckExpiry(field *schemamodels.FieldDefinition, value any, now time.Time) *ExpiryInfo {
	date, err := schemamodels.ParseDate(value)
	if err != nil {
		return nil
	}

	daysDiff := schemamodels.DaysBetween(now, date)
	info := &ExpiryInfo{
		ExpiryDate: date,
		IsExpired:  daysDiff < 0,
		IsWarning:  daysDiff >= 0 && daysDiff <= field.WarningDays(),
		IsCritical: daysDiff >= 0 && daysDiff <= field.CriticalDays(),
	}
	if daysDiff < 0 {
		overdue := -daysDiff
		info.DaysOverdue = &overdue
	} else {
		until := daysDiff
		info.DaysUntil = &until
	}
	return info
}

// ruleMessage prefers the administrator-configured error message.
func ruleMessage(rule *schemamodels.Rule, format string, args ...any) string {
	if rule.ErrorMessage != "" {
		return rule.ErrorMessage
	}
	return fmt.Sprintf(format, args...)
}

func isChecked(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "True" || v == "1"
	case int:
		return v == 1
	case float64:
		return v == 1
	default:
		return false
	}
}

func asString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	if b, ok := value.(bool); ok {
		if b {
			return "true"
		}
		return "false"
	}
	if f, ok := value.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", value)
}
