package compliance

import (
	"fmt"
	"time"

	personmodels "siteguard/internal/person/models"
	schemamodels "siteguard/internal/schema/models"
	"siteguard/internal/schema/validate"
)

// Evaluate computes a person's compliance report against the definitions
// snapshot. Pure: given the same definitions, data, and now, it produces the
// same report, with findings in registry order.
//
// Participation: a field is checked when it is required or carries a rule;
// system fields and optional rule-less fields are skipped. A required
// date_expiry field without an explicit rule takes the legacy expiry path
// from its configuration. Fields hidden by a show_when dependency are still
// checked; hiding a field must not grant compliance.
func Evaluate(defs []*schemamodels.FieldDefinition, data schemamodels.AttributeMap, now time.Time) *Report {
	report := &Report{
		Warnings:  []Finding{},
		Errors:    []Finding{},
		CheckedAt: now,
	}

	for _, def := range defs {
		if def.IsSystem || !def.RequiresComplianceCheck() {
			continue
		}

		value := data.Value(def.ID)
		absent := schemamodels.IsAbsent(value)

		if def.IsRequired && absent {
			report.Errors = append(report.Errors, finding(def,
				fmt.Sprintf("Required field '%s' is missing", def.Label)))
			continue
		}

		if !absent {
			if res := validate.Value(def, value); !res.Valid {
				report.Errors = append(report.Errors, finding(def, res.Error))
				continue
			}
		}

		switch {
		case def.HasComplianceRule() && !absent:
			verdict := EvaluateRule(def, value, now)
			switch verdict.Status {
			case CheckError:
				f := finding(def, verdict.Message)
				f.DaysOverdue = verdict.DaysOverdue
				report.Errors = append(report.Errors, f)
			case CheckWarning:
				f := finding(def, verdict.Message)
				f.DaysUntil = verdict.DaysUntil
				report.Warnings = append(report.Warnings, f)
			}

		case def.Type == schemamodels.FieldTypeDateExpiry && !absent:
			info := CheckExpiry(def, value, now)
			if info == nil {
				break
			}
			if info.IsExpired {
				f := finding(def, fmt.Sprintf("'%s' has expired", def.Label))
				f.DaysOverdue = info.DaysOverdue
				f.ExpiryDate = &info.ExpiryDate
				report.Errors = append(report.Errors, f)
			} else if info.IsWarning {
				f := finding(def, fmt.Sprintf("'%s' expires in %d days", def.Label, *info.DaysUntil))
				f.DaysUntil = info.DaysUntil
				f.ExpiryDate = &info.ExpiryDate
				report.Warnings = append(report.Warnings, f)
			}
		}
	}

	switch {
	case len(report.Errors) > 0:
		report.Status = personmodels.StatusExpired
		report.IsCompliant = false
	case len(report.Warnings) > 0:
		// Warnings keep the person compliant; they exist to drive renewals.
		report.Status = personmodels.StatusWarning
		report.IsCompliant = true
	default:
		report.Status = personmodels.StatusValid
		report.IsCompliant = true
	}
	return report
}

func finding(def *schemamodels.FieldDefinition, message string) Finding {
	return Finding{
		FieldID:    def.ID,
		FieldName:  def.Name,
		FieldLabel: def.Label,
		Message:    message,
	}
}
