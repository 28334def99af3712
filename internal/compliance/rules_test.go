package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	schemamodels "siteguard/internal/schema/models"
	id "siteguard/pkg/domain"
)

type RulesSuite struct {
	suite.Suite

	now time.Time
}

func TestRulesSuite(t *testing.T) {
	suite.Run(t, new(RulesSuite))
}

func (s *RulesSuite) SetupTest() {
	s.now = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
}

func (s *RulesSuite) field(label string, rule *schemamodels.Rule) *schemamodels.FieldDefinition {
	f, err := schemamodels.NewFieldDefinition(id.NewFieldID(), "test_field", label, schemamodels.FieldTypeText, s.now)
	s.Require().NoError(err)
	f.ComplianceRule = rule
	return f
}

func (s *RulesSuite) date(days int) string {
	return s.now.AddDate(0, 0, days).Format("2006-01-02")
}

func (s *RulesSuite) TestDateNotExpired() {
	rule := &schemamodels.Rule{CheckType: schemamodels.CheckDateNotExpired, WarningDays: 30}
	f := s.field("Safety Training", rule)

	s.Run("future date outside the window is ok", func() {
		v := EvaluateRule(f, s.date(45), s.now)
		s.Equal(CheckOK, v.Status)
	})

	s.Run("window boundary", func() {
		v := EvaluateRule(f, s.date(30), s.now)
		s.Equal(CheckWarning, v.Status, "exactly warning_days out is a warning")
		s.Require().NotNil(v.DaysUntil)
		s.Equal(30, *v.DaysUntil)

		v = EvaluateRule(f, s.date(31), s.now)
		s.Equal(CheckOK, v.Status, "one day past the window is ok")
	})

	s.Run("inside the warning window", func() {
		v := EvaluateRule(f, s.date(10), s.now)
		s.Equal(CheckWarning, v.Status)
		s.Equal("'Safety Training' expires in 10 days", v.Message)
		s.Require().NotNil(v.DaysUntil)
		s.Equal(10, *v.DaysUntil)
	})

	s.Run("expiring today is a warning, not an error", func() {
		v := EvaluateRule(f, s.date(0), s.now)
		s.Equal(CheckWarning, v.Status)
		s.Equal(0, *v.DaysUntil)
	})

	s.Run("past date is an error with days overdue", func() {
		v := EvaluateRule(f, s.date(-5), s.now)
		s.Equal(CheckError, v.Status)
		s.Equal("'Safety Training' has expired", v.Message)
		s.Require().NotNil(v.DaysOverdue)
		s.Equal(5, *v.DaysOverdue)
	})

	s.Run("default warning window is 30 days", func() {
		noWindow := s.field("Cert", &schemamodels.Rule{CheckType: schemamodels.CheckDateNotExpired})
		s.Equal(CheckWarning, EvaluateRule(noWindow, s.date(30), s.now).Status)
		s.Equal(CheckOK, EvaluateRule(noWindow, s.date(31), s.now).Status)
	})

	s.Run("unparseable date is an error", func() {
		v := EvaluateRule(f, "next summer", s.now)
		s.Equal(CheckError, v.Status)
		s.Equal("Invalid date format for 'Safety Training'", v.Message)
	})

	s.Run("configured error message overrides the default", func() {
		custom := s.field("Training", &schemamodels.Rule{
			CheckType:    schemamodels.CheckDateNotExpired,
			ErrorMessage: "Renew the safety training",
		})
		v := EvaluateRule(custom, s.date(-1), s.now)
		s.Equal(CheckError, v.Status)
		s.Equal("Renew the safety training", v.Message)
	})
}

func (s *RulesSuite) TestDateBeforeAfter() {
	s.Run("date_before against today", func() {
		f := s.field("Birth Date", &schemamodels.Rule{CheckType: schemamodels.CheckDateBefore})
		s.Equal(CheckOK, EvaluateRule(f, s.date(-1), s.now).Status)
		s.Equal(CheckError, EvaluateRule(f, s.date(1), s.now).Status)
		s.Equal("'Birth Date' must be before the specified date",
			EvaluateRule(f, s.date(1), s.now).Message)
	})

	s.Run("date_after against a literal", func() {
		f := s.field("Contract Start", &schemamodels.Rule{
			CheckType:    schemamodels.CheckDateAfter,
			CompareTo:    "2026-01-01",
			CompareValue: "2026-01-01",
		})
		s.Equal(CheckOK, EvaluateRule(f, "2026-02-01", s.now).Status)
		s.Equal(CheckError, EvaluateRule(f, "2025-12-01", s.now).Status)
	})

	s.Run("absent value passes", func() {
		f := s.field("Birth Date", &schemamodels.Rule{CheckType: schemamodels.CheckDateBefore})
		s.Equal(CheckOK, EvaluateRule(f, "", s.now).Status)
	})

	s.Run("missing compare literal passes", func() {
		f := s.field("Contract Start", &schemamodels.Rule{
			CheckType: schemamodels.CheckDateAfter,
			CompareTo: "literal",
		})
		s.Equal(CheckOK, EvaluateRule(f, "2026-02-01", s.now).Status)
	})
}

func (s *RulesSuite) TestCheckbox() {
	mustBeTrue := s.field("Safety Briefing", &schemamodels.Rule{CheckType: schemamodels.CheckCheckboxIsTrue})
	mustBeFalse := s.field("Banned", &schemamodels.Rule{CheckType: schemamodels.CheckCheckboxIsFalse})

	for _, truthy := range []any{true, "true", "True", 1, "1"} {
		s.Equal(CheckOK, EvaluateRule(mustBeTrue, truthy, s.now).Status, "%v is checked", truthy)
		s.Equal(CheckError, EvaluateRule(mustBeFalse, truthy, s.now).Status)
	}

	v := EvaluateRule(mustBeTrue, false, s.now)
	s.Equal(CheckError, v.Status)
	s.Equal("'Safety Briefing' must be checked", v.Message)
	s.Equal("'Banned' must be unchecked", EvaluateRule(mustBeFalse, true, s.now).Message)
}

func (s *RulesSuite) TestValueComparisons() {
	s.Run("value_equals", func() {
		f := s.field("Contract Type", &schemamodels.Rule{
			CheckType:    schemamodels.CheckValueEquals,
			CompareValue: "permanent",
		})
		s.Equal(CheckOK, EvaluateRule(f, "permanent", s.now).Status)

		v := EvaluateRule(f, "temporary", s.now)
		s.Equal(CheckError, v.Status)
		s.Equal("'Contract Type' must be 'permanent'", v.Message)
	})

	s.Run("value_not_equals", func() {
		f := s.field("Status", &schemamodels.Rule{
			CheckType:    schemamodels.CheckValueNotEquals,
			CompareValue: "blocked",
		})
		s.Equal(CheckOK, EvaluateRule(f, "cleared", s.now).Status)
		s.Equal("'Status' must not be 'blocked'", EvaluateRule(f, "blocked", s.now).Message)
	})

	s.Run("missing compare value passes", func() {
		f := s.field("Status", &schemamodels.Rule{CheckType: schemamodels.CheckValueEquals})
		s.Equal(CheckOK, EvaluateRule(f, "anything", s.now).Status)
	})
}

func (s *RulesSuite) TestNumberComparisons() {
	greater := s.field("Age", &schemamodels.Rule{
		CheckType:    schemamodels.CheckNumberGreaterThan,
		CompareValue: "18",
	})
	s.Equal(CheckOK, EvaluateRule(greater, 21, s.now).Status)
	s.Equal(CheckError, EvaluateRule(greater, 18, s.now).Status, "boundary fails")
	s.Equal("'Age' must be greater than 18", EvaluateRule(greater, "17", s.now).Message)

	less := s.field("Weight", &schemamodels.Rule{
		CheckType:    schemamodels.CheckNumberLessThan,
		CompareValue: "100",
	})
	s.Equal(CheckOK, EvaluateRule(less, "99.5", s.now).Status)
	s.Equal(CheckError, EvaluateRule(less, 100, s.now).Status)

	v := EvaluateRule(greater, "not-a-number", s.now)
	s.Equal(CheckError, v.Status)
	s.Equal("Invalid number format for 'Age'", v.Message)
}

func (s *RulesSuite) TestNotEmpty() {
	f := s.field("Emergency Contact", &schemamodels.Rule{CheckType: schemamodels.CheckNotEmpty})

	s.Equal(CheckOK, EvaluateRule(f, "Jordan", s.now).Status)
	s.Equal(CheckError, EvaluateRule(f, "", s.now).Status)
	s.Equal(CheckError, EvaluateRule(f, "   ", s.now).Status, "whitespace counts as empty")
	s.Equal("'Emergency Contact' must not be empty", EvaluateRule(f, nil, s.now).Message)
}

func (s *RulesSuite) TestFailOpen() {
	s.Run("unknown check type passes", func() {
		f := s.field("Anything", &schemamodels.Rule{CheckType: "blood_type_matches"})
		s.Equal(CheckOK, EvaluateRule(f, "whatever", s.now).Status)
	})

	s.Run("nil and empty rules pass", func() {
		f := s.field("Anything", nil)
		s.Equal(CheckOK, EvaluateRule(f, "whatever", s.now).Status)

		f.ComplianceRule = &schemamodels.Rule{}
		s.Equal(CheckOK, EvaluateRule(f, "whatever", s.now).Status)
	})
}

func (s *RulesSuite) TestCheckExpiry() {
	f, err := schemamodels.NewFieldDefinition(id.NewFieldID(), "visa", "Visa", schemamodels.FieldTypeDateExpiry, s.now)
	s.Require().NoError(err)
	f.Configuration = schemamodels.Configuration{"warning_days": 30, "critical_days": 7}

	s.Run("far future", func() {
		info := CheckExpiry(f, s.date(90), s.now)
		s.Require().NotNil(info)
		s.False(info.IsExpired)
		s.False(info.IsWarning)
		s.Equal(90, *info.DaysUntil)
	})

	s.Run("warning and critical windows", func() {
		info := CheckExpiry(f, s.date(20), s.now)
		s.Require().NotNil(info)
		s.True(info.IsWarning)
		s.False(info.IsCritical)

		info = CheckExpiry(f, s.date(5), s.now)
		s.Require().NotNil(info)
		s.True(info.IsWarning)
		s.True(info.IsCritical)
	})

	s.Run("expired", func() {
		info := CheckExpiry(f, s.date(-3), s.now)
		s.Require().NotNil(info)
		s.True(info.IsExpired)
		s.Equal(3, *info.DaysOverdue)
	})

	s.Run("unparseable value yields nil", func() {
		s.Nil(CheckExpiry(f, "soon", s.now))
	})
}
