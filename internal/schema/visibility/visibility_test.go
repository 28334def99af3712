package visibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"siteguard/internal/schema/models"
	id "siteguard/pkg/domain"
)

type VisibilitySuite struct {
	suite.Suite

	controller id.FieldID
}

func TestVisibilitySuite(t *testing.T) {
	suite.Run(t, new(VisibilitySuite))
}

func (s *VisibilitySuite) SetupTest() {
	s.controller = id.NewFieldID()
}

func (s *VisibilitySuite) attrs(value any) models.AttributeMap {
	return models.AttributeMap{s.controller.String(): value}
}

func (s *VisibilitySuite) cond(op models.ConditionOperator, value any) *models.Condition {
	return &models.Condition{FieldID: s.controller, Operator: op, Value: value}
}

func (s *VisibilitySuite) TestShown() {
	s.Run("nil condition is always visible", func() {
		s.True(Shown(nil, nil))
	})

	s.Run("equals is loose across representations", func() {
		s.True(Shown(s.cond(models.OpEquals, "yes"), s.attrs("yes")))
		s.True(Shown(s.cond(models.OpEquals, "true"), s.attrs(true)))
		s.True(Shown(s.cond(models.OpEquals, "5"), s.attrs(5)))
		s.False(Shown(s.cond(models.OpEquals, "yes"), s.attrs("no")))
	})

	s.Run("not_equals inverts equals", func() {
		s.False(Shown(s.cond(models.OpNotEquals, "yes"), s.attrs("yes")))
		s.True(Shown(s.cond(models.OpNotEquals, "yes"), s.attrs("no")))
	})

	s.Run("contains checks list membership", func() {
		s.True(Shown(s.cond(models.OpContains, "crane"), s.attrs([]any{"forklift", "crane"})))
		s.False(Shown(s.cond(models.OpContains, "crane"), s.attrs([]any{"forklift"})))
	})

	s.Run("contains falls back to substring for strings", func() {
		s.True(Shown(s.cond(models.OpContains, "ane"), s.attrs("Crane")))
		s.False(Shown(s.cond(models.OpContains, "xyz"), s.attrs("Crane")))
	})

	s.Run("numeric comparisons", func() {
		s.True(Shown(s.cond(models.OpGreaterThan, 18), s.attrs(21)))
		s.False(Shown(s.cond(models.OpGreaterThan, 18), s.attrs(18)))
		s.True(Shown(s.cond(models.OpLessThan, "100"), s.attrs("99.5")))
	})

	s.Run("non-numeric operand hides the field", func() {
		s.False(Shown(s.cond(models.OpGreaterThan, 18), s.attrs("unknown")))
	})

	s.Run("is_empty and is_not_empty", func() {
		s.True(Shown(s.cond(models.OpIsEmpty, nil), s.attrs("")))
		s.True(Shown(s.cond(models.OpIsEmpty, nil), models.AttributeMap{}))
		s.False(Shown(s.cond(models.OpIsEmpty, nil), s.attrs("set")))
		s.True(Shown(s.cond(models.OpIsNotEmpty, nil), s.attrs("set")))

		// A cleared multi-select is an empty list, not a missing key.
		s.True(Shown(s.cond(models.OpIsEmpty, nil), s.attrs([]any{})))
		s.False(Shown(s.cond(models.OpIsNotEmpty, nil), s.attrs([]string{})))
		s.False(Shown(s.cond(models.OpIsEmpty, nil), s.attrs([]any{"forklift"})))
	})

	s.Run("unknown operator fails open", func() {
		s.True(Shown(s.cond("matches_regex", "x"), s.attrs("anything")))
	})
}

func (s *VisibilitySuite) TestEvaluate() {
	now := time.Now()
	plain, err := models.NewFieldDefinition(id.NewFieldID(), "first_name", "", models.FieldTypeText, now)
	s.Require().NoError(err)

	dependent, err := models.NewFieldDefinition(id.NewFieldID(), "license_number", "", models.FieldTypeText, now)
	s.Require().NoError(err)
	dependent.ShowWhen = s.cond(models.OpEquals, "yes")

	defs := []*models.FieldDefinition{plain, dependent}

	vis := Evaluate(defs, s.attrs("yes"))
	s.True(vis[plain.ID])
	s.True(vis[dependent.ID])

	vis = Evaluate(defs, s.attrs("no"))
	s.True(vis[plain.ID], "unconditional fields stay visible")
	s.False(vis[dependent.ID])
}
