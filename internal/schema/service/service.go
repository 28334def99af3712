// Package service is the field schema registry: the single authority for
// creating, updating, and listing field definitions.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	schemametrics "siteguard/internal/schema/metrics"
	"siteguard/internal/schema/models"
	id "siteguard/pkg/domain"
	dErrors "siteguard/pkg/domain-errors"
	"siteguard/pkg/platform/sentinel"
)

type FieldStore interface {
	Create(ctx context.Context, field *models.FieldDefinition) error
	Update(ctx context.Context, field *models.FieldDefinition) error
	Delete(ctx context.Context, fieldID id.FieldID) error
	FindByID(ctx context.Context, fieldID id.FieldID) (*models.FieldDefinition, error)
	FindByName(ctx context.Context, name string) (*models.FieldDefinition, error)
	ListAll(ctx context.Context) ([]*models.FieldDefinition, error)
}

// DefinitionsCache holds the ordered definitions snapshot between registry
// mutations. Implementations absorb their own infrastructure errors; a
// failing cache degrades to store reads, it never fails a request.
type DefinitionsCache interface {
	Get(ctx context.Context) ([]*models.FieldDefinition, bool)
	Set(ctx context.Context, defs []*models.FieldDefinition)
	Invalidate(ctx context.Context)
}

// Service orchestrates the field definition registry.
type Service struct {
	fields  FieldStore
	cache   DefinitionsCache
	logger  *slog.Logger
	metrics *schemametrics.Metrics
	clock   func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithCache(cache DefinitionsCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithMetrics(m *schemametrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// New constructs a Service.
func New(fields FieldStore, opts ...Option) *Service {
	s := &Service{fields: fields, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateField describes a new field definition.
type CreateField struct {
	Name            string
	Label           string
	Description     string
	Type            string
	Category        string
	Order           int
	IsRequired      bool
	IsSearchable    bool
	IsUnique        bool
	Configuration   models.Configuration
	ComplianceRule  *models.Rule
	ShowWhen        *models.Condition
	VisibleToRoles  []id.RoleID
	EditableByRoles []id.RoleID
}

// UpdateField carries a partial update; nil fields are left unchanged. Name
// and Type are absent on purpose: both are immutable after creation, and a
// request attempting a type change is rejected via RequestedType.
type UpdateField struct {
	Label           *string
	Description     *string
	Category        *string
	Order           *int
	IsRequired      *bool
	IsSearchable    *bool
	IsUnique        *bool
	Configuration   *models.Configuration
	ComplianceRule  *models.Rule
	ClearRule       bool
	ShowWhen        *models.Condition
	ClearShowWhen   bool
	VisibleToRoles  *[]id.RoleID
	EditableByRoles *[]id.RoleID

	// RequestedType, when set, must match the stored type.
	RequestedType *string
}

// Create registers a new field definition.
func (s *Service) Create(ctx context.Context, req CreateField) (*models.FieldDefinition, error) {
	fieldType, err := models.ParseFieldType(strings.TrimSpace(req.Type))
	if err != nil {
		return nil, err
	}

	field, err := models.NewFieldDefinition(id.NewFieldID(), req.Name, req.Label, fieldType, s.clock().UTC())
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	field.Description = strings.TrimSpace(req.Description)
	field.Category = strings.TrimSpace(req.Category)
	field.Order = req.Order
	field.IsRequired = req.IsRequired
	field.IsSearchable = req.IsSearchable
	field.IsUnique = req.IsUnique
	field.Configuration = req.Configuration
	field.ComplianceRule = req.ComplianceRule
	field.ShowWhen = req.ShowWhen
	field.VisibleToRoles = req.VisibleToRoles
	field.EditableByRoles = req.EditableByRoles

	if err := s.fields.Create(ctx, field); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "field name must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create field")
	}

	s.invalidate(ctx)
	s.metrics.IncrementMutation("create")
	s.log(ctx, "field created", "field_id", field.ID, "field_name", field.Name, "field_type", field.Type)
	return field, nil
}

// Update applies a partial update to an existing definition. The field type
// is fixed at creation: a request carrying a different type is rejected
// rather than silently ignored, because stored values of the old type would
// stop validating.
func (s *Service) Update(ctx context.Context, fieldID id.FieldID, req UpdateField) (*models.FieldDefinition, error) {
	field, err := s.fields.FindByID(ctx, fieldID)
	if err != nil {
		return nil, wrapFieldErr(err)
	}

	if req.RequestedType != nil && models.FieldType(*req.RequestedType) != field.Type {
		return nil, dErrors.New(dErrors.CodeConflict, "field type cannot be changed after creation")
	}

	if req.Label != nil {
		label := strings.TrimSpace(*req.Label)
		if label == "" {
			label = field.Name
		}
		field.Label = label
	}
	if req.Description != nil {
		field.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		field.Category = strings.TrimSpace(*req.Category)
	}
	if req.Order != nil {
		field.Order = *req.Order
	}
	if req.IsRequired != nil {
		field.IsRequired = *req.IsRequired
	}
	if req.IsSearchable != nil {
		field.IsSearchable = *req.IsSearchable
	}
	if req.IsUnique != nil {
		field.IsUnique = *req.IsUnique
	}
	if req.Configuration != nil {
		field.Configuration = *req.Configuration
	}
	if req.ClearRule {
		field.ComplianceRule = nil
	} else if req.ComplianceRule != nil {
		field.ComplianceRule = req.ComplianceRule
	}
	if req.ClearShowWhen {
		field.ShowWhen = nil
	} else if req.ShowWhen != nil {
		field.ShowWhen = req.ShowWhen
	}
	if req.VisibleToRoles != nil {
		field.VisibleToRoles = *req.VisibleToRoles
	}
	if req.EditableByRoles != nil {
		field.EditableByRoles = *req.EditableByRoles
	}
	field.UpdatedAt = s.clock().UTC()

	if err := s.fields.Update(ctx, field); err != nil {
		return nil, wrapFieldErr(err)
	}

	s.invalidate(ctx)
	s.metrics.IncrementMutation("update")
	s.log(ctx, "field updated", "field_id", field.ID, "field_name", field.Name)
	return field, nil
}

// Delete removes a definition. System fields are protected: the seeded
// identity fields must survive any amount of administrator cleanup.
func (s *Service) Delete(ctx context.Context, fieldID id.FieldID) error {
	field, err := s.fields.FindByID(ctx, fieldID)
	if err != nil {
		return wrapFieldErr(err)
	}
	if field.IsSystem {
		return dErrors.New(dErrors.CodeForbidden, "system fields cannot be deleted")
	}

	if err := s.fields.Delete(ctx, fieldID); err != nil {
		return wrapFieldErr(err)
	}

	s.invalidate(ctx)
	s.metrics.IncrementMutation("delete")
	s.log(ctx, "field deleted", "field_id", field.ID, "field_name", field.Name)
	return nil
}

// GetByID returns a single definition.
func (s *Service) GetByID(ctx context.Context, fieldID id.FieldID) (*models.FieldDefinition, error) {
	field, err := s.fields.FindByID(ctx, fieldID)
	if err != nil {
		return nil, wrapFieldErr(err)
	}
	return field, nil
}

// GetByName returns a single definition by its unique name.
func (s *Service) GetByName(ctx context.Context, name string) (*models.FieldDefinition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "field name is required")
	}
	field, err := s.fields.FindByName(ctx, name)
	if err != nil {
		return nil, wrapFieldErr(err)
	}
	return field, nil
}

// ListAll returns the ordered definitions snapshot, served from cache when
// one is configured.
func (s *Service) ListAll(ctx context.Context) ([]*models.FieldDefinition, error) {
	if s.cache != nil {
		if defs, ok := s.cache.Get(ctx); ok {
			s.metrics.IncrementCacheHit()
			return defs, nil
		}
		s.metrics.IncrementCacheMiss()
	}

	defs, err := s.fields.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list fields")
	}
	if s.cache != nil {
		s.cache.Set(ctx, defs)
	}
	return defs, nil
}

// ListRequired returns the non-system definitions with the required flag
// set, in registry order. System fields are always collected and would only
// add noise to a required-fields form.
func (s *Service) ListRequired(ctx context.Context) ([]*models.FieldDefinition, error) {
	return s.filter(ctx, func(f *models.FieldDefinition) bool { return f.IsRequired && !f.IsSystem })
}

// ListSearchable returns the definitions participating in person search, in
// registry order.
func (s *Service) ListSearchable(ctx context.Context) ([]*models.FieldDefinition, error) {
	return s.filter(ctx, func(f *models.FieldDefinition) bool { return f.IsSearchable })
}

// ListCategories returns the distinct categories in registry order.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	defs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(defs))
	out := make([]string, 0, len(defs))
	for _, def := range defs {
		if def.Category == "" {
			continue
		}
		if _, dup := seen[def.Category]; dup {
			continue
		}
		seen[def.Category] = struct{}{}
		out = append(out, def.Category)
	}
	return out, nil
}

func (s *Service) filter(ctx context.Context, keep func(*models.FieldDefinition) bool) ([]*models.FieldDefinition, error) {
	defs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.FieldDefinition, 0, len(defs))
	for _, def := range defs {
		if keep(def) {
			out = append(out, def)
		}
	}
	return out, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func (s *Service) log(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, msg, args...)
	}
}

func wrapFieldErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "field not found")
	}
	if errors.Is(err, sentinel.ErrAlreadyUsed) {
		return dErrors.New(dErrors.CodeConflict, "field name must be unique")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "field store failure")
}
