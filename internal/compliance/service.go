package compliance

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks FieldSource,PersonStore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	compliancemetrics "siteguard/internal/compliance/metrics"
	personmodels "siteguard/internal/person/models"
	schemamodels "siteguard/internal/schema/models"
	"siteguard/internal/schema/validate"
	id "siteguard/pkg/domain"
	dErrors "siteguard/pkg/domain-errors"
	"siteguard/pkg/platform/sentinel"
)

// revalidateConcurrency bounds the parallel evaluations in a sweep so a
// large roster cannot exhaust store connections.
const revalidateConcurrency = 8

// FieldSource supplies the ordered definitions snapshot.
type FieldSource interface {
	ListAll(ctx context.Context) ([]*schemamodels.FieldDefinition, error)
}

// PersonStore is the person persistence the engine needs: lookups for
// evaluation and the status write-back.
type PersonStore interface {
	FindByID(ctx context.Context, personID id.PersonID) (*personmodels.Person, error)
	ListActive(ctx context.Context) ([]*personmodels.Person, error)
	SetComplianceStatus(ctx context.Context, personID id.PersonID, status personmodels.ComplianceStatus) error
}

// Service orchestrates compliance evaluation: it joins the definitions
// snapshot with person data, delegates to the pure engine, and persists the
// aggregate status.
type Service struct {
	fields  FieldSource
	persons PersonStore
	logger  *slog.Logger
	metrics *compliancemetrics.Metrics
	clock   func() time.Time
	tracer  trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *compliancemetrics.Metrics) Option {
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
func New(fields FieldSource, persons PersonStore, opts ...Option) *Service {
	s := &Service{
		fields:  fields,
		persons: persons,
		clock:   time.Now,
		tracer:  otel.Tracer("siteguard/internal/compliance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidatePerson evaluates one person and persists the resulting status.
func (s *Service) ValidatePerson(ctx context.Context, personID id.PersonID) (*Report, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.ValidatePerson",
		trace.WithAttributes(attribute.String("person.id", personID.String())))
	defer span.End()

	start := s.clock()

	person, err := s.persons.FindByID(ctx, personID)
	if err != nil {
		return nil, wrapPersonErr(err)
	}

	defs, err := s.fields.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load field definitions")
	}

	report := Evaluate(defs, person.FieldData, s.clock().UTC())

	if err := s.persons.SetComplianceStatus(ctx, personID, report.Status); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist compliance status")
	}

	span.SetAttributes(attribute.String("compliance.status", string(report.Status)))
	s.metrics.IncrementOutcome(string(report.Status))
	s.metrics.ObserveEvaluateLatency(s.clock().Sub(start))
	s.log(ctx, "person compliance evaluated",
		"person_id", personID,
		"status", report.Status,
		"errors", len(report.Errors),
		"warnings", len(report.Warnings))
	return report, nil
}

// ValidateFieldData bulk-checks an attribute map against the schema without
// a person context, for pre-save validation.
func (s *Service) ValidateFieldData(ctx context.Context, data schemamodels.AttributeMap) (validate.FieldDataResult, error) {
	defs, err := s.fields.ListAll(ctx)
	if err != nil {
		return validate.FieldDataResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load field definitions")
	}
	return validate.FieldData(defs, data), nil
}

// ExpiringSoon returns every active person holding a date-bearing field that
// expires within the given number of days, already-expired values included.
func (s *Service) ExpiringSoon(ctx context.Context, days int) ([]ExpiringPerson, error) {
	if days <= 0 {
		days = schemamodels.DefaultWarningDays
	}

	defs, err := s.fields.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load field definitions")
	}

	expiryFields := make([]*schemamodels.FieldDefinition, 0, len(defs))
	for _, def := range defs {
		isExpiryRule := def.HasComplianceRule() && def.ComplianceRule.CheckType == schemamodels.CheckDateNotExpired
		if isExpiryRule || def.Type == schemamodels.FieldTypeDateExpiry {
			expiryFields = append(expiryFields, def)
		}
	}
	if len(expiryFields) == 0 {
		return []ExpiringPerson{}, nil
	}

	persons, err := s.persons.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list persons")
	}

	now := s.clock().UTC()
	cutoff := now.AddDate(0, 0, days)

	out := []ExpiringPerson{}
	for _, person := range persons {
		var expiring []ExpiringField
		for _, def := range expiryFields {
			value := person.FieldData.Value(def.ID)
			if schemamodels.IsAbsent(value) {
				continue
			}
			date, err := schemamodels.ParseDate(value)
			if err != nil {
				continue
			}
			if date.After(cutoff) {
				continue
			}
			expiring = append(expiring, ExpiringField{
				FieldID:    def.ID,
				FieldName:  def.Name,
				FieldLabel: def.Label,
				ExpiryDate: date,
				DaysUntil:  schemamodels.DaysBetween(now, date),
			})
		}
		if len(expiring) > 0 {
			out = append(out, ExpiringPerson{Person: person, ExpiringFields: expiring})
		}
	}
	return out, nil
}

// RevalidateAll re-evaluates every active person, bounded-parallel. Used
// after schema changes and by the nightly sweep: expiry verdicts drift with
// the calendar even when no data changes. Per-person failures are counted
// and logged, they do not abort the sweep.
func (s *Service) RevalidateAll(ctx context.Context) (*RevalidationSummary, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.RevalidateAll")
	defer span.End()

	start := s.clock()

	defs, err := s.fields.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load field definitions")
	}
	persons, err := s.persons.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list persons")
	}

	var (
		mu      sync.Mutex
		summary = RevalidationSummary{Total: len(persons)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(revalidateConcurrency)
	for _, person := range persons {
		g.Go(func() error {
			report := Evaluate(defs, person.FieldData, s.clock().UTC())
			err := s.persons.SetComplianceStatus(gctx, person.ID, report.Status)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				s.log(gctx, "compliance status write failed", "person_id", person.ID, "error", err)
				return nil
			}
			switch report.Status {
			case personmodels.StatusValid:
				summary.Valid++
			case personmodels.StatusWarning:
				summary.Warning++
			case personmodels.StatusExpired:
				summary.Expired++
			}
			s.metrics.IncrementOutcome(string(report.Status))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "revalidation sweep failed")
	}

	s.metrics.ObserveSweepLatency(s.clock().Sub(start))
	s.log(ctx, "revalidation sweep finished",
		"total", summary.Total,
		"valid", summary.Valid,
		"warning", summary.Warning,
		"expired", summary.Expired,
		"failed", summary.Failed)
	return &summary, nil
}

func (s *Service) log(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, msg, args...)
	}
}

func wrapPersonErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "person not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "person store failure")
}
