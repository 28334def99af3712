package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"siteguard/internal/person/models"
	schemamodels "siteguard/internal/schema/models"
	id "siteguard/pkg/domain"
	"siteguard/pkg/platform/sentinel"
)

// Postgres persists persons in PostgreSQL. Field data is stored as JSONB;
// soft-deleted rows are kept but filtered out of every read.
type Postgres struct {
	db    *sql.DB
	clock func() time.Time
}

// PostgresOption configures a Postgres store.
type PostgresOption func(*Postgres)

// WithPostgresClock overrides the time source used for soft-delete stamps.
func WithPostgresClock(clock func() time.Time) PostgresOption {
	return func(s *Postgres) {
		s.clock = clock
	}
}

// NewPostgres constructs a PostgreSQL-backed person store.
func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	s := &Postgres{db: db, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schema is the DDL for the persons table. Exposed so test harnesses and
// operators can install it; production rollout owns its own migration
// pipeline.
const Schema = `
CREATE TABLE IF NOT EXISTS persons (
	id                UUID PRIMARY KEY,
	field_data        JSONB NOT NULL DEFAULT '{}',
	compliance_status TEXT NOT NULL DEFAULT 'valid',
	is_active         BOOLEAN NOT NULL DEFAULT TRUE,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL,
	deleted_at        TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS persons_active_idx
	ON persons (created_at) WHERE is_active AND deleted_at IS NULL;
`

const personColumns = `id, field_data, compliance_status, is_active, created_at, updated_at, deleted_at`

func (s *Postgres) Create(ctx context.Context, person *models.Person) error {
	data, err := encodeFieldData(person.FieldData)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO persons (` + personColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(person.ID), data, string(person.ComplianceStatus), person.IsActive,
		person.CreatedAt, person.UpdatedAt, person.DeletedAt)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create person: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, person *models.Person) error {
	data, err := encodeFieldData(person.FieldData)
	if err != nil {
		return err
	}
	query := `
		UPDATE persons SET
			field_data = $2, compliance_status = $3, is_active = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(person.ID), data, string(person.ComplianceStatus), person.IsActive, person.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	return requireAffected(res, "update person")
}

func (s *Postgres) FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons WHERE id = $1 AND deleted_at IS NULL`
	person, err := scanPerson(s.db.QueryRowContext(ctx, query, uuid.UUID(personID)).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return person, nil
}

func (s *Postgres) ListActive(ctx context.Context) ([]*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons
		WHERE is_active AND deleted_at IS NULL
		ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Person, 0)
	for rows.Next() {
		person, err := scanPerson(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	return out, nil
}

func (s *Postgres) SetComplianceStatus(ctx context.Context, personID id.PersonID, status models.ComplianceStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE persons SET compliance_status = $2, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`, uuid.UUID(personID), string(status), s.clock().UTC())
	if err != nil {
		return fmt.Errorf("set compliance status: %w", err)
	}
	return requireAffected(res, "set compliance status")
}

func (s *Postgres) SoftDelete(ctx context.Context, personID id.PersonID) error {
	now := s.clock().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE persons SET deleted_at = $2, is_active = FALSE, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`, uuid.UUID(personID), now)
	if err != nil {
		return fmt.Errorf("soft delete person: %w", err)
	}
	return requireAffected(res, "soft delete person")
}

func encodeFieldData(data schemamodels.AttributeMap) ([]byte, error) {
	if data == nil {
		data = schemamodels.AttributeMap{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode field data: %w", err)
	}
	return raw, nil
}

func scanPerson(scan func(dest ...any) error) (*models.Person, error) {
	var (
		p         models.Person
		rawID     uuid.UUID
		rawStatus string
		data      []byte
		deletedAt sql.NullTime
	)
	err := scan(&rawID, &data, &rawStatus, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	p.ID = id.PersonID(rawID)
	p.ComplianceStatus = models.ComplianceStatus(rawStatus)
	if deletedAt.Valid {
		t := deletedAt.Time
		p.DeletedAt = &t
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &p.FieldData); err != nil {
			return nil, fmt.Errorf("decode field data: %w", err)
		}
	}
	if p.FieldData == nil {
		p.FieldData = schemamodels.AttributeMap{}
	}
	return &p, nil
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
