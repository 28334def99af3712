package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"siteguard/internal/schema/models"
	id "siteguard/pkg/domain"
	"siteguard/pkg/platform/sentinel"
)

// Postgres persists field definitions in PostgreSQL. The open maps
// (configuration, rule, dependency, grant lists) are stored as JSONB.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed field store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Schema is the DDL for the field_definitions table. Exposed so test
// harnesses and operators can install it; production rollout owns its own
// migration pipeline.
const Schema = `
CREATE TABLE IF NOT EXISTS field_definitions (
	id                UUID PRIMARY KEY,
	name              TEXT NOT NULL,
	label             TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	field_type        TEXT NOT NULL,
	category          TEXT NOT NULL DEFAULT '',
	field_order       INTEGER NOT NULL DEFAULT 0,
	is_system         BOOLEAN NOT NULL DEFAULT FALSE,
	is_required       BOOLEAN NOT NULL DEFAULT FALSE,
	is_searchable     BOOLEAN NOT NULL DEFAULT FALSE,
	is_unique         BOOLEAN NOT NULL DEFAULT FALSE,
	configuration     JSONB NOT NULL DEFAULT '{}',
	compliance_rule   JSONB,
	show_when         JSONB,
	visible_to_roles  JSONB NOT NULL DEFAULT '[]',
	editable_by_roles JSONB NOT NULL DEFAULT '[]',
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS field_definitions_name_key
	ON field_definitions (LOWER(name));
`

const fieldColumns = `id, name, label, description, field_type, category, field_order,
	is_system, is_required, is_searchable, is_unique,
	configuration, compliance_rule, show_when, visible_to_roles, editable_by_roles,
	created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, field *models.FieldDefinition) error {
	row, err := toRow(field)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO field_definitions (` + fieldColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = s.db.ExecContext(ctx, query, row.args()...)
	if isUniqueViolation(err) {
		return sentinel.ErrAlreadyUsed
	}
	if err != nil {
		return fmt.Errorf("create field definition: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, field *models.FieldDefinition) error {
	row, err := toRow(field)
	if err != nil {
		return err
	}
	query := `
		UPDATE field_definitions SET
			name = $2, label = $3, description = $4, field_type = $5, category = $6,
			field_order = $7, is_system = $8, is_required = $9, is_searchable = $10,
			is_unique = $11, configuration = $12, compliance_rule = $13, show_when = $14,
			visible_to_roles = $15, editable_by_roles = $16, created_at = $17, updated_at = $18
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, row.args()...)
	if isUniqueViolation(err) {
		return sentinel.ErrAlreadyUsed
	}
	if err != nil {
		return fmt.Errorf("update field definition: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update field definition: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, fieldID id.FieldID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM field_definitions WHERE id = $1`, uuid.UUID(fieldID))
	if err != nil {
		return fmt.Errorf("delete field definition: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete field definition: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, fieldID id.FieldID) (*models.FieldDefinition, error) {
	query := `SELECT ` + fieldColumns + ` FROM field_definitions WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, uuid.UUID(fieldID)))
}

func (s *Postgres) FindByName(ctx context.Context, name string) (*models.FieldDefinition, error) {
	query := `SELECT ` + fieldColumns + ` FROM field_definitions WHERE LOWER(name) = LOWER($1)`
	return s.scanOne(s.db.QueryRowContext(ctx, query, name))
}

func (s *Postgres) ListAll(ctx context.Context) ([]*models.FieldDefinition, error) {
	query := `SELECT ` + fieldColumns + ` FROM field_definitions
		ORDER BY category, field_order, name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list field definitions: %w", err)
	}
	defer rows.Close()

	var out []*models.FieldDefinition
	for rows.Next() {
		field, err := scanField(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, field)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list field definitions: %w", err)
	}
	return out, nil
}

func (s *Postgres) scanOne(row *sql.Row) (*models.FieldDefinition, error) {
	field, err := scanField(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return field, nil
}

// fieldRow carries the JSONB-encoded form of a definition between the model
// and the database.
type fieldRow struct {
	field         *models.FieldDefinition
	configuration []byte
	rule          []byte
	showWhen      []byte
	visibleTo     []byte
	editableBy    []byte
}

func toRow(field *models.FieldDefinition) (*fieldRow, error) {
	row := &fieldRow{field: field}

	var err error
	cfg := field.Configuration
	if cfg == nil {
		cfg = models.Configuration{}
	}
	if row.configuration, err = json.Marshal(cfg); err != nil {
		return nil, fmt.Errorf("encode configuration: %w", err)
	}
	if field.ComplianceRule != nil {
		if row.rule, err = json.Marshal(field.ComplianceRule); err != nil {
			return nil, fmt.Errorf("encode compliance rule: %w", err)
		}
	}
	if field.ShowWhen != nil {
		if row.showWhen, err = json.Marshal(field.ShowWhen); err != nil {
			return nil, fmt.Errorf("encode dependency: %w", err)
		}
	}
	if row.visibleTo, err = json.Marshal(roleStrings(field.VisibleToRoles)); err != nil {
		return nil, fmt.Errorf("encode visible_to_roles: %w", err)
	}
	if row.editableBy, err = json.Marshal(roleStrings(field.EditableByRoles)); err != nil {
		return nil, fmt.Errorf("encode editable_by_roles: %w", err)
	}
	return row, nil
}

func (r *fieldRow) args() []any {
	f := r.field
	return []any{
		uuid.UUID(f.ID), f.Name, f.Label, f.Description, string(f.Type), f.Category, f.Order,
		f.IsSystem, f.IsRequired, f.IsSearchable, f.IsUnique,
		r.configuration, nullBytes(r.rule), nullBytes(r.showWhen), r.visibleTo, r.editableBy,
		f.CreatedAt, f.UpdatedAt,
	}
}

func scanField(scan func(dest ...any) error) (*models.FieldDefinition, error) {
	var (
		f          models.FieldDefinition
		rawID      uuid.UUID
		rawType    string
		cfg        []byte
		rule       []byte
		showWhen   []byte
		visibleTo  []byte
		editableBy []byte
	)
	err := scan(&rawID, &f.Name, &f.Label, &f.Description, &rawType, &f.Category, &f.Order,
		&f.IsSystem, &f.IsRequired, &f.IsSearchable, &f.IsUnique,
		&cfg, &rule, &showWhen, &visibleTo, &editableBy,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.ID = id.FieldID(rawID)
	f.Type = models.FieldType(rawType)

	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &f.Configuration); err != nil {
			return nil, fmt.Errorf("decode configuration: %w", err)
		}
	}
	if len(rule) > 0 {
		f.ComplianceRule = &models.Rule{}
		if err := json.Unmarshal(rule, f.ComplianceRule); err != nil {
			return nil, fmt.Errorf("decode compliance rule: %w", err)
		}
	}
	if len(showWhen) > 0 {
		f.ShowWhen = &models.Condition{}
		if err := json.Unmarshal(showWhen, f.ShowWhen); err != nil {
			return nil, fmt.Errorf("decode dependency: %w", err)
		}
	}
	if f.VisibleToRoles, err = decodeRoles(visibleTo); err != nil {
		return nil, fmt.Errorf("decode visible_to_roles: %w", err)
	}
	if f.EditableByRoles, err = decodeRoles(editableBy); err != nil {
		return nil, fmt.Errorf("decode editable_by_roles: %w", err)
	}
	return &f, nil
}

func roleStrings(roles []id.RoleID) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.String())
	}
	return out
}

func decodeRoles(raw []byte) ([]id.RoleID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var strs []string
	if err := json.Unmarshal(raw, &strs); err != nil {
		return nil, err
	}
	out := make([]id.RoleID, 0, len(strs))
	for _, s := range strs {
		parsed, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id.RoleID(parsed))
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
