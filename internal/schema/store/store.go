// Package store provides field definition persistence behind the FieldStore
// port, with in-memory and PostgreSQL implementations.
package store

import (
	"context"

	"siteguard/internal/schema/models"
	id "siteguard/pkg/domain"
)

// FieldStore persists field definitions. Implementations return sentinel
// errors (pkg/platform/sentinel) for infrastructure facts:
//
//   - Create returns ErrAlreadyUsed when the name is taken
//   - Update and Delete return ErrNotFound for unknown IDs
//   - FindByID and FindByName return ErrNotFound
//
// ListAll returns a per-call snapshot ordered by (category, field order,
// name); the ordering is part of the contract because compliance reports
// must list findings in registry order.
type FieldStore interface {
	Create(ctx context.Context, field *models.FieldDefinition) error
	Update(ctx context.Context, field *models.FieldDefinition) error
	Delete(ctx context.Context, fieldID id.FieldID) error
	FindByID(ctx context.Context, fieldID id.FieldID) (*models.FieldDefinition, error)
	FindByName(ctx context.Context, name string) (*models.FieldDefinition, error)
	ListAll(ctx context.Context) ([]*models.FieldDefinition, error)
}
