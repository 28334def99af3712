// Package store provides person persistence behind the PersonStore port.
package store

import (
	"context"

	"siteguard/internal/person/models"
	id "siteguard/pkg/domain"
)

// PersonStore persists person records. Implementations return sentinel
// errors (pkg/platform/sentinel): ErrNotFound for unknown or soft-deleted
// IDs, ErrConflict from Create on a duplicate ID.
//
// ListActive returns only active, non-deleted persons; ordering is by
// creation time so revalidation sweeps are reproducible.
type PersonStore interface {
	Create(ctx context.Context, person *models.Person) error
	Update(ctx context.Context, person *models.Person) error
	FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error)
	ListActive(ctx context.Context) ([]*models.Person, error)
	SetComplianceStatus(ctx context.Context, personID id.PersonID, status models.ComplianceStatus) error
	SoftDelete(ctx context.Context, personID id.PersonID) error
}
