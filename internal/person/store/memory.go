package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"siteguard/internal/person/models"
	id "siteguard/pkg/domain"
	"siteguard/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store for tests and single-instance
// deployments. All reads and writes operate on clones so callers can never
// mutate the stored records.
type InMemory struct {
	mu      sync.RWMutex
	persons map[id.PersonID]*models.Person
	clock   func() time.Time
}

// InMemoryOption configures an InMemory store.
type InMemoryOption func(*InMemory)

// WithClock overrides the time source used for soft-delete stamps.
func WithClock(clock func() time.Time) InMemoryOption {
	return func(s *InMemory) {
		s.clock = clock
	}
}

// NewInMemory constructs an empty in-memory person store.
func NewInMemory(opts ...InMemoryOption) *InMemory {
	s := &InMemory{
		persons: make(map[id.PersonID]*models.Person),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemory) Create(_ context.Context, person *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.persons[person.ID]; exists {
		return sentinel.ErrConflict
	}
	s.persons[person.ID] = person.Clone()
	return nil
}

func (s *InMemory) Update(_ context.Context, person *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.persons[person.ID]
	if !exists || existing.IsDeleted() {
		return sentinel.ErrNotFound
	}
	s.persons[person.ID] = person.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, personID id.PersonID) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	person, exists := s.persons[personID]
	if !exists || person.IsDeleted() {
		return nil, sentinel.ErrNotFound
	}
	return person.Clone(), nil
}

func (s *InMemory) ListActive(_ context.Context) ([]*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Person, 0, len(s.persons))
	for _, person := range s.persons {
		if person.IsActive && !person.IsDeleted() {
			out = append(out, person.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *InMemory) SetComplianceStatus(_ context.Context, personID id.PersonID, status models.ComplianceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	person, exists := s.persons[personID]
	if !exists || person.IsDeleted() {
		return sentinel.ErrNotFound
	}
	person.ComplianceStatus = status
	person.UpdatedAt = s.clock().UTC()
	return nil
}

func (s *InMemory) SoftDelete(_ context.Context, personID id.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	person, exists := s.persons[personID]
	if !exists || person.IsDeleted() {
		return sentinel.ErrNotFound
	}
	now := s.clock().UTC()
	person.DeletedAt = &now
	person.IsActive = false
	person.UpdatedAt = now
	return nil
}
