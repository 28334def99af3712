package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"siteguard/internal/schema/models"
	id "siteguard/pkg/domain"
	"siteguard/pkg/platform/sentinel"
)

// InMemory keeps field definitions in a mutex-guarded map. It favors clarity
// over performance; the definition set is small and administrator-controlled.
type InMemory struct {
	mu     sync.RWMutex
	fields map[id.FieldID]*models.FieldDefinition
}

func NewInMemory() *InMemory {
	return &InMemory{fields: make(map[id.FieldID]*models.FieldDefinition)}
}

func (s *InMemory) Create(_ context.Context, field *models.FieldDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.fields {
		if strings.EqualFold(existing.Name, field.Name) {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.fields[field.ID] = field.Clone()
	return nil
}

func (s *InMemory) Update(_ context.Context, field *models.FieldDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fields[field.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.fields {
		if existing.ID != field.ID && strings.EqualFold(existing.Name, field.Name) {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.fields[field.ID] = field.Clone()
	return nil
}

func (s *InMemory) Delete(_ context.Context, fieldID id.FieldID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fields[fieldID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.fields, fieldID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, fieldID id.FieldID) (*models.FieldDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if field, ok := s.fields[fieldID]; ok {
		return field.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByName(_ context.Context, name string) (*models.FieldDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, field := range s.fields {
		if strings.EqualFold(field.Name, name) {
			return field.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListAll(_ context.Context) ([]*models.FieldDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.FieldDefinition, 0, len(s.fields))
	for _, field := range s.fields {
		out = append(out, field.Clone())
	}
	SortDefinitions(out)
	return out, nil
}

// SortDefinitions applies the registry's stable display ordering:
// category, then field order, then name as a deterministic tiebreak.
func SortDefinitions(fields []*models.FieldDefinition) {
	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].Category != fields[j].Category {
			return fields[i].Category < fields[j].Category
		}
		if fields[i].Order != fields[j].Order {
			return fields[i].Order < fields[j].Order
		}
		return fields[i].Name < fields[j].Name
	})
}
