package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"siteguard/internal/schema/models"
	id "siteguard/pkg/domain"
	"siteguard/pkg/platform/sentinel"
)

//go:embed seed.yaml
var defaultSeed []byte

// seedFile is the YAML shape of a seed document.
type seedFile struct {
	Fields []seedField `yaml:"fields"`
}

type seedField struct {
	Name          string         `yaml:"name"`
	Label         string         `yaml:"label"`
	Type          string         `yaml:"type"`
	Category      string         `yaml:"category"`
	Order         int            `yaml:"order"`
	Required      bool           `yaml:"required"`
	Searchable    bool           `yaml:"searchable"`
	Unique        bool           `yaml:"unique"`
	Configuration map[string]any `yaml:"configuration"`
}

// LoadSeed parses seed definitions from path, falling back to the embedded
// defaults when path is empty. Every seeded field is a system field.
func LoadSeed(path string) ([]*models.FieldDefinition, error) {
	raw := defaultSeed
	if path != "" {
		var err error
		if raw, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	}

	var doc seedFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	now := time.Now().UTC()
	out := make([]*models.FieldDefinition, 0, len(doc.Fields))
	for _, sf := range doc.Fields {
		fieldType, err := models.ParseFieldType(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("seed field %q: %w", sf.Name, err)
		}
		field, err := models.NewFieldDefinition(id.NewFieldID(), sf.Name, sf.Label, fieldType, now)
		if err != nil {
			return nil, fmt.Errorf("seed field %q: %w", sf.Name, err)
		}
		field.IsSystem = true
		field.IsRequired = sf.Required
		field.IsSearchable = sf.Searchable
		field.IsUnique = sf.Unique
		field.Category = sf.Category
		field.Order = sf.Order
		if len(sf.Configuration) > 0 {
			field.Configuration = models.Configuration(sf.Configuration)
		}
		out = append(out, field)
	}
	return out, nil
}

// Seed installs the given definitions, skipping names that already exist so
// the step is idempotent across restarts.
func Seed(ctx context.Context, fields FieldStore, defs []*models.FieldDefinition) error {
	for _, def := range defs {
		err := fields.Create(ctx, def)
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed field %q: %w", def.Name, err)
		}
	}
	return nil
}
