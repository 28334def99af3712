// Package capability resolves which fields an actor may see or edit.
//
// Resolution precedence, highest first:
//  1. superadmin: everything
//  2. per-actor override lists (a set override, even an empty one, wins)
//  3. union of the actor's role grant lists
//  4. no grants anywhere: everything (default-open)
//
// Default-open is deliberate: field grants are an opt-in restriction layer,
// and a deployment that never configures them must behave as if the layer
// did not exist.
package capability

import (
	"sort"

	identitymodels "siteguard/internal/identity/models"
	schemamodels "siteguard/internal/schema/models"
	id "siteguard/pkg/domain"
	stringsutil "siteguard/pkg/platform/strings"
)

// Kind selects which grant lists resolution reads.
type Kind string

const (
	View Kind = "view"
	Edit Kind = "edit"
)

// FieldSet is the resolved capability: either every field, or an explicit
// set of field IDs (possibly empty).
type FieldSet struct {
	all bool
	ids map[string]struct{}
}

// AllFields is the unrestricted set.
func AllFields() FieldSet {
	return FieldSet{all: true}
}

// FieldsOf builds an explicit set from field IDs in string form.
func FieldsOf(ids []string) FieldSet {
	deduped := stringsutil.DedupeAndTrim(ids)
	set := make(map[string]struct{}, len(deduped))
	for _, s := range deduped {
		set[s] = struct{}{}
	}
	return FieldSet{ids: set}
}

// All reports whether the set is unrestricted.
func (s FieldSet) All() bool {
	return s.all
}

// Contains reports whether the set includes a field.
func (s FieldSet) Contains(fieldID id.FieldID) bool {
	if s.all {
		return true
	}
	_, ok := s.ids[fieldID.String()]
	return ok
}

// Len returns the explicit set size; zero for the unrestricted set.
func (s FieldSet) Len() int {
	return len(s.ids)
}

// IDs returns the explicit field IDs in sorted order; nil for the
// unrestricted set.
func (s FieldSet) IDs() []string {
	if s.all || len(s.ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.ids))
	for fieldID := range s.ids {
		out = append(out, fieldID)
	}
	sort.Strings(out)
	return out
}

// Resolve computes the actor's field set for the given kind.
func Resolve(actor *identitymodels.Actor, kind Kind) FieldSet {
	if actor == nil {
		return FieldsOf(nil)
	}
	if actor.IsSuperadmin {
		return AllFields()
	}

	if override := actorOverride(actor, kind); override != nil {
		return FieldsOf(*override)
	}

	var union []string
	for _, role := range actor.Roles {
		union = append(union, roleGrants(role, kind)...)
	}
	if len(union) == 0 {
		return AllFields()
	}
	return FieldsOf(union)
}

// Filter returns the definitions the actor may access, preserving registry
// order. A nil actor is an anonymous request; whether it reaches this point
// at all is the transport's concern, so it filters nothing here.
func Filter(defs []*schemamodels.FieldDefinition, actor *identitymodels.Actor, kind Kind) []*schemamodels.FieldDefinition {
	if actor == nil {
		return defs
	}
	set := Resolve(actor, kind)
	if set.All() {
		return defs
	}
	out := make([]*schemamodels.FieldDefinition, 0, len(defs))
	for _, def := range defs {
		if set.Contains(def.ID) {
			out = append(out, def)
		}
	}
	return out
}

func actorOverride(actor *identitymodels.Actor, kind Kind) *[]string {
	if kind == Edit {
		return actor.EditableFields
	}
	return actor.VisibleFields
}

func roleGrants(role *identitymodels.Role, kind Kind) []string {
	if role == nil {
		return nil
	}
	if kind == Edit {
		return role.EditableFields
	}
	return role.VisibleFields
}
