// Package models defines the actors (users and their roles) whose
// capabilities gate field access.
package models

import (
	"time"

	id "siteguard/pkg/domain"
)

// Actor is an authenticated user as the capability resolver sees them.
//
// VisibleFields and EditableFields are per-actor overrides: nil means
// "inherit from roles", while a non-nil empty slice means "explicitly
// nothing". The distinction matters, which is why these are not plain
// slices with zero-value semantics.
type Actor struct {
	ID           id.UserID `json:"id"`
	Email        string    `json:"email"`
	IsSuperadmin bool      `json:"is_superadmin"`

	VisibleFields  *[]string `json:"visible_fields,omitempty"`
	EditableFields *[]string `json:"editable_fields,omitempty"`

	Roles []*Role `json:"roles"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasPermission reports whether any of the actor's roles grants the
// permission. Superadmins hold every permission.
func (a *Actor) HasPermission(perm Permission) bool {
	if a == nil {
		return false
	}
	if a.IsSuperadmin {
		return true
	}
	for _, role := range a.Roles {
		if role.Grants(perm) {
			return true
		}
	}
	return false
}
