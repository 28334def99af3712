// Package domain defines typed identifiers shared across modules.
//
// Each ID is a distinct UUID-backed type so a FieldID can never be passed
// where a PersonID is expected. Parse helpers enforce the invariant that IDs
// are valid, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "siteguard/pkg/domain-errors"
)

type (
	// FieldID identifies a field definition in the schema registry.
	FieldID uuid.UUID

	// PersonID identifies a tracked person.
	PersonID uuid.UUID

	// RoleID identifies a role.
	RoleID uuid.UUID

	// UserID identifies an actor (administrator or scanner account).
	UserID uuid.UUID
)

func (id FieldID) String() string  { return uuid.UUID(id).String() }
func (id PersonID) String() string { return uuid.UUID(id).String() }
func (id RoleID) String() string   { return uuid.UUID(id).String() }
func (id UserID) String() string   { return uuid.UUID(id).String() }

func (id FieldID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id PersonID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RoleID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// The named types do not inherit uuid.UUID's encoding methods, so each ID
// marshals explicitly as its canonical string form.

func (id FieldID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id PersonID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id RoleID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id UserID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func (id *FieldID) UnmarshalText(data []byte) error {
	parsed, err := uuid.Parse(string(data))
	if err != nil {
		return err
	}
	*id = FieldID(parsed)
	return nil
}

func (id *PersonID) UnmarshalText(data []byte) error {
	parsed, err := uuid.Parse(string(data))
	if err != nil {
		return err
	}
	*id = PersonID(parsed)
	return nil
}

func (id *RoleID) UnmarshalText(data []byte) error {
	parsed, err := uuid.Parse(string(data))
	if err != nil {
		return err
	}
	*id = RoleID(parsed)
	return nil
}

func (id *UserID) UnmarshalText(data []byte) error {
	parsed, err := uuid.Parse(string(data))
	if err != nil {
		return err
	}
	*id = UserID(parsed)
	return nil
}

// NewFieldID returns a fresh random FieldID.
func NewFieldID() FieldID { return FieldID(uuid.New()) }

// NewPersonID returns a fresh random PersonID.
func NewPersonID() PersonID { return PersonID(uuid.New()) }

// NewRoleID returns a fresh random RoleID.
func NewRoleID() RoleID { return RoleID(uuid.New()) }

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", kind)
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be the nil UUID", kind)
	}
	return parsed, nil
}

// ParseFieldID parses and validates a field ID string.
func ParseFieldID(raw string) (FieldID, error) {
	parsed, err := parseUUID(raw, "field_id")
	return FieldID(parsed), err
}

// ParsePersonID parses and validates a person ID string.
func ParsePersonID(raw string) (PersonID, error) {
	parsed, err := parseUUID(raw, "person_id")
	return PersonID(parsed), err
}

// ParseRoleID parses and validates a role ID string.
func ParseRoleID(raw string) (RoleID, error) {
	parsed, err := parseUUID(raw, "role_id")
	return RoleID(parsed), err
}

// ParseUserID parses and validates a user ID string.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user_id")
	return UserID(parsed), err
}
