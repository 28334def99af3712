package capability

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	identitymodels "siteguard/internal/identity/models"
	schemamodels "siteguard/internal/schema/models"
	id "siteguard/pkg/domain"
)

type CapabilitySuite struct {
	suite.Suite

	fieldA id.FieldID
	fieldB id.FieldID
	fieldC id.FieldID
}

func TestCapabilitySuite(t *testing.T) {
	suite.Run(t, new(CapabilitySuite))
}

func (s *CapabilitySuite) SetupTest() {
	s.fieldA = id.NewFieldID()
	s.fieldB = id.NewFieldID()
	s.fieldC = id.NewFieldID()
}

func (s *CapabilitySuite) role(visible ...string) *identitymodels.Role {
	return &identitymodels.Role{
		ID:            id.NewRoleID(),
		Name:          "role",
		Permissions:   identitymodels.DefaultPermissions(),
		VisibleFields: visible,
	}
}

func (s *CapabilitySuite) TestResolve() {
	s.Run("superadmin sees everything", func() {
		actor := &identitymodels.Actor{IsSuperadmin: true}
		set := Resolve(actor, View)
		s.True(set.All())
		s.True(set.Contains(s.fieldA))
	})

	s.Run("actor override beats role grants", func() {
		override := []string{s.fieldA.String()}
		actor := &identitymodels.Actor{
			VisibleFields: &override,
			Roles:         []*identitymodels.Role{s.role(s.fieldB.String(), s.fieldC.String())},
		}

		set := Resolve(actor, View)
		s.True(set.Contains(s.fieldA))
		s.False(set.Contains(s.fieldB))
		s.False(set.Contains(s.fieldC))
	})

	s.Run("empty override means explicitly nothing", func() {
		override := []string{}
		actor := &identitymodels.Actor{
			VisibleFields: &override,
			Roles:         []*identitymodels.Role{s.role(s.fieldB.String())},
		}

		set := Resolve(actor, View)
		s.False(set.All())
		s.False(set.Contains(s.fieldB))
	})

	s.Run("role grants union", func() {
		actor := &identitymodels.Actor{
			Roles: []*identitymodels.Role{
				s.role(s.fieldA.String()),
				s.role(s.fieldB.String(), s.fieldA.String()),
			},
		}

		set := Resolve(actor, View)
		s.True(set.Contains(s.fieldA))
		s.True(set.Contains(s.fieldB))
		s.False(set.Contains(s.fieldC))
		s.Equal(2, set.Len(), "duplicates collapse in the union")
	})

	s.Run("no grants anywhere defaults open", func() {
		actor := &identitymodels.Actor{
			Roles: []*identitymodels.Role{s.role(), s.role()},
		}

		set := Resolve(actor, View)
		s.True(set.All())
	})

	s.Run("nil actor sees nothing", func() {
		set := Resolve(nil, View)
		s.False(set.All())
		s.False(set.Contains(s.fieldA))
	})

	s.Run("view and edit resolve independently", func() {
		editable := []string{s.fieldC.String()}
		actor := &identitymodels.Actor{
			EditableFields: &editable,
			Roles:          []*identitymodels.Role{s.role(s.fieldA.String())},
		}

		s.True(Resolve(actor, View).Contains(s.fieldA))
		s.False(Resolve(actor, Edit).Contains(s.fieldA))
		s.True(Resolve(actor, Edit).Contains(s.fieldC))
	})
}

func (s *CapabilitySuite) TestFilter() {
	now := time.Now()
	mk := func(name string, fieldID id.FieldID) *schemamodels.FieldDefinition {
		f, err := schemamodels.NewFieldDefinition(fieldID, name, "", schemamodels.FieldTypeText, now)
		s.Require().NoError(err)
		return f
	}
	defs := []*schemamodels.FieldDefinition{
		mk("alpha", s.fieldA),
		mk("bravo", s.fieldB),
		mk("charlie", s.fieldC),
	}

	actor := &identitymodels.Actor{
		Roles: []*identitymodels.Role{s.role(s.fieldC.String(), s.fieldA.String())},
	}

	filtered := Filter(defs, actor, View)
	s.Require().Len(filtered, 2)
	s.Equal("alpha", filtered[0].Name, "registry order is preserved")
	s.Equal("charlie", filtered[1].Name)

	super := &identitymodels.Actor{IsSuperadmin: true}
	s.Len(Filter(defs, super, View), 3)

	s.Len(Filter(defs, nil, View), 3, "anonymous requests are not filtered")
}

func (s *CapabilitySuite) TestFieldSetIDs() {
	s.Nil(AllFields().IDs())
	s.Nil(FieldsOf(nil).IDs())

	ids := FieldsOf([]string{s.fieldB.String(), s.fieldA.String(), s.fieldB.String()}).IDs()
	s.Require().Len(ids, 2)
	s.True(sort.StringsAreSorted(ids))
}

func (s *CapabilitySuite) TestHasPermission() {
	templates := identitymodels.RoleTemplates()
	byKey := make(map[string]identitymodels.Template, len(templates))
	for _, t := range templates {
		byKey[t.Key] = t
	}

	scanner := &identitymodels.Actor{Roles: []*identitymodels.Role{{
		ID:          id.NewRoleID(),
		Name:        byKey["scanner"].Name,
		Permissions: byKey["scanner"].Permissions,
	}}}
	s.True(scanner.HasPermission(identitymodels.PermPersonsRead))
	s.False(scanner.HasPermission(identitymodels.PermPersonsCreate))
	s.False(scanner.HasPermission(identitymodels.PermFieldsDelete))

	admin := &identitymodels.Actor{Roles: []*identitymodels.Role{{
		ID:          id.NewRoleID(),
		Name:        byKey["admin"].Name,
		Permissions: byKey["admin"].Permissions,
	}}}
	s.True(admin.HasPermission(identitymodels.PermFieldsDelete))

	super := &identitymodels.Actor{IsSuperadmin: true}
	s.True(super.HasPermission(identitymodels.PermSettingsUpdate))
	s.False((*identitymodels.Actor)(nil).HasPermission(identitymodels.PermPersonsRead))
}
