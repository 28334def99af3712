package models

import (
	"time"

	id "siteguard/pkg/domain"
)

// Role bundles permissions with field-level grant lists. Empty grant lists
// mean the role contributes nothing to the field union, not "all fields".
type Role struct {
	ID          id.RoleID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`

	Permissions map[Permission]bool `json:"permissions"`

	// Field IDs (string form) this role may see or edit.
	VisibleFields  []string `json:"visible_fields"`
	EditableFields []string `json:"editable_fields"`

	CreatedAt time.Time `json:"created_at"`
}

// Grants reports whether the role grants a permission.
func (r *Role) Grants(perm Permission) bool {
	return r != nil && r.Permissions[perm]
}

// Template is a predefined role shape installed at bootstrap.
type Template struct {
	Key         string
	Name        string
	Description string
	Permissions map[Permission]bool
}

// RoleTemplates returns the predefined roles in a stable order.
func RoleTemplates() []Template {
	return []Template{
		{
			Key:         "admin",
			Name:        "Administrator",
			Description: "Full access to all features",
			Permissions: grant(AllPermissions()...),
		},
		{
			Key:         "site_manager",
			Name:        "Site Manager",
			Description: "Manage persons and view reports",
			Permissions: grant(
				PermDashboardView, PermDashboardStats, PermDashboardRecentPersons,
				PermDashboardComplianceOverview, PermDashboardExpiringDocuments, PermDashboardScanActivity,
				PermPersonsRead, PermPersonsCreate, PermPersonsUpdate,
				PermFieldsRead,
				PermDocumentsRead, PermDocumentsUpload,
				PermRecognitionFace, PermRecognitionText,
				PermAuditRead,
			),
		},
		{
			Key:         "inspector",
			Name:        "Inspector",
			Description: "View and scan persons, add notes",
			Permissions: grant(
				PermDashboardView, PermDashboardStats, PermDashboardScanActivity,
				PermPersonsRead, PermPersonsUpdate,
				PermFieldsRead,
				PermDocumentsRead,
				PermRecognitionFace, PermRecognitionText,
			),
		},
		{
			Key:         "scanner",
			Name:        "Mobile Scanner",
			Description: "Read-only scanning access",
			Permissions: grant(
				PermPersonsRead,
				PermFieldsRead,
				PermRecognitionFace, PermRecognitionText,
			),
		},
		{
			Key:         "hr",
			Name:        "HR Manager",
			Description: "Manage person data and documents",
			Permissions: grant(
				PermDashboardView, PermDashboardStats, PermDashboardRecentPersons,
				PermDashboardComplianceOverview, PermDashboardExpiringDocuments,
				PermPersonsRead, PermPersonsCreate, PermPersonsUpdate,
				PermFieldsRead,
				PermDocumentsRead, PermDocumentsUpload, PermDocumentsDelete,
				PermAuditRead,
			),
		},
	}
}
