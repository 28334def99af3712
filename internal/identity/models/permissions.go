package models

// Permission names an operation an actor may be granted. The catalog is
// closed: unknown permission strings always check as denied.
type Permission string

const (
	// Dashboard widgets
	PermDashboardView               Permission = "dashboard.view"
	PermDashboardStats              Permission = "dashboard.stats"
	PermDashboardRecentPersons      Permission = "dashboard.recent_persons"
	PermDashboardComplianceOverview Permission = "dashboard.compliance_overview"
	PermDashboardExpiringDocuments  Permission = "dashboard.expiring_documents"
	PermDashboardScanActivity       Permission = "dashboard.scan_activity"

	// Persons
	PermPersonsRead   Permission = "persons.read"
	PermPersonsCreate Permission = "persons.create"
	PermPersonsUpdate Permission = "persons.update"
	PermPersonsDelete Permission = "persons.delete"

	// Field definitions
	PermFieldsRead   Permission = "fields.read"
	PermFieldsCreate Permission = "fields.create"
	PermFieldsUpdate Permission = "fields.update"
	PermFieldsDelete Permission = "fields.delete"

	// Users
	PermUsersRead   Permission = "users.read"
	PermUsersCreate Permission = "users.create"
	PermUsersUpdate Permission = "users.update"
	PermUsersDelete Permission = "users.delete"

	// Roles
	PermRolesRead   Permission = "roles.read"
	PermRolesCreate Permission = "roles.create"
	PermRolesUpdate Permission = "roles.update"
	PermRolesDelete Permission = "roles.delete"

	// Documents
	PermDocumentsRead   Permission = "documents.read"
	PermDocumentsUpload Permission = "documents.upload"
	PermDocumentsDelete Permission = "documents.delete"

	// Recognition
	PermRecognitionFace Permission = "recognition.face"
	PermRecognitionText Permission = "recognition.text"

	// Audit
	PermAuditRead   Permission = "audit.read"
	PermAuditExport Permission = "audit.export"

	// Settings
	PermSettingsRead   Permission = "settings.read"
	PermSettingsUpdate Permission = "settings.update"
)

// allPermissions is the catalog in declaration order.
var allPermissions = []Permission{
	PermDashboardView, PermDashboardStats, PermDashboardRecentPersons,
	PermDashboardComplianceOverview, PermDashboardExpiringDocuments, PermDashboardScanActivity,
	PermPersonsRead, PermPersonsCreate, PermPersonsUpdate, PermPersonsDelete,
	PermFieldsRead, PermFieldsCreate, PermFieldsUpdate, PermFieldsDelete,
	PermUsersRead, PermUsersCreate, PermUsersUpdate, PermUsersDelete,
	PermRolesRead, PermRolesCreate, PermRolesUpdate, PermRolesDelete,
	PermDocumentsRead, PermDocumentsUpload, PermDocumentsDelete,
	PermRecognitionFace, PermRecognitionText,
	PermAuditRead, PermAuditExport,
	PermSettingsRead, PermSettingsUpdate,
}

// AllPermissions returns the catalog in a stable order.
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// DefaultPermissions returns the everything-denied baseline a new role
// starts from.
func DefaultPermissions() map[Permission]bool {
	out := make(map[Permission]bool, len(allPermissions))
	for _, p := range allPermissions {
		out[p] = false
	}
	return out
}

func grant(perms ...Permission) map[Permission]bool {
	out := DefaultPermissions()
	for _, p := range perms {
		out[p] = true
	}
	return out
}
