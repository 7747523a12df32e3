// Package normalize provides input normalization helpers applied before
// validation and storage. Stores call these so the same value always
// lands in the database the same way regardless of which handler wrote
// it.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a person or event name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role trims a staffing role name. Case is preserved: role names are
// matched case-sensitively against StaffProfile.Role and the keys of
// Event.RequiredRoles.
func Role(s string) string {
	return strings.TrimSpace(s)
}

// PortalRole lowercases and trims a portal role (admin, supervisor,
// staff, client).
func PortalRole(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Severity lowercases and trims an incident severity.
func Severity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query string parameter.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
