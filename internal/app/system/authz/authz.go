// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/eventops/crewhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and
// a found flag. If no user is present in context or the user ID is
// malformed, it returns "visitor", "", NilObjectID, false, so ok=true
// always means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// IsSupervisor reports whether the current request's user is a supervisor.
func IsSupervisor(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "supervisor"
}

// IsStaff reports whether the current request's user is a staff member.
func IsStaff(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "staff"
}

// IsClient reports whether the current request's user is a client.
func IsClient(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "client"
}

// CanManageStaffing reports whether the user may run assignment
// operations (auto-assign, manual assignment, shift edits): admins and
// supervisors.
func CanManageStaffing(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == "admin" || role == "supervisor")
}

// StaffProfileID returns the current user's staff profile ObjectID.
// Returns NilObjectID for non-staff accounts or malformed IDs.
func StaffProfileID(r *http.Request) primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok || user.StaffProfileID == "" {
		return primitive.NilObjectID
	}
	oid, err := primitive.ObjectIDFromHex(user.StaffProfileID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}
