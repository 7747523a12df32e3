// Package gates provides authorization gate functions for HTTP handlers.
// Gates check authentication and authorization, writing the JSON error
// envelope when checks fail.
//
// Route groups that share a role requirement use the session manager's
// RequireRole middleware in routes.go; gates are for handlers that need a
// different check than their route group, or need the user context
// anyway. Handlers behind RequireRole middleware should use
// authz.UserCtx(r) directly instead of re-gating.
package gates

import (
	"net/http"

	"github.com/eventops/crewhub/internal/app/system/apiresp"
	"github.com/eventops/crewhub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result contains the result of an authorization gate check.
type Result struct {
	Role   string
	Name   string
	UserID primitive.ObjectID
	OK     bool
}

// RequireAuth ensures a user is authenticated. If not, it writes a 401
// and returns OK=false.
func RequireAuth(w http.ResponseWriter, r *http.Request) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Unauthorized(w)
		return Result{OK: false}
	}
	return Result{Role: role, Name: name, UserID: uid, OK: true}
}

// RequireAdmin ensures the user is authenticated and has the admin role.
func RequireAdmin(w http.ResponseWriter, r *http.Request) Result {
	return RequireAnyRole(w, r, "admin")
}

// RequireStaffingManager ensures the user may run assignment operations:
// admin or supervisor.
func RequireStaffingManager(w http.ResponseWriter, r *http.Request) Result {
	return RequireAnyRole(w, r, "admin", "supervisor")
}

// RequireAnyRole ensures the user is authenticated and holds one of the
// allowed roles. 401 when unauthenticated, 403 when the role is wrong.
func RequireAnyRole(w http.ResponseWriter, r *http.Request, allowedRoles ...string) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Unauthorized(w)
		return Result{OK: false}
	}
	for _, allowed := range allowedRoles {
		if role == allowed {
			return Result{Role: role, Name: name, UserID: uid, OK: true}
		}
	}
	apiresp.Forbidden(w)
	return Result{OK: false}
}
