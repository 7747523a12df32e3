package testutil

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/eventops/crewhub/internal/app/system/auth"
)

// TestUser represents session data for testing HTTP handlers.
type TestUser struct {
	ID             string
	Name           string
	Email          string
	Role           string
	StaffProfileID string
}

// AdminUser returns a TestUser with the admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  "admin",
	}
}

// SupervisorUser returns a TestUser with the supervisor role.
func SupervisorUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Supervisor",
		Email: "supervisor@test.com",
		Role:  "supervisor",
	}
}

// StaffUser returns a TestUser with the staff role linked to the given
// staff profile.
func StaffUser(profileID primitive.ObjectID) TestUser {
	return TestUser{
		ID:             primitive.NewObjectID().Hex(),
		Name:           "Test Staff",
		Email:          "staff@test.com",
		Role:           "staff",
		StaffProfileID: profileID.Hex(),
	}
}

// ClientUser returns a TestUser with the client role. The returned ID
// doubles as the client company ID on events and bookings.
func ClientUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Client",
		Email: "client@test.com",
		Role:  "client",
	}
}

// WithUser adds a session user to the request context, bypassing the
// session middleware.
func WithUser(r *http.Request, user TestUser) *http.Request {
	su := &auth.SessionUser{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		StaffProfileID: user.StaffProfileID,
	}
	return auth.WithTestUser(r, su)
}

// WithChiURLParam adds a chi URL parameter to the request context. Use
// this in handler tests that call chi.URLParam without a router.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}
