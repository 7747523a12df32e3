package gates_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eventops/crewhub/internal/app/system/auth"
	"github.com/eventops/crewhub/internal/app/system/gates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func requestWithRole(role string) *http.Request {
	req := httptest.NewRequest("GET", "/", nil)
	return auth.WithTestUser(req, &auth.SessionUser{
		ID:   primitive.NewObjectID().Hex(),
		Name: "Test User",
		Role: role,
	})
}

func TestRequireAuth_Unauthenticated(t *testing.T) {
	rec := httptest.NewRecorder()
	res := gates.RequireAuth(rec, httptest.NewRequest("GET", "/", nil))

	if res.OK {
		t.Error("expected OK=false")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_Authenticated(t *testing.T) {
	rec := httptest.NewRecorder()
	res := gates.RequireAuth(rec, requestWithRole("staff"))

	if !res.OK {
		t.Fatal("expected OK=true")
	}
	if res.Role != "staff" {
		t.Errorf("role = %q, want %q", res.Role, "staff")
	}
	if res.UserID == primitive.NilObjectID {
		t.Error("expected a real UserID")
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		role       string
		wantOK     bool
		wantStatus int
	}{
		{"admin", true, http.StatusOK},
		{"supervisor", false, http.StatusForbidden},
		{"staff", false, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			rec := httptest.NewRecorder()
			res := gates.RequireAdmin(rec, requestWithRole(tt.role))

			if res.OK != tt.wantOK {
				t.Errorf("OK = %v, want %v", res.OK, tt.wantOK)
			}
			if !tt.wantOK && rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireStaffingManager(t *testing.T) {
	for _, role := range []string{"admin", "supervisor"} {
		rec := httptest.NewRecorder()
		if res := gates.RequireStaffingManager(rec, requestWithRole(role)); !res.OK {
			t.Errorf("role %q: expected OK=true", role)
		}
	}
	rec := httptest.NewRecorder()
	if res := gates.RequireStaffingManager(rec, requestWithRole("client")); res.OK {
		t.Error("client: expected OK=false")
	}
}
