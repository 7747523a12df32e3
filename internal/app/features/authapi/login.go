// internal/app/features/authapi/login.go
package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eventops/crewhub/internal/app/system/apiresp"
	"github.com/eventops/crewhub/internal/app/system/auth"
	"github.com/eventops/crewhub/internal/app/system/inputval"
	"github.com/eventops/crewhub/internal/app/system/limits"
	"github.com/eventops/crewhub/internal/app/system/normalize"
	"github.com/eventops/crewhub/internal/app/system/timeouts"
	"github.com/eventops/crewhub/internal/domain/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionUserResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	StaffProfileID string `json:"staff_profile_id,omitempty"`
}

// Login authenticates email/password credentials and establishes a
// session cookie. Failed attempts always return the same generic 401 so
// the response does not reveal whether the account exists.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}
	email := normalize.Email(req.Email)
	if err := inputval.Email(email); err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	if req.Password == "" {
		apiresp.BadRequest(w, "password is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if allowed, reason := h.Limiter.Check(r, email); !allowed {
		h.Audit.LoginFailed(ctx, r, email, "rate limited")
		apiresp.TooManyRequests(w, reason)
		return
	}

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.Audit.LoginFailed(ctx, r, email, "unknown email")
			apiresp.Unauthorized(w)
			return
		}
		apiresp.Internal(w, h.Log, "login lookup", err)
		return
	}
	if !h.Users.VerifyPassword(u, req.Password) {
		h.Audit.LoginFailed(ctx, r, email, "wrong password")
		apiresp.Unauthorized(w)
		return
	}
	if u.Status == models.UserDisabled {
		h.Audit.LoginFailed(ctx, r, email, "account disabled")
		apiresp.Unauthorized(w)
		return
	}

	su := sessionUser(u)
	if err := h.SM.SignIn(w, r, su); err != nil {
		apiresp.Internal(w, h.Log, "login session write", err)
		return
	}
	h.Limiter.ResetEmail(email)
	h.Audit.LoginSuccess(ctx, r, u.ID, u.Email)
	apiresp.OK(w, toUserResponse(su))
}

// Logout clears the session cookie. Safe to call while signed out.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		h.Audit.Logout(ctx, r, u.ID)
	}
	if err := h.SM.SignOut(w, r); err != nil {
		apiresp.Internal(w, h.Log, "logout session clear", err)
		return
	}
	apiresp.OKMessage(w, nil, "signed out")
}

// Me returns the signed-in user, or 401 when no session exists.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		apiresp.Unauthorized(w)
		return
	}
	apiresp.OK(w, toUserResponse(u))
}

func sessionUser(u *models.User) *auth.SessionUser {
	su := &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}
	if u.StaffProfileID != nil {
		su.StaffProfileID = u.StaffProfileID.Hex()
	}
	return su
}

func toUserResponse(su *auth.SessionUser) sessionUserResponse {
	return sessionUserResponse{
		ID:             su.ID,
		Name:           su.Name,
		Email:          su.Email,
		Role:           su.Role,
		StaffProfileID: su.StaffProfileID,
	}
}
