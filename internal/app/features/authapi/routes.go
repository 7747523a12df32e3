// internal/app/features/authapi/routes.go
package authapi

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventops/crewhub/internal/app/system/auth"
)

// Routes returns a subrouter that serves the auth endpoints. Login and
// logout are open; /me requires a live session.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)

	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Get("/me", h.Me)
	})

	return r
}
