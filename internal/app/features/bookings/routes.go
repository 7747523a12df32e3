// internal/app/features/bookings/routes.go
package bookings

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventops/crewhub/internal/app/system/auth"
)

// Routes returns a subrouter that serves the booking endpoints. Role
// checks live in the handlers because creation is client-only while
// decisions are manager-only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Decide)

	return r
}
