// internal/app/features/incidents/routes.go
package incidents

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventops/crewhub/internal/app/system/auth"
)

// Routes returns a subrouter that serves the incident endpoints.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)
	r.Use(sm.RequireSignedIn)

	// Role checks live in the handlers: creation is open to staff and
	// managers, and resolution needs the actor for the record.
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/resolve", h.Resolve)

	return r
}
