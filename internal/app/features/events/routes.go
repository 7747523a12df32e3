// internal/app/features/events/routes.go
package events

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventops/crewhub/internal/app/system/auth"
)

// Routes returns a subrouter that serves the event endpoints. Reads are
// open to any signed-in user (clients see only their own events);
// writes and matching runs require admin or supervisor, with client
// event creation as the one exception.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)

	// Match results carry staff ratings and score breakdowns, so the
	// read endpoints stay desk-only alongside the matching runs.
	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole("admin", "supervisor"))
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/smart-match/{role}", h.SmartMatch)
		r.Get("/{id}/recommendations", h.Recommendations)
	})

	// These gate inside the handler so the audit log records the actor.
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/assignments", h.CreateAssignment)
	r.Patch("/{id}/assignments/{staffID}", h.DecideAssignment)
	r.Post("/{id}/auto-assign", h.AutoAssign)
	r.Post("/{id}/auto-shifts", h.AutoShifts)

	return r
}
