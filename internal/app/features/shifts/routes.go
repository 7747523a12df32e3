// internal/app/features/shifts/routes.go
package shifts

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventops/crewhub/internal/app/system/auth"
)

// Routes returns a subrouter that serves the shift endpoints. Staff see
// and touch their own shifts; scheduling and cancelling are admin and
// supervisor only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)
	r.Use(sm.RequireSignedIn)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole("admin", "supervisor", "staff"))
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/check-in", h.CheckIn)
		r.Post("/{id}/check-out", h.CheckOut)
	})

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole("admin", "supervisor"))
		r.Post("/", h.Create)
		r.Post("/detect-conflicts", h.DetectConflicts)
		r.Post("/{id}/cancel", h.Cancel)
	})

	return r
}
