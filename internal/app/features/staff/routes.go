// internal/app/features/staff/routes.go
package staff

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventops/crewhub/internal/app/system/auth"
)

// Routes returns a subrouter that serves the staff profile endpoints.
// Clients never see staff records; profile writes are admin and
// supervisor only, except availability which staff set on themselves.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)
	r.Use(sm.RequireSignedIn)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole("admin", "supervisor", "staff"))
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})

	r.Patch("/{id}/availability", h.SetAvailability)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole("admin", "supervisor"))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Patch("/{id}/skills/{name}/verify", h.VerifySkill)
	})

	return r
}
