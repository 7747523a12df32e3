// internal/app/features/applications/routes.go
package applications

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventops/crewhub/internal/app/system/auth"
)

// Routes returns a subrouter that serves the application endpoints.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Patch("/{id}", h.Decide)

	return r
}
