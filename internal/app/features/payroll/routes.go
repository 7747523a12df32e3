// internal/app/features/payroll/routes.go
package payroll

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventops/crewhub/internal/app/system/auth"
)

// Routes returns a subrouter that serves payroll entries and the rate
// card wage table.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)
	r.Use(sm.RequireSignedIn)

	// Entry listing is self-scoped for staff; status changes gate in
	// the handler so the audit log records the actor.
	r.Get("/entries", h.ListEntries)
	r.Patch("/entries/{id}/status", h.SetEntryStatus)
	r.Get("/summary", h.Summary)
	r.Post("/generate", h.Generate)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole("admin", "supervisor"))
		r.Get("/rate-cards", h.ListRateCards)
		r.Post("/rate-cards", h.CreateRateCard)
		r.Put("/rate-cards/{id}", h.UpdateRateCard)
		r.Delete("/rate-cards/{id}", h.DeleteRateCard)
	})

	return r
}
