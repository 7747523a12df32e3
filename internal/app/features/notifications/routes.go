// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventops/crewhub/internal/app/system/auth"
)

// Routes returns a subrouter that serves the notification feed. Every
// route is scoped to the signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.List)
	r.Get("/unread-count", h.UnreadCount)
	r.Patch("/{id}/read", h.MarkRead)
	r.Post("/read-all", h.MarkAllRead)

	return r
}
