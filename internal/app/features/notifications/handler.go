// internal/app/features/notifications/handler.go
package notifications

import (
	"go.uber.org/zap"

	"github.com/eventops/crewhub/internal/app/store/notifications"
)

// Handler bundles the dependencies for the notification feed endpoints.
type Handler struct {
	Notifications *notifications.Store
	Log           *zap.Logger
}

func NewHandler(notificationStore *notifications.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Notifications: notificationStore,
		Log:           logger,
	}
}
