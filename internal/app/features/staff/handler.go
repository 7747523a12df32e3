// internal/app/features/staff/handler.go
package staff

import (
	"go.uber.org/zap"

	"github.com/eventops/crewhub/internal/app/store/staff"
)

// Handler bundles the dependencies for the staff profile endpoints.
type Handler struct {
	Staff *staff.Store
	Log   *zap.Logger
}

func NewHandler(staffStore *staff.Store, logger *zap.Logger) *Handler {
	return &Handler{Staff: staffStore, Log: logger}
}
