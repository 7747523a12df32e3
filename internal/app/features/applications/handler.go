// internal/app/features/applications/handler.go
package applications

import (
	"go.uber.org/zap"

	"github.com/eventops/crewhub/internal/app/notify"
	"github.com/eventops/crewhub/internal/app/store/applications"
	"github.com/eventops/crewhub/internal/app/store/events"
	"github.com/eventops/crewhub/internal/app/store/staff"
	"github.com/eventops/crewhub/internal/app/system/auditlog"
)

// Handler bundles the dependencies for the shift application endpoints.
// Accepting an application books the staff member onto the event, so
// the event store rides along; Bus may be nil when notifications are
// disabled.
type Handler struct {
	Applications *applications.Store
	Events       *events.Store
	Staff        *staff.Store
	Bus          *notify.Bus
	Audit        *auditlog.Logger
	Log          *zap.Logger
}

func NewHandler(appStore *applications.Store, eventStore *events.Store, staffStore *staff.Store, bus *notify.Bus, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Applications: appStore,
		Events:       eventStore,
		Staff:        staffStore,
		Bus:          bus,
		Audit:        audit,
		Log:          logger,
	}
}
