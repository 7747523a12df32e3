// internal/app/features/bookings/handler.go
package bookings

import (
	"go.uber.org/zap"

	"github.com/eventops/crewhub/internal/app/notify"
	"github.com/eventops/crewhub/internal/app/store/bookings"
	"github.com/eventops/crewhub/internal/app/store/events"
	"github.com/eventops/crewhub/internal/app/system/auditlog"
)

// Handler bundles the dependencies for the client booking endpoints.
// Confirming a booking materializes an event, so the event store rides
// along; Bus may be nil when notifications are disabled.
type Handler struct {
	Bookings *bookings.Store
	Events   *events.Store
	Bus      *notify.Bus
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(bookingStore *bookings.Store, eventStore *events.Store, bus *notify.Bus, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Bookings: bookingStore,
		Events:   eventStore,
		Bus:      bus,
		Audit:    audit,
		Log:      logger,
	}
}
