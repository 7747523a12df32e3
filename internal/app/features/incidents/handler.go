// internal/app/features/incidents/handler.go
package incidents

import (
	"go.uber.org/zap"

	"github.com/eventops/crewhub/internal/app/store/events"
	"github.com/eventops/crewhub/internal/app/store/incidents"
)

// Handler bundles the dependencies for the incident report endpoints.
type Handler struct {
	Incidents *incidents.Store
	Events    *events.Store
	Log       *zap.Logger
}

func NewHandler(incidentStore *incidents.Store, eventStore *events.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Incidents: incidentStore,
		Events:    eventStore,
		Log:       logger,
	}
}
