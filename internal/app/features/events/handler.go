// internal/app/features/events/handler.go
package events

import (
	"go.uber.org/zap"

	"github.com/eventops/crewhub/internal/app/matching"
	"github.com/eventops/crewhub/internal/app/store/events"
	"github.com/eventops/crewhub/internal/app/store/shifts"
	"github.com/eventops/crewhub/internal/app/system/auditlog"
)

// Handler bundles the dependencies for the event endpoints, including
// the matching engine behind smart-match, auto-assign, and
// recommendations.
type Handler struct {
	Events       *events.Store
	Shifts       *shifts.Store
	Orchestrator *matching.Orchestrator
	Scorer       *matching.Scorer
	Audit        *auditlog.Logger
	Log          *zap.Logger
}

func NewHandler(eventStore *events.Store, shiftStore *shifts.Store, orch *matching.Orchestrator, scorer *matching.Scorer, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:       eventStore,
		Shifts:       shiftStore,
		Orchestrator: orch,
		Scorer:       scorer,
		Audit:        audit,
		Log:          logger,
	}
}
