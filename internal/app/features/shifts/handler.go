// internal/app/features/shifts/handler.go
package shifts

import (
	"time"

	"go.uber.org/zap"

	"github.com/eventops/crewhub/internal/app/matching"
	"github.com/eventops/crewhub/internal/app/store/payroll"
	"github.com/eventops/crewhub/internal/app/store/ratecards"
	"github.com/eventops/crewhub/internal/app/store/shifts"
	"github.com/eventops/crewhub/internal/app/store/staff"
)

// DefaultLateGrace is how late a check-in may be before attendance is
// recorded as Late instead of Arrived.
const DefaultLateGrace = 15 * time.Minute

// Handler bundles the dependencies for the shift endpoints. Check-out
// feeds payroll and the staff performance counters directly, so both
// stores ride along.
type Handler struct {
	Shifts    *shifts.Store
	Staff     *staff.Store
	Rates     *ratecards.Store
	Payroll   *payroll.Store
	Detector  *matching.ConflictDetector
	LateGrace time.Duration
	Log       *zap.Logger
}

func NewHandler(shiftStore *shifts.Store, staffStore *staff.Store, rateStore *ratecards.Store, payrollStore *payroll.Store, detector *matching.ConflictDetector, logger *zap.Logger) *Handler {
	return &Handler{
		Shifts:    shiftStore,
		Staff:     staffStore,
		Rates:     rateStore,
		Payroll:   payrollStore,
		Detector:  detector,
		LateGrace: DefaultLateGrace,
		Log:       logger,
	}
}
