// internal/app/features/payroll/handler.go
package payroll

import (
	"go.uber.org/zap"

	"github.com/eventops/crewhub/internal/app/store/payroll"
	"github.com/eventops/crewhub/internal/app/store/ratecards"
	"github.com/eventops/crewhub/internal/app/store/shifts"
	"github.com/eventops/crewhub/internal/app/system/auditlog"
)

// Handler bundles the dependencies for the payroll endpoints. Rate cards
// ride along because they are the wage table payroll is computed from;
// the shift store feeds period generation.
type Handler struct {
	Payroll *payroll.Store
	Rates   *ratecards.Store
	Shifts  *shifts.Store
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(payrollStore *payroll.Store, rateStore *ratecards.Store, shiftStore *shifts.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Payroll: payrollStore,
		Rates:   rateStore,
		Shifts:  shiftStore,
		Audit:   audit,
		Log:     logger,
	}
}
