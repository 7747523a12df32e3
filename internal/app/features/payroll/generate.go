// internal/app/features/payroll/generate.go
package payroll

import (
	"context"
	"errors"
	"net/http"
	"time"

	payrollstore "github.com/eventops/crewhub/internal/app/store/payroll"
	"github.com/eventops/crewhub/internal/app/store/shifts"
	"github.com/eventops/crewhub/internal/app/system/apiresp"
	"github.com/eventops/crewhub/internal/app/system/gates"
	"github.com/eventops/crewhub/internal/app/system/timeouts"
	"github.com/eventops/crewhub/internal/domain/models"
)

// generateBatchSize caps one generation pass. A month that somehow
// exceeds it just needs a second run; entries are keyed by shift so
// re-runs never duplicate.
const generateBatchSize = 10000

// Generate writes payroll entries for every completed shift in
// ?period= (YYYY-MM). The unique shift_id index makes the operation
// idempotent: shifts already entered count as skipped. Check-out and
// the auto-complete sweep write entries eagerly, so generation is the
// period-close reconciliation pass.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if gate := gates.RequireStaffingManager(w, r); !gate.OK {
		return
	}
	period, err := parsePeriod(r.URL.Query().Get("period"), true)
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	from, _ := time.Parse("2006-01", period)
	to := from.AddDate(0, 1, 0)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	completed, err := h.Shifts.List(ctx, shifts.ListFilter{
		Status: models.ShiftCompleted,
		From:   from,
		To:     to,
	}, generateBatchSize)
	if err != nil {
		apiresp.Internal(w, h.Log, "list completed shifts for payroll", err)
		return
	}

	generated, skipped := 0, 0
	for _, sh := range completed {
		if _, err := h.Payroll.Create(ctx, payrollstore.FromShift(sh)); err != nil {
			if errors.Is(err, payrollstore.ErrAlreadyEntered) {
				skipped++
				continue
			}
			apiresp.Internal(w, h.Log, "create payroll entry", err)
			return
		}
		generated++
	}

	apiresp.OK(w, map[string]any{
		"period":    period,
		"generated": generated,
		"skipped":   skipped,
	})
}
