// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/eventops/crewhub/internal/app/store/events"
	"github.com/eventops/crewhub/internal/app/store/payroll"
	"github.com/eventops/crewhub/internal/app/store/shifts"
	"github.com/eventops/crewhub/internal/app/store/staff"
	"go.uber.org/zap"
)

// ShiftAutoCompleteJob closes Live shifts whose window ended more than
// grace ago without a check-out, credits the staff member's completed
// shift counter, and writes the payroll entry. The unique shift_id index
// on payroll entries makes a re-run over the same shift harmless.
func ShiftAutoCompleteJob(shiftStore *shifts.Store, staffStore *staff.Store, payrollStore *payroll.Store, logger *zap.Logger, grace time.Duration) Job {
	return Job{
		Name:     "shift-auto-complete",
		Interval: 5 * time.Minute,
		Run: func(ctx context.Context) error {
			stale, err := shiftStore.StaleLive(ctx, time.Now().UTC().Add(-grace), 100)
			if err != nil {
				return err
			}
			for _, sh := range stale {
				completed, err := shiftStore.ForceComplete(ctx, sh.ID)
				if err != nil {
					if errors.Is(err, shifts.ErrShiftNotLive) {
						continue
					}
					logger.Error("failed to auto-complete shift",
						zap.String("shift_id", sh.ID.Hex()),
						zap.Error(err))
					continue
				}

				if _, err := payrollStore.Create(ctx, payroll.FromShift(*completed)); err != nil && !errors.Is(err, payroll.ErrAlreadyEntered) {
					logger.Error("failed to write payroll entry for auto-completed shift",
						zap.String("shift_id", sh.ID.Hex()),
						zap.Error(err))
				}
				if err := staffStore.RecordCompletedShift(ctx, completed.StaffID); err != nil {
					logger.Error("failed to credit completed shift",
						zap.String("staff_id", completed.StaffID.Hex()),
						zap.Error(err))
				}

				logger.Info("auto-completed stale shift",
					zap.String("shift_id", sh.ID.Hex()),
					zap.Float64("hours_worked", completed.HoursWorked))
			}
			return nil
		},
	}
}

// PendingAssignmentExpiryJob rejects assignment proposals that have sat
// pending longer than maxAge, freeing the slot for re-matching.
func PendingAssignmentExpiryJob(eventStore *events.Store, logger *zap.Logger, maxAge time.Duration) Job {
	return Job{
		Name:     "pending-assignment-expiry",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := eventStore.ExpirePendingAssignments(ctx, time.Now().UTC().Add(-maxAge))
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("expired stale pending assignments",
					zap.Int64("events_touched", count),
					zap.Duration("max_age", maxAge))
			}
			return nil
		},
	}
}
