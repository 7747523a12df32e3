// internal/app/system/workers/shiftreminder.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/eventops/crewhub/internal/app/notify"
	"github.com/eventops/crewhub/internal/app/store/events"
	"github.com/eventops/crewhub/internal/app/store/shifts"
	"github.com/eventops/crewhub/internal/app/store/staff"
	"go.uber.org/zap"
)

// ShiftReminder is a background worker that notifies staff of shifts
// starting within the lead window. The notification dedupe key is per
// shift, so overlapping sweeps never double-remind.
type ShiftReminder struct {
	shifts *shifts.Store
	events *events.Store
	staff  *staff.Store
	bus    *notify.Bus
	log    *zap.Logger

	interval time.Duration
	lead     time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewShiftReminder creates a new reminder worker.
//
// Parameters:
//   - interval: how often to sweep (e.g., 10 minutes)
//   - lead: how far ahead of the shift start to remind (e.g., 24 hours)
func NewShiftReminder(shiftStore *shifts.Store, eventStore *events.Store, staffStore *staff.Store, bus *notify.Bus, logger *zap.Logger, interval, lead time.Duration) *ShiftReminder {
	return &ShiftReminder{
		shifts:   shiftStore,
		events:   eventStore,
		staff:    staffStore,
		bus:      bus,
		log:      logger,
		interval: interval,
		lead:     lead,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background reminder loop.
func (w *ShiftReminder) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("shift reminder worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("lead", w.lead))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *ShiftReminder) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("shift reminder worker stopped")
}

func (w *ShiftReminder) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *ShiftReminder) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC()
	upcoming, err := w.shifts.StartingSoon(ctx, now, now.Add(w.lead), 200)
	if err != nil {
		w.log.Error("failed to load upcoming shifts", zap.Error(err))
		return
	}

	for _, sh := range upcoming {
		e, err := w.events.GetByID(ctx, sh.EventID)
		if err != nil {
			w.log.Warn("reminder skipped, event missing",
				zap.String("shift_id", sh.ID.Hex()),
				zap.Error(err))
			continue
		}
		p, err := w.staff.GetByID(ctx, sh.StaffID)
		if err != nil {
			w.log.Warn("reminder skipped, staff profile missing",
				zap.String("shift_id", sh.ID.Hex()),
				zap.Error(err))
			continue
		}
		if err := w.bus.ShiftReminder(ctx, *p, e, sh); err != nil {
			w.log.Warn("shift reminder failed",
				zap.String("shift_id", sh.ID.Hex()),
				zap.Error(err))
		}
	}
}
