// internal/app/features/shifts/attendance.go
package shifts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/eventops/crewhub/internal/app/store/payroll"
	shiftstore "github.com/eventops/crewhub/internal/app/store/shifts"
	"github.com/eventops/crewhub/internal/app/system/apiresp"
	"github.com/eventops/crewhub/internal/app/system/authz"
	"github.com/eventops/crewhub/internal/app/system/limits"
	"github.com/eventops/crewhub/internal/app/system/timeouts"
)

type checkInRequest struct {
	Code string `json:"code"`
}

// CheckIn marks attendance on a shift. The code must match the shift's
// check-in code; arrivals past the grace window are recorded Late.
// Staff can only check in to their own shifts.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	id, ok := shiftID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}
	if req.Code == "" {
		apiresp.BadRequest(w, "check-in code is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.mayTouch(ctx, w, r, id) {
		return
	}

	sh, err := h.Shifts.CheckIn(ctx, id, req.Code, time.Now().UTC(), h.LateGrace)
	switch {
	case err == nil:
		apiresp.OK(w, sh)
	case errors.Is(err, shiftstore.ErrBadCheckInCode):
		apiresp.BadRequest(w, err.Error())
	case errors.Is(err, shiftstore.ErrShiftNotLive):
		apiresp.Conflict(w, err.Error())
	default:
		apiresp.FromError(w, h.Log, "check in", err, "shift not found")
	}
}

// CheckOut completes a live shift, computes the worked hours, creates
// the payroll entry, and bumps the staff member's completed-shift
// counter. Payroll and counter failures are logged, not returned; the
// auto-complete sweep reconciles them.
func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	id, ok := shiftID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.mayTouch(ctx, w, r, id) {
		return
	}

	sh, err := h.Shifts.CheckOut(ctx, id, time.Now().UTC())
	switch {
	case err == nil:
	case errors.Is(err, shiftstore.ErrNotCheckedIn), errors.Is(err, shiftstore.ErrShiftNotLive):
		apiresp.Conflict(w, err.Error())
		return
	default:
		apiresp.FromError(w, h.Log, "check out", err, "shift not found")
		return
	}

	if _, err := h.Payroll.Create(ctx, payroll.FromShift(*sh)); err != nil && !errors.Is(err, payroll.ErrAlreadyEntered) {
		h.Log.Error("payroll entry after check-out", zap.String("shift_id", sh.ID.Hex()), zap.Error(err))
	}
	if err := h.Staff.RecordCompletedShift(ctx, sh.StaffID); err != nil {
		h.Log.Error("completed-shift counter", zap.String("staff_id", sh.StaffID.Hex()), zap.Error(err))
	}

	apiresp.OK(w, sh)
}

// mayTouch enforces that staff act only on their own shifts. Managers
// pass through; the shift is loaded once for the ownership check.
func (h *Handler) mayTouch(ctx context.Context, w http.ResponseWriter, r *http.Request, id primitive.ObjectID) bool {
	if !authz.IsStaff(r) {
		return true
	}
	sh, err := h.Shifts.GetByID(ctx, id)
	if err != nil {
		apiresp.FromError(w, h.Log, "load shift", err, "shift not found")
		return false
	}
	if sh.StaffID != authz.StaffProfileID(r) {
		apiresp.Forbidden(w)
		return false
	}
	return true
}
