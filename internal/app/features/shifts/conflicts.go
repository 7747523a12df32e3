// internal/app/features/shifts/conflicts.go
package shifts

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/eventops/crewhub/internal/app/system/apiresp"
	"github.com/eventops/crewhub/internal/app/system/inputval"
	"github.com/eventops/crewhub/internal/app/system/limits"
	"github.com/eventops/crewhub/internal/app/system/timeouts"
	"github.com/eventops/crewhub/internal/domain/models"
)

type conflictRequest struct {
	StaffID        string    `json:"staff_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	ExcludeShiftID string    `json:"exclude_shift_id"`
}

type conflictResponse struct {
	HasConflicts bool           `json:"has_conflicts"`
	Conflicts    []models.Shift `json:"conflicts"`
}

// DetectConflicts reports the staff member's non-cancelled shifts that
// overlap the given window. Finding conflicts is a successful answer,
// not an error; the response is always 200 with has_conflicts set.
func (h *Handler) DetectConflicts(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req conflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}
	staffID, err := inputval.ObjectID("staff_id", req.StaffID)
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	if err := inputval.TimeWindow(req.StartTime, req.EndTime, true); err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	var exclude *primitive.ObjectID
	if id, ok, err := inputval.OptionalObjectID("exclude_shift_id", req.ExcludeShiftID); err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	} else if ok {
		exclude = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	conflicts, err := h.Detector.DetectConflicts(ctx, staffID, req.StartTime, req.EndTime, exclude)
	if err != nil {
		apiresp.Internal(w, h.Log, "detect conflicts", err)
		return
	}
	if conflicts == nil {
		conflicts = []models.Shift{}
	}
	apiresp.OK(w, conflictResponse{
		HasConflicts: len(conflicts) > 0,
		Conflicts:    conflicts,
	})
}
