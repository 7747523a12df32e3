// internal/app/features/events/matching.go
package events

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/eventops/crewhub/internal/app/matching"
	"github.com/eventops/crewhub/internal/app/system/apiresp"
	"github.com/eventops/crewhub/internal/app/system/gates"
	"github.com/eventops/crewhub/internal/app/system/inputval"
	"github.com/eventops/crewhub/internal/app/system/limits"
	"github.com/eventops/crewhub/internal/app/system/normalize"
	"github.com/eventops/crewhub/internal/app/system/timeouts"
)

// SmartMatch ranks the best available candidates for one role on an
// event. ?count= bounds the list; the default is five.
func (h *Handler) SmartMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	role := normalize.Role(chi.URLParam(r, "role"))
	if role == "" {
		apiresp.BadRequest(w, "role is required")
		return
	}
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	matches, err := h.Scorer.FindBestMatches(ctx, id, role, count)
	if err != nil {
		apiresp.FromError(w, h.Log, "smart match", err, "event not found")
		return
	}
	apiresp.OK(w, map[string]any{"event_id": id, "role": role, "matches": matches})
}

// AutoAssign runs the orchestrator against the event: every role with
// remaining quota is filled from the ranked candidate pool.
func (h *Handler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	gate := gates.RequireStaffingManager(w, r)
	if !gate.OK {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var opts matching.Options
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			apiresp.BadRequest(w, "invalid JSON body")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Orchestrator.AutoAssign(ctx, id, opts)
	if err != nil {
		apiresp.FromError(w, h.Log, "auto assign", err, "event not found")
		return
	}

	h.Audit.AutoAssignRun(ctx, r, gate.UserID, gate.Name, id, res.Assigned, res.Skipped)
	apiresp.OK(w, res)
}

type autoShiftsRequest struct {
	StaffIDs []string `json:"staff_ids"`
	Notify   bool     `json:"notify"`
}

// AutoShifts materializes shifts for the event's approved assignments
// that do not have one yet. An optional staff_ids filter narrows the
// run.
func (h *Handler) AutoShifts(w http.ResponseWriter, r *http.Request) {
	gate := gates.RequireStaffingManager(w, r)
	if !gate.OK {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req autoShiftsRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiresp.BadRequest(w, "invalid JSON body")
			return
		}
	}
	staffIDs := make([]primitive.ObjectID, 0, len(req.StaffIDs))
	for _, hex := range req.StaffIDs {
		sid, err := inputval.ObjectID("staff_ids", hex)
		if err != nil {
			apiresp.BadRequest(w, err.Error())
			return
		}
		staffIDs = append(staffIDs, sid)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Orchestrator.MaterializeShifts(ctx, id, staffIDs, req.Notify)
	if err != nil {
		apiresp.FromError(w, h.Log, "auto shifts", err, "event not found")
		return
	}

	h.Audit.AutoShiftsRun(ctx, r, gate.UserID, gate.Name, id, res.Assigned, res.Skipped)
	apiresp.OK(w, res)
}

// Recommendations returns, per unfilled role, the top candidates with
// their scores and conflict flags, without writing anything.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	recs, err := h.Orchestrator.Recommend(ctx, id)
	if err != nil {
		apiresp.FromError(w, h.Log, "recommendations", err, "event not found")
		return
	}
	apiresp.OK(w, recs)
}
