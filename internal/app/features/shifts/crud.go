// internal/app/features/shifts/crud.go
package shifts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/eventops/crewhub/internal/app/store/ratecards"
	shiftstore "github.com/eventops/crewhub/internal/app/store/shifts"
	"github.com/eventops/crewhub/internal/app/system/apiresp"
	"github.com/eventops/crewhub/internal/app/system/authz"
	"github.com/eventops/crewhub/internal/app/system/inputval"
	"github.com/eventops/crewhub/internal/app/system/limits"
	"github.com/eventops/crewhub/internal/app/system/normalize"
	"github.com/eventops/crewhub/internal/app/system/paging"
	"github.com/eventops/crewhub/internal/app/system/timeouts"
	"github.com/eventops/crewhub/internal/domain/models"
)

type shiftRequest struct {
	EventID   string       `json:"event_id"`
	StaffID   string       `json:"staff_id"`
	Role      string       `json:"role"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Wage      *models.Wage `json:"wage"`
}

func shiftID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := inputval.ObjectID("shift id", chi.URLParam(r, "id"))
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return primitive.NilObjectID, false
	}
	return id, true
}

// List returns shifts earliest first, filtered by ?event_id=,
// ?staff_id=, ?status=, ?from=, and ?to=. Staff always get their own
// shifts only, whatever the query says.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var f shiftstore.ListFilter
	if eid, ok, err := inputval.OptionalObjectID("event_id", q.Get("event_id")); err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	} else if ok {
		f.EventID = &eid
	}
	if sid, ok, err := inputval.OptionalObjectID("staff_id", q.Get("staff_id")); err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	} else if ok {
		f.StaffID = &sid
	}
	if authz.IsStaff(r) {
		own := authz.StaffProfileID(r)
		f.StaffID = &own
	}
	f.Status = normalize.QueryParam(q.Get("status"))
	if from := q.Get("from"); from != "" {
		ts, err := time.Parse(time.RFC3339, from)
		if err != nil {
			apiresp.BadRequest(w, "from must be RFC 3339")
			return
		}
		f.From = ts
	}
	if to := q.Get("to"); to != "" {
		ts, err := time.Parse(time.RFC3339, to)
		if err != nil {
			apiresp.BadRequest(w, "to must be RFC 3339")
			return
		}
		f.To = ts
	}

	limit, _ := strconv.Atoi(q.Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Shifts.List(ctx, f, int64(paging.Clamp(limit)))
	if err != nil {
		apiresp.Internal(w, h.Log, "list shifts", err)
		return
	}
	apiresp.OK(w, list)
}

// Get returns one shift. Staff may only read their own; the check-in
// code is theirs to see either way.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := shiftID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sh, err := h.Shifts.GetByID(ctx, id)
	if err != nil {
		apiresp.FromError(w, h.Log, "get shift", err, "shift not found")
		return
	}
	if authz.IsStaff(r) && sh.StaffID != authz.StaffProfileID(r) {
		apiresp.Forbidden(w)
		return
	}
	apiresp.OK(w, sh)
}

// Create schedules a shift. When no wage is given it is copied from the
// role's rate card; a missing rate card zeroes the wage rather than
// blocking the schedule.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req shiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}
	eventID, err := inputval.ObjectID("event_id", req.EventID)
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	staffID, err := inputval.ObjectID("staff_id", req.StaffID)
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	if err := inputval.TimeWindow(req.StartTime, req.EndTime, false); err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	role := normalize.Role(req.Role)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	conflicts, err := h.Detector.DetectConflicts(ctx, staffID, req.StartTime, req.EndTime, nil)
	if err != nil {
		apiresp.Internal(w, h.Log, "detect conflicts", err)
		return
	}
	if len(conflicts) > 0 {
		apiresp.Conflict(w, "staff member has an overlapping shift")
		return
	}

	var wage models.Wage
	if req.Wage != nil {
		wage = *req.Wage
	} else if role != "" {
		wage, err = h.Rates.WageForRole(ctx, role)
		if err != nil && !errors.Is(err, ratecards.ErrNoRateCard) {
			apiresp.Internal(w, h.Log, "wage lookup", err)
			return
		}
	}

	created, err := h.Shifts.Create(ctx, models.Shift{
		EventID:   eventID,
		StaffID:   staffID,
		Role:      role,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Wage:      wage,
	})
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	apiresp.Created(w, created)
}

// Cancel marks a scheduled or live shift cancelled.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := shiftID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Shifts.Cancel(ctx, id); err != nil {
		apiresp.FromError(w, h.Log, "cancel shift", err, "shift not found or already finished")
		return
	}
	apiresp.OKMessage(w, nil, "shift cancelled")
}
