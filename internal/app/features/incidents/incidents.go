// internal/app/features/incidents/incidents.go
package incidents

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	incidentstore "github.com/eventops/crewhub/internal/app/store/incidents"
	"github.com/eventops/crewhub/internal/app/system/apiresp"
	"github.com/eventops/crewhub/internal/app/system/authz"
	"github.com/eventops/crewhub/internal/app/system/gates"
	"github.com/eventops/crewhub/internal/app/system/inputval"
	"github.com/eventops/crewhub/internal/app/system/limits"
	"github.com/eventops/crewhub/internal/app/system/paging"
	"github.com/eventops/crewhub/internal/app/system/timeouts"
	"github.com/eventops/crewhub/internal/domain/models"
)

type incidentRequest struct {
	EventID   string `json:"event_id"`
	ShiftID   string `json:"shift_id"`
	Severity  string `json:"severity"`
	Narrative string `json:"narrative"`
}

// Create files an incident report against an event. The reporter comes
// from the session. Incident narratives get the larger body cap since
// reports from the field run long.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	gate := gates.RequireAnyRole(w, r, "staff", "supervisor", "admin")
	if !gate.OK {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxIncidentBodySize)
	var req incidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}
	eventID, err := inputval.ObjectID("event_id", req.EventID)
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	shiftID, hasShift, err := inputval.OptionalObjectID("shift_id", req.ShiftID)
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Events.GetByID(ctx, eventID); err != nil {
		apiresp.FromError(w, h.Log, "load event for incident", err, "event not found")
		return
	}

	in := models.Incident{
		EventID:        eventID,
		ReportedByID:   gate.UserID,
		ReportedByName: gate.Name,
		Severity:       req.Severity,
		Narrative:      req.Narrative,
	}
	if hasShift {
		in.ShiftID = &shiftID
	}

	created, err := h.Incidents.Create(ctx, in)
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	apiresp.Created(w, created)
}

// List returns incidents: ?event_id= scopes to one event, otherwise the
// open triage queue. Managers only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if gate := gates.RequireStaffingManager(w, r); !gate.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if raw := r.URL.Query().Get("event_id"); raw != "" {
		eventID, err := inputval.ObjectID("event_id", raw)
		if err != nil {
			apiresp.BadRequest(w, err.Error())
			return
		}
		list, err := h.Incidents.ListForEvent(ctx, eventID)
		if err != nil {
			apiresp.Internal(w, h.Log, "list event incidents", err)
			return
		}
		apiresp.OK(w, list)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.Incidents.ListOpen(ctx, int64(paging.Clamp(limit)))
	if err != nil {
		apiresp.Internal(w, h.Log, "list open incidents", err)
		return
	}
	apiresp.OK(w, list)
}

// Get returns one incident. Staff see only reports they filed.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectID("incident id", chi.URLParam(r, "id"))
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	in, err := h.Incidents.GetByID(ctx, id)
	if err != nil {
		apiresp.FromError(w, h.Log, "load incident", err, "incident not found")
		return
	}
	if authz.IsStaff(r) {
		_, _, userID, _ := authz.UserCtx(r)
		if in.ReportedByID != userID {
			apiresp.Forbidden(w)
			return
		}
	}
	apiresp.OK(w, in)
}

type resolveRequest struct {
	Note string `json:"note"`
}

// Resolve closes an open incident with a resolution note. Managers only.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	gate := gates.RequireStaffingManager(w, r)
	if !gate.OK {
		return
	}
	id, err := inputval.ObjectID("incident id", chi.URLParam(r, "id"))
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	resolved, err := h.Incidents.Resolve(ctx, id, gate.UserID, req.Note)
	if err != nil {
		if errors.Is(err, incidentstore.ErrAlreadyResolved) {
			apiresp.Conflict(w, err.Error())
			return
		}
		apiresp.FromError(w, h.Log, "resolve incident", err, "incident not found")
		return
	}
	apiresp.OK(w, resolved)
}
