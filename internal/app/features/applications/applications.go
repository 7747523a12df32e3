// internal/app/features/applications/applications.go
package applications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appstore "github.com/eventops/crewhub/internal/app/store/applications"
	eventstore "github.com/eventops/crewhub/internal/app/store/events"
	"github.com/eventops/crewhub/internal/app/system/apiresp"
	"github.com/eventops/crewhub/internal/app/system/authz"
	"github.com/eventops/crewhub/internal/app/system/gates"
	"github.com/eventops/crewhub/internal/app/system/inputval"
	"github.com/eventops/crewhub/internal/app/system/limits"
	"github.com/eventops/crewhub/internal/app/system/normalize"
	"github.com/eventops/crewhub/internal/app/system/paging"
	"github.com/eventops/crewhub/internal/app/system/timeouts"
	"github.com/eventops/crewhub/internal/domain/models"
)

type applyRequest struct {
	EventID string `json:"event_id"`
	Role    string `json:"role"`
	Note    string `json:"note"`
}

// Create files an application for one role on an event. Staff only; the
// applicant comes from the session, never the payload.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if gate := gates.RequireAnyRole(w, r, "staff"); !gate.OK {
		return
	}
	staffID := authz.StaffProfileID(r)
	if staffID.IsZero() {
		apiresp.BadRequest(w, "account has no staff profile")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}
	eventID, err := inputval.ObjectID("event_id", req.EventID)
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	role := normalize.Role(req.Role)
	if role == "" {
		apiresp.BadRequest(w, "role is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	e, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		apiresp.FromError(w, h.Log, "load event for application", err, "event not found")
		return
	}
	if _, wanted := e.RequiredRoles[role]; !wanted {
		apiresp.BadRequest(w, "event does not require this role")
		return
	}
	if e.Status == models.EventCancelled || e.Status == models.EventCompleted {
		apiresp.Conflict(w, "event is no longer accepting applications")
		return
	}

	created, err := h.Applications.Create(ctx, models.Application{
		EventID: eventID,
		StaffID: staffID,
		Role:    role,
		Note:    req.Note,
	})
	if err != nil {
		if errors.Is(err, appstore.ErrDuplicateApplication) {
			apiresp.Conflict(w, err.Error())
			return
		}
		apiresp.Internal(w, h.Log, "create application", err)
		return
	}
	apiresp.Created(w, created)
}

// List returns applications. Staff get their own; managers filter with
// ?event_id=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if authz.IsStaff(r) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		list, err := h.Applications.ListForStaff(ctx, authz.StaffProfileID(r), int64(paging.Clamp(limit)))
		if err != nil {
			apiresp.Internal(w, h.Log, "list own applications", err)
			return
		}
		apiresp.OK(w, list)
		return
	}

	if gate := gates.RequireStaffingManager(w, r); !gate.OK {
		return
	}
	eventID, err := inputval.ObjectID("event_id", r.URL.Query().Get("event_id"))
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	list, err := h.Applications.ListForEvent(ctx, eventID)
	if err != nil {
		apiresp.Internal(w, h.Log, "list event applications", err)
		return
	}
	apiresp.OK(w, list)
}

type decideRequest struct {
	Status string `json:"status"` // accepted | declined
}

// Decide accepts or declines a pending application. Acceptance books
// the applicant onto the event first; a full quota blocks the decision
// so the application stays actionable.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	gate := gates.RequireStaffingManager(w, r)
	if !gate.OK {
		return
	}
	id, err := inputval.ObjectID("application id", chi.URLParam(r, "id"))
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}
	if err := inputval.OneOf("status", req.Status, models.ApplicationAccepted, models.ApplicationDeclined); err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	a, err := h.Applications.GetByID(ctx, id)
	if err != nil {
		apiresp.FromError(w, h.Log, "load application", err, "application not found")
		return
	}
	if a.Status != models.ApplicationPending {
		apiresp.Conflict(w, appstore.ErrAlreadyDecided.Error())
		return
	}

	if req.Status == models.ApplicationAccepted {
		err = h.Events.AppendApprovedAssignment(ctx, a.EventID, models.Assignment{
			StaffID:    a.StaffID,
			Role:       a.Role,
			Status:     models.AssignmentApproved,
			AssignedAt: time.Now().UTC(),
			AssignedBy: gate.UserID.Hex(),
		})
		switch {
		case err == nil:
		case errors.Is(err, eventstore.ErrQuotaFull), errors.Is(err, eventstore.ErrAlreadyAssigned):
			apiresp.Conflict(w, err.Error())
			return
		case errors.Is(err, eventstore.ErrRoleNotRequired):
			apiresp.BadRequest(w, err.Error())
			return
		default:
			apiresp.FromError(w, h.Log, "book accepted applicant", err, "event not found")
			return
		}
	}

	decided, err := h.Applications.Decide(ctx, id, req.Status, gate.UserID, gate.Name)
	if err != nil {
		if errors.Is(err, appstore.ErrAlreadyDecided) {
			apiresp.Conflict(w, err.Error())
			return
		}
		apiresp.FromError(w, h.Log, "decide application", err, "application not found")
		return
	}

	h.Audit.ApplicationDecided(ctx, r, gate.UserID, gate.Name, decided.EventID, decided.ID, decided.Status)
	h.notifyApplicant(ctx, decided)
	apiresp.OK(w, decided)
}

// notifyApplicant sends the decision to the applicant's feed. Failures
// are logged; the decision already stands.
func (h *Handler) notifyApplicant(ctx context.Context, a *models.Application) {
	if h.Bus == nil {
		return
	}
	title := ""
	if e, err := h.Events.GetByID(ctx, a.EventID); err == nil {
		title = e.Title
	}
	recipient := a.StaffID
	if p, err := h.Staff.GetByID(ctx, a.StaffID); err == nil && p.UserID != nil {
		recipient = *p.UserID
	}
	if err := h.Bus.ApplicationDecision(ctx, recipient, *a, title); err != nil {
		h.Log.Warn("application decision notification", zap.String("application_id", a.ID.Hex()), zap.Error(err))
	}
}
