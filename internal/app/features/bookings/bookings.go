// internal/app/features/bookings/bookings.go
package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	bookingstore "github.com/eventops/crewhub/internal/app/store/bookings"
	"github.com/eventops/crewhub/internal/app/system/apiresp"
	"github.com/eventops/crewhub/internal/app/system/authz"
	"github.com/eventops/crewhub/internal/app/system/gates"
	"github.com/eventops/crewhub/internal/app/system/inputval"
	"github.com/eventops/crewhub/internal/app/system/limits"
	"github.com/eventops/crewhub/internal/app/system/paging"
	"github.com/eventops/crewhub/internal/app/system/timeouts"
	"github.com/eventops/crewhub/internal/domain/models"
)

type bookingRequest struct {
	Title          string         `json:"title"`
	Location       string         `json:"location"`
	Notes          string         `json:"notes"`
	StartAt        time.Time      `json:"start_at"`
	EndAt          time.Time      `json:"end_at"`
	RolesRequested map[string]int `json:"roles_requested"`
}

// Create files a booking request. Clients only; the client comes from
// the session, never the payload.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	gate := gates.RequireAnyRole(w, r, "client")
	if !gate.OK {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}
	if err := inputval.TimeWindow(req.StartAt, req.EndAt, false); err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	if err := inputval.RequiredRoles(req.RolesRequested); err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	if len(req.RolesRequested) == 0 {
		apiresp.BadRequest(w, "at least one role must be requested")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Bookings.Create(ctx, models.Booking{
		ClientID:       gate.UserID,
		Title:          req.Title,
		Location:       req.Location,
		Notes:          req.Notes,
		StartAt:        req.StartAt.UTC(),
		EndAt:          req.EndAt.UTC(),
		RolesRequested: req.RolesRequested,
	})
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	apiresp.Created(w, created)
}

// List returns bookings. Clients get their own, newest first; the
// staffing desk gets a queue filtered with ?status= (default requested),
// oldest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	pageSize := int64(paging.Clamp(limit))

	if authz.IsClient(r) {
		_, _, userID, ok := authz.UserCtx(r)
		if !ok {
			apiresp.Unauthorized(w)
			return
		}
		list, err := h.Bookings.ListForClient(ctx, userID, pageSize)
		if err != nil {
			apiresp.Internal(w, h.Log, "list client bookings", err)
			return
		}
		apiresp.OK(w, list)
		return
	}

	if gate := gates.RequireStaffingManager(w, r); !gate.OK {
		return
	}
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.BookingRequested
	}
	if err := inputval.OneOf("status", status, models.BookingRequested, models.BookingConfirmed, models.BookingDeclined); err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	list, err := h.Bookings.ListByStatus(ctx, status, pageSize)
	if err != nil {
		apiresp.Internal(w, h.Log, "list bookings by status", err)
		return
	}
	apiresp.OK(w, list)
}

// Get returns one booking. Clients see only their own.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectID("booking id", chi.URLParam(r, "id"))
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		apiresp.FromError(w, h.Log, "load booking", err, "booking not found")
		return
	}
	if authz.IsClient(r) {
		_, _, userID, _ := authz.UserCtx(r)
		if b.ClientID != userID {
			apiresp.Forbidden(w)
			return
		}
	}
	apiresp.OK(w, b)
}

type bookingDecision struct {
	Status string `json:"status"` // confirmed | declined
}

// Decide confirms or declines a requested booking. Confirmation
// materializes an event carrying the booking's window and role
// headcounts before the booking flips, so a failed event write leaves
// the booking actionable.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	gate := gates.RequireStaffingManager(w, r)
	if !gate.OK {
		return
	}
	id, err := inputval.ObjectID("booking id", chi.URLParam(r, "id"))
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req bookingDecision
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}
	if err := inputval.OneOf("status", req.Status, models.BookingConfirmed, models.BookingDeclined); err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		apiresp.FromError(w, h.Log, "load booking", err, "booking not found")
		return
	}
	if b.Status != models.BookingRequested {
		apiresp.Conflict(w, bookingstore.ErrAlreadyDecided.Error())
		return
	}

	var decided *models.Booking
	if req.Status == models.BookingConfirmed {
		e, err := h.Events.Create(ctx, models.Event{
			Title:         b.Title,
			Location:      b.Location,
			Description:   b.Notes,
			ClientID:      &b.ClientID,
			StartAt:       b.StartAt,
			EndAt:         b.EndAt,
			RequiredRoles: b.RolesRequested,
			Status:        models.EventPublished,
		})
		if err != nil {
			apiresp.Internal(w, h.Log, "materialize event from booking", err)
			return
		}
		decided, err = h.Bookings.Confirm(ctx, id, e.ID, gate.UserID, gate.Name)
		if err != nil {
			// The event exists but the booking did not flip. Leave
			// the event for the desk to reconcile rather than
			// deleting work a retry would redo.
			h.Log.Error("confirm booking after event creation",
				zap.String("booking_id", id.Hex()),
				zap.String("event_id", e.ID.Hex()),
				zap.Error(err))
			if errors.Is(err, bookingstore.ErrAlreadyDecided) {
				apiresp.Conflict(w, err.Error())
				return
			}
			apiresp.Internal(w, h.Log, "confirm booking", err)
			return
		}
	} else {
		decided, err = h.Bookings.Decline(ctx, id, gate.UserID, gate.Name)
		if err != nil {
			if errors.Is(err, bookingstore.ErrAlreadyDecided) {
				apiresp.Conflict(w, err.Error())
				return
			}
			apiresp.FromError(w, h.Log, "decline booking", err, "booking not found")
			return
		}
	}

	h.Audit.BookingDecided(ctx, r, gate.UserID, gate.Name, decided.ID, decided.Status)
	if h.Bus != nil {
		if err := h.Bus.BookingDecision(ctx, *decided); err != nil {
			h.Log.Warn("booking decision notification", zap.String("booking_id", decided.ID.Hex()), zap.Error(err))
		}
	}
	apiresp.OK(w, decided)
}
