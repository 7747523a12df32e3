// internal/app/features/events/crud.go
package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	eventstore "github.com/eventops/crewhub/internal/app/store/events"
	"github.com/eventops/crewhub/internal/app/system/apiresp"
	"github.com/eventops/crewhub/internal/app/system/authz"
	"github.com/eventops/crewhub/internal/app/system/gates"
	"github.com/eventops/crewhub/internal/app/system/htmlsanitize"
	"github.com/eventops/crewhub/internal/app/system/inputval"
	"github.com/eventops/crewhub/internal/app/system/limits"
	"github.com/eventops/crewhub/internal/app/system/normalize"
	"github.com/eventops/crewhub/internal/app/system/paging"
	"github.com/eventops/crewhub/internal/app/system/timeouts"
	"github.com/eventops/crewhub/internal/domain/models"
)

type eventRequest struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Location      string         `json:"location"`
	ClientID      string         `json:"client_id"`
	StartAt       time.Time      `json:"start_at"`
	EndAt         time.Time      `json:"end_at"`
	Status        string         `json:"status"`
	RequiredRoles map[string]int `json:"required_roles"`
	Budget        models.Budget  `json:"budget"`
}

// decodeEventRequest reads, sanitizes, and validates an event payload.
func decodeEventRequest(w http.ResponseWriter, r *http.Request) (*eventRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return nil, false
	}
	req.Title = normalize.Name(req.Title)
	req.Description = htmlsanitize.Plain(req.Description)
	req.Location = htmlsanitize.Plain(req.Location)

	if req.Title == "" {
		apiresp.BadRequest(w, "title is required")
		return nil, false
	}
	if err := inputval.TimeWindow(req.StartAt, req.EndAt, false); err != nil {
		apiresp.BadRequest(w, err.Error())
		return nil, false
	}
	if err := inputval.RequiredRoles(req.RequiredRoles); err != nil {
		apiresp.BadRequest(w, err.Error())
		return nil, false
	}
	if req.Status != "" {
		if err := inputval.OneOf("status", req.Status,
			models.EventDraft, models.EventPublished, models.EventStaffed,
			models.EventLive, models.EventCompleted, models.EventCancelled); err != nil {
			apiresp.BadRequest(w, err.Error())
			return nil, false
		}
	}
	return &req, true
}

// eventID parses the {id} URL parameter.
func eventID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := inputval.ObjectID("event id", chi.URLParam(r, "id"))
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return primitive.NilObjectID, false
	}
	return id, true
}

// List returns events newest first. Clients only see their own events;
// everyone else sees all, optionally filtered by ?status=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	limit := int64(pageLimit(r))

	var (
		list []models.Event
		err  error
	)
	if authz.IsClient(r) {
		_, _, uid, _ := authz.UserCtx(r)
		list, err = h.Events.ListByClient(ctx, uid, limit)
	} else {
		status := normalize.QueryParam(r.URL.Query().Get("status"))
		list, err = h.Events.List(ctx, status, limit)
	}
	if err != nil {
		apiresp.Internal(w, h.Log, "list events", err)
		return
	}
	apiresp.OK(w, list)
}

// Get returns one event with its embedded assignments.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		apiresp.FromError(w, h.Log, "get event", err, "event not found")
		return
	}
	if authz.IsClient(r) && !clientOwns(r, e) {
		apiresp.Forbidden(w)
		return
	}
	apiresp.OK(w, e)
}

// Create inserts a new event. Clients creating events become the
// event's client; the client_id field is ignored for them.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if gate := gates.RequireAnyRole(w, r, "admin", "supervisor", "client"); !gate.OK {
		return
	}
	req, ok := decodeEventRequest(w, r)
	if !ok {
		return
	}

	e := models.Event{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		Status:        req.Status,
		RequiredRoles: req.RequiredRoles,
		Budget:        req.Budget,
	}

	if authz.IsClient(r) {
		_, _, uid, _ := authz.UserCtx(r)
		e.ClientID = &uid
		e.Status = models.EventDraft
	} else if req.ClientID != "" {
		cid, ok, err := inputval.OptionalObjectID("client_id", req.ClientID)
		if err != nil {
			apiresp.BadRequest(w, err.Error())
			return
		}
		if ok {
			e.ClientID = &cid
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Events.Create(ctx, e)
	if err != nil {
		apiresp.Internal(w, h.Log, "create event", err)
		return
	}
	apiresp.Created(w, created)
}

// Update replaces the editable fields of an event.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	req, ok := decodeEventRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Events.Update(ctx, id, models.Event{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		Status:        req.Status,
		RequiredRoles: req.RequiredRoles,
		Budget:        req.Budget,
	})
	if err != nil {
		apiresp.FromError(w, h.Log, "update event", err, "event not found")
		return
	}

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		apiresp.FromError(w, h.Log, "reload event", err, "event not found")
		return
	}
	apiresp.OK(w, e)
}

// Delete removes an event. Events with scheduled or live shifts cannot
// be deleted; cancel them instead.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	switch err := h.Events.Delete(ctx, id); {
	case err == nil:
		apiresp.OKMessage(w, nil, "event deleted")
	case errors.Is(err, eventstore.ErrActiveShifts):
		apiresp.Conflict(w, "event has scheduled or live shifts; cancel it instead")
	default:
		apiresp.FromError(w, h.Log, "delete event", err, "event not found")
	}
}

// Cancel marks the event cancelled and cancels its scheduled shifts.
// Live and completed shifts keep their worked hours.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	gate := gates.RequireStaffingManager(w, r)
	if !gate.OK {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Events.Cancel(ctx, id); err != nil {
		apiresp.FromError(w, h.Log, "cancel event", err, "event not found")
		return
	}
	cancelled, err := h.Shifts.CancelForEvent(ctx, id)
	if err != nil {
		apiresp.Internal(w, h.Log, "cancel event shifts", err)
		return
	}

	h.Audit.EventCancelled(ctx, r, gate.UserID, gate.Name, id, cancelled)
	apiresp.OKMessage(w, map[string]any{"shifts_cancelled": cancelled}, "event cancelled")
}

func clientOwns(r *http.Request, e *models.Event) bool {
	_, _, uid, ok := authz.UserCtx(r)
	return ok && e.ClientID != nil && *e.ClientID == uid
}

// pageLimit reads ?limit= and clamps it to the allowed page sizes.
func pageLimit(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return paging.Clamp(n)
}
