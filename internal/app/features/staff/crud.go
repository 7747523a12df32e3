// internal/app/features/staff/crud.go
package staff

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	staffstore "github.com/eventops/crewhub/internal/app/store/staff"
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

type profileRequest struct {
	FullName string         `json:"full_name"`
	Role     string         `json:"role"`
	Skills   []models.Skill `json:"skills"`
	Rating   float64        `json:"rating"`
	City     string         `json:"city"`
	Phone    string         `json:"phone"`
}

type listResponse struct {
	Profiles   []models.StaffProfile `json:"profiles"`
	HasPrev    bool                  `json:"has_prev"`
	HasNext    bool                  `json:"has_next"`
	PrevCursor string                `json:"prev_cursor,omitempty"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

func profileID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := inputval.ObjectID("staff id", chi.URLParam(r, "id"))
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return primitive.NilObjectID, false
	}
	return id, true
}

// List returns staff profiles ordered by folded name, paged with
// before/after keyset cursors. ?role=, ?availability=, and ?q= narrow
// the result.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	before := normalize.QueryParam(q.Get("before"))
	after := normalize.QueryParam(q.Get("after"))

	filter := bson.M{}
	if role := normalize.Role(q.Get("role")); role != "" {
		filter["role"] = role
	}
	if avail := normalize.QueryParam(q.Get("availability")); avail != "" {
		filter["availability"] = avail
	}
	if search := normalize.QueryParam(q.Get("q")); search != "" {
		filter["full_name_ci"] = bson.M{"$regex": "^" + text.Fold(search)}
	}

	cfg := paging.ConfigureKeyset(before, after)
	if window := cfg.KeysetWindow("full_name_ci"); window != nil {
		filter["$or"] = window["$or"]
	}
	findOpts := options.Find()
	cfg.ApplyToFind(findOpts, "full_name_ci")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Staff.Find(ctx, filter, findOpts)
	if err != nil {
		apiresp.Internal(w, h.Log, "list staff", err)
		return
	}

	page := paging.TrimPage(&rows, before, after)
	if before != "" {
		paging.Reverse(rows)
	}
	prev, next := paging.BuildCursors(rows,
		func(p models.StaffProfile) string { return p.FullNameCI },
		func(p models.StaffProfile) primitive.ObjectID { return p.ID })

	apiresp.OK(w, listResponse{
		Profiles:   rows,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		PrevCursor: prev,
		NextCursor: next,
	})
}

// Get returns one profile. Staff may only read their own.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	if authz.IsStaff(r) && authz.StaffProfileID(r) != id {
		apiresp.Forbidden(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Staff.GetByID(ctx, id)
	if err != nil {
		apiresp.FromError(w, h.Log, "get staff profile", err, "staff profile not found")
		return
	}
	apiresp.OK(w, p)
}

// Create inserts a new staff profile.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Staff.Create(ctx, models.StaffProfile{
		FullName: req.FullName,
		Role:     req.Role,
		Skills:   req.Skills,
		Rating:   req.Rating,
		City:     req.City,
		Phone:    req.Phone,
	})
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	apiresp.Created(w, created)
}

// Update replaces the mutable profile fields. Ratings and the
// performance counters move through their own paths.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Staff.Update(ctx, id, models.StaffProfile{
		FullName: req.FullName,
		Role:     req.Role,
		Skills:   req.Skills,
		City:     req.City,
		Phone:    req.Phone,
	})
	if err != nil {
		apiresp.FromError(w, h.Log, "update staff profile", err, "staff profile not found")
		return
	}

	p, err := h.Staff.GetByID(ctx, id)
	if err != nil {
		apiresp.FromError(w, h.Log, "reload staff profile", err, "staff profile not found")
		return
	}
	apiresp.OK(w, p)
}

// Delete removes a profile unless scheduled or live shifts still
// reference it.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	switch err := h.Staff.Delete(ctx, id); {
	case err == nil:
		apiresp.OKMessage(w, nil, "staff profile deleted")
	case errors.Is(err, staffstore.ErrActiveShifts):
		apiresp.Conflict(w, "staff member has scheduled or live shifts")
	default:
		apiresp.FromError(w, h.Log, "delete staff profile", err, "staff profile not found")
	}
}

type availabilityRequest struct {
	Availability string `json:"availability"`
}

// SetAvailability updates the availability status. Staff may change
// their own; managers may change anyone's.
func (h *Handler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	gate := gates.RequireAuth(w, r)
	if !gate.OK {
		return
	}
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	if !authz.CanManageStaffing(r) && authz.StaffProfileID(r) != id {
		apiresp.Forbidden(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}
	if err := inputval.OneOf("availability", req.Availability,
		models.AvailabilityAvailable, models.AvailabilityBooked,
		models.AvailabilityLeave, models.AvailabilitySuspended); err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Staff.SetAvailability(ctx, id, req.Availability); err != nil {
		apiresp.FromError(w, h.Log, "set availability", err, "staff profile not found")
		return
	}
	apiresp.OKMessage(w, nil, "availability updated")
}

// VerifySkill marks one skill verified, adding it when the profile does
// not list it yet.
func (h *Handler) VerifySkill(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	name := normalize.Name(chi.URLParam(r, "name"))
	if name == "" {
		apiresp.BadRequest(w, "skill name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Staff.VerifySkill(ctx, id, name); err != nil {
		apiresp.FromError(w, h.Log, "verify skill", err, "staff profile not found")
		return
	}
	apiresp.OKMessage(w, nil, "skill verified")
}
