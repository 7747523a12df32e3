// internal/app/features/events/assignments.go
package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	eventstore "github.com/eventops/crewhub/internal/app/store/events"
	"github.com/eventops/crewhub/internal/app/system/apiresp"
	"github.com/eventops/crewhub/internal/app/system/gates"
	"github.com/eventops/crewhub/internal/app/system/inputval"
	"github.com/eventops/crewhub/internal/app/system/limits"
	"github.com/eventops/crewhub/internal/app/system/normalize"
	"github.com/eventops/crewhub/internal/app/system/timeouts"
	"github.com/eventops/crewhub/internal/domain/models"
)

type assignmentRequest struct {
	StaffID      string `json:"staff_id"`
	Role         string `json:"role"`
	Status       string `json:"status"` // pending (default) or approved
	PaymentTerms string `json:"payment_terms"`
}

type assignmentDecision struct {
	Role   string `json:"role"`
	Status string `json:"status"` // approved | rejected
}

// CreateAssignment adds a manual assignment to an event. The default
// status is pending; approved assignments consume role quota
// immediately.
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	gate := gates.RequireStaffingManager(w, r)
	if !gate.OK {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}
	staffID, err := inputval.ObjectID("staff_id", req.StaffID)
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	role := normalize.Role(req.Role)
	if role == "" {
		apiresp.BadRequest(w, "role is required")
		return
	}
	status := req.Status
	if status == "" {
		status = models.AssignmentPending
	}
	if err := inputval.OneOf("status", status, models.AssignmentPending, models.AssignmentApproved); err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	a := models.Assignment{
		StaffID:      staffID,
		Role:         role,
		Status:       status,
		PaymentTerms: req.PaymentTerms,
		AssignedAt:   time.Now().UTC(),
		AssignedBy:   gate.UserID.Hex(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if status == models.AssignmentApproved {
		err = h.Events.AppendApprovedAssignment(ctx, id, a)
	} else {
		err = h.Events.AppendPendingAssignment(ctx, id, a)
	}
	if err != nil {
		h.writeAssignmentError(w, err)
		return
	}
	apiresp.Created(w, a)
}

// DecideAssignment approves or rejects an existing assignment. Approval
// consumes the role quota; rejecting an approved assignment releases it.
func (h *Handler) DecideAssignment(w http.ResponseWriter, r *http.Request) {
	gate := gates.RequireStaffingManager(w, r)
	if !gate.OK {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	staffID, err := inputval.ObjectID("staff id", chi.URLParam(r, "staffID"))
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req assignmentDecision
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}
	role := normalize.Role(req.Role)
	if role == "" {
		apiresp.BadRequest(w, "role is required")
		return
	}
	if err := inputval.OneOf("status", req.Status, models.AssignmentApproved, models.AssignmentRejected); err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if req.Status == models.AssignmentApproved {
		err = h.Events.ApproveAssignment(ctx, id, staffID, role)
	} else {
		err = h.Events.RejectAssignment(ctx, id, staffID, role)
	}
	if err != nil {
		h.writeAssignmentError(w, err)
		return
	}

	h.Audit.AssignmentStatusChanged(ctx, r, gate.UserID, gate.Name, id, staffID, role, req.Status)
	apiresp.OKMessage(w, nil, "assignment "+req.Status)
}

// writeAssignmentError maps assignment store sentinels onto the right
// status codes.
func (h *Handler) writeAssignmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, eventstore.ErrQuotaFull):
		apiresp.Conflict(w, err.Error())
	case errors.Is(err, eventstore.ErrAlreadyAssigned):
		apiresp.Conflict(w, err.Error())
	case errors.Is(err, eventstore.ErrRoleNotRequired):
		apiresp.BadRequest(w, err.Error())
	default:
		apiresp.FromError(w, h.Log, "assignment write", err, "event or assignment not found")
	}
}
