// internal/app/features/payroll/entries.go
package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eventops/crewhub/internal/app/system/apiresp"
	"github.com/eventops/crewhub/internal/app/system/authz"
	"github.com/eventops/crewhub/internal/app/system/gates"
	"github.com/eventops/crewhub/internal/app/system/inputval"
	"github.com/eventops/crewhub/internal/app/system/limits"
	"github.com/eventops/crewhub/internal/app/system/paging"
	"github.com/eventops/crewhub/internal/app/system/timeouts"
	"github.com/eventops/crewhub/internal/domain/models"
)

// parsePeriod validates an optional YYYY-MM query value.
func parsePeriod(raw string, required bool) (string, error) {
	if raw == "" {
		if required {
			return "", errors.New("period is required (YYYY-MM)")
		}
		return "", nil
	}
	if _, err := time.Parse("2006-01", raw); err != nil {
		return "", errors.New("period must be YYYY-MM")
	}
	return raw, nil
}

// ListEntries returns payroll entries. Staff get their own, optionally
// narrowed with ?period=; managers must name a period.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	pageSize := int64(paging.Clamp(limit))

	if authz.IsStaff(r) {
		staffID := authz.StaffProfileID(r)
		if staffID.IsZero() {
			apiresp.BadRequest(w, "account has no staff profile")
			return
		}
		period, err := parsePeriod(r.URL.Query().Get("period"), false)
		if err != nil {
			apiresp.BadRequest(w, err.Error())
			return
		}
		list, err := h.Payroll.ListForStaff(ctx, staffID, period, pageSize)
		if err != nil {
			apiresp.Internal(w, h.Log, "list own payroll entries", err)
			return
		}
		apiresp.OK(w, list)
		return
	}

	if gate := gates.RequireStaffingManager(w, r); !gate.OK {
		return
	}
	period, err := parsePeriod(r.URL.Query().Get("period"), true)
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	list, err := h.Payroll.ListForPeriod(ctx, period, pageSize)
	if err != nil {
		apiresp.Internal(w, h.Log, "list period payroll entries", err)
		return
	}
	apiresp.OK(w, list)
}

type statusRequest struct {
	Status string `json:"status"` // approved | paid
}

// statusPrecursor maps a target status to the only status it may
// advance from. Entries move pending -> approved -> paid, one step at a
// time.
func statusPrecursor(to string) (string, bool) {
	switch to {
	case models.PayrollApproved:
		return models.PayrollPending, true
	case models.PayrollPaid:
		return models.PayrollApproved, true
	}
	return "", false
}

// SetEntryStatus advances one entry along the approval chain. Managers
// only.
func (h *Handler) SetEntryStatus(w http.ResponseWriter, r *http.Request) {
	gate := gates.RequireStaffingManager(w, r)
	if !gate.OK {
		return
	}
	id, err := inputval.ObjectID("entry id", chi.URLParam(r, "id"))
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return
	}
	from, ok := statusPrecursor(req.Status)
	if !ok {
		apiresp.BadRequest(w, "status must be approved or paid")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Payroll.SetStatus(ctx, id, from, req.Status); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either the entry does not exist or it is not in the
			// required precursor status.
			apiresp.Conflict(w, "entry not found in status "+from)
			return
		}
		apiresp.Internal(w, h.Log, "set payroll entry status", err)
		return
	}

	h.Audit.PayrollStatusChanged(ctx, r, gate.UserID, gate.Name, id, from, req.Status)
	apiresp.OKMessage(w, nil, "entry "+req.Status)
}

// Summary returns the total amount for a period, optionally for one
// staff member with ?staff_id=. Managers only.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if gate := gates.RequireStaffingManager(w, r); !gate.OK {
		return
	}
	period, err := parsePeriod(r.URL.Query().Get("period"), true)
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	staffID, hasStaff, err := inputval.OptionalObjectID("staff_id", r.URL.Query().Get("staff_id"))
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var scope *primitive.ObjectID
	if hasStaff {
		scope = &staffID
	}
	total, err := h.Payroll.PeriodTotal(ctx, period, scope)
	if err != nil {
		apiresp.Internal(w, h.Log, "payroll period total", err)
		return
	}
	apiresp.OK(w, map[string]any{"period": period, "total": total})
}
