// internal/app/features/payroll/ratecards.go
package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	ratestore "github.com/eventops/crewhub/internal/app/store/ratecards"
	"github.com/eventops/crewhub/internal/app/system/apiresp"
	"github.com/eventops/crewhub/internal/app/system/inputval"
	"github.com/eventops/crewhub/internal/app/system/limits"
	"github.com/eventops/crewhub/internal/app/system/timeouts"
	"github.com/eventops/crewhub/internal/domain/models"
)

type rateCardRequest struct {
	Role     string  `json:"role"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Per      string  `json:"per"` // hour | shift
}

func decodeRateCard(w http.ResponseWriter, r *http.Request) (models.RateCard, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req rateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.BadRequest(w, "invalid JSON body")
		return models.RateCard{}, false
	}
	if req.Amount <= 0 {
		apiresp.BadRequest(w, "amount must be positive")
		return models.RateCard{}, false
	}
	if err := inputval.OneOf("per", req.Per, models.WagePerHour, models.WagePerShift); err != nil {
		apiresp.BadRequest(w, err.Error())
		return models.RateCard{}, false
	}
	return models.RateCard{
		Role:     req.Role,
		Amount:   req.Amount,
		Currency: req.Currency,
		Per:      req.Per,
	}, true
}

// ListRateCards returns the wage table.
func (h *Handler) ListRateCards(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Rates.List(ctx)
	if err != nil {
		apiresp.Internal(w, h.Log, "list rate cards", err)
		return
	}
	apiresp.OK(w, list)
}

// CreateRateCard adds a wage table entry. One card per role.
func (h *Handler) CreateRateCard(w http.ResponseWriter, r *http.Request) {
	rc, ok := decodeRateCard(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Rates.Create(ctx, rc)
	if err != nil {
		if errors.Is(err, ratestore.ErrDuplicateRole) {
			apiresp.Conflict(w, err.Error())
			return
		}
		apiresp.BadRequest(w, err.Error())
		return
	}
	apiresp.Created(w, created)
}

// UpdateRateCard replaces a wage table entry.
func (h *Handler) UpdateRateCard(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectID("rate card id", chi.URLParam(r, "id"))
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}
	rc, ok := decodeRateCard(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Rates.Update(ctx, id, rc); err != nil {
		if errors.Is(err, ratestore.ErrDuplicateRole) {
			apiresp.Conflict(w, err.Error())
			return
		}
		apiresp.FromError(w, h.Log, "update rate card", err, "rate card not found")
		return
	}
	apiresp.OKMessage(w, nil, "rate card updated")
}

// DeleteRateCard removes a wage table entry. Existing shifts keep the
// wage they copied at creation time.
func (h *Handler) DeleteRateCard(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectID("rate card id", chi.URLParam(r, "id"))
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Rates.Delete(ctx, id); err != nil {
		apiresp.FromError(w, h.Log, "delete rate card", err, "rate card not found")
		return
	}
	apiresp.OKMessage(w, nil, "rate card deleted")
}
