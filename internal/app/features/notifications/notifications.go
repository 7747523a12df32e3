// internal/app/features/notifications/notifications.go
package notifications

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eventops/crewhub/internal/app/system/apiresp"
	"github.com/eventops/crewhub/internal/app/system/authz"
	"github.com/eventops/crewhub/internal/app/system/inputval"
	"github.com/eventops/crewhub/internal/app/system/paging"
	"github.com/eventops/crewhub/internal/app/system/timeouts"
)

// recipient resolves the signed-in user's ObjectID. Every endpoint in
// this feature is scoped to it; there is no cross-user read path.
func recipient(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Unauthorized(w)
		return primitive.NilObjectID, false
	}
	return userID, true
}

// List returns the user's notification feed, newest first. ?unread=true
// narrows to unread.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := recipient(w, r)
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Notifications.ListForRecipient(ctx, userID, unreadOnly, int64(paging.Clamp(limit)))
	if err != nil {
		apiresp.Internal(w, h.Log, "list notifications", err)
		return
	}
	apiresp.OK(w, list)
}

// UnreadCount returns how many notifications await the user.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := recipient(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notifications.UnreadCount(ctx, userID)
	if err != nil {
		apiresp.Internal(w, h.Log, "count unread notifications", err)
		return
	}
	apiresp.OK(w, map[string]int64{"unread": n})
}

// MarkRead flags one of the user's notifications read. The recipient
// scope in the store query means another user's notification reads as
// not found rather than forbidden.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := recipient(w, r)
	if !ok {
		return
	}
	id, err := inputval.ObjectID("notification id", chi.URLParam(r, "id"))
	if err != nil {
		apiresp.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apiresp.NotFound(w, "notification not found")
			return
		}
		apiresp.Internal(w, h.Log, "mark notification read", err)
		return
	}
	apiresp.OKMessage(w, nil, "marked read")
}

// MarkAllRead flags the user's whole feed read.
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := recipient(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Notifications.MarkAllRead(ctx, userID)
	if err != nil {
		apiresp.Internal(w, h.Log, "mark all notifications read", err)
		return
	}
	apiresp.OK(w, map[string]int64{"marked": n})
}
