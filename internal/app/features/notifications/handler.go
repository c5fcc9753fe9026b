// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/campusvoice/internal/app/notify"
	"github.com/dalemusser/campusvoice/internal/app/system/apperr"
	"github.com/dalemusser/campusvoice/internal/app/system/auth"
	"github.com/dalemusser/campusvoice/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// UnreadCountHeader carries the caller's unread total on the list response.
const UnreadCountHeader = "X-Unread-Count"

type Handler struct {
	Emitter *notify.Emitter
	Broker  *notify.Broker
	Log     *zap.Logger

	// allowOrigin decides cross-origin websocket upgrades; nil allows all.
	allowOrigin func(origin string) bool
}

// NewHandler builds the notifications handler. broker may be nil or disabled,
// in which case the stream endpoint answers 503. allowedOrigins lists the
// browser origins that may open the stream; "*" admits any, and an empty
// list admits same-origin pages only.
func NewHandler(emitter *notify.Emitter, broker *notify.Broker, allowedOrigins []string, logger *zap.Logger) *Handler {
	return &Handler{
		Emitter:     emitter,
		Broker:      broker,
		Log:         logger,
		allowOrigin: originChecker(allowedOrigins),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/notifications                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		apperr.Write(w, r, h.Log, apperr.Unauthorized("Authentication required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	items, err := h.Emitter.ListForUser(ctx, u.ID)
	if err != nil {
		apperr.Write(w, r, h.Log, err)
		return
	}
	unread, err := h.Emitter.UnreadCount(ctx, u.ID)
	if err != nil {
		apperr.Write(w, r, h.Log, err)
		return
	}
	w.Header().Set(UnreadCountHeader, strconv.FormatInt(unread, 10))
	apperr.WriteJSON(w, http.StatusOK, items)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PATCH /api/notifications/read                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		apperr.Write(w, r, h.Log, apperr.Unauthorized("Authentication required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Emitter.MarkAllRead(ctx, u.ID)
	if err != nil {
		apperr.Write(w, r, h.Log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "All notifications marked as read",
		"updated": n,
	})
}
