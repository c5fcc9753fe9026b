// internal/app/features/notifications/stream.go
package notifications

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/campusvoice/internal/app/system/apperr"
	"github.com/dalemusser/campusvoice/internal/app/system/auth"
	"github.com/dalemusser/campusvoice/internal/app/system/timeouts"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// originChecker matches websocket origins against the allowed list. Only a
// "*" entry opens the stream to every origin; an empty list leaves
// same-origin upgrades as the only ones accepted.
func originChecker(allowed []string) func(string) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/")
		if o == "*" {
			return nil
		}
		if o != "" {
			set[o] = true
		}
	}
	return func(origin string) bool {
		return set[strings.TrimRight(strings.ToLower(origin), "/")]
	}
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || h.allowOrigin == nil {
				return true
			}
			if h.allowOrigin(origin) {
				return true
			}
			// same-origin requests are always fine
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, r.Host)
		},
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/notifications/stream (WebSocket)                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeStream pushes each new notification for the signed-in user as a JSON
// text frame. The client sends nothing; inbound frames are discarded.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		apperr.Write(w, r, h.Log, apperr.Unauthorized("Authentication required"))
		return
	}
	if !h.Broker.Enabled() {
		apperr.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"message": "Live notifications are not available",
		})
		return
	}

	subCtx, cancelSub := context.WithTimeout(r.Context(), timeouts.Short())
	sub, err := h.Broker.Subscribe(subCtx, u.ID)
	cancelSub()
	if err != nil {
		h.Log.Error("notification subscribe failed", zap.Error(err), zap.String("user_id", u.ID))
		apperr.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"message": "Live notifications are not available",
		})
		return
	}
	defer sub.Close()

	up := h.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.Log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, sub.Messages(), done, u.ID)
}

// readPump keeps the read deadline fresh on pongs and closes done when the
// client goes away.
func (h *Handler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Log.Debug("notification stream read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *Handler) writePump(conn *websocket.Conn, msgs <-chan *redis.Message, done <-chan struct{}, userID string) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-msgs:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				h.Log.Debug("notification stream write failed", zap.Error(err), zap.String("user_id", userID))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
