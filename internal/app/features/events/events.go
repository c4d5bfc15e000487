// internal/app/features/events/events.go

// Package events streams committed lifecycle transitions to websocket
// clients. Each connection subscribes to one session's feed on the
// notify hub; the stream is advisory and lossy for slow readers, never
// a source of truth.
package events

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/havenlabs/haven/internal/app/lifecycle"
	"github.com/havenlabs/haven/internal/app/system/notify"
	"github.com/havenlabs/haven/internal/app/system/webjson"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Handler holds the dependencies for the event stream.
type Handler struct {
	Manager *lifecycle.Manager
	Hub     *notify.Hub
	Log     *zap.Logger

	upgrader websocket.Upgrader
}

// NewHandler constructs an events Handler. allowedOrigin restricts
// websocket upgrades; empty allows same-origin only (the upgrader
// default).
func NewHandler(mgr *lifecycle.Manager, hub *notify.Hub, allowedOrigin string, logger *zap.Logger) *Handler {
	h := &Handler{
		Manager: mgr,
		Hub:     hub,
		Log:     logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if allowedOrigin != "" {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowedOrigin
		}
	}
	return h
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/sessions/{id}", h.ServeSessionStream)
	return r
}

// ServeSessionStream handles GET /ws/sessions/{id}: upgrade, then relay
// the session's events until the client goes away or the session's feed
// is no longer of interest.
func (h *Handler) ServeSessionStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Reject streams for sessions that do not exist before paying for
	// the upgrade.
	if _, err := h.Manager.GetSession(r.Context(), id); err != nil {
		webjson.Error(w, h.Log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.Log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	events, cancel := h.Hub.Subscribe(id)
	defer cancel()
	defer conn.Close()

	// Reader goroutine: we never expect client messages, but reading is
	// what surfaces close frames and pong responses.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
			if ev.Type == lifecycle.EventEnded {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(writeWait))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
