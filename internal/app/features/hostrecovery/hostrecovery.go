// internal/app/features/hostrecovery/hostrecovery.go

// Package hostrecovery lets an anonymous host reclaim a session by
// presenting the recovery token minted at creation. The token is the
// only proof of hostship for hosts with no persistent identity, so the
// endpoint is rate limited against brute force.
package hostrecovery

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/havenlabs/haven/internal/app/lifecycle"
	"github.com/havenlabs/haven/internal/app/system/ratelimit"
	"github.com/havenlabs/haven/internal/app/system/webjson"
)

// Handler holds the dependencies for host recovery.
type Handler struct {
	Manager *lifecycle.Manager
	Log     *zap.Logger
}

// NewHandler constructs a hostrecovery Handler.
func NewHandler(mgr *lifecycle.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		Manager: mgr,
		Log:     logger,
	}
}

func Routes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(limiter.Middleware)
		pr.Post("/host", h.HandleRecover)
	})
	return r
}

// recoverRequest is the POST /api/recovery/host body.
type recoverRequest struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}

// HandleRecover validates the token against the stored hash and, on
// match, returns the session with the host's identity so the caller
// can resume control.
func (h *Handler) HandleRecover(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.BadRequest(w, "invalid request body")
		return
	}
	if req.SessionID == "" || req.Token == "" {
		webjson.BadRequest(w, "sessionId and token are required")
		return
	}

	s, err := h.Manager.RecoverHost(r.Context(), req.SessionID, req.Token)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, map[string]any{
		"sessionId": s.ID,
		"hostId":    s.HostID,
		"hostAlias": s.HostAlias,
		"status":    string(s.Status),
	})
}
