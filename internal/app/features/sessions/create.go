// internal/app/features/sessions/create.go
package sessions

import (
	"net/http"
	"time"

	"github.com/havenlabs/haven/internal/app/lifecycle"
	"github.com/havenlabs/haven/internal/app/system/identity"
	"github.com/havenlabs/haven/internal/app/system/webjson"
	"github.com/havenlabs/haven/internal/domain/models"
)

// createRequest is the POST /api/sessions body.
type createRequest struct {
	Kind        string `json:"kind"`
	Topic       string `json:"topic"`
	Description string `json:"description"`

	HostAlias string `json:"hostAlias"`

	// ScheduledAt nil means the session opens immediately.
	ScheduledAt     *time.Time `json:"scheduledAt"`
	DurationMinutes int        `json:"durationMinutes"`

	MaxParticipants   int  `json:"maxParticipants"`
	AllowAnonymous    bool `json:"allowAnonymous"`
	ModerationEnabled bool `json:"moderationEnabled"`
}

// createResponse carries the new session and any one-time credentials.
type createResponse struct {
	Session sessionView `json:"session"`

	// HostToken is shown exactly once, only to anonymous hosts.
	HostToken string `json:"hostToken,omitempty"`

	MediaToken string `json:"mediaToken,omitempty"`
}

// HandleCreate handles POST /api/sessions.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.BadRequest(w, "invalid request body")
		return
	}
	u, _ := identity.Current(r)

	alias := req.HostAlias
	if alias == "" {
		alias = u.Alias
	}

	res, err := h.Manager.CreateSession(r.Context(), lifecycle.CreateSpec{
		Kind:              models.SessionKind(req.Kind),
		Topic:             req.Topic,
		Description:       req.Description,
		HostID:            u.ID,
		HostAlias:         alias,
		HostAnonymous:     u.Anonymous,
		ScheduledAt:       req.ScheduledAt,
		Duration:          time.Duration(req.DurationMinutes) * time.Minute,
		MaxParticipants:   req.MaxParticipants,
		AllowAnonymous:    req.AllowAnonymous,
		ModerationEnabled: req.ModerationEnabled,
	})
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}

	eff := h.Manager.EffectiveStatus(&res.Session)
	webjson.Write(w, http.StatusCreated, createResponse{
		Session:    viewSession(&res.Session, eff, true),
		HostToken:  res.HostToken,
		MediaToken: res.MediaToken,
	})
}
