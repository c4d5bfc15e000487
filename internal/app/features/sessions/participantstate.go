// internal/app/features/sessions/participantstate.go
package sessions

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/havenlabs/haven/internal/app/system/identity"
	"github.com/havenlabs/haven/internal/app/system/webjson"
)

// stateRequest is the PATCH body for participant state. Absent fields
// leave the corresponding state untouched.
type stateRequest struct {
	Muted      *bool `json:"muted"`
	HandRaised *bool `json:"handRaised"`
}

// HandleParticipantState handles
// PATCH /api/sessions/{id}/participants/{participantID}/state.
// Participants manage their own state; the host or a moderator may also
// mute or unmute others.
func (h *Handler) HandleParticipantState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	targetID := chi.URLParam(r, "participantID")

	var req stateRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.BadRequest(w, "invalid request body")
		return
	}
	if req.Muted == nil && req.HandRaised == nil {
		webjson.BadRequest(w, "nothing to change")
		return
	}
	u, _ := identity.Current(r)

	p, err := h.Manager.SetParticipantState(r.Context(), id, u.ID, targetID, req.Muted, req.HandRaised)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, viewParticipant(p))
}

// moderatorRequest is the PUT body for moderator standing.
type moderatorRequest struct {
	Moderator *bool `json:"moderator"`
}

// HandleModerator handles
// PUT /api/sessions/{id}/participants/{participantID}/moderator.
// Host only; a designated moderator is the successor candidate when the
// host leaves.
func (h *Handler) HandleModerator(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	targetID := chi.URLParam(r, "participantID")

	var req moderatorRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.BadRequest(w, "invalid request body")
		return
	}
	if req.Moderator == nil {
		webjson.BadRequest(w, "moderator flag is required")
		return
	}
	u, _ := identity.Current(r)

	p, err := h.Manager.SetModerator(r.Context(), id, u.ID, targetID, *req.Moderator)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, viewParticipant(p))
}
