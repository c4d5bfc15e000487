// internal/app/features/sessions/transitions.go
package sessions

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/havenlabs/haven/internal/app/lifecycle"
	"github.com/havenlabs/haven/internal/app/system/identity"
	"github.com/havenlabs/haven/internal/app/system/webjson"
)

// joinRequest is the POST /api/sessions/{id}/join body.
type joinRequest struct {
	Alias string `json:"alias"`
}

// joinResponse carries the post-join snapshot and the joiner's seat.
type joinResponse struct {
	Session     sessionView     `json:"session"`
	Participant participantView `json:"participant"`
	MediaToken  string          `json:"mediaToken,omitempty"`
}

// HandleJoin handles POST /api/sessions/{id}/join. Joining a scheduled
// session close enough to its start converts it live first; rejoining
// while already seated returns the existing seat.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req joinRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.BadRequest(w, "invalid request body")
		return
	}
	u, _ := identity.Current(r)

	res, err := h.Manager.Join(r.Context(), id, lifecycle.JoinRequest{
		ParticipantID: u.ID,
		Alias:         pickAlias(req.Alias, u.Alias),
		Anonymous:     u.Anonymous,
	})
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}

	eff := h.Manager.EffectiveStatus(&res.Session)
	webjson.Write(w, http.StatusOK, joinResponse{
		Session:     viewSession(&res.Session, eff, u.ID == res.Session.HostID),
		Participant: viewParticipant(res.Participant),
		MediaToken:  res.MediaToken,
	})
}

// HandleLeave handles POST /api/sessions/{id}/leave. A departing host
// hands off to a successor moderator or ends the session.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, _ := identity.Current(r)

	s, err := h.Manager.Leave(r.Context(), id, u.ID)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	eff := h.Manager.EffectiveStatus(&s)
	webjson.Write(w, http.StatusOK, viewSession(&s, eff, false))
}

// HandleConvert handles POST /api/sessions/{id}/convert, turning a
// scheduled session live. Idempotent: repeat calls return the live
// session.
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, _ := identity.Current(r)

	s, err := h.Manager.ConvertToLive(r.Context(), id, u.ID)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	eff := h.Manager.EffectiveStatus(&s)
	webjson.Write(w, http.StatusOK, viewSession(&s, eff, u.ID == s.HostID))
}

// HandleEnd handles POST /api/sessions/{id}/end. The host may always
// end a session; operators may force-end by presenting the admin key.
func (h *Handler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, _ := identity.Current(r)

	admin := h.AdminKey != "" && r.Header.Get("X-Haven-Admin-Key") == h.AdminKey
	s, err := h.Manager.EndSession(r.Context(), id, u.ID, admin)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	eff := h.Manager.EffectiveStatus(&s)
	webjson.Write(w, http.StatusOK, viewSession(&s, eff, u.ID == s.HostID))
}

func pickAlias(requested, fallback string) string {
	if requested != "" {
		return requested
	}
	return fallback
}
