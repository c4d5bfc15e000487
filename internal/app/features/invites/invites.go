// internal/app/features/invites/invites.go
package invites

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/havenlabs/haven/internal/app/lifecycle"
	"github.com/havenlabs/haven/internal/app/system/identity"
	"github.com/havenlabs/haven/internal/app/system/webjson"
	"github.com/havenlabs/haven/internal/domain/models"
)

// createRequest is the POST /api/sessions/{id}/invites body.
type createRequest struct {
	// MaxUses nil or 0 means unlimited.
	MaxUses *int `json:"maxUses"`

	// TTLMinutes 0 uses the configured default.
	TTLMinutes int `json:"ttlMinutes"`

	RequiresApproval bool `json:"requiresApproval"`
}

// inviteView is the public JSON shape of an invitation. The canonical
// mixed-case code is what the host shares; matching is
// case-insensitive.
type inviteView struct {
	ID               string    `json:"id"`
	Code             string    `json:"code"`
	SessionID        string    `json:"sessionId"`
	MaxUses          *int      `json:"maxUses,omitempty"`
	UsedCount        int       `json:"usedCount"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RequiresApproval bool      `json:"requiresApproval"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
}

func viewInvite(inv *models.Invitation) inviteView {
	return inviteView{
		ID:               inv.ID,
		Code:             inv.Code,
		SessionID:        inv.SessionID,
		MaxUses:          inv.MaxUses,
		UsedCount:        inv.UsedCount,
		ExpiresAt:        inv.ExpiresAt,
		RequiresApproval: inv.RequiresApproval,
		IsActive:         inv.IsActive,
		CreatedAt:        inv.CreatedAt,
	}
}

// HandleCreate handles POST /api/sessions/{id}/invites. Host only.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req createRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.BadRequest(w, "invalid request body")
		return
	}
	u, _ := identity.Current(r)

	maxUses := req.MaxUses
	if maxUses != nil && *maxUses == 0 {
		maxUses = nil
	}
	inv, err := h.Manager.CreateInvite(r.Context(), sessionID, u.ID, lifecycle.InviteSpec{
		MaxUses:          maxUses,
		TTL:              time.Duration(req.TTLMinutes) * time.Minute,
		RequiresApproval: req.RequiresApproval,
	})
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusCreated, viewInvite(&inv))
}

// HandleDeactivate handles DELETE /api/invites/{code}. Legal for the
// session host or the invite's creator; terminal.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	u, _ := identity.Current(r)

	if err := h.Manager.DeactivateInvite(r.Context(), code, u.ID); err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// joinRequest is the POST /api/invites/{code}/join body.
type joinRequest struct {
	Alias string `json:"alias"`
}

// HandleJoin handles POST /api/invites/{code}/join: consume the code
// and admit the caller to its session in one step. The consume is
// atomic, so a single-use code admits exactly one of two racing
// joiners.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req joinRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.BadRequest(w, "invalid request body")
		return
	}
	u, _ := identity.Current(r)

	alias := req.Alias
	if alias == "" {
		alias = u.Alias
	}
	res, err := h.Manager.JoinByInvite(r.Context(), code, lifecycle.JoinRequest{
		ParticipantID: u.ID,
		Alias:         alias,
		Anonymous:     u.Anonymous,
	})
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, map[string]any{
		"sessionId":     res.Session.ID,
		"participantId": res.Participant.ID,
		"alias":         res.Participant.Alias,
		"mediaToken":    res.MediaToken,
	})
}
