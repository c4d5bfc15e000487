// internal/app/features/breakouts/rooms.go
package breakouts

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/havenlabs/haven/internal/app/lifecycle"
	"github.com/havenlabs/haven/internal/app/system/identity"
	"github.com/havenlabs/haven/internal/app/system/webjson"
)

// createRequest is the POST /api/sessions/{id}/breakouts body.
type createRequest struct {
	Name            string `json:"name"`
	FacilitatorID   string `json:"facilitatorId"`
	FacilitatorName string `json:"facilitatorName"`
	MaxParticipants int    `json:"maxParticipants"`
}

// HandleCreate handles POST /api/sessions/{id}/breakouts. Only the
// parent session's host may open rooms.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "id")

	var req createRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.BadRequest(w, "invalid request body")
		return
	}
	u, _ := identity.Current(r)

	room, err := h.Manager.CreateBreakout(r.Context(), parentID, u.ID, lifecycle.RoomSpec{
		Name:            req.Name,
		FacilitatorID:   req.FacilitatorID,
		FacilitatorName: req.FacilitatorName,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusCreated, viewRoom(&room))
}

// ServeList handles GET /api/sessions/{id}/breakouts.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "id")

	rooms, err := h.Manager.ListBreakouts(r.Context(), parentID)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	views := make([]roomView, 0, len(rooms))
	for i := range rooms {
		views = append(views, viewRoom(&rooms[i]))
	}
	webjson.Write(w, http.StatusOK, map[string]any{"rooms": views})
}

// ServeRoom handles GET /api/breakouts/{roomID} with lazy expiry
// applied.
func (h *Handler) ServeRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	room, err := h.Manager.GetBreakout(r.Context(), roomID)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, viewRoom(&room))
}

// joinRequest is the POST /api/breakouts/{roomID}/join body.
type joinRequest struct {
	Alias string `json:"alias"`
}

type joinResponse struct {
	Room        roomView        `json:"room"`
	Participant participantView `json:"participant"`
}

// HandleJoin handles POST /api/breakouts/{roomID}/join.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

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
	room, p, err := h.Manager.JoinBreakout(r.Context(), roomID, lifecycle.JoinRequest{
		ParticipantID: u.ID,
		Alias:         alias,
		Anonymous:     u.Anonymous,
	})
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, joinResponse{Room: viewRoom(&room), Participant: viewParticipant(p)})
}

// HandleLeave handles POST /api/breakouts/{roomID}/leave. The room
// auto-ends when its facilitator leaves or its roster empties.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	u, _ := identity.Current(r)

	room, err := h.Manager.LeaveBreakout(r.Context(), roomID, u.ID)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, viewRoom(&room))
}

// HandleClose handles POST /api/breakouts/{roomID}/close. Legal for the
// facilitator or the parent session's host.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	u, _ := identity.Current(r)

	room, err := h.Manager.CloseBreakout(r.Context(), roomID, u.ID)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, viewRoom(&room))
}
