// internal/app/features/sessions/view.go
package sessions

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/havenlabs/haven/internal/app/system/identity"
	"github.com/havenlabs/haven/internal/app/system/webjson"
)

// defaultListLimit bounds GET /api/sessions when no limit is given.
const defaultListLimit = 50

// ServeSession handles GET /api/sessions/{id}. The read applies lazy
// expiry, so an overdue session reports ended here even before any
// reconciling write lands.
func (h *Handler) ServeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s, err := h.Manager.GetSession(r.Context(), id)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}

	u, _ := identity.Current(r)
	eff := h.Manager.EffectiveStatus(&s)
	webjson.Write(w, http.StatusOK, viewSession(&s, eff, u.ID == s.HostID))
}

// ServeList handles GET /api/sessions, returning live unexpired
// sessions for discovery.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultListLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			webjson.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	list, err := h.Manager.ListActiveSessions(r.Context(), limit)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}

	views := make([]sessionView, 0, len(list))
	for i := range list {
		eff := h.Manager.EffectiveStatus(&list[i])
		views = append(views, viewSession(&list[i], eff, false))
	}
	webjson.Write(w, http.StatusOK, map[string]any{"sessions": views})
}
