// internal/app/features/sessions/submissions.go
package sessions

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/havenlabs/haven/internal/app/lifecycle"
	"github.com/havenlabs/haven/internal/app/system/identity"
	"github.com/havenlabs/haven/internal/app/system/webjson"
)

// submitRequest is the POST /api/sessions/{id}/submissions body. The
// alias is whatever the submitter typed; no identity is attached.
type submitRequest struct {
	Alias   string `json:"alias"`
	Message string `json:"message"`
}

// HandleSubmit handles POST /api/sessions/{id}/submissions for
// anonymous-inbox sessions. Submissions bypass the capacity guard but
// still honor expiry and moderation.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req submitRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.BadRequest(w, "invalid request body")
		return
	}

	sub, err := h.Manager.Submit(r.Context(), id, req.Alias, req.Message)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusCreated, submissionView(sub))
}

// ServeSubmissions handles GET /api/sessions/{id}/submissions. The inbox
// is readable by its host alone; submitters stay write-only.
func (h *Handler) ServeSubmissions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, _ := identity.Current(r)

	s, err := h.Manager.GetSession(r.Context(), id)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	if s.HostID != u.ID {
		webjson.Error(w, h.Log, lifecycle.ErrForbidden)
		return
	}

	views := make([]submissionView, 0, len(s.Submissions))
	for _, sub := range s.Submissions {
		views = append(views, submissionView(sub))
	}
	webjson.Write(w, http.StatusOK, map[string]any{"submissions": views})
}
