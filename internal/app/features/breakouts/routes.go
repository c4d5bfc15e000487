// internal/app/features/breakouts/routes.go
package breakouts

import (
	"github.com/go-chi/chi/v5"
)

// Routes serves the room-scoped operations, mounted at /api/breakouts.
// Room creation and listing live under the parent session's router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/{roomID}", h.ServeRoom)
	r.Post("/{roomID}/join", h.HandleJoin)
	r.Post("/{roomID}/leave", h.HandleLeave)
	r.Post("/{roomID}/close", h.HandleClose)

	return r
}
