// internal/app/features/invites/routes.go
package invites

import (
	"github.com/go-chi/chi/v5"

	"github.com/havenlabs/haven/internal/app/system/ratelimit"
)

// Routes serves the code-scoped operations, mounted at /api/invites.
// Invite creation lives under the session's router. Consumption is
// rate limited: codes are short enough to guess and guessing one is a
// way into a private session.
func Routes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	r.Delete("/{code}", h.HandleDeactivate)

	r.Group(func(pr chi.Router) {
		pr.Use(limiter.Middleware)
		pr.Post("/{code}/join", h.HandleJoin)
	})

	return r
}
