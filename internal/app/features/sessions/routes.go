// internal/app/features/sessions/routes.go
package sessions

import (
	"github.com/go-chi/chi/v5"

	"github.com/havenlabs/haven/internal/app/features/breakouts"
	"github.com/havenlabs/haven/internal/app/features/invites"
)

// Routes wires the session-scoped surface. Breakout and invite
// creation nest under the session path, so those handlers are threaded
// in here; the code- and room-scoped operations live on their own
// mounts.
func Routes(h *Handler, bh *breakouts.Handler, ih *invites.Handler) chi.Router {
	r := chi.NewRouter()

	// CREATE + LIST
	r.Post("/", h.HandleCreate)
	r.Get("/", h.ServeList)

	// READ
	r.Get("/{id}", h.ServeSession)

	// LIFECYCLE TRANSITIONS
	r.Post("/{id}/convert", h.HandleConvert)
	r.Post("/{id}/join", h.HandleJoin)
	r.Post("/{id}/leave", h.HandleLeave)
	r.Post("/{id}/end", h.HandleEnd)

	// ANONYMOUS INBOX
	r.Post("/{id}/submissions", h.HandleSubmit)
	r.Get("/{id}/submissions", h.ServeSubmissions)

	// IN-SESSION STATE
	r.Patch("/{id}/participants/{participantID}/state", h.HandleParticipantState)
	r.Put("/{id}/participants/{participantID}/moderator", h.HandleModerator)

	// BREAKOUT ROOMS
	r.Post("/{id}/breakouts", bh.HandleCreate)
	r.Get("/{id}/breakouts", bh.ServeList)

	// INVITATIONS
	r.Post("/{id}/invites", ih.HandleCreate)

	return r
}
