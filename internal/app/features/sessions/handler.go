// internal/app/features/sessions/handler.go
package sessions

import (
	"go.uber.org/zap"

	"github.com/havenlabs/haven/internal/app/lifecycle"
)

// Handler is the shared dependency container for the sessions feature.
// It holds the lifecycle manager and logger so the various handlers
// (create, join, leave, convert, submissions, participant state) share
// the same core dependencies.
type Handler struct {
	Manager *lifecycle.Manager
	Log     *zap.Logger

	// AdminKey, when non-empty, lets operators force-end sessions by
	// presenting it in the X-Haven-Admin-Key header.
	AdminKey string
}

// NewHandler constructs a sessions Handler. It is typically called from
// the bootstrap BuildHandler function, where the manager and logger are
// already initialized.
func NewHandler(mgr *lifecycle.Manager, adminKey string, logger *zap.Logger) *Handler {
	return &Handler{
		Manager:  mgr,
		AdminKey: adminKey,
		Log:      logger,
	}
}
