// internal/app/features/invites/handler.go
package invites

import (
	"go.uber.org/zap"

	"github.com/havenlabs/haven/internal/app/lifecycle"
)

// Handler is the shared dependency container for the invites feature.
type Handler struct {
	Manager *lifecycle.Manager
	Log     *zap.Logger
}

// NewHandler constructs an invites Handler.
func NewHandler(mgr *lifecycle.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		Manager: mgr,
		Log:     logger,
	}
}
