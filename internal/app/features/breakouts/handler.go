// internal/app/features/breakouts/handler.go
package breakouts

import (
	"go.uber.org/zap"

	"github.com/havenlabs/haven/internal/app/lifecycle"
)

// Handler is the shared dependency container for the breakouts feature.
type Handler struct {
	Manager *lifecycle.Manager
	Log     *zap.Logger
}

// NewHandler constructs a breakouts Handler.
func NewHandler(mgr *lifecycle.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		Manager: mgr,
		Log:     logger,
	}
}
