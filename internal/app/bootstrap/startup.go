// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"strings"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/havenlabs/haven/internal/app/lifecycle"
	breakoutstore "github.com/havenlabs/haven/internal/app/store/breakouts"
	invitationstore "github.com/havenlabs/haven/internal/app/store/invitations"
	"github.com/havenlabs/haven/internal/app/store/memstore"
	sessionstore "github.com/havenlabs/haven/internal/app/store/sessions"
	"github.com/havenlabs/haven/internal/app/system/media"
	"github.com/havenlabs/haven/internal/app/system/moderation"
	"github.com/havenlabs/haven/internal/app/system/notify"
	"github.com/havenlabs/haven/internal/app/system/workers"
)

// runtime holds the long-lived objects shared across the lifecycle
// hooks. Hooks run sequentially (Startup before BuildHandler before
// Shutdown), so plain package state suffices.
var runtime struct {
	sessions lifecycle.SessionStore
	rooms    lifecycle.BreakoutStore
	invites  lifecycle.InvitationStore

	hub        *notify.Hub
	manager    *lifecycle.Manager
	reconciler *workers.ExpiryReconciler
}

// Startup builds the record stores, the event hub, and the lifecycle
// manager, and starts the background expiry reconciler. It runs after
// DB connections and schema setup are complete, before the HTTP handler
// is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.HavenMongoDatabase != nil {
		sess := sessionstore.New(deps.HavenMongoDatabase)
		rooms := breakoutstore.New(deps.HavenMongoDatabase)
		runtime.sessions = sess
		runtime.rooms = rooms
		runtime.invites = invitationstore.New(deps.HavenMongoDatabase)
		runtime.reconciler = workers.NewExpiryReconciler(sess, rooms, logger, appCfg.ExpirySweepInterval)
	} else {
		runtime.sessions = memstore.NewSessions()
		runtime.rooms = memstore.NewRooms()
		runtime.invites = memstore.NewInvitations()
	}

	runtime.hub = notify.NewHub(logger)

	var moderator lifecycle.Moderator
	if words := strings.TrimSpace(appCfg.BlockedWords); words != "" {
		moderator = moderation.NewWordlist(strings.Split(words, ","))
	}

	runtime.manager = lifecycle.NewManager(lifecycle.Deps{
		Sessions:  runtime.sessions,
		Rooms:     runtime.rooms,
		Invites:   runtime.invites,
		Moderator: moderator,
		Notifier:  notify.Fanout{runtime.hub, notify.Log{Logger: logger}},
		Media:     media.Static{TTL: appCfg.MediaTokenTTL},
		Policy: lifecycle.Policy{
			ConvertLeadTime:        appCfg.ConvertLeadTime,
			DefaultSessionTTL:      appCfg.SessionTTL,
			BreakoutTTL:            appCfg.BreakoutTTL,
			InviteTTL:              appCfg.InviteTTL,
			InviteCodeLength:       appCfg.InviteCodeLength,
			DefaultMaxParticipants: appCfg.DefaultMaxParticipants,
			MaxParticipantsCap:     appCfg.MaxParticipantsCap,
		},
		Logger: logger,
	})

	if runtime.reconciler != nil {
		runtime.reconciler.Start()
	}
	return nil
}
