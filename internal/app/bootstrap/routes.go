// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	breakoutsfeature "github.com/havenlabs/haven/internal/app/features/breakouts"
	eventsfeature "github.com/havenlabs/haven/internal/app/features/events"
	healthfeature "github.com/havenlabs/haven/internal/app/features/health"
	hostrecoveryfeature "github.com/havenlabs/haven/internal/app/features/hostrecovery"
	invitesfeature "github.com/havenlabs/haven/internal/app/features/invites"
	sessionsfeature "github.com/havenlabs/haven/internal/app/features/sessions"
	"github.com/havenlabs/haven/internal/app/system/identity"
	"github.com/havenlabs/haven/internal/app/system/ratelimit"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed, so the lifecycle manager and
// event hub built in Startup are ready to serve.
//
// Haven mounts the JSON API for sessions, breakout rooms, invitations,
// and host recovery, plus the websocket event stream and the health
// endpoint. Identity resolution is global: every request carries a
// caller id, minted anonymously when the gateway forwards none.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	// Global identity middleware: resolves the gateway-forwarded caller
	// (or mints an anonymous one) into the request context.
	r.Use(identity.Middleware)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.HavenMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Feature handlers share the manager built in Startup.
	breakoutsHandler := breakoutsfeature.NewHandler(runtime.manager, logger)
	invitesHandler := invitesfeature.NewHandler(runtime.manager, logger)
	sessionsHandler := sessionsfeature.NewHandler(runtime.manager, appCfg.AdminAPIKey, logger)
	recoveryHandler := hostrecoveryfeature.NewHandler(runtime.manager, logger)

	// Separate limiters so invite guessing cannot starve legitimate
	// host recovery and vice versa.
	inviteLimiter := ratelimit.New(appCfg.InviteJoinLimit, appCfg.RateWindow)
	recoveryLimiter := ratelimit.New(appCfg.HostRecoveryLimit, appCfg.RateWindow)

	r.Route("/api", func(api chi.Router) {
		api.Mount("/sessions", sessionsfeature.Routes(sessionsHandler, breakoutsHandler, invitesHandler))
		api.Mount("/breakouts", breakoutsfeature.Routes(breakoutsHandler))
		api.Mount("/invites", invitesfeature.Routes(invitesHandler, inviteLimiter))
		api.Mount("/recovery", hostrecoveryfeature.Routes(recoveryHandler, recoveryLimiter))
	})

	// Websocket event streams
	eventsHandler := eventsfeature.NewHandler(runtime.manager, runtime.hub, appCfg.WSAllowedOrigin, logger)
	r.Mount("/ws", eventsfeature.Routes(eventsHandler))

	return r, nil
}
