// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP/HTTPS
// ports, TLS, logging, CORS, body limits). AppConfig is everything
// specific to Haven: the record store backend, lifecycle thresholds,
// and the knobs on the brute-forceable surfaces.
type AppConfig struct {
	// Record store backend: "mongo" or "memory". The in-memory backend
	// exists for local development and tests; it loses everything on
	// restart.
	StorageType string

	// MongoDB connection configuration (used when StorageType is mongo)
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// AdminAPIKey lets operators force-end sessions. Empty disables the
	// administrative surface entirely.
	AdminAPIKey string

	// WSAllowedOrigin restricts websocket upgrades on the event stream.
	// Empty means same-origin only.
	WSAllowedOrigin string

	// BlockedWords is a comma-separated list for the wordlist moderator.
	// Empty disables wordlist moderation (sessions with moderation
	// enabled then admit everything).
	BlockedWords string

	// Lifecycle thresholds. Zero values fall back to the manager's
	// defaults.
	ConvertLeadTime        time.Duration
	SessionTTL             time.Duration
	BreakoutTTL            time.Duration
	InviteTTL              time.Duration
	InviteCodeLength       int
	DefaultMaxParticipants int
	MaxParticipantsCap     int

	// MediaTokenTTL bounds issued media channel tokens.
	MediaTokenTTL time.Duration

	// ExpirySweepInterval is how often the background reconciler flags
	// overdue sessions and rooms.
	ExpirySweepInterval time.Duration

	// Rate limits for invite consumption and host recovery, per client
	// IP per RateWindow.
	InviteJoinLimit   int
	HostRecoveryLimit int
	RateWindow        time.Duration
}
