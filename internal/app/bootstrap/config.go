// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Haven.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, storage_type, etc.
//   - Environment variables: HAVEN_MONGO_URI, HAVEN_STORAGE_TYPE, etc.
//   - Command-line flags: --mongo_uri, --storage_type, etc.
var appConfigKeys = []config.AppKey{
	{Name: "storage_type", Default: "mongo", Desc: "Record store backend: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "haven", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "admin_api_key", Default: "", Desc: "Key for the administrative force-end surface (empty disables it)"},
	{Name: "ws_allowed_origin", Default: "", Desc: "Allowed Origin for websocket event streams (empty means same-origin)"},
	{Name: "blocked_words", Default: "", Desc: "Comma-separated wordlist for moderation (empty disables the wordlist)"},

	// Lifecycle thresholds
	{Name: "convert_lead_time", Default: "1m", Desc: "How early a non-host join may flip a scheduled session live"},
	{Name: "session_ttl", Default: "2h", Desc: "Default session lifetime from activation"},
	{Name: "breakout_ttl", Default: "1h", Desc: "Breakout room lifetime from creation"},
	{Name: "invite_ttl", Default: "24h", Desc: "Default invitation lifetime"},
	{Name: "invite_code_length", Default: 8, Desc: "Length of minted invitation codes"},
	{Name: "default_max_participants", Default: 50, Desc: "Participant ceiling when the creator gives none"},
	{Name: "max_participants_cap", Default: 200, Desc: "Hard ceiling on requested participant limits"},

	{Name: "media_token_ttl", Default: "1h", Desc: "Lifetime of issued media channel tokens"},
	{Name: "expiry_sweep_interval", Default: "1m", Desc: "Background expiry reconciliation interval"},

	// Abuse limits
	{Name: "invite_join_limit", Default: 20, Desc: "Invite consume attempts per client IP per rate window"},
	{Name: "host_recovery_limit", Default: 10, Desc: "Host recovery attempts per client IP per rate window"},
	{Name: "rate_window", Default: "1m", Desc: "Rate limit window"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, HAVEN_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "HAVEN", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StorageType:      appValues.String("storage_type"),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		AdminAPIKey:     appValues.String("admin_api_key"),
		WSAllowedOrigin: appValues.String("ws_allowed_origin"),
		BlockedWords:    appValues.String("blocked_words"),

		ConvertLeadTime:        appValues.Duration("convert_lead_time", time.Minute),
		SessionTTL:             appValues.Duration("session_ttl", 2*time.Hour),
		BreakoutTTL:            appValues.Duration("breakout_ttl", time.Hour),
		InviteTTL:              appValues.Duration("invite_ttl", 24*time.Hour),
		InviteCodeLength:       appValues.Int("invite_code_length"),
		DefaultMaxParticipants: appValues.Int("default_max_participants"),
		MaxParticipantsCap:     appValues.Int("max_participants_cap"),

		MediaTokenTTL:       appValues.Duration("media_token_ttl", time.Hour),
		ExpirySweepInterval: appValues.Duration("expiry_sweep_interval", time.Minute),

		InviteJoinLimit:   appValues.Int("invite_join_limit"),
		HostRecoveryLimit: appValues.Int("host_recovery_limit"),
		RateWindow:        appValues.Duration("rate_window", time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Haven validates the store backend choice and, for Mongo, the URI
// format, so configuration mistakes surface before any connection
// attempt.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StorageType {
	case "mongo":
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	case "memory":
		if coreCfg.Env == "prod" {
			logger.Warn("memory storage in prod: all sessions are lost on restart")
		}
	default:
		return fmt.Errorf("storage_type must be 'mongo' or 'memory', got %q", appCfg.StorageType)
	}

	if appCfg.DefaultMaxParticipants > appCfg.MaxParticipantsCap {
		return fmt.Errorf("default_max_participants (%d) exceeds max_participants_cap (%d)",
			appCfg.DefaultMaxParticipants, appCfg.MaxParticipantsCap)
	}
	return nil
}
