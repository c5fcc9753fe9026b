// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const (
	devJWTSecret      = "dev-only-change-me-please-0123456789ABCDEF"
	minProdJWTSecret  = 32
	defaultJWTTTL     = 24 * time.Hour
	defaultLoginLimit = 10
)

// appConfigKeys defines the configuration keys for the complaint tracker.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: CAMPUSVOICE_MONGO_URI, CAMPUSVOICE_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "campusvoice", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer credentials
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "Token signing secret (must be strong in production)"},
	{Name: "jwt_ttl", Default: "24h", Desc: "Token lifetime (e.g., 24h, 90m)"},
	{Name: "auth_cookie_name", Default: "campusvoice-token", Desc: "Cookie name carrying the token for browser clients"},
	{Name: "auth_cookie_hash_key", Default: "", Desc: "Cookie signing key; blank disables the cookie carrier"},

	// Live notifications
	{Name: "redis_url", Default: "", Desc: "Redis URL for notification fan-out (blank disables the stream)"},

	// Browser clients
	{Name: "cors_allowed_origins", Default: "*", Desc: "Comma-separated list of allowed origins ('*' for any; same-origin only when the auth cookie is on)"},

	// Login throttling
	{Name: "login_rate_limit", Default: defaultLoginLimit, Desc: "Login attempts allowed per client IP per window"},
	{Name: "login_rate_window", Default: "15m", Desc: "Login rate limit window"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Status change logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Timeout overrides (blank keeps the built-in default)
	{Name: "timeout_ping", Default: "", Desc: "Health check timeout"},
	{Name: "timeout_short", Default: "", Desc: "Single-document operation timeout"},
	{Name: "timeout_medium", Default: "", Desc: "List/aggregate operation timeout"},
	{Name: "timeout_long", Default: "", Desc: "Index build timeout"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CAMPUSVOICE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CAMPUSVOICE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:         appValues.String("jwt_secret"),
		JWTTTL:            appValues.Duration("jwt_ttl", defaultJWTTTL),
		AuthCookieName:    appValues.String("auth_cookie_name"),
		AuthCookieHashKey: appValues.String("auth_cookie_hash_key"),

		RedisURL: strings.TrimSpace(appValues.String("redis_url")),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", 15*time.Minute),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		TimeoutPing:   appValues.Duration("timeout_ping", 0),
		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	if appCfg.LoginRateLimit <= 0 {
		appCfg.LoginRateLimit = defaultLoginLimit
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is checked before any connection attempt, and production
// refuses to start with the development signing secret or a short one.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must be set")
	}
	if appCfg.JWTTTL <= 0 {
		return fmt.Errorf("jwt_ttl must be positive, got %s", appCfg.JWTTTL)
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		if appCfg.JWTSecret == devJWTSecret || len(appCfg.JWTSecret) < minProdJWTSecret {
			return fmt.Errorf("jwt_secret must be at least %d characters and not the development default in prod", minProdJWTSecret)
		}
	}

	if appCfg.JWTSecret == devJWTSecret {
		logger.Warn("using development jwt_secret; set CAMPUSVOICE_JWT_SECRET outside local development")
	}

	return nil
}

// splitList turns "a, b,,c" into [a b c].
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
