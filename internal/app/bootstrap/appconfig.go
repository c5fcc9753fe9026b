// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, log level); everything the complaint
// tracker itself needs lives here and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer credentials
	JWTSecret         string        // HMAC secret for signing tokens (must be strong in production)
	JWTTTL            time.Duration // Token lifetime (default 24h)
	AuthCookieName    string        // Cookie carrying the token for browser clients
	AuthCookieHashKey string        // securecookie hash key; blank disables the cookie carrier

	// Redis for live notification fan-out; blank disables the stream endpoint.
	RedisURL string

	// Browser origins allowed by CORS and the notification stream.
	CORSAllowedOrigins []string

	// Login throttling
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// Audit logging ("all", "db", "log", "off")
	AuditLogAuth  string
	AuditLogAdmin string

	// Optional overrides for system/timeouts; zero keeps the default.
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
