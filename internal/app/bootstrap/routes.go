// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"net/url"
	"strings"
	"sync"

	authapifeature "github.com/dalemusser/campusvoice/internal/app/features/authapi"
	complaintsfeature "github.com/dalemusser/campusvoice/internal/app/features/complaints"
	errorsfeature "github.com/dalemusser/campusvoice/internal/app/features/errors"
	healthfeature "github.com/dalemusser/campusvoice/internal/app/features/health"
	notificationsfeature "github.com/dalemusser/campusvoice/internal/app/features/notifications"
	"github.com/dalemusser/campusvoice/internal/app/ledger"
	"github.com/dalemusser/campusvoice/internal/app/lifecycle"
	"github.com/dalemusser/campusvoice/internal/app/notify"
	"github.com/dalemusser/campusvoice/internal/app/store/audit"
	commentstore "github.com/dalemusser/campusvoice/internal/app/store/comments"
	complaintstore "github.com/dalemusser/campusvoice/internal/app/store/complaints"
	notificationstore "github.com/dalemusser/campusvoice/internal/app/store/notifications"
	userstore "github.com/dalemusser/campusvoice/internal/app/store/users"
	"github.com/dalemusser/campusvoice/internal/app/system/auditlog"
	"github.com/dalemusser/campusvoice/internal/app/system/auth"
	"github.com/dalemusser/campusvoice/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// background holds helpers built in BuildHandler that own goroutines and
// must be stopped in Shutdown.
var background struct {
	mu      sync.Mutex
	limiter *ratelimit.LoginLimiter
}

func stopBackground() {
	background.mu.Lock()
	defer background.mu.Unlock()
	if background.limiter != nil {
		background.limiter.Stop()
		background.limiter = nil
	}
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. The domain services are assembled here: the
// lifecycle engine with the notification emitter subscribed to it, the
// comment ledger, and the Redis broker that feeds the live stream.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	authMgr, err := auth.NewManager(auth.Options{
		Secret:        appCfg.JWTSecret,
		TTL:           appCfg.JWTTTL,
		CookieName:    appCfg.AuthCookieName,
		CookieHashKey: appCfg.AuthCookieHashKey,
		Secure:        secure,
	}, logger)
	if err != nil {
		logger.Error("auth manager init failed", zap.Error(err))
		return nil, err
	}

	// Re-fetch the user on every request so deleted accounts lose access
	// immediately.
	authMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	db := deps.MongoDatabase
	complaints := complaintstore.New(db)
	comments := commentstore.New(db)
	users := userstore.New(db)

	broker := notify.NewBroker(deps.Redis, logger)
	emitter := notify.NewEmitter(notificationstore.New(db), broker, logger)

	commentLedger := ledger.New(comments, complaints, users)

	engine := lifecycle.New(complaints, commentLedger, users, logger)
	engine.Subscribe(emitter)

	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	limiter := ratelimit.NewLoginLimiter(appCfg.LoginRateLimit, appCfg.LoginRateWindow)
	background.mu.Lock()
	background.limiter = limiter
	background.mu.Unlock()

	errorsHandler := errorsfeature.NewHandler(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	origins := originPolicy(appCfg.CORSAllowedOrigins, appCfg.AuthCookieHashKey != "")
	r.Use(cors.Handler(corsOptions(origins)))

	// Global auth middleware: loads the signed-in user into context when a
	// valid token is presented. Routes decide whether one is required.
	r.Use(authMgr.LoadUser)

	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, broker, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	authHandler := authapifeature.NewHandler(db, authMgr, limiter, auditLogger, logger)
	r.Mount("/api/auth", authapifeature.Routes(authHandler))

	complaintsHandler := complaintsfeature.NewHandler(db, engine, commentLedger, auditLogger, logger)
	r.Mount("/api/complaints", complaintsfeature.Routes(complaintsHandler))

	notificationsHandler := notificationsfeature.NewHandler(emitter, broker, origins, logger)
	r.Mount("/api/notifications", notificationsfeature.Routes(notificationsHandler))

	return r, nil
}

// originPolicy resolves the browser origins admitted by CORS and the
// notification stream. An empty or "*" setting admits any origin while auth
// travels in the Authorization header only. Once the signed auth cookie is
// enabled a wildcard collapses to nil, meaning same-origin only, so the
// cookie is never honoured for a page on another site.
func originPolicy(configured []string, cookieAuth bool) []string {
	wildcard := len(configured) == 0
	for _, o := range configured {
		if o == "*" {
			wildcard = true
		}
	}
	switch {
	case !wildcard:
		return configured
	case cookieAuth:
		return nil
	default:
		return []string{"*"}
	}
}

func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", notificationsfeature.UnreadCountHeader},
		MaxAge:         300,
	}
	switch {
	case len(origins) == 0:
		opts.AllowOriginFunc = sameOrigin
		opts.AllowCredentials = true
	case len(origins) == 1 && origins[0] == "*":
		// Credentials are never paired with a wildcard.
		opts.AllowedOrigins = origins
	default:
		opts.AllowedOrigins = origins
		opts.AllowCredentials = true
	}
	return opts
}

func sameOrigin(r *http.Request, origin string) bool {
	u, err := url.Parse(origin)
	return err == nil && u.Host != "" && strings.EqualFold(u.Host, r.Host)
}
