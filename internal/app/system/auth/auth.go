// Package auth verifies bearer credentials and carries the signed-in user
// through the request context.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/campusvoice/internal/app/system/apperr"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// SessionUser is the authenticated caller injected into r.Context().
type SessionUser struct {
	ID    string // user ObjectID in hex
	Name  string
	Email string
	Role  string
}

// IsFaculty reports whether the user holds the faculty role.
func (u *SessionUser) IsFaculty() bool {
	return u != nil && strings.EqualFold(u.Role, "faculty")
}

// UserFetcher loads fresh user data on each request, so role changes and
// deleted accounts take effect immediately. It returns nil for unknown users.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// Manager issues and verifies tokens and provides the auth middleware.
type Manager struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	cookies    *securecookie.SecureCookie
	secure     bool
	fetcher    UserFetcher
	log        *zap.Logger
	now        func() time.Time
}

// Options configure a Manager.
type Options struct {
	Secret        string
	TTL           time.Duration
	CookieName    string
	CookieHashKey string // empty disables the cookie carrier
	Secure        bool
}

// NewManager validates opts and builds a Manager.
func NewManager(opts Options, logger *zap.Logger) (*Manager, error) {
	if opts.Secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}
	if len(opts.Secret) < 32 {
		logger.Warn("jwt secret is short; 32+ chars recommended",
			zap.Int("length", len(opts.Secret)))
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	name := opts.CookieName
	if name == "" {
		name = "campusvoice-token"
	}
	return &Manager{
		secret:     []byte(opts.Secret),
		ttl:        ttl,
		cookieName: name,
		cookies:    newCookieCodec(opts.CookieHashKey),
		secure:     opts.Secure,
		log:        logger,
		now:        time.Now,
	}, nil
}

// SetUserFetcher installs the per-request user loader.
func (m *Manager) SetUserFetcher(f UserFetcher) {
	m.fetcher = f
}

// TTL returns the lifetime of issued tokens.
func (m *Manager) TTL() time.Duration { return m.ttl }

// CurrentUser returns the user and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context. Tests use it to bypass
// token verification.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// LoadUser resolves the bearer credential (Authorization header first, then
// the signed cookie) and injects the user into the context. Requests without
// a valid credential continue anonymously.
func (m *Manager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := m.resolve(r); u != nil {
			r = WithTestUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Manager) resolve(r *http.Request) *SessionUser {
	raw := bearerToken(r)
	if raw == "" {
		raw = m.tokenFromCookie(r)
	}
	if raw == "" {
		return nil
	}
	claims, err := m.ParseToken(raw)
	if err != nil {
		m.log.Debug("rejected token", zap.Error(err), zap.String("path", r.URL.Path))
		return nil
	}
	if m.fetcher == nil {
		return &SessionUser{ID: claims.UserID()}
	}
	return m.fetcher.FetchUser(r.Context(), claims.UserID())
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// WebSocket clients cannot set headers, so a "token" query parameter is
// accepted on upgrade requests.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}

// RequireSignedIn rejects requests without an authenticated user with 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects unauthenticated requests with 401 and users outside
// the allowed roles with 403. Role comparison is case-insensitive.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				writeError(w, http.StatusForbidden, "Access denied. "+roleLabel(allowed)+" only.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func roleLabel(roles []string) string {
	if len(roles) == 0 {
		return "Restricted"
	}
	r := strings.ToLower(strings.TrimSpace(roles[0]))
	if r == "" {
		return "Restricted"
	}
	return strings.ToUpper(r[:1]) + r[1:]
}

func writeError(w http.ResponseWriter, status int, msg string) {
	apperr.WriteJSON(w, status, map[string]string{"message": msg})
}
