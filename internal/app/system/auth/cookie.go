package auth

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// Browser clients may carry the bearer token in a signed cookie instead of
// the Authorization header. The cookie is only enabled when a hash key is
// configured.

// SetTokenCookie writes token into the signed auth cookie. It is a no-op when
// cookies are disabled.
func (m *Manager) SetTokenCookie(w http.ResponseWriter, token string, expires time.Time) error {
	if m.cookies == nil {
		return nil
	}
	encoded, err := m.cookies.Encode(m.cookieName, token)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearTokenCookie expires the auth cookie.
func (m *Manager) ClearTokenCookie(w http.ResponseWriter) {
	if m.cookies == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) tokenFromCookie(r *http.Request) string {
	if m.cookies == nil {
		return ""
	}
	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	var token string
	if err := m.cookies.Decode(m.cookieName, c.Value, &token); err != nil {
		return ""
	}
	return token
}

func newCookieCodec(hashKey string) *securecookie.SecureCookie {
	if hashKey == "" {
		return nil
	}
	sc := securecookie.New([]byte(hashKey), nil)
	sc.MaxAge(int(DefaultTokenTTL.Seconds()))
	return sc
}
