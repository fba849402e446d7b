package auth

import (
	"net/http"
	"time"

	"github.com/user/inkwell-go/config"
)

// CookieManager owns the single session cookie: its name, lifetime and flags.
type CookieManager struct {
	name     string
	ttl      time.Duration
	secure   bool
	sameSite http.SameSite
}

func NewCookieManager(cfg *config.AuthConfig) *CookieManager {
	return &CookieManager{
		name:     cfg.CookieName,
		ttl:      cfg.SessionTTL,
		secure:   cfg.CookieSecure,
		sameSite: cfg.SameSite,
	}
}

// Name returns the session cookie name.
func (m *CookieManager) Name() string { return m.name }

// Set writes the session cookie. Secure is forced on for TLS requests.
func (m *CookieManager) Set(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, m.cookie(r, token, int(m.ttl.Seconds())))
}

// Read returns the session token carried by the request, if any.
func (m *CookieManager) Read(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Clear expires the session cookie with the same attributes it was set with.
func (m *CookieManager) Clear(w http.ResponseWriter, r *http.Request) {
	c := m.cookie(r, "", -1)
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

func (m *CookieManager) cookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure || r.TLS != nil,
		SameSite: m.sameSite,
	}
}
