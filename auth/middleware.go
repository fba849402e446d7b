package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/config"
	"github.com/user/inkwell-go/gateway"
	"github.com/user/inkwell-go/logging"
)

// Gate runs in front of every route. For each request it consults the abuse
// gateway (unless the path is public), then verifies the session cookie,
// redirecting anonymous callers away from protected paths, and finally
// attaches any valid session to the request.
type Gate struct {
	tokens            *TokenCodec
	cookies           *CookieManager
	protector         gateway.Protector
	log               logging.Logger
	publicPaths       []string
	protectedPrefixes []string
	loginPath         string
}

func NewGate(
	cfg *config.AuthConfig,
	tokens *TokenCodec,
	cookies *CookieManager,
	protector gateway.Protector,
	log logging.Logger,
) *Gate {
	if protector == nil {
		protector = gateway.AllowAll
	}
	return &Gate{
		tokens:            tokens,
		cookies:           cookies,
		protector:         protector,
		log:               log.With("component", "gate"),
		publicPaths:       cfg.PublicPaths,
		protectedPrefixes: cfg.ProtectedPrefixes,
		loginPath:         cfg.LoginPath,
	}
}

// Handler is the chi-compatible middleware.
func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(UserIDHeader)
		path := r.URL.Path

		if !matchesAny(path, g.publicPaths) {
			req := gateway.RequestFromHTTP(r, gateway.RuleForPath(r.Method, path))
			if err := gateway.Check(r.Context(), g.protector, g.log, req); err != nil {
				g.log.Info(r.Context(), "request denied by gateway", "path", path, "ip", req.IP, "rule", req.Rule)
				apperror.WriteError(w, r, err)
				return
			}
		}

		var session *Claims
		if token, ok := g.cookies.Read(r); ok {
			session = g.tokens.Verify(token)
		}

		if session == nil && g.isProtected(path) {
			http.Redirect(w, r, g.loginRedirect(r), http.StatusSeeOther)
			return
		}

		if session != nil {
			r = r.WithContext(NewContextWithClaims(r.Context(), session))
			r.Header.Set(UserIDHeader, session.UserID)
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) isProtected(path string) bool {
	return path == "/" || matchesAny(path, g.protectedPrefixes)
}

func (g *Gate) loginRedirect(r *http.Request) string {
	from := strings.ReplaceAll(url.QueryEscape(r.URL.RequestURI()), "%2F", "/")
	return g.loginPath + "?from=" + from
}

// matchesAny reports whether path equals one of prefixes or lies beneath it.
func matchesAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		p = strings.TrimSuffix(p, "/")
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
