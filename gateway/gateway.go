// Package gateway is the client side of the external abuse-protection service.
// The service decides per request whether to allow it, rate limit it, or block it
// as a bot or as abuse. The application never implements those algorithms itself.
package gateway

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// Conclusion is the outcome of a protection decision.
type Conclusion int

const (
	Allow Conclusion = iota
	RateLimited
	Bot
	Blocked
)

func (c Conclusion) String() string {
	switch c {
	case Allow:
		return "allow"
	case RateLimited:
		return "rate_limited"
	case Bot:
		return "bot"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Rules select the policy the decision service applies.
const (
	RuleDefault = "default"
	RuleAuth    = "auth"
	RuleComment = "comment"
	RuleSearch  = "search"
)

// Request describes the inbound call being judged.
type Request struct {
	IP        string `json:"ip"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	UserAgent string `json:"user_agent"`
	Rule      string `json:"rule"`
	// Email is an optional characteristic for per-account limits on login and registration.
	Email string `json:"email,omitempty"`
}

// Decision is the gateway verdict for one request.
type Decision struct {
	Conclusion Conclusion
	Reason     string
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Conclusion == Allow }

// Protector is the capability the rest of the application depends on.
type Protector interface {
	Protect(ctx context.Context, req Request) (Decision, error)
}

// ProtectorFunc adapts a function to the Protector interface.
type ProtectorFunc func(ctx context.Context, req Request) (Decision, error)

func (f ProtectorFunc) Protect(ctx context.Context, req Request) (Decision, error) {
	return f(ctx, req)
}

// AllowAll is used when no decision service is configured.
var AllowAll Protector = ProtectorFunc(func(context.Context, Request) (Decision, error) {
	return Decision{Conclusion: Allow}, nil
})

// RequestFromHTTP builds a Request from an inbound HTTP request.
// RemoteAddr is expected to be normalized by chi's RealIP middleware.
func RequestFromHTTP(r *http.Request, rule string) Request {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return Request{
		IP:        ip,
		Method:    r.Method,
		Path:      r.URL.Path,
		UserAgent: r.UserAgent(),
		Rule:      rule,
	}
}

// RuleForPath picks the protection rule for the request gate.
func RuleForPath(method, path string) string {
	switch {
	case method == http.MethodPost && strings.HasPrefix(path, "/api/posts/") && strings.HasSuffix(path, "/comments"):
		return RuleComment
	case path == "/api/posts/search":
		return RuleSearch
	default:
		return RuleDefault
	}
}
