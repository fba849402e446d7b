package gateway

import (
	"context"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/logging"
)

// Check consults the protector and converts a denial into an AppError
// (429 for rate limits, 403 for bots and blocks).
// Transport failures are logged and the request is allowed.
func Check(ctx context.Context, p Protector, log logging.Logger, req Request) error {
	decision, err := p.Protect(ctx, req)
	if err != nil {
		log.Warn(ctx, "abuse gateway unavailable, allowing request",
			"path", req.Path, "rule", req.Rule, "error", err)
		return nil
	}
	return DenialError(decision, req.Rule)
}

// DenialError maps a decision onto the error returned to the client, or nil when allowed.
func DenialError(d Decision, rule string) error {
	switch d.Conclusion {
	case Allow:
		return nil
	case RateLimited:
		if rule == RuleAuth {
			return apperror.NewRateLimitError("too many attempts, try again later")
		}
		return apperror.NewRateLimitError("rate limit exceeded")
	case Bot:
		return apperror.NewAbuseError("bot activity detected")
	default:
		return apperror.NewAbuseError("request blocked")
	}
}
