package auth

import "context"

type contextKey string

const claimsContextKey contextKey = "auth_claims"

// UserIDHeader is set by the request gate on authenticated requests.
// Any client-supplied value is removed before the gate runs.
const UserIDHeader = "X-User-Id"

// NewContextWithClaims returns a child context carrying the session claims.
func NewContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext extracts the claims stored by NewContextWithClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// SessionFromContext is ClaimsFromContext without the ok flag; nil means anonymous.
func SessionFromContext(ctx context.Context) *Claims {
	claims, _ := ClaimsFromContext(ctx)
	return claims
}
