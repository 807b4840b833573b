package session

import (
	"context"
)

// contextKey is a private type for context keys to prevent collisions
type contextKey int

const claimsKey contextKey = iota

// WithClaims returns a copy of the context carrying the session claims
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFrom retrieves the session claims from the context, or nil when the
// request carries no valid session.
func ClaimsFrom(ctx context.Context) *Claims {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}
