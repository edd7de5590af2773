// Package auth carries the authenticated user identity through context.
//
// Remembra treats authentication as an external collaborator: callers
// resolve the user however they like and attach the owner ID to the
// context before invoking the agent or the knowledge store. Everything
// owner-scoped reads the identity back with Require.
package auth

import (
	"context"
	"errors"
)

// ErrUnauthorized indicates no authenticated identity is present.
var ErrUnauthorized = errors.New("unauthorized: no authenticated user")

// ownerIDKey is an unexported context key for zero-allocation type safety.
type ownerIDKey struct{}

// WithOwnerID stores the authenticated owner identity in context.
// Knowledge and conversation operations read it for per-user isolation.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey{}, ownerID)
}

// OwnerIDFromContext retrieves the owner identity from context.
// Returns empty string if not set.
func OwnerIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ownerIDKey{}).(string)
	return id
}

// Require returns the owner identity or ErrUnauthorized when absent.
// Owner-scoped operations call this first so unauthenticated requests
// fail before touching storage.
func Require(ctx context.Context) (string, error) {
	id := OwnerIDFromContext(ctx)
	if id == "" {
		return "", ErrUnauthorized
	}
	return id, nil
}
