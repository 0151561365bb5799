// Package auth carries the authenticated principal through a context and
// issues the session tokens that identify it.
package auth

import (
	"context"
	"strings"
)

type principalKey struct{}

// WithPrincipal returns a context scoped to the user id
func WithPrincipal(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, principalKey{}, userID)
}

// PrincipalFromContext returns the user id, if any
func PrincipalFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalKey{}).(string)
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}
