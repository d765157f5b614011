// Package requestctx carries per-request values across API boundaries.
package requestctx

import (
	"context"

	"github.com/harborworks/marinedesk/internal/identity"
)

// identityContextKey is the context key for the authenticated caller identity.
type identityContextKey struct{}

// WithIdentity stores the authenticated caller identity in context.
func WithIdentity(ctx context.Context, caller identity.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityContextKey{}, caller)
}

// IdentityFromContext returns the caller identity stored in context.
// The second return value reports whether an identity was present.
func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	if ctx == nil {
		return identity.Identity{}, false
	}
	value, ok := ctx.Value(identityContextKey{}).(identity.Identity)
	return value, ok
}
