package identity

import (
	"context"

	"social-campaign-backend/internal/application/ports"
)

// contextKey is used for context values
type contextKey struct {
	name string
}

var identityKey = contextKey{"identity"}

// WithIdentity adds the caller to ctx.
func WithIdentity(ctx context.Context, id *ports.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the caller stored by WithIdentity.
func FromContext(ctx context.Context) (*ports.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*ports.Identity)
	return id, ok && id != nil
}

// TenantFromContext returns the caller's tenant id.
func TenantFromContext(ctx context.Context) (string, bool) {
	id, ok := FromContext(ctx)
	if !ok || id.TenantID == "" {
		return "", false
	}
	return id.TenantID, true
}
