// Package identity resolves callers to tenants. Tokens are verified by
// Supabase; the tenant comes from the user's app metadata.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"social-campaign-backend/internal/application/ports"
	"social-campaign-backend/internal/domain/shared"
	apperrors "social-campaign-backend/internal/errors"

	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

// TenantClaim is the app metadata key holding the tenant id.
const TenantClaim = "tenant_id"

// ErrUnauthenticated is returned for missing, invalid or expired tokens.
var ErrUnauthenticated = errors.New("unauthenticated")

type supabaseUser struct {
	ID          string
	Email       string
	AppMetadata map[string]any
}

// SupabaseResolver implements ports.TenantResolver.
type SupabaseResolver struct {
	lookup func(token string) (*supabaseUser, error)
	logger *zap.Logger
}

var _ ports.TenantResolver = (*SupabaseResolver)(nil)

// NewSupabaseResolver creates a client for the project at url.
func NewSupabaseResolver(url, serviceKey string, logger *zap.Logger) (*SupabaseResolver, error) {
	client, err := supabase.NewClient(url, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	auth := client.Auth.WithClient(http.Client{
		Transport: rejectionTransport{base: http.DefaultTransport},
		Timeout:   lookupTimeout,
	})
	return &SupabaseResolver{
		lookup: func(token string) (*supabaseUser, error) {
			// GetUser takes no context.
			user, err := auth.WithToken(token).GetUser()
			if err != nil {
				return nil, err
			}
			return &supabaseUser{ID: user.ID.String(), Email: user.Email, AppMetadata: user.AppMetadata}, nil
		},
		logger: logger.Named("identity"),
	}, nil
}

// Resolve verifies token and returns the caller. Users without a tenant
// claim form a tenant of their own.
func (r *SupabaseResolver) Resolve(ctx context.Context, token string) (*ports.Identity, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrUnauthenticated
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := r.lookup(token)
	if errors.Is(err, ErrUnauthenticated) {
		r.logger.Debug("token rejected", zap.Error(err))
		return nil, err
	}
	if err != nil {
		r.logger.Warn("identity provider lookup failed", zap.Error(err))
		return nil, apperrors.NewUnavailable("identity provider unavailable", err)
	}

	tenantID := user.ID
	if claim, ok := user.AppMetadata[TenantClaim].(string); ok && claim != "" {
		tenantID = claim
	}
	if err := shared.ValidateID("tenantId", tenantID); err != nil {
		return nil, err
	}
	return &ports.Identity{UserID: user.ID, TenantID: tenantID, Email: user.Email}, nil
}

// lookupTimeout bounds one token lookup against the auth server.
const lookupTimeout = 10 * time.Second

// rejectionTransport reports the auth server refusing a token as
// ErrUnauthenticated. Every other response passes through, so outages stay
// distinguishable from bad tokens.
type rejectionTransport struct {
	base http.RoundTripper
}

func (t rejectionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: auth server returned %d", ErrUnauthenticated, resp.StatusCode)
	}
	return resp, nil
}

// RejectingResolver refuses every token. It is used when no identity
// provider is configured, so unauthenticated access fails closed.
type RejectingResolver struct{}

var _ ports.TenantResolver = RejectingResolver{}

func (RejectingResolver) Resolve(ctx context.Context, token string) (*ports.Identity, error) {
	return nil, fmt.Errorf("%w: no identity provider configured", ErrUnauthenticated)
}
