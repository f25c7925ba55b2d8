// Package ports defines the collaborators the application services depend
// on but do not own: the event bus, the object store holding asset bytes and
// the identity provider that maps a caller to a tenant.
package ports

import (
	"context"
	"errors"
	"io"
	"time"
)

// ============================================================================
// EVENT BUS
// ============================================================================

// Event is one notification handed to the bus.
type Event struct {
	// DetailType names the event, e.g. CampaignStatusChanged.
	DetailType string
	// Resource is the id of the entity the event is about.
	Resource string
	TenantID string
	Time     time.Time
	// Detail is serialized to JSON by the bus.
	Detail any
}

// EventBus publishes events at most once. Publishing never happens inside a
// storage write, so a failed publish leaves stored state untouched.
type EventBus interface {
	Publish(ctx context.Context, events ...Event) error
}

// ============================================================================
// OBJECT STORE
// ============================================================================

// ErrObjectNotFound is returned by Head for a missing object.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// ObjectStore holds binary payloads by key.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// Delete removes the object. Deleting a missing object succeeds.
	Delete(ctx context.Context, key string) error
	Head(ctx context.Context, key string) (*ObjectInfo, error)
}

// ============================================================================
// IDENTITY
// ============================================================================

// Identity is the authenticated caller.
type Identity struct {
	UserID   string
	TenantID string
	Email    string
}

// TenantResolver turns a bearer token into the caller's identity.
type TenantResolver interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}
