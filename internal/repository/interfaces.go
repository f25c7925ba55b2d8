// Package repository defines the data access contracts for brands, personas,
// campaigns, posts and brand assets.
//
// Every operation is scoped to one tenant. Entities crossing this boundary
// are boundary objects: a single opaque id, timestamps and a version, never
// storage keys or the tenant id.
//
// Error kinds returned by implementations (see internal/errors):
//   - NOT_FOUND: no live entity with that id, including archived ones
//   - ALREADY_EXISTS: create over an occupied key
//   - VERSION_CONFLICT: expected version did not match, or a concurrent
//     writer won the race
//   - PARTIAL_NOT_FOUND: a batch lookup missed some ids, listed on the error
//   - INVALID_CURSOR: the page token was not produced for this query
//   - VALIDATION: the data or patch was rejected before anything was written
package repository

import (
	"context"

	"social-campaign-backend/internal/domain/asset"
	"social-campaign-backend/internal/domain/brand"
	"social-campaign-backend/internal/domain/campaign"
	"social-campaign-backend/internal/domain/persona"
	"social-campaign-backend/internal/domain/post"
)

// ============================================================================
// WRITE OPTIONS
// ============================================================================

// WriteOptions tune a single mutating call.
type WriteOptions struct {
	// ExpectedVersion, when set, makes the write fail with VERSION_CONFLICT
	// unless the stored version matches. Without it updates merge into
	// whatever is current, retrying internally on races.
	ExpectedVersion *int64
}

// WriteOption configures WriteOptions.
type WriteOption func(*WriteOptions)

// WithExpectedVersion exposes optimistic concurrency to the caller.
func WithExpectedVersion(version int64) WriteOption {
	return func(o *WriteOptions) {
		o.ExpectedVersion = &version
	}
}

// ApplyWriteOptions folds opts into a WriteOptions value.
func ApplyWriteOptions(opts []WriteOption) WriteOptions {
	var o WriteOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Validator checks entities before they are written. Implementations return
// VALIDATION errors.
type Validator interface {
	Struct(v any) error
}

// ============================================================================
// QUERIES
// ============================================================================

// BrandQuery lists brands. Industry switches to the industry index; Search
// is a case-insensitive name filter applied to each returned page.
type BrandQuery struct {
	Status   brand.Status
	Industry string
	Search   string
	Page     PageRequest
}

type PersonaQuery struct {
	Search string
	Page   PageRequest
}

type CampaignQuery struct {
	Status campaign.Status
	Search string
	Page   PageRequest
}

// PostQuery filters posts. Status narrows by index key when listing a
// tenant's posts and by filter inside a campaign.
type PostQuery struct {
	Status   post.Status
	Platform string
	Page     PageRequest
}

type AssetQuery struct {
	Category asset.Category
	Tag      string
	Page     PageRequest
}

// ============================================================================
// REPOSITORIES
// ============================================================================

type BrandRepository interface {
	Get(ctx context.Context, tenantID, id string) (*brand.Brand, error)
	Create(ctx context.Context, tenantID string, b *brand.Brand) (*brand.Brand, error)
	Update(ctx context.Context, tenantID, id string, patch brand.Patch, opts ...WriteOption) (*brand.Brand, error)
	// SoftDelete archives the brand: hidden from reads, expired later.
	SoftDelete(ctx context.Context, tenantID, id string, opts ...WriteOption) error
	BatchGet(ctx context.Context, tenantID string, ids []string) ([]*brand.Brand, error)
	List(ctx context.Context, tenantID string, q BrandQuery) (*Page[*brand.Brand], error)
}

type PersonaRepository interface {
	Get(ctx context.Context, tenantID, id string) (*persona.Persona, error)
	Create(ctx context.Context, tenantID string, p *persona.Persona) (*persona.Persona, error)
	Update(ctx context.Context, tenantID, id string, patch persona.Patch, opts ...WriteOption) (*persona.Persona, error)
	// SoftDelete deactivates the persona. Campaigns referencing it are left
	// untouched.
	SoftDelete(ctx context.Context, tenantID, id string, opts ...WriteOption) error
	BatchGet(ctx context.Context, tenantID string, ids []string) ([]*persona.Persona, error)
	List(ctx context.Context, tenantID string, q PersonaQuery) (*Page[*persona.Persona], error)
	ListByBrand(ctx context.Context, tenantID, brandID string, page PageRequest) (*Page[*persona.Persona], error)
}

type CampaignRepository interface {
	Get(ctx context.Context, tenantID, id string) (*campaign.Campaign, error)
	Create(ctx context.Context, tenantID string, c *campaign.Campaign) (*campaign.Campaign, error)
	// Update applies the patch after checking it against the permission
	// table of the campaign's current status.
	Update(ctx context.Context, tenantID, id string, patch campaign.Patch, opts ...WriteOption) (*campaign.Campaign, error)
	// UpdateStatus writes a status change guarded by expectedVersion. It does
	// not consult the transition table; that is the status service's job.
	UpdateStatus(ctx context.Context, tenantID, id string, change StatusChange) (*campaign.Campaign, error)
	SoftDelete(ctx context.Context, tenantID, id string, opts ...WriteOption) error
	BatchGet(ctx context.Context, tenantID string, ids []string) ([]*campaign.Campaign, error)
	List(ctx context.Context, tenantID string, q CampaignQuery) (*Page[*campaign.Campaign], error)
	ListByBrand(ctx context.Context, tenantID, brandID string, page PageRequest) (*Page[*campaign.Campaign], error)
}

// StatusChange is a version-guarded campaign status write.
type StatusChange struct {
	To              campaign.Status
	ExpectedVersion int64
	// LastError replaces the stored error message; empty clears it.
	LastError string
	// PostCount, when set, refreshes the stored post count.
	PostCount *int
}

type PostRepository interface {
	Get(ctx context.Context, tenantID, campaignID, postID string) (*post.Post, error)
	Create(ctx context.Context, tenantID string, p *post.Post) (*post.Post, error)
	Update(ctx context.Context, tenantID, campaignID, postID string, patch post.Patch, opts ...WriteOption) (*post.Post, error)
	// Delete removes the post outright.
	Delete(ctx context.Context, tenantID, campaignID, postID string) error
	BatchGet(ctx context.Context, tenantID, campaignID string, ids []string) ([]*post.Post, error)
	ListByCampaign(ctx context.Context, tenantID, campaignID string, q PostQuery) (*Page[*post.Post], error)
	// ListAllByCampaign pages through every post of the campaign with
	// strongly consistent reads.
	ListAllByCampaign(ctx context.Context, tenantID, campaignID string) ([]*post.Post, error)
	ListByPersona(ctx context.Context, tenantID, personaID string, page PageRequest) (*Page[*post.Post], error)
	List(ctx context.Context, tenantID string, q PostQuery) (*Page[*post.Post], error)
}

type AssetRepository interface {
	Get(ctx context.Context, tenantID, brandID, assetID string) (*asset.Asset, error)
	Create(ctx context.Context, tenantID string, a *asset.Asset) (*asset.Asset, error)
	Update(ctx context.Context, tenantID, brandID, assetID string, patch asset.Patch, opts ...WriteOption) (*asset.Asset, error)
	Delete(ctx context.Context, tenantID, brandID, assetID string) error
	ListByBrand(ctx context.Context, tenantID, brandID string, q AssetQuery) (*Page[*asset.Asset], error)
	List(ctx context.Context, tenantID string, q AssetQuery) (*Page[*asset.Asset], error)
}
