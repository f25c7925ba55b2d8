package dynamodb

import (
	"time"

	"social-campaign-backend/internal/domain/asset"
	"social-campaign-backend/internal/domain/brand"
	"social-campaign-backend/internal/domain/campaign"
	"social-campaign-backend/internal/domain/persona"
	"social-campaign-backend/internal/domain/post"
	"social-campaign-backend/internal/domain/shared"
)

// ============================================================================
// BRAND
// ============================================================================

type brandConfig struct{}

func (brandConfig) Boundary() Boundary {
	return Boundary{EntityType: TypeBrand, IDAttribute: "brandId"}
}

func (brandConfig) Resource() string { return "brand" }

func (brandConfig) Meta(b *brand.Brand) *shared.Meta { return &b.Meta }

func (c brandConfig) Keys(tenantID string, b *brand.Brand) (KeySet, error) {
	if err := validateSegments("tenantId", tenantID, "id", b.ID); err != nil {
		return KeySet{}, err
	}
	keys := KeySet{Primary: MetadataKey(tenantID, b.ID)}
	if c.IsArchived(b) {
		return keys, nil
	}
	keys.TenantList = &IndexKey{
		PartitionKey: TenantListPartition(tenantID, TypeBrand),
		SortKey:      TenantListSort(string(b.Status), b.CreatedAt),
	}
	if b.Industry != "" {
		if err := validateSegments("industry", b.Industry); err != nil {
			return KeySet{}, err
		}
		keys.CrossRef = &IndexKey{
			PartitionKey: CrossRefPartition(tenantID, refIndustry, b.Industry),
			SortKey:      CrossRefSort(TypeBrand, b.CreatedAt, b.ID),
		}
	}
	return keys, nil
}

func (brandConfig) IsArchived(b *brand.Brand) bool { return b.Status == brand.StatusArchived }

func (brandConfig) Archive(b *brand.Brand, _ time.Time) { b.Status = brand.StatusArchived }

// ============================================================================
// PERSONA
// ============================================================================

type personaConfig struct{}

func (personaConfig) Boundary() Boundary {
	return Boundary{EntityType: TypePersona, IDAttribute: "personaId"}
}

func (personaConfig) Resource() string { return "persona" }

func (personaConfig) Meta(p *persona.Persona) *shared.Meta { return &p.Meta }

func (c personaConfig) Keys(tenantID string, p *persona.Persona) (KeySet, error) {
	if err := validateSegments("tenantId", tenantID, "id", p.ID); err != nil {
		return KeySet{}, err
	}
	keys := KeySet{Primary: MetadataKey(tenantID, p.ID)}
	// Inactive personas are archived and leave every index, so only the
	// active segment is ever written.
	if c.IsArchived(p) {
		return keys, nil
	}
	keys.TenantList = &IndexKey{
		PartitionKey: TenantListPartition(tenantID, TypePersona),
		SortKey:      TenantListSort(personaActive, p.CreatedAt),
	}
	if p.BrandID != "" {
		if err := validateSegments("brandId", p.BrandID); err != nil {
			return KeySet{}, err
		}
		keys.CrossRef = &IndexKey{
			PartitionKey: CrossRefPartition(tenantID, TypeBrand, p.BrandID),
			SortKey:      CrossRefSort(TypePersona, p.CreatedAt, p.ID),
		}
	}
	return keys, nil
}

func (personaConfig) IsArchived(p *persona.Persona) bool { return !p.IsActive }

func (personaConfig) Archive(p *persona.Persona, _ time.Time) { p.IsActive = false }

// ============================================================================
// CAMPAIGN
// ============================================================================

type campaignConfig struct{}

func (campaignConfig) Boundary() Boundary {
	return Boundary{EntityType: TypeCampaign, IDAttribute: "campaignId"}
}

func (campaignConfig) Resource() string { return "campaign" }

func (campaignConfig) Meta(c *campaign.Campaign) *shared.Meta { return &c.Meta }

func (cfg campaignConfig) Keys(tenantID string, c *campaign.Campaign) (KeySet, error) {
	if err := validateSegments("tenantId", tenantID, "id", c.ID); err != nil {
		return KeySet{}, err
	}
	keys := KeySet{Primary: MetadataKey(tenantID, c.ID)}
	if cfg.IsArchived(c) {
		return keys, nil
	}
	keys.TenantList = &IndexKey{
		PartitionKey: TenantListPartition(tenantID, TypeCampaign),
		SortKey:      TenantListSort(string(c.Status), c.CreatedAt),
	}
	if c.BrandID != "" {
		if err := validateSegments("brandId", c.BrandID); err != nil {
			return KeySet{}, err
		}
		keys.CrossRef = &IndexKey{
			PartitionKey: CrossRefPartition(tenantID, TypeBrand, c.BrandID),
			SortKey:      CrossRefSort(TypeCampaign, c.CreatedAt, c.ID),
		}
	}
	return keys, nil
}

func (campaignConfig) IsArchived(c *campaign.Campaign) bool { return c.ArchivedAt != nil }

func (campaignConfig) Archive(c *campaign.Campaign, now time.Time) {
	at := now
	c.ArchivedAt = &at
}

// ============================================================================
// SOCIAL POST
// ============================================================================

type postConfig struct{}

func (postConfig) Boundary() Boundary {
	return Boundary{EntityType: TypePost, IDAttribute: "postId"}
}

func (postConfig) Resource() string { return "post" }

func (postConfig) Meta(p *post.Post) *shared.Meta { return &p.Meta }

func (postConfig) Keys(tenantID string, p *post.Post) (KeySet, error) {
	if err := validateSegments("tenantId", tenantID, "campaignId", p.CampaignID, "id", p.ID, "personaId", p.PersonaID); err != nil {
		return KeySet{}, err
	}
	return KeySet{
		Primary: MemberKey(tenantID, p.CampaignID, TypePost, p.ID),
		TenantList: &IndexKey{
			PartitionKey: TenantListPartition(tenantID, TypePost),
			SortKey:      TenantListSort(string(p.Status), p.CreatedAt),
		},
		CrossRef: &IndexKey{
			PartitionKey: CrossRefPartition(tenantID, TypePersona, p.PersonaID),
			SortKey:      CrossRefSort(TypePost, p.CreatedAt, p.ID),
		},
	}, nil
}

// Posts are hard deleted.
func (postConfig) IsArchived(*post.Post) bool { return false }

func (postConfig) Archive(*post.Post, time.Time) {}

// ============================================================================
// BRAND ASSET
// ============================================================================

type assetConfig struct{}

func (assetConfig) Boundary() Boundary {
	return Boundary{EntityType: TypeAsset, IDAttribute: "assetId"}
}

func (assetConfig) Resource() string { return "asset" }

func (assetConfig) Meta(a *asset.Asset) *shared.Meta { return &a.Meta }

func (assetConfig) Keys(tenantID string, a *asset.Asset) (KeySet, error) {
	if err := validateSegments("tenantId", tenantID, "brandId", a.BrandID, "id", a.ID); err != nil {
		return KeySet{}, err
	}
	return KeySet{
		Primary: MemberKey(tenantID, a.BrandID, TypeAsset, a.ID),
		TenantList: &IndexKey{
			PartitionKey: TenantListPartition(tenantID, TypeAsset),
			SortKey:      TenantListSort(string(a.Category), a.CreatedAt),
		},
		CrossRef: &IndexKey{
			PartitionKey: CrossRefPartition(tenantID, TypeBrand, a.BrandID),
			SortKey:      CrossRefSort(TypeAsset, a.CreatedAt, a.ID),
		},
	}, nil
}

func (assetConfig) IsArchived(*asset.Asset) bool { return false }

func (assetConfig) Archive(*asset.Asset, time.Time) {}
