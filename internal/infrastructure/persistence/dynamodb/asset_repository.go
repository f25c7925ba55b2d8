package dynamodb

import (
	"context"

	"social-campaign-backend/internal/domain/asset"
	"social-campaign-backend/internal/infrastructure/persistence"
	"social-campaign-backend/internal/repository"
)

// AssetRepository stores asset metadata as ASSET# members of the owning
// brand's partition.
type AssetRepository struct {
	base *GenericRepository[asset.Asset]
}

var _ repository.AssetRepository = (*AssetRepository)(nil)

func NewAssetRepository(store persistence.Store, opts Options) *AssetRepository {
	return &AssetRepository{base: NewGenericRepository[asset.Asset](store, assetConfig{}, opts)}
}

func (r *AssetRepository) key(tenantID, brandID, assetID string) (persistence.Key, error) {
	if err := validateSegments("tenantId", tenantID, "brandId", brandID, "id", assetID); err != nil {
		return persistence.Key{}, err
	}
	return MemberKey(tenantID, brandID, TypeAsset, assetID), nil
}

func (r *AssetRepository) Get(ctx context.Context, tenantID, brandID, assetID string) (*asset.Asset, error) {
	key, err := r.key(tenantID, brandID, assetID)
	if err != nil {
		return nil, err
	}
	return r.base.Get(ctx, tenantID, key, assetID)
}

// Create stores asset metadata. Category defaults from the content type.
func (r *AssetRepository) Create(ctx context.Context, tenantID string, a *asset.Asset) (*asset.Asset, error) {
	entity := *a
	if entity.Category == "" {
		entity.Category = asset.CategoryFor(entity.ContentType)
	}
	return r.base.Create(ctx, tenantID, &entity)
}

func (r *AssetRepository) Update(ctx context.Context, tenantID, brandID, assetID string, patch asset.Patch, opts ...repository.WriteOption) (*asset.Asset, error) {
	if len(patch.Fields()) == 0 {
		return r.Get(ctx, tenantID, brandID, assetID)
	}
	key, err := r.key(tenantID, brandID, assetID)
	if err != nil {
		return nil, err
	}
	return r.base.Update(ctx, tenantID, key, assetID, patch.Apply, opts...)
}

func (r *AssetRepository) Delete(ctx context.Context, tenantID, brandID, assetID string) error {
	key, err := r.key(tenantID, brandID, assetID)
	if err != nil {
		return err
	}
	return r.base.HardDelete(ctx, key, assetID)
}

func assetFilter(spec *QuerySpec[asset.Asset], category asset.Category, tag string) {
	if category == "" && tag == "" {
		return
	}
	spec.FilterKey = filterKey("category", string(category), "tag", tag)
	spec.Filter = func(a *asset.Asset) bool {
		if category != "" && a.Category != category {
			return false
		}
		if tag == "" {
			return true
		}
		for _, t := range a.Tags {
			if t == tag {
				return true
			}
		}
		return false
	}
}

// ListByBrand reads the brand's cross-reference partition, newest first.
func (r *AssetRepository) ListByBrand(ctx context.Context, tenantID, brandID string, q repository.AssetQuery) (*repository.Page[*asset.Asset], error) {
	if err := validateSegments("brandId", brandID); err != nil {
		return nil, err
	}
	spec := QuerySpec[asset.Asset]{
		Index:      persistence.CrossRefIndex,
		Partition:  CrossRefPartition(tenantID, TypeBrand, brandID),
		Prefix:     MemberPrefix(TypeAsset),
		Page:       q.Page,
		Descending: true,
	}
	assetFilter(&spec, q.Category, q.Tag)
	return r.base.Query(ctx, tenantID, spec)
}

// List pages through a tenant's assets, narrowed by category on the index
// key.
func (r *AssetRepository) List(ctx context.Context, tenantID string, q repository.AssetQuery) (*repository.Page[*asset.Asset], error) {
	spec := QuerySpec[asset.Asset]{
		Index:      persistence.TenantIndex,
		Partition:  TenantListPartition(tenantID, TypeAsset),
		Prefix:     SegmentPrefix(string(q.Category)),
		Page:       q.Page,
		Descending: true,
	}
	assetFilter(&spec, "", q.Tag)
	return r.base.Query(ctx, tenantID, spec)
}
