package dynamodb

import (
	"context"
	"strings"

	"social-campaign-backend/internal/domain/brand"
	"social-campaign-backend/internal/domain/shared"
	apperrors "social-campaign-backend/internal/errors"
	"social-campaign-backend/internal/infrastructure/persistence"
	"social-campaign-backend/internal/repository"
)

// BrandRepository stores brands as METADATA items in their own partition.
type BrandRepository struct {
	base *GenericRepository[brand.Brand]
}

var _ repository.BrandRepository = (*BrandRepository)(nil)

func NewBrandRepository(store persistence.Store, opts Options) *BrandRepository {
	return &BrandRepository{base: NewGenericRepository[brand.Brand](store, brandConfig{}, opts)}
}

func (r *BrandRepository) Get(ctx context.Context, tenantID, id string) (*brand.Brand, error) {
	if err := validateSegments("tenantId", tenantID, "id", id); err != nil {
		return nil, err
	}
	return r.base.Get(ctx, tenantID, MetadataKey(tenantID, id), id)
}

// Create stores a new brand. Status defaults to active.
func (r *BrandRepository) Create(ctx context.Context, tenantID string, b *brand.Brand) (*brand.Brand, error) {
	entity := *b
	if entity.Status == "" {
		entity.Status = brand.StatusActive
	}
	if entity.Status == brand.StatusArchived {
		return nil, apperrors.NewValidation("brands cannot be created archived",
			map[string]string{"status": "must be active or inactive"})
	}
	return r.base.Create(ctx, tenantID, &entity)
}

func (r *BrandRepository) Update(ctx context.Context, tenantID, id string, patch brand.Patch, opts ...repository.WriteOption) (*brand.Brand, error) {
	if len(patch.Fields()) == 0 {
		return r.Get(ctx, tenantID, id)
	}
	if err := validateSegments("tenantId", tenantID, "id", id); err != nil {
		return nil, err
	}
	return r.base.Update(ctx, tenantID, MetadataKey(tenantID, id), id, patch.Apply, opts...)
}

func (r *BrandRepository) SoftDelete(ctx context.Context, tenantID, id string, opts ...repository.WriteOption) error {
	if err := validateSegments("tenantId", tenantID, "id", id); err != nil {
		return err
	}
	return r.base.SoftDelete(ctx, tenantID, MetadataKey(tenantID, id), id, opts...)
}

func (r *BrandRepository) BatchGet(ctx context.Context, tenantID string, ids []string) ([]*brand.Brand, error) {
	if err := shared.ValidateID("tenantId", tenantID); err != nil {
		return nil, err
	}
	return r.base.BatchGet(ctx, tenantID, ids, func(id string) persistence.Key {
		return MetadataKey(tenantID, id)
	})
}

// List pages through a tenant's live brands, newest first within a status.
// With Industry set the industry index is used and Status becomes a filter.
func (r *BrandRepository) List(ctx context.Context, tenantID string, q repository.BrandQuery) (*repository.Page[*brand.Brand], error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperrors.NewValidation("unknown brand status", map[string]string{"status": string(q.Status)})
	}
	spec := QuerySpec[brand.Brand]{
		Index:      persistence.TenantIndex,
		Partition:  TenantListPartition(tenantID, TypeBrand),
		Prefix:     SegmentPrefix(string(q.Status)),
		Page:       q.Page,
		Descending: true,
	}
	var status brand.Status
	if q.Industry != "" {
		if err := validateSegments("industry", q.Industry); err != nil {
			return nil, err
		}
		spec.Index = persistence.CrossRefIndex
		spec.Partition = CrossRefPartition(tenantID, refIndustry, q.Industry)
		spec.Prefix = MemberPrefix(TypeBrand)
		status = q.Status
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))
	if status != "" || search != "" {
		spec.FilterKey = filterKey("status", string(status), "search", search)
		spec.Filter = func(b *brand.Brand) bool {
			return (status == "" || b.Status == status) && containsFold(b.Name, search)
		}
	}
	return r.base.Query(ctx, tenantID, spec)
}
