package dynamodb

import (
	"context"
	"strings"

	"social-campaign-backend/internal/domain/persona"
	"social-campaign-backend/internal/domain/shared"
	"social-campaign-backend/internal/infrastructure/persistence"
	"social-campaign-backend/internal/repository"
)

// PersonaRepository stores personas as METADATA items. Active personas are
// projected onto the tenant index under ACTIVE# and, when they belong to a
// brand, onto the brand's cross-reference partition.
type PersonaRepository struct {
	base *GenericRepository[persona.Persona]
}

var _ repository.PersonaRepository = (*PersonaRepository)(nil)

func NewPersonaRepository(store persistence.Store, opts Options) *PersonaRepository {
	return &PersonaRepository{base: NewGenericRepository[persona.Persona](store, personaConfig{}, opts)}
}

func (r *PersonaRepository) Get(ctx context.Context, tenantID, id string) (*persona.Persona, error) {
	if err := validateSegments("tenantId", tenantID, "id", id); err != nil {
		return nil, err
	}
	return r.base.Get(ctx, tenantID, MetadataKey(tenantID, id), id)
}

// Create stores a new, active persona.
func (r *PersonaRepository) Create(ctx context.Context, tenantID string, p *persona.Persona) (*persona.Persona, error) {
	entity := *p
	entity.IsActive = true
	return r.base.Create(ctx, tenantID, &entity)
}

func (r *PersonaRepository) Update(ctx context.Context, tenantID, id string, patch persona.Patch, opts ...repository.WriteOption) (*persona.Persona, error) {
	if len(patch.Fields()) == 0 {
		return r.Get(ctx, tenantID, id)
	}
	if err := validateSegments("tenantId", tenantID, "id", id); err != nil {
		return nil, err
	}
	return r.base.Update(ctx, tenantID, MetadataKey(tenantID, id), id, patch.Apply, opts...)
}

func (r *PersonaRepository) SoftDelete(ctx context.Context, tenantID, id string, opts ...repository.WriteOption) error {
	if err := validateSegments("tenantId", tenantID, "id", id); err != nil {
		return err
	}
	return r.base.SoftDelete(ctx, tenantID, MetadataKey(tenantID, id), id, opts...)
}

func (r *PersonaRepository) BatchGet(ctx context.Context, tenantID string, ids []string) ([]*persona.Persona, error) {
	if err := shared.ValidateID("tenantId", tenantID); err != nil {
		return nil, err
	}
	return r.base.BatchGet(ctx, tenantID, ids, func(id string) persistence.Key {
		return MetadataKey(tenantID, id)
	})
}

func (r *PersonaRepository) List(ctx context.Context, tenantID string, q repository.PersonaQuery) (*repository.Page[*persona.Persona], error) {
	spec := QuerySpec[persona.Persona]{
		Index:      persistence.TenantIndex,
		Partition:  TenantListPartition(tenantID, TypePersona),
		Prefix:     SegmentPrefix(personaActive),
		Page:       q.Page,
		Descending: true,
	}
	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		spec.FilterKey = filterKey("search", search)
		spec.Filter = func(p *persona.Persona) bool {
			return containsFold(p.Name, search) || containsFold(p.Role, search)
		}
	}
	return r.base.Query(ctx, tenantID, spec)
}

func (r *PersonaRepository) ListByBrand(ctx context.Context, tenantID, brandID string, page repository.PageRequest) (*repository.Page[*persona.Persona], error) {
	if err := validateSegments("brandId", brandID); err != nil {
		return nil, err
	}
	return r.base.Query(ctx, tenantID, QuerySpec[persona.Persona]{
		Index:      persistence.CrossRefIndex,
		Partition:  CrossRefPartition(tenantID, TypeBrand, brandID),
		Prefix:     MemberPrefix(TypePersona),
		Page:       page,
		Descending: true,
	})
}
