package dynamodb

import (
	"context"

	"social-campaign-backend/internal/domain/post"
	apperrors "social-campaign-backend/internal/errors"
	"social-campaign-backend/internal/infrastructure/persistence"
	"social-campaign-backend/internal/repository"
)

// PostRepository stores posts as POST# members of their campaign's
// partition. Posts are hard deleted.
type PostRepository struct {
	base *GenericRepository[post.Post]
}

var _ repository.PostRepository = (*PostRepository)(nil)

func NewPostRepository(store persistence.Store, opts Options) *PostRepository {
	return &PostRepository{base: NewGenericRepository[post.Post](store, postConfig{}, opts)}
}

func (r *PostRepository) key(tenantID, campaignID, postID string) (persistence.Key, error) {
	if err := validateSegments("tenantId", tenantID, "campaignId", campaignID, "id", postID); err != nil {
		return persistence.Key{}, err
	}
	return MemberKey(tenantID, campaignID, TypePost, postID), nil
}

func (r *PostRepository) Get(ctx context.Context, tenantID, campaignID, postID string) (*post.Post, error) {
	key, err := r.key(tenantID, campaignID, postID)
	if err != nil {
		return nil, err
	}
	return r.base.Get(ctx, tenantID, key, postID)
}

// Create stores a new post. Status defaults to pending.
func (r *PostRepository) Create(ctx context.Context, tenantID string, p *post.Post) (*post.Post, error) {
	entity := *p
	if entity.Status == "" {
		entity.Status = post.StatusPending
	}
	return r.base.Create(ctx, tenantID, &entity)
}

func (r *PostRepository) Update(ctx context.Context, tenantID, campaignID, postID string, patch post.Patch, opts ...repository.WriteOption) (*post.Post, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperrors.NewValidation("unknown post status", map[string]string{"status": string(*patch.Status)})
	}
	if len(patch.Fields()) == 0 {
		return r.Get(ctx, tenantID, campaignID, postID)
	}
	key, err := r.key(tenantID, campaignID, postID)
	if err != nil {
		return nil, err
	}
	return r.base.Update(ctx, tenantID, key, postID, patch.Apply, opts...)
}

func (r *PostRepository) Delete(ctx context.Context, tenantID, campaignID, postID string) error {
	key, err := r.key(tenantID, campaignID, postID)
	if err != nil {
		return err
	}
	return r.base.HardDelete(ctx, key, postID)
}

func (r *PostRepository) BatchGet(ctx context.Context, tenantID, campaignID string, ids []string) ([]*post.Post, error) {
	if err := validateSegments("tenantId", tenantID, "campaignId", campaignID); err != nil {
		return nil, err
	}
	return r.base.BatchGet(ctx, tenantID, ids, func(id string) persistence.Key {
		return MemberKey(tenantID, campaignID, TypePost, id)
	})
}

func (r *PostRepository) campaignSpec(tenantID, campaignID string, q repository.PostQuery) QuerySpec[post.Post] {
	spec := QuerySpec[post.Post]{
		Index:     persistence.TableIndex,
		Partition: PartitionKey(tenantID, campaignID),
		Prefix:    MemberPrefix(TypePost),
		Page:      q.Page,
	}
	if q.Status != "" || q.Platform != "" {
		spec.FilterKey = filterKey("status", string(q.Status), "platform", q.Platform)
		spec.Filter = func(p *post.Post) bool {
			return (q.Status == "" || p.Status == q.Status) && (q.Platform == "" || p.Platform == q.Platform)
		}
	}
	return spec
}

// ListByCampaign reads the campaign's partition. Status and platform are
// filters on each page.
func (r *PostRepository) ListByCampaign(ctx context.Context, tenantID, campaignID string, q repository.PostQuery) (*repository.Page[*post.Post], error) {
	if err := validateSegments("campaignId", campaignID); err != nil {
		return nil, err
	}
	return r.base.Query(ctx, tenantID, r.campaignSpec(tenantID, campaignID, q))
}

func (r *PostRepository) ListAllByCampaign(ctx context.Context, tenantID, campaignID string) ([]*post.Post, error) {
	if err := validateSegments("tenantId", tenantID, "campaignId", campaignID); err != nil {
		return nil, err
	}
	return r.base.QueryAll(ctx, tenantID, r.campaignSpec(tenantID, campaignID, repository.PostQuery{}))
}

func (r *PostRepository) ListByPersona(ctx context.Context, tenantID, personaID string, page repository.PageRequest) (*repository.Page[*post.Post], error) {
	if err := validateSegments("personaId", personaID); err != nil {
		return nil, err
	}
	return r.base.Query(ctx, tenantID, QuerySpec[post.Post]{
		Index:      persistence.CrossRefIndex,
		Partition:  CrossRefPartition(tenantID, TypePersona, personaID),
		Prefix:     MemberPrefix(TypePost),
		Page:       page,
		Descending: true,
	})
}

// List pages through all of a tenant's posts, narrowed by status on the
// index key. Platform is a filter.
func (r *PostRepository) List(ctx context.Context, tenantID string, q repository.PostQuery) (*repository.Page[*post.Post], error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperrors.NewValidation("unknown post status", map[string]string{"status": string(q.Status)})
	}
	spec := QuerySpec[post.Post]{
		Index:      persistence.TenantIndex,
		Partition:  TenantListPartition(tenantID, TypePost),
		Prefix:     SegmentPrefix(string(q.Status)),
		Page:       q.Page,
		Descending: true,
	}
	if q.Platform != "" {
		spec.FilterKey = filterKey("platform", q.Platform)
		spec.Filter = func(p *post.Post) bool { return p.Platform == q.Platform }
	}
	return r.base.Query(ctx, tenantID, spec)
}
