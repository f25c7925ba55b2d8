package dynamodb

import (
	"context"
	"errors"
	"strings"

	"social-campaign-backend/internal/domain/campaign"
	"social-campaign-backend/internal/domain/shared"
	apperrors "social-campaign-backend/internal/errors"
	"social-campaign-backend/internal/infrastructure/persistence"
	"social-campaign-backend/internal/repository"

	"go.uber.org/zap"
)

// CampaignRepository stores campaigns as METADATA items in their own
// partition; the campaign's posts share that partition.
type CampaignRepository struct {
	base *GenericRepository[campaign.Campaign]
}

var _ repository.CampaignRepository = (*CampaignRepository)(nil)

func NewCampaignRepository(store persistence.Store, opts Options) *CampaignRepository {
	return &CampaignRepository{base: NewGenericRepository[campaign.Campaign](store, campaignConfig{}, opts)}
}

func (r *CampaignRepository) Get(ctx context.Context, tenantID, id string) (*campaign.Campaign, error) {
	if err := validateSegments("tenantId", tenantID, "id", id); err != nil {
		return nil, err
	}
	return r.base.Get(ctx, tenantID, MetadataKey(tenantID, id), id)
}

// Create stores a new campaign in planning.
func (r *CampaignRepository) Create(ctx context.Context, tenantID string, c *campaign.Campaign) (*campaign.Campaign, error) {
	entity := *c
	if entity.Status == "" {
		entity.Status = campaign.StatusPlanning
	}
	if entity.Status != campaign.StatusPlanning {
		return nil, apperrors.NewValidation("campaigns start in planning",
			map[string]string{"status": "must be " + string(campaign.StatusPlanning)})
	}
	entity.PostCount = 0
	entity.LastError = ""
	entity.ArchivedAt = nil
	return r.base.Create(ctx, tenantID, &entity)
}

// Update merges the patch if every field it sets is mutable in the
// campaign's current status. The check runs against the state being
// written, so a concurrent transition cannot slip a forbidden field in.
func (r *CampaignRepository) Update(ctx context.Context, tenantID, id string, patch campaign.Patch, opts ...repository.WriteOption) (*campaign.Campaign, error) {
	if len(patch.Fields()) == 0 {
		return r.Get(ctx, tenantID, id)
	}
	if err := validateSegments("tenantId", tenantID, "id", id); err != nil {
		return nil, err
	}
	return r.base.Update(ctx, tenantID, MetadataKey(tenantID, id), id, patch.Apply, opts...)
}

// UpdateStatus rewrites only the status attributes and the tenant index sort
// key, guarded by change.ExpectedVersion.
func (r *CampaignRepository) UpdateStatus(ctx context.Context, tenantID, id string, change repository.StatusChange) (*campaign.Campaign, error) {
	if err := validateSegments("tenantId", tenantID, "id", id); err != nil {
		return nil, err
	}
	if !change.To.Valid() {
		return nil, apperrors.NewValidation("unknown campaign status", map[string]string{"status": string(change.To)})
	}
	key := MetadataKey(tenantID, id)
	current, err := r.base.Get(ctx, tenantID, key, id)
	if err != nil {
		return nil, err
	}
	if current.Version != change.ExpectedVersion {
		return nil, apperrors.NewVersionConflict("campaign", id, change.ExpectedVersion)
	}

	next := *current
	next.Status = change.To
	next.LastError = change.LastError
	if change.PostCount != nil {
		next.PostCount = *change.PostCount
	}
	next.Version = current.Version + 1
	next.UpdatedAt = shared.Advance(r.base.opts.Clock, current.UpdatedAt)

	keys, err := r.base.config.Keys(tenantID, &next)
	if err != nil {
		return nil, err
	}
	update := persistence.Update{Set: map[string]any{
		"status":                  string(next.Status),
		"postCount":               next.PostCount,
		persistence.AttrVersion:   next.Version,
		persistence.AttrUpdatedAt: next.UpdatedAt,
		persistence.AttrGSI1SK:    keys.TenantList.SortKey,
	}}
	if next.LastError != "" {
		update.Set["lastError"] = next.LastError
	} else {
		update.Remove = append(update.Remove, "lastError")
	}

	err = r.base.store.Update(ctx, key, update, persistence.VersionEquals(change.ExpectedVersion))
	if errors.Is(err, persistence.ErrConditionFailed) {
		stored, own, lerr := r.base.landed(ctx, tenantID, key, next.Meta)
		if lerr != nil {
			return nil, lerr
		}
		if !own || stored.Status != next.Status {
			_, classified := r.base.classify(ctx, tenantID, key, id, &change.ExpectedVersion, change.ExpectedVersion)
			return nil, classified
		}
		err = nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "update campaign status")
	}

	r.base.logger.Debug("status written",
		zap.String("tenant_id", tenantID),
		zap.String("campaign_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next.Status)),
		zap.Int64("version", next.Version))
	return &next, nil
}

func (r *CampaignRepository) SoftDelete(ctx context.Context, tenantID, id string, opts ...repository.WriteOption) error {
	if err := validateSegments("tenantId", tenantID, "id", id); err != nil {
		return err
	}
	return r.base.SoftDelete(ctx, tenantID, MetadataKey(tenantID, id), id, opts...)
}

func (r *CampaignRepository) BatchGet(ctx context.Context, tenantID string, ids []string) ([]*campaign.Campaign, error) {
	if err := shared.ValidateID("tenantId", tenantID); err != nil {
		return nil, err
	}
	return r.base.BatchGet(ctx, tenantID, ids, func(id string) persistence.Key {
		return MetadataKey(tenantID, id)
	})
}

// List pages through a tenant's campaigns, newest first within a status.
func (r *CampaignRepository) List(ctx context.Context, tenantID string, q repository.CampaignQuery) (*repository.Page[*campaign.Campaign], error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperrors.NewValidation("unknown campaign status", map[string]string{"status": string(q.Status)})
	}
	spec := QuerySpec[campaign.Campaign]{
		Index:      persistence.TenantIndex,
		Partition:  TenantListPartition(tenantID, TypeCampaign),
		Prefix:     SegmentPrefix(string(q.Status)),
		Page:       q.Page,
		Descending: true,
	}
	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		spec.FilterKey = filterKey("search", search)
		spec.Filter = func(c *campaign.Campaign) bool {
			return containsFold(c.Name, search) || containsFold(c.Objective, search)
		}
	}
	return r.base.Query(ctx, tenantID, spec)
}

func (r *CampaignRepository) ListByBrand(ctx context.Context, tenantID, brandID string, page repository.PageRequest) (*repository.Page[*campaign.Campaign], error) {
	if err := validateSegments("brandId", brandID); err != nil {
		return nil, err
	}
	return r.base.Query(ctx, tenantID, QuerySpec[campaign.Campaign]{
		Index:      persistence.CrossRefIndex,
		Partition:  CrossRefPartition(tenantID, TypeBrand, brandID),
		Prefix:     MemberPrefix(TypeCampaign),
		Page:       page,
		Descending: true,
	})
}
