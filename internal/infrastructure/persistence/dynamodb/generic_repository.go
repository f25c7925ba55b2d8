// Package dynamodb implements the entity repositories on top of a
// persistence.Store laid out as one table.
//
// # Table layout
//
//	PK      {tenantId}#{scopeId}
//	SK      METADATA | POST#{postId} | ASSET#{assetId}
//	GSI1    {tenantId}#{TYPE}               / {status|category}#{createdAt}
//	GSI2    {tenantId}#{REFTYPE}#{refId}    / {TYPE}#{createdAt}#{id}
//
// Every key is recomputed from the entity on each write. Soft-deleted items
// keep their primary key and an ExpiresAt TTL but lose both projections, so
// listings never see them.
//
// GenericRepository[T] carries the CRUD, concurrency and paging logic once;
// the entity repositories compose it with an EntityConfig and add their own
// queries.
package dynamodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"social-campaign-backend/internal/domain/shared"
	apperrors "social-campaign-backend/internal/errors"
	"social-campaign-backend/internal/infrastructure/persistence"
	"social-campaign-backend/internal/repository"

	"go.uber.org/zap"
)

// ============================================================================
// ENTITY CONFIGURATION
// ============================================================================

// EntityConfig defines entity-specific behaviour for the generic repository.
type EntityConfig[T any] interface {
	Boundary() Boundary
	// Resource names the entity in errors.
	Resource() string
	// Meta exposes the embedded metadata block.
	Meta(entity *T) *shared.Meta
	// Keys computes every key of the entity. Archived entities get no
	// projections.
	Keys(tenantID string, entity *T) (KeySet, error)
	IsArchived(entity *T) bool
	// Archive marks the entity soft-deleted.
	Archive(entity *T, now time.Time)
}

// Options are the settings shared by every repository.
type Options struct {
	Codec     *repository.CursorCodec
	Validator repository.Validator
	Clock     shared.Clock
	// ArchiveTTL is how long soft-deleted items stay in the table.
	ArchiveTTL time.Duration
	// MaxConflictRetries bounds read-modify-write retries for updates made
	// without an expected version.
	MaxConflictRetries int
	Logger             *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = shared.SystemClock
	}
	if o.ArchiveTTL <= 0 {
		o.ArchiveTTL = 30 * 24 * time.Hour
	}
	if o.MaxConflictRetries <= 0 {
		o.MaxConflictRetries = 3
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// ============================================================================
// GENERIC REPOSITORY IMPLEMENTATION
// ============================================================================

// GenericRepository provides the common operations for any entity type.
type GenericRepository[T any] struct {
	store  persistence.Store
	config EntityConfig[T]
	opts   Options
	logger *zap.Logger
}

// NewGenericRepository creates a repository for one entity type.
func NewGenericRepository[T any](store persistence.Store, config EntityConfig[T], opts Options) *GenericRepository[T] {
	opts = opts.withDefaults()
	return &GenericRepository[T]{
		store:  store,
		config: config,
		opts:   opts,
		logger: opts.Logger.Named(config.Resource()),
	}
}

// ============================================================================
// CORE CRUD OPERATIONS
// ============================================================================

// Get returns the live entity stored at key.
func (r *GenericRepository[T]) Get(ctx context.Context, tenantID string, key persistence.Key, id string) (*T, error) {
	entity, err := r.load(ctx, tenantID, key)
	if err != nil {
		return nil, err
	}
	if entity == nil || r.config.IsArchived(entity) {
		return nil, apperrors.NewNotFound(r.config.Resource(), id)
	}
	return entity, nil
}

// load reads and decodes the item at key, archived or not. A missing item
// yields nil, nil.
func (r *GenericRepository[T]) load(ctx context.Context, tenantID string, key persistence.Key) (*T, error) {
	item, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, apperrors.Wrap(err, "get "+r.config.Resource())
	}
	if item == nil {
		return nil, nil
	}
	return r.decode(tenantID, item)
}

func (r *GenericRepository[T]) decode(tenantID string, item persistence.Item) (*T, error) {
	entity := new(T)
	if err := r.config.Boundary().FromItem(tenantID, item, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// Create stamps identity, timestamps and version 1, then writes the entity
// if nothing occupies its key.
func (r *GenericRepository[T]) Create(ctx context.Context, tenantID string, entity *T) (*T, error) {
	if err := shared.ValidateID("tenantId", tenantID); err != nil {
		return nil, err
	}
	meta := r.config.Meta(entity)
	if meta.ID == "" {
		meta.ID = shared.NewID()
	}
	if err := shared.ValidateID("id", meta.ID); err != nil {
		return nil, err
	}
	now := r.opts.Clock()
	meta.CreatedAt, meta.UpdatedAt, meta.Version = now, now, 1

	item, err := r.encode(tenantID, entity, nil)
	if err != nil {
		return nil, err
	}
	if err := r.store.Put(ctx, item, persistence.MustNotExist()); err != nil {
		if !errors.Is(err, persistence.ErrConditionFailed) {
			return nil, apperrors.Wrap(err, "create "+r.config.Resource())
		}
		existing, own, err := r.landed(ctx, tenantID, persistence.KeyOf(item), *meta)
		if err != nil {
			return nil, err
		}
		if !own {
			return nil, apperrors.NewAlreadyExists(r.config.Resource(), meta.ID)
		}
		r.logger.Debug("create landed on an earlier attempt",
			zap.String("tenant_id", tenantID),
			zap.String("id", meta.ID))
		return existing, nil
	}

	r.logger.Debug("created",
		zap.String("tenant_id", tenantID),
		zap.String("id", meta.ID))
	return r.decode(tenantID, item)
}

// encode validates the entity and builds its item.
func (r *GenericRepository[T]) encode(tenantID string, entity *T, expiresAt *time.Time) (persistence.Item, error) {
	if r.opts.Validator != nil && !r.config.IsArchived(entity) {
		if err := r.opts.Validator.Struct(entity); err != nil {
			return nil, err
		}
	}
	keys, err := r.config.Keys(tenantID, entity)
	if err != nil {
		return nil, err
	}
	return r.config.Boundary().ToItem(tenantID, entity, keys, expiresAt)
}

// Mutation changes a freshly loaded entity in place. It may run more than
// once when the write races another writer.
type Mutation[T any] func(entity *T) error

// Update is a read-modify-write: load, mutate, bump version and updatedAt,
// then put the whole item guarded by the version that was read.
//
// With an expected version a lost race is a VERSION_CONFLICT. Without one the
// update is retried against the new state up to MaxConflictRetries times.
func (r *GenericRepository[T]) Update(ctx context.Context, tenantID string, key persistence.Key, id string, mutate Mutation[T], opts ...repository.WriteOption) (*T, error) {
	return r.write(ctx, tenantID, key, id, repository.ApplyWriteOptions(opts), "update", func(entity *T) (*time.Time, error) {
		return nil, mutate(entity)
	})
}

// SoftDelete archives the entity: the record stays under its primary key
// with an ExpiresAt TTL and drops out of every index.
func (r *GenericRepository[T]) SoftDelete(ctx context.Context, tenantID string, key persistence.Key, id string, opts ...repository.WriteOption) error {
	_, err := r.write(ctx, tenantID, key, id, repository.ApplyWriteOptions(opts), "soft_delete", func(entity *T) (*time.Time, error) {
		now := r.opts.Clock()
		r.config.Archive(entity, now)
		expires := now.Add(r.opts.ArchiveTTL)
		return &expires, nil
	})
	return err
}

func (r *GenericRepository[T]) write(ctx context.Context, tenantID string, key persistence.Key, id string, o repository.WriteOptions, op string, change func(*T) (*time.Time, error)) (*T, error) {
	for attempt := 0; ; attempt++ {
		current, err := r.Get(ctx, tenantID, key, id)
		if err != nil {
			return nil, err
		}
		meta := r.config.Meta(current)
		observed := meta.Version
		if o.ExpectedVersion != nil && *o.ExpectedVersion != observed {
			return nil, apperrors.NewVersionConflict(r.config.Resource(), id, *o.ExpectedVersion)
		}

		expiresAt, err := change(current)
		if err != nil {
			return nil, err
		}
		meta.ID = id
		meta.Version = observed + 1
		meta.UpdatedAt = shared.Advance(r.opts.Clock, meta.UpdatedAt)

		item, err := r.encode(tenantID, current, expiresAt)
		if err != nil {
			return nil, err
		}
		err = r.store.Put(ctx, item, persistence.VersionEquals(observed))
		if err == nil {
			return r.decode(tenantID, item)
		}
		if !errors.Is(err, persistence.ErrConditionFailed) {
			return nil, apperrors.Wrap(err, op+" "+r.config.Resource())
		}
		stored, own, err := r.landed(ctx, tenantID, key, *meta)
		if err != nil {
			return nil, err
		}
		if own {
			return stored, nil
		}

		retry, classified := r.classify(ctx, tenantID, key, id, o.ExpectedVersion, observed)
		if !retry || attempt+1 >= r.opts.MaxConflictRetries {
			return nil, classified
		}
		r.logger.Debug("retrying after concurrent write",
			zap.String("op", op),
			zap.String("id", id),
			zap.Int("attempt", attempt+1))
	}
}

// landed re-reads key after a failed condition and reports whether the item
// there is the write described by written. A write retried after its first
// attempt succeeded fails its own condition and still counts as done.
func (r *GenericRepository[T]) landed(ctx context.Context, tenantID string, key persistence.Key, written shared.Meta) (*T, bool, error) {
	current, err := r.load(ctx, tenantID, key)
	if err != nil || current == nil {
		return nil, false, err
	}
	got := r.config.Meta(current)
	own := got.ID == written.ID &&
		got.Version == written.Version &&
		got.CreatedAt.Equal(written.CreatedAt) &&
		got.UpdatedAt.Equal(written.UpdatedAt)
	return current, own, nil
}

// classify explains a failed version guard by re-reading the item. Missing
// or archived means NOT_FOUND; otherwise another writer got there first. The
// boolean reports whether a write without an expected version may retry.
func (r *GenericRepository[T]) classify(ctx context.Context, tenantID string, key persistence.Key, id string, expected *int64, observed int64) (bool, error) {
	current, err := r.load(ctx, tenantID, key)
	if err != nil {
		return false, err
	}
	if current == nil || r.config.IsArchived(current) {
		return false, apperrors.NewNotFound(r.config.Resource(), id)
	}
	if expected != nil {
		return false, apperrors.NewVersionConflict(r.config.Resource(), id, *expected)
	}
	return true, apperrors.NewVersionConflict(r.config.Resource(), id, observed)
}

// HardDelete removes the item at key. A missing item is NOT_FOUND.
func (r *GenericRepository[T]) HardDelete(ctx context.Context, key persistence.Key, id string) error {
	err := r.store.Delete(ctx, key, persistence.MustExist())
	if errors.Is(err, persistence.ErrConditionFailed) {
		return apperrors.NewNotFound(r.config.Resource(), id)
	}
	if err != nil {
		return apperrors.Wrap(err, "delete "+r.config.Resource())
	}
	return nil
}

// ============================================================================
// BATCH OPERATIONS
// ============================================================================

// BatchGet returns the live entities for ids in request order. Duplicates
// are collapsed. Any id without a live entity makes the whole call fail with
// PARTIAL_NOT_FOUND listing every such id.
func (r *GenericRepository[T]) BatchGet(ctx context.Context, tenantID string, ids []string, keyFor func(id string) persistence.Key) ([]*T, error) {
	if len(ids) == 0 {
		return []*T{}, nil
	}
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	keys := make([]persistence.Key, 0, len(ids))
	for _, id := range ids {
		if err := shared.ValidateID("ids", id); err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
		keys = append(keys, keyFor(id))
	}

	items, err := r.store.BatchGet(ctx, keys)
	if err != nil {
		return nil, apperrors.Wrap(err, "batch get "+r.config.Resource())
	}
	byKey := make(map[persistence.Key]persistence.Item, len(items))
	for _, item := range items {
		byKey[persistence.KeyOf(item)] = item
	}

	found := make([]*T, 0, len(unique))
	var missing []string
	for i, id := range unique {
		item, ok := byKey[keys[i]]
		if !ok {
			missing = append(missing, id)
			continue
		}
		entity, err := r.decode(tenantID, item)
		if err != nil {
			return nil, err
		}
		if r.config.IsArchived(entity) {
			missing = append(missing, id)
			continue
		}
		found = append(found, entity)
	}
	if len(missing) > 0 {
		return nil, apperrors.NewPartialNotFound(r.config.Resource(), missing)
	}
	return found, nil
}

// ============================================================================
// QUERY OPERATIONS
// ============================================================================

// QuerySpec is one indexed range scan.
type QuerySpec[T any] struct {
	Index      persistence.Index
	Partition  string
	Prefix     string
	Page       repository.PageRequest
	Descending bool
	// Filter drops entities from the page after they are read. The cursor
	// binds to FilterKey so a cursor cannot be replayed under another filter.
	Filter    func(*T) bool
	FilterKey string
}

// Query reads one page. Filtering happens after the store limit is applied,
// so a page may hold fewer items than requested while more remain.
func (r *GenericRepository[T]) Query(ctx context.Context, tenantID string, spec QuerySpec[T]) (*repository.Page[*T], error) {
	if err := shared.ValidateID("tenantId", tenantID); err != nil {
		return nil, err
	}
	scope := repository.CursorScope{
		TenantID:  tenantID,
		Index:     spec.Index.Label(),
		Partition: spec.Partition,
		Prefix:    spec.Prefix + "|" + spec.FilterKey,
	}
	startKey, err := r.opts.Codec.Decode(scope, spec.Index.KeyAttributes(), spec.Page.NextToken)
	if err != nil {
		return nil, err
	}

	res, err := r.store.Query(ctx, persistence.Query{
		Index:         spec.Index,
		PartitionKey:  spec.Partition,
		SortKeyPrefix: spec.Prefix,
		Limit:         int32(spec.Page.GetEffectiveLimit()),
		StartKey:      startKey,
		Descending:    spec.Descending,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "query "+r.config.Resource())
	}

	page := &repository.Page[*T]{Items: make([]*T, 0, len(res.Items)), Scanned: len(res.Items)}
	for _, item := range res.Items {
		entity, err := r.decode(tenantID, item)
		if err != nil {
			return nil, err
		}
		if r.config.IsArchived(entity) || (spec.Filter != nil && !spec.Filter(entity)) {
			page.Filtered++
			continue
		}
		page.Items = append(page.Items, entity)
	}

	page.NextCursor, err = r.opts.Codec.Encode(scope, res.LastEvaluatedKey)
	if err != nil {
		return nil, err
	}
	page.HasMore = page.NextCursor != ""
	return page, nil
}

// QueryAll pages through the whole partition range.
func (r *GenericRepository[T]) QueryAll(ctx context.Context, tenantID string, spec QuerySpec[T]) ([]*T, error) {
	var all []*T
	spec.Page = repository.NewPageRequest(repository.MaxPageSize, "")
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := r.Query(ctx, tenantID, spec)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if !page.HasMore {
			return all, nil
		}
		spec.Page.NextToken = page.NextCursor
	}
}

// filterKey renders filter settings for cursor binding.
func filterKey(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(pairs[i] + "=" + pairs[i+1])
	}
	return b.String()
}

// containsFold reports whether needle, already lower case, occurs in s.
func containsFold(s, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(s), needle)
}
