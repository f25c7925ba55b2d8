// Package persistence is the storage layer under the entity repositories: a
// narrow Store interface over one single-table key-value store, its DynamoDB
// and in-memory implementations, and the decorators that add retries, a
// circuit breaker, metrics and tracing.
//
// Items are DynamoDB attribute maps in every implementation, so the boundary
// transform marshals once and the in-memory store behaves like the table.
package persistence

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Reserved attribute names. Everything else on an item is a logical field of
// the entity it holds.
const (
	AttrPK         = "PK"
	AttrSK         = "SK"
	AttrGSI1PK     = "GSI1PK"
	AttrGSI1SK     = "GSI1SK"
	AttrGSI2PK     = "GSI2PK"
	AttrGSI2SK     = "GSI2SK"
	AttrTenantID   = "TenantID"
	AttrEntityType = "EntityType"
	AttrExpiresAt  = "ExpiresAt"

	// AttrVersion and AttrUpdatedAt are logical fields, but the store needs
	// them for version conditions and status writes.
	AttrVersion   = "version"
	AttrUpdatedAt = "updatedAt"
)

// ReservedAttributes lists every attribute that must never leave the
// persistence layer.
var ReservedAttributes = []string{
	AttrPK, AttrSK,
	AttrGSI1PK, AttrGSI1SK,
	AttrGSI2PK, AttrGSI2SK,
	AttrTenantID, AttrEntityType, AttrExpiresAt,
}

// ErrConditionFailed is returned by every Store when a write's Condition does
// not hold. Repositories turn it into NotFound, AlreadyExists or
// VersionConflict.
var ErrConditionFailed = errors.New("persistence: condition failed")

// Item is one stored record.
type Item = map[string]types.AttributeValue

// Key is the primary key of an item.
type Key struct {
	PartitionKey string
	SortKey      string
}

// Index describes the table or one of its global secondary indexes.
type Index struct {
	Name          string
	PartitionAttr string
	SortAttr      string
}

var (
	TableIndex = Index{PartitionAttr: AttrPK, SortAttr: AttrSK}
	// TenantIndex lists all items of one type for a tenant.
	TenantIndex = Index{Name: "GSI1", PartitionAttr: AttrGSI1PK, SortAttr: AttrGSI1SK}
	// CrossRefIndex lists items referencing a brand, persona or campaign.
	CrossRefIndex = Index{Name: "GSI2", PartitionAttr: AttrGSI2PK, SortAttr: AttrGSI2SK}
)

// IsTable reports whether the index is the base table.
func (i Index) IsTable() bool { return i.Name == "" }

// KeyAttributes lists the attributes that make up a resume key for a query
// on this index.
func (i Index) KeyAttributes() []string {
	if i.IsTable() {
		return []string{AttrPK, AttrSK}
	}
	return []string{AttrPK, AttrSK, i.PartitionAttr, i.SortAttr}
}

// Label names the index in logs, metrics and cursors.
func (i Index) Label() string {
	if i.IsTable() {
		return "table"
	}
	return i.Name
}

// Query is a key-condition query: one partition, optionally narrowed to sort
// keys with a prefix.
type Query struct {
	Index         Index
	PartitionKey  string
	SortKeyPrefix string
	Limit         int32
	// StartKey resumes after the item it identifies. Key attributes are
	// always strings in this table.
	StartKey map[string]string
	// Descending returns newest first for timestamp-suffixed sort keys.
	Descending bool
}

// QueryResult is one page of a query.
type QueryResult struct {
	Items []Item
	// LastEvaluatedKey is set only when more items may follow.
	LastEvaluatedKey map[string]string
}

// Update changes named top-level attributes of an existing item. Set values
// are plain Go values; they are marshalled by the store.
type Update struct {
	Set    map[string]any
	Remove []string
}

// Store is the storage contract the repositories are written against.
// Get returns a nil item and no error when nothing is stored at the key.
type Store interface {
	Get(ctx context.Context, key Key) (Item, error)
	Put(ctx context.Context, item Item, cond Condition) error
	Update(ctx context.Context, key Key, update Update, cond Condition) error
	Delete(ctx context.Context, key Key, cond Condition) error
	Query(ctx context.Context, query Query) (*QueryResult, error)
	// BatchGet returns the items found, in no particular order. Missing keys
	// are simply absent from the result.
	BatchGet(ctx context.Context, keys []Key) ([]Item, error)
}

// KeyOf reads the primary key of an item.
func KeyOf(item Item) Key {
	return Key{PartitionKey: StringAttr(item, AttrPK), SortKey: StringAttr(item, AttrSK)}
}

// StringAttr returns a string attribute or "" when absent or not a string.
func StringAttr(item Item, name string) string {
	if s, ok := item[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

// CopyItem returns a shallow copy, enough for callers that add, rename or
// drop top-level attributes.
func CopyItem(item Item) Item {
	if item == nil {
		return nil
	}
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
