package dynamodb

import (
	"fmt"
	"strings"
	"time"

	"social-campaign-backend/internal/domain/shared"
	"social-campaign-backend/internal/infrastructure/persistence"
)

// ============================================================================
// KEY SCHEME
// ============================================================================

// Entity type names. They double as the EntityType attribute, the tenant
// index partition suffix and the member sort key prefix.
const (
	TypeBrand    = "BRAND"
	TypePersona  = "PERSONA"
	TypeCampaign = "CAMPAIGN"
	TypePost     = "POST"
	TypeAsset    = "ASSET"

	// MetadataSortKey marks the singleton item of a partition.
	MetadataSortKey = "METADATA"

	refIndustry = "INDUSTRY"

	personaActive = "ACTIVE"
)

// sortTimeLayout is fixed width so timestamps sort lexically.
const sortTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatSortTime renders t for use inside a sort key.
func FormatSortTime(t time.Time) string {
	return t.UTC().Format(sortTimeLayout)
}

func join(parts ...string) string {
	return strings.Join(parts, shared.KeyDelimiter)
}

// PartitionKey builds {tenantId}#{scopeId}.
func PartitionKey(tenantID, scopeID string) string {
	return join(tenantID, scopeID)
}

// MetadataKey addresses the singleton item of a brand, persona or campaign.
func MetadataKey(tenantID, id string) persistence.Key {
	return persistence.Key{PartitionKey: PartitionKey(tenantID, id), SortKey: MetadataSortKey}
}

// MemberKey addresses a post or asset inside its parent's partition.
func MemberKey(tenantID, parentID, memberType, localID string) persistence.Key {
	return persistence.Key{PartitionKey: PartitionKey(tenantID, parentID), SortKey: join(memberType, localID)}
}

// MemberPrefix is the sort key prefix shared by all members of a type.
func MemberPrefix(memberType string) string {
	return memberType + shared.KeyDelimiter
}

// TenantListPartition is the tenant index partition listing one entity type.
func TenantListPartition(tenantID, entityType string) string {
	return join(tenantID, entityType)
}

// TenantListSort is {segment}#{createdAt}; segment is a status or category.
func TenantListSort(segment string, createdAt time.Time) string {
	return join(segment, FormatSortTime(createdAt))
}

// SegmentPrefix narrows a tenant list to one status or category.
func SegmentPrefix(segment string) string {
	if segment == "" {
		return ""
	}
	return segment + shared.KeyDelimiter
}

// CrossRefPartition is {tenantId}#{refType}#{refId}.
func CrossRefPartition(tenantID, refType, refID string) string {
	return join(tenantID, refType, refID)
}

// CrossRefSort is {TYPE}#{createdAt}#{id}.
func CrossRefSort(entityType string, createdAt time.Time, id string) string {
	return join(entityType, FormatSortTime(createdAt), id)
}

// IndexKey is the partition and sort value of one secondary projection.
type IndexKey struct {
	PartitionKey string
	SortKey      string
}

// KeySet holds every key an item carries. Missing projections are nil and
// the item is left out of that index.
type KeySet struct {
	Primary    persistence.Key
	TenantList *IndexKey
	CrossRef   *IndexKey
}

// Attributes flattens the key set into item attributes.
func (k KeySet) Attributes() map[string]string {
	attrs := map[string]string{
		persistence.AttrPK: k.Primary.PartitionKey,
		persistence.AttrSK: k.Primary.SortKey,
	}
	if k.TenantList != nil {
		attrs[persistence.AttrGSI1PK] = k.TenantList.PartitionKey
		attrs[persistence.AttrGSI1SK] = k.TenantList.SortKey
	}
	if k.CrossRef != nil {
		attrs[persistence.AttrGSI2PK] = k.CrossRef.PartitionKey
		attrs[persistence.AttrGSI2SK] = k.CrossRef.SortKey
	}
	return attrs
}

// ParsedKey is a primary key split back into its parts.
type ParsedKey struct {
	TenantID string
	ScopeID  string
	// MemberType and LocalID are empty for METADATA items.
	MemberType string
	LocalID    string
}

// ParseKey splits a primary key built by this package.
func ParseKey(key persistence.Key) (ParsedKey, error) {
	pk := strings.Split(key.PartitionKey, shared.KeyDelimiter)
	if len(pk) != 2 || pk[0] == "" || pk[1] == "" {
		return ParsedKey{}, fmt.Errorf("malformed partition key %q", key.PartitionKey)
	}
	parsed := ParsedKey{TenantID: pk[0], ScopeID: pk[1]}
	if key.SortKey == MetadataSortKey {
		return parsed, nil
	}
	sk := strings.Split(key.SortKey, shared.KeyDelimiter)
	if len(sk) != 2 || sk[1] == "" {
		return ParsedKey{}, fmt.Errorf("malformed sort key %q", key.SortKey)
	}
	switch sk[0] {
	case TypePost, TypeAsset:
	default:
		return ParsedKey{}, fmt.Errorf("unknown member type %q", sk[0])
	}
	parsed.MemberType, parsed.LocalID = sk[0], sk[1]
	return parsed, nil
}

// validateSegments rejects values that would corrupt a composite key.
func validateSegments(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := shared.ValidateID(pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}
