package dynamodb

import (
	"strconv"
	"time"

	apperrors "social-campaign-backend/internal/errors"
	"social-campaign-backend/internal/infrastructure/persistence"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// boundaryIDAttribute is the id field of every boundary object.
const boundaryIDAttribute = "id"

// Boundary converts between boundary objects and stored items for one
// entity type. Inbound it renames id to the entity's own id attribute and
// stamps keys, tenant and type; outbound it strips every reserved attribute
// and renames back. Both directions are idempotent.
type Boundary struct {
	EntityType  string
	IDAttribute string
}

// ToItem marshals dto and stamps the storage attributes. expiresAt, when set,
// becomes the TTL attribute in epoch seconds.
func (b Boundary) ToItem(tenantID string, dto any, keys KeySet, expiresAt *time.Time) (persistence.Item, error) {
	item, err := attributevalue.MarshalMap(dto)
	if err != nil {
		return nil, apperrors.NewInternal("marshal "+b.EntityType, err)
	}
	b.sanitize(item)
	if _, clash := item[b.IDAttribute]; clash {
		return nil, apperrors.NewInternal(b.EntityType+" already carries "+b.IDAttribute, nil)
	}
	if id, ok := item[boundaryIDAttribute]; ok {
		item[b.IDAttribute] = id
		delete(item, boundaryIDAttribute)
	}

	for name, value := range keys.Attributes() {
		item[name] = &types.AttributeValueMemberS{Value: value}
	}
	item[persistence.AttrTenantID] = &types.AttributeValueMemberS{Value: tenantID}
	item[persistence.AttrEntityType] = &types.AttributeValueMemberS{Value: b.EntityType}
	if expiresAt != nil {
		item[persistence.AttrExpiresAt] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt.Unix(), 10)}
	}
	return item, nil
}

// FromItem strips storage attributes and unmarshals into out. Items of
// another tenant or type are refused outright.
func (b Boundary) FromItem(tenantID string, item persistence.Item, out any) error {
	if got := persistence.StringAttr(item, persistence.AttrTenantID); got != tenantID {
		return apperrors.NewInternal("item belongs to another tenant", nil)
	}
	if got := persistence.StringAttr(item, persistence.AttrEntityType); got != b.EntityType {
		return apperrors.NewInternal("expected "+b.EntityType+" item, found "+got, nil)
	}
	if err := attributevalue.UnmarshalMap(b.Strip(item), out); err != nil {
		return apperrors.NewInternal("unmarshal "+b.EntityType, err)
	}
	return nil
}

// Strip returns the logical view of item: reserved attributes removed and
// the entity id attribute renamed to id. item itself is not modified.
func (b Boundary) Strip(item persistence.Item) persistence.Item {
	out := persistence.CopyItem(item)
	b.sanitize(out)
	if id, ok := out[b.IDAttribute]; ok {
		out[boundaryIDAttribute] = id
		delete(out, b.IDAttribute)
	}
	return out
}

func (b Boundary) sanitize(item persistence.Item) {
	for _, name := range persistence.ReservedAttributes {
		delete(item, name)
	}
}
