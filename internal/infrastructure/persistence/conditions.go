package persistence

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ConditionKind selects the precondition attached to a write.
type ConditionKind int

const (
	// Unconditional writes are only used for hard deletes of child items
	// that the repository has already checked.
	Unconditional ConditionKind = iota
	MustNotExistKind
	MustExistKind
	VersionEqualsKind
)

func (k ConditionKind) String() string {
	switch k {
	case MustNotExistKind:
		return "must_not_exist"
	case MustExistKind:
		return "must_exist"
	case VersionEqualsKind:
		return "version_equals"
	default:
		return "none"
	}
}

// Condition is a write precondition on the target item.
type Condition struct {
	Kind    ConditionKind
	Version int64
}

func MustNotExist() Condition { return Condition{Kind: MustNotExistKind} }

func MustExist() Condition { return Condition{Kind: MustExistKind} }

// VersionEquals requires the item to exist with exactly version n.
func VersionEquals(n int64) Condition { return Condition{Kind: VersionEqualsKind, Version: n} }

func (c Condition) IsZero() bool { return c.Kind == Unconditional }

// expression renders the condition for the DynamoDB expression builder.
func (c Condition) expression() (expression.ConditionBuilder, bool) {
	switch c.Kind {
	case MustNotExistKind:
		return expression.AttributeNotExists(expression.Name(AttrPK)), true
	case MustExistKind:
		return expression.AttributeExists(expression.Name(AttrPK)), true
	case VersionEqualsKind:
		return expression.Name(AttrVersion).Equal(expression.Value(c.Version)), true
	}
	return expression.ConditionBuilder{}, false
}

// Holds evaluates the condition against the current item, nil when absent.
func (c Condition) Holds(current Item) bool {
	switch c.Kind {
	case MustNotExistKind:
		return current == nil
	case MustExistKind:
		return current != nil
	case VersionEqualsKind:
		if current == nil {
			return false
		}
		n, ok := current[AttrVersion].(*types.AttributeValueMemberN)
		if !ok {
			return false
		}
		v, err := strconv.ParseInt(n.Value, 10, 64)
		return err == nil && v == c.Version
	}
	return true
}
