package persistence

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MemoryStore is an in-process Store with the same observable semantics as
// the DynamoDB table: conditional writes, sparse indexes, prefix queries
// and resume keys. It backs local development and the package tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[Key]Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[Key]Item)}
}

func (s *MemoryStore) Get(ctx context.Context, key Key) (Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CopyItem(s.items[key]), nil
}

func (s *MemoryStore) Put(ctx context.Context, item Item, cond Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := KeyOf(item)
	if key.PartitionKey == "" || key.SortKey == "" {
		return fmt.Errorf("memory put: item has no primary key")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !cond.Holds(s.items[key]) {
		return fmt.Errorf("memory put: %w", ErrConditionFailed)
	}
	s.items[key] = CopyItem(item)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, key Key, update Update, cond Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	set := make(Item, len(update.Set))
	for name, value := range update.Set {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return fmt.Errorf("memory update: marshal %s: %w", name, err)
		}
		set[name] = av
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.items[key]
	if !cond.Holds(current) {
		return fmt.Errorf("memory update: %w", ErrConditionFailed)
	}
	next := CopyItem(current)
	if next == nil {
		// UpdateItem creates the item when unconditional.
		next = keyAttributes(key)
	}
	for name, av := range set {
		next[name] = av
	}
	for _, name := range update.Remove {
		delete(next, name)
	}
	s.items[key] = next
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key Key, cond Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !cond.Holds(s.items[key]) {
		return fmt.Errorf("memory delete: %w", ErrConditionFailed)
	}
	delete(s.items, key)
	return nil
}

// Query orders by the index sort key, then by primary key, which makes the
// order total even where index sort keys collide.
func (s *MemoryStore) Query(ctx context.Context, query Query) (*QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := query.Index
	if idx.PartitionAttr == "" {
		idx = TableIndex
	}

	s.mu.RLock()
	var matched []Item
	for _, item := range s.items {
		pk, ok := stringAttr(item, idx.PartitionAttr)
		if !ok || pk != query.PartitionKey {
			continue
		}
		sk, ok := stringAttr(item, idx.SortAttr)
		if !ok || !strings.HasPrefix(sk, query.SortKeyPrefix) {
			continue
		}
		matched = append(matched, CopyItem(item))
	}
	s.mu.RUnlock()

	less := func(a, b Item) bool {
		ak, bk := orderKey(a, idx), orderKey(b, idx)
		for i := range ak {
			if ak[i] != bk[i] {
				return ak[i] < bk[i]
			}
		}
		return false
	}
	sort.Slice(matched, func(i, j int) bool {
		if query.Descending {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	if len(query.StartKey) > 0 {
		start := make(Item, len(query.StartKey))
		for name, value := range query.StartKey {
			start[name] = stringValue(value)
		}
		pos := sort.Search(len(matched), func(i int) bool {
			if query.Descending {
				return less(matched[i], start)
			}
			return less(start, matched[i])
		})
		matched = matched[pos:]
	}

	result := &QueryResult{Items: matched}
	if query.Limit > 0 && len(matched) > int(query.Limit) {
		result.Items = matched[:query.Limit]
		last := result.Items[len(result.Items)-1]
		result.LastEvaluatedKey = make(map[string]string)
		for _, name := range idx.KeyAttributes() {
			result.LastEvaluatedKey[name] = StringAttr(last, name)
		}
	}
	return result, nil
}

func (s *MemoryStore) BatchGet(ctx context.Context, keys []Key) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []Item
	for _, key := range keys {
		if item, ok := s.items[key]; ok {
			items = append(items, CopyItem(item))
		}
	}
	return items, nil
}

// Len reports how many items are stored, archived ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Raw returns the stored item as the table holds it, reserved attributes
// included.
func (s *MemoryStore) Raw(key Key) Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CopyItem(s.items[key])
}

func orderKey(item Item, idx Index) [3]string {
	return [3]string{StringAttr(item, idx.SortAttr), StringAttr(item, AttrPK), StringAttr(item, AttrSK)}
}

func stringAttr(item Item, name string) (string, bool) {
	if _, ok := item[name]; !ok {
		return "", false
	}
	return StringAttr(item, name), true
}

func stringValue(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}
