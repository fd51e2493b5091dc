package repository_test

import (
	"context"
	"fmt"
	"math/big"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/platewise"
	"github.com/jacentio/platewise/entity"
	"github.com/jacentio/platewise/repository"
	"github.com/jacentio/platewise/store"
)

// memBackend is an in-memory table with the conditional semantics of the
// DynamoDB store. Numbers are added as exact decimals.
type memBackend struct {
	mu   sync.Mutex
	rows map[string]map[string]types.AttributeValue

	createErr func(e store.Entity) error
	updateErr func(id string, in store.UpdateInput) error
	deleteErr func(id string) error
	queryErr  error

	// afterDelete runs after a row has been removed.
	afterDelete func(ctx context.Context, id string)

	updates []updateCall
}

type updateCall struct {
	ID string
	In store.UpdateInput
}

var _ repository.Backend = (*memBackend)(nil)

func newMemBackend() *memBackend {
	return &memBackend{rows: map[string]map[string]types.AttributeValue{}}
}

func keyID(key store.PK) string {
	return entity.IDOf(key)
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func (m *memBackend) Get(_ context.Context, key store.PK) (map[string]types.AttributeValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[keyID(key)]
	if !ok {
		return nil, platewise.ErrNotFound
	}
	return copyItem(row), nil
}

func (m *memBackend) Create(_ context.Context, e store.Entity, item map[string]types.AttributeValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		if err := m.createErr(e); err != nil {
			return err
		}
	}
	id := entity.IDOf(item)
	if _, ok := m.rows[id]; ok {
		return fmt.Errorf("%w: %s already exists", platewise.ErrConflict, e.EntityRef())
	}
	m.rows[id] = copyItem(item)
	return nil
}

func (m *memBackend) Update(ctx context.Context, key store.PK, in store.UpdateInput) (map[string]types.AttributeValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := keyID(key)
	m.updates = append(m.updates, updateCall{ID: id, In: in})
	if m.updateErr != nil {
		if err := m.updateErr(id, in); err != nil {
			return nil, err
		}
	}

	row, ok := m.rows[id]
	if !ok || (in.RequireType != "" && entity.TypeOf(row) != in.RequireType) {
		return nil, platewise.ErrNotFound
	}
	for attr, want := range in.Expect {
		if !sameValue(row[attr], want) {
			return nil, fmt.Errorf("%w: row changed since it was read", platewise.ErrConflict)
		}
	}

	next := copyItem(row)
	for attr, v := range in.Set {
		next[attr] = v
	}
	for attr, v := range in.Increment {
		cur, ok := next[attr].(*types.AttributeValueMemberN)
		if !ok {
			return nil, fmt.Errorf("increment of non-numeric attribute %q", attr)
		}
		sum, err := addDecimal(cur.Value, v.(*types.AttributeValueMemberN).Value)
		if err != nil {
			return nil, err
		}
		next[attr] = &types.AttributeValueMemberN{Value: sum}
	}
	for _, attr := range in.Remove {
		delete(next, attr)
	}
	m.rows[id] = next
	return copyItem(next), nil
}

// Delete runs deleteErr before taking the lock and afterDelete once the row
// is gone, so hooks may block on each other.
func (m *memBackend) Delete(ctx context.Context, key store.PK, entityType string) (map[string]types.AttributeValue, error) {
	id := keyID(key)
	if m.deleteErr != nil {
		if err := m.deleteErr(id); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	row, ok := m.rows[id]
	if !ok || entity.TypeOf(row) != entityType {
		m.mu.Unlock()
		return nil, platewise.ErrNotFound
	}
	delete(m.rows, id)
	m.mu.Unlock()

	if m.afterDelete != nil {
		m.afterDelete(ctx, id)
	}
	return row, nil
}

func (m *memBackend) QueryPage(_ context.Context, in store.QueryInput) (*store.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if err := in.Condition.Validate(); err != nil {
		return nil, err
	}

	matched := m.match(in.Condition)
	if in.Descending {
		slices.Reverse(matched)
	}
	start := 0
	if len(in.StartKey) > 0 {
		after := keyID(in.StartKey)
		for i, item := range matched {
			if entity.IDOf(item) == after {
				start = i + 1
				break
			}
		}
	}
	matched = matched[start:]

	page := &store.Page{}
	if in.Limit > 0 && len(matched) > int(in.Limit) {
		matched = matched[:in.Limit]
		last := matched[len(matched)-1]
		page.LastKey = store.PK{
			entity.AttrID:   last[entity.AttrID],
			entity.AttrType: last[entity.AttrType],
		}
		if in.Condition.Attribute != "" {
			page.LastKey[in.Condition.Attribute] = last[in.Condition.Attribute]
		}
	}
	for _, item := range matched {
		page.Items = append(page.Items, project(item, in.Projection))
	}
	return page, nil
}

func (m *memBackend) QueryAll(ctx context.Context, in store.QueryInput) ([]map[string]types.AttributeValue, error) {
	in.Limit = 0
	in.StartKey = nil
	page, err := m.QueryPage(ctx, in)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// match returns the rows satisfying cond in index order.
func (m *memBackend) match(cond store.KeyCondition) []map[string]types.AttributeValue {
	rangeAttr := cond.Attribute
	if rangeAttr == "" {
		rangeAttr = entity.AttrID
	}

	var out []map[string]types.AttributeValue
	for _, row := range m.rows {
		if entity.TypeOf(row) != cond.EntityType {
			continue
		}
		v, ok := row[rangeAttr].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		if !compare(v.Value, cond) {
			continue
		}
		out = append(out, copyItem(row))
	}

	rangeOf := func(item map[string]types.AttributeValue) string {
		return item[rangeAttr].(*types.AttributeValueMemberS).Value
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := rangeOf(out[i]), rangeOf(out[j])
		if ri != rj {
			return ri < rj
		}
		return entity.IDOf(out[i]) < entity.IDOf(out[j])
	})
	return out
}

func compare(v string, cond store.KeyCondition) bool {
	switch cond.Op {
	case store.OpNone:
		return true
	case store.OpEqual:
		return v == cond.Values[0]
	case store.OpBeginsWith:
		return strings.HasPrefix(v, cond.Values[0])
	case store.OpBetween:
		return v >= cond.Values[0] && v <= cond.Values[1]
	case store.OpGreaterOrEqual:
		return v >= cond.Values[0]
	case store.OpLessOrEqual:
		return v <= cond.Values[0]
	default:
		return false
	}
}

func project(item map[string]types.AttributeValue, attrs []string) map[string]types.AttributeValue {
	if len(attrs) == 0 {
		return item
	}
	out := make(map[string]types.AttributeValue, len(attrs))
	for _, attr := range attrs {
		if v, ok := item[attr]; ok {
			out[attr] = v
		}
	}
	return out
}

func sameValue(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		if !ok {
			return false
		}
		x, okx := new(big.Rat).SetString(av.Value)
		y, oky := new(big.Rat).SetString(bv.Value)
		return okx && oky && x.Cmp(y) == 0
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	default:
		return false
	}
}

// addDecimal adds two decimal strings exactly.
func addDecimal(a, b string) (string, error) {
	x, ok := new(big.Rat).SetString(a)
	if !ok {
		return "", fmt.Errorf("bad number %q", a)
	}
	y, ok := new(big.Rat).SetString(b)
	if !ok {
		return "", fmt.Errorf("bad number %q", b)
	}
	sum := x.Add(x, y)
	if sum.IsInt() {
		return sum.Num().String(), nil
	}
	s := sum.FloatString(10)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, "."), nil
}

// --- helpers for tests ---

func (m *memBackend) put(item map[string]types.AttributeValue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[entity.IDOf(item)] = copyItem(item)
}

func (m *memBackend) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
}

func (m *memBackend) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	return ok
}

func (m *memBackend) count(entityType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, row := range m.rows {
		if entity.TypeOf(row) == entityType {
			n++
		}
	}
	return n
}

func (m *memBackend) aggregateUpdates(op func(updateCall) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, call := range m.updates {
		if call.In.RequireType == entity.TypeFoodItem && len(call.In.Increment) > 0 && op(call) {
			n++
		}
	}
	return n
}
