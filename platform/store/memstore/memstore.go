// Package memstore is an in-process store.Table used for local development
// and as the backing fake in package tests. Rows are kept as JSON-shaped maps
// and decoded into T on every read, so T needs `json` tags named after columns.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"orcamento_backend/platform/store"

	"github.com/google/uuid"
)

// Table is a mutex-guarded slice of rows.
type Table[T any] struct {
	mu      sync.Mutex
	rows    []map[string]any
	unique  []string
	now     func() time.Time
	failErr error
	calls   Calls
}

// Calls counts operations issued against a Table.
type Calls struct {
	Inserts int
	Selects int
	Updates int
}

var _ store.Table[struct{}] = (*Table[struct{}])(nil)

// Option configures a Table.
type Option func(*tableOptions)

type tableOptions struct {
	unique []string
	now    func() time.Time
}

// WithUnique rejects inserts that repeat a value already present in column.
func WithUnique(columns ...string) Option {
	return func(o *tableOptions) { o.unique = append(o.unique, columns...) }
}

// WithClock overrides the timestamp source for created_at and updated_at defaults.
func WithClock(now func() time.Time) Option {
	return func(o *tableOptions) { o.now = now }
}

// NewTable returns an empty table. Inserted rows get id, created_at,
// updated_at and deleted_at defaults when the caller omits them.
func NewTable[T any](opts ...Option) *Table[T] {
	o := tableOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Table[T]{unique: o.unique, now: o.now}
}

// Fail makes every subsequent call return err wrapped as store.ErrUnavailable.
// Passing nil restores normal behaviour.
func (t *Table[T]) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failErr = err
}

// Calls returns the operation counters.
func (t *Table[T]) Calls() Calls {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// Seed inserts rows verbatim, bypassing defaults and counters.
func (t *Table[T]) Seed(rows ...map[string]any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, values := range rows {
		row, err := normalize(values)
		if err != nil {
			return err
		}
		t.rows = append(t.rows, row)
	}
	return nil
}

// Insert implements store.Table.
func (t *Table[T]) Insert(ctx context.Context, values map[string]any) (T, error) {
	var zero T
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls.Inserts++

	if err := t.check(ctx); err != nil {
		return zero, err
	}

	row, err := normalize(values)
	if err != nil {
		return zero, err
	}
	now := t.now().UTC().Format(time.RFC3339Nano)
	setDefault(row, "id", uuid.NewString())
	setDefault(row, "created_at", now)
	setDefault(row, "updated_at", now)
	setDefault(row, "deleted_at", nil)

	for _, col := range t.unique {
		for _, existing := range t.rows {
			if existing[col] != nil && reflect.DeepEqual(existing[col], row[col]) {
				return zero, fmt.Errorf("%w: duplicate value for %s", store.ErrConstraint, col)
			}
		}
	}

	created, err := decodeRow[T](row)
	if err != nil {
		return zero, err
	}
	t.rows = append(t.rows, row)
	return created, nil
}

// Select implements store.Table.
func (t *Table[T]) Select(ctx context.Context, q store.Query) ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls.Selects++

	if err := t.check(ctx); err != nil {
		return nil, err
	}

	matched, err := t.match(q.Filters)
	if err != nil {
		return nil, err
	}
	sortRows(matched, q.Order)
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]T, 0, len(matched))
	for _, row := range matched {
		record, err := decodeRow[T](row)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

// Update implements store.Table.
func (t *Table[T]) Update(ctx context.Context, where []store.Filter, patch map[string]any) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls.Updates++

	if err := t.check(ctx); err != nil {
		return 0, err
	}
	if len(where) == 0 {
		return 0, fmt.Errorf("%w: update without filter", store.ErrRejected)
	}

	normalized, err := normalize(patch)
	if err != nil {
		return 0, err
	}
	matched, err := t.match(where)
	if err != nil {
		return 0, err
	}
	for _, row := range matched {
		for col, value := range normalized {
			row[col] = value
		}
	}
	return int64(len(matched)), nil
}

func (t *Table[T]) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	if t.failErr != nil {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, t.failErr)
	}
	return nil
}

func (t *Table[T]) match(filters []store.Filter) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(t.rows))
	for _, row := range t.rows {
		ok, err := matchesAll(row, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func matchesAll(row map[string]any, filters []store.Filter) (bool, error) {
	for _, f := range filters {
		ok, err := matches(row[f.Column], f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matches(value any, f store.Filter) (bool, error) {
	switch f.Op {
	case store.OpIsNull:
		return value == nil, nil
	case store.OpEq:
		want, err := jsonValue(f.Value)
		if err != nil {
			return false, err
		}
		return value != nil && reflect.DeepEqual(value, want), nil
	case store.OpIn:
		list, err := jsonValue(f.Value)
		if err != nil {
			return false, err
		}
		items, ok := list.([]any)
		if !ok {
			return false, fmt.Errorf("%w: in filter needs a slice, got %T", store.ErrRejected, f.Value)
		}
		for _, item := range items {
			if value != nil && reflect.DeepEqual(value, item) {
				return true, nil
			}
		}
		return false, nil
	case store.OpILike:
		text, ok := value.(string)
		if !ok {
			return false, nil
		}
		pattern, _ := f.Value.(string)
		return likeRegexp(pattern).MatchString(text), nil
	default:
		return false, fmt.Errorf("%w: unsupported operator %q", store.ErrRejected, f.Op)
	}
}

func likeRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

func sortRows(rows []map[string]any, order []store.Order) {
	if len(order) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range order {
			c := compare(rows[i][o.Column], rows[j][o.Column])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compare orders NULL above every value, as Postgres does by default.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	switch av := a.(type) {
	case float64:
		bv, _ := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv, _ := b.(string)
		at, aerr := time.Parse(time.RFC3339Nano, av)
		bt, berr := time.Parse(time.RFC3339Nano, bv)
		if aerr == nil && berr == nil {
			return at.Compare(bt)
		}
		return strings.Compare(av, bv)
	case bool:
		bv, _ := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func setDefault(row map[string]any, col string, value any) {
	if _, ok := row[col]; !ok {
		row[col] = value
	}
}

// normalize round-trips values through JSON so rows hold the same shapes a
// remote store would return.
func normalize(values map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrRejected, err)
	}
	row := map[string]any{}
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrRejected, err)
	}
	return row, nil
}

func jsonValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrRejected, err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrRejected, err)
	}
	return out, nil
}

func decodeRow[T any](row map[string]any) (T, error) {
	var record T
	raw, err := json.Marshal(row)
	if err != nil {
		return record, fmt.Errorf("%w: %w", store.ErrInvalidRecord, err)
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return record, fmt.Errorf("%w: %w", store.ErrInvalidRecord, err)
	}
	return record, nil
}
