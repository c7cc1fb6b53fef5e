// Package store defines the table-shaped persistence contract shared by the
// Postgres and PostgREST drivers. Records are decoded into a concrete row type
// at the driver boundary so callers never handle loosely typed maps on read.
package store

import (
	"context"
	"errors"
)

// Driver errors. Drivers wrap the underlying cause together with one of these.
var (
	// ErrUnavailable means the store could not be reached or timed out.
	ErrUnavailable = errors.New("store unavailable")
	// ErrConstraint means the store rejected a write on a unique, foreign key or check constraint.
	ErrConstraint = errors.New("store constraint violation")
	// ErrRejected covers any other request the store refused.
	ErrRejected = errors.New("store rejected request")
	// ErrInvalidRecord means a returned row did not match the expected record shape.
	ErrInvalidRecord = errors.New("store returned invalid record")
)

// Op is a filter operator.
type Op string

const (
	OpEq     Op = "eq"
	OpIsNull Op = "is_null"
	OpIn     Op = "in"
	OpILike  Op = "ilike"
)

// Filter restricts a read or update to matching rows.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Order sorts a read by one column.
type Order struct {
	Column string
	Desc   bool
}

// Query describes a read against one table.
type Query struct {
	Filters []Filter
	Order   []Order
	Limit   int
}

// Table is the generic record store for one collection.
type Table[T any] interface {
	// Insert writes one record and returns the stored row with server defaults applied.
	Insert(ctx context.Context, values map[string]any) (T, error)
	// Select returns the rows matching q.
	Select(ctx context.Context, q Query) ([]T, error)
	// Update applies patch to every row matching where and reports how many rows changed.
	Update(ctx context.Context, where []Filter, patch map[string]any) (int64, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Eq matches column = value.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// IsNull matches rows where column is NULL.
func IsNull(column string) Filter {
	return Filter{Column: column, Op: OpIsNull}
}

// In matches rows where column is one of values.
func In[V any](column string, values []V) Filter {
	return Filter{Column: column, Op: OpIn, Value: values}
}

// ILike matches column against a case-insensitive LIKE pattern.
func ILike(column, pattern string) Filter {
	return Filter{Column: column, Op: OpILike, Value: pattern}
}

// Active excludes soft-deleted rows.
func Active() Filter {
	return IsNull("deleted_at")
}

// Asc orders by column ascending.
func Asc(column string) Order { return Order{Column: column} }

// Desc orders by column descending.
func Desc(column string) Order { return Order{Column: column, Desc: true} }
