// Package pgstore implements store.Table on a pgx connection pool.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"orcamento_backend/platform/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Table maps one Postgres table onto rows of type T. T uses `db` struct tags
// and must declare a field for every column of the table.
type Table[T any] struct {
	pool    *pgxpool.Pool
	name    string
	timeout time.Duration
}

var _ store.Table[struct{}] = (*Table[struct{}])(nil)

// NewTable returns a Table for name. A zero timeout leaves deadlines to the caller.
func NewTable[T any](pool *pgxpool.Pool, name string, timeout time.Duration) *Table[T] {
	return &Table[T]{pool: pool, name: name, timeout: timeout}
}

// Insert implements store.Table.
func (t *Table[T]) Insert(ctx context.Context, values map[string]any) (T, error) {
	var zero T
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	sql, args := buildInsert(t.name, values)
	rows, err := t.pool.Query(ctx, sql, args...)
	if err != nil {
		return zero, classify(err)
	}
	record, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return zero, classify(err)
	}
	return record, nil
}

// Select implements store.Table.
func (t *Table[T]) Select(ctx context.Context, q store.Query) ([]T, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	sql, args, err := buildSelect(t.name, q)
	if err != nil {
		return nil, err
	}
	rows, err := t.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify(err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, classify(err)
	}
	return records, nil
}

// Update implements store.Table.
func (t *Table[T]) Update(ctx context.Context, where []store.Filter, patch map[string]any) (int64, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	sql, args, err := buildUpdate(t.name, where, patch)
	if err != nil {
		return 0, err
	}
	tag, err := t.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, classify(err)
	}
	return tag.RowsAffected(), nil
}

func (t *Table[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, t.timeout)
}

// Pinger checks pool connectivity.
type Pinger struct {
	pool *pgxpool.Pool
}

// NewPinger wraps pool as a store.Pinger.
func NewPinger(pool *pgxpool.Pool) *Pinger {
	return &Pinger{pool: pool}
}

// Ping implements store.Pinger.
func (p *Pinger) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	return nil
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func sortedColumns(values map[string]any) []string {
	cols := make([]string, 0, len(values))
	for col := range values {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func buildInsert(table string, values map[string]any) (string, []any) {
	cols := sortedColumns(values)
	names := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		names[i] = ident(col)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = values[col]
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		ident(table), strings.Join(names, ", "), strings.Join(placeholders, ", "))
	return sql, args
}

func buildSelect(table string, q store.Query) (string, []any, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT * FROM %s", ident(table))

	where, args, err := buildWhere(q.Filters, nil)
	if err != nil {
		return "", nil, err
	}
	b.WriteString(where)

	if len(q.Order) > 0 {
		parts := make([]string, len(q.Order))
		for i, o := range q.Order {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts[i] = ident(o.Column) + " " + dir
		}
		b.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	return b.String(), args, nil
}

func buildUpdate(table string, where []store.Filter, patch map[string]any) (string, []any, error) {
	if len(patch) == 0 {
		return "", nil, fmt.Errorf("%w: empty update patch", store.ErrRejected)
	}
	if len(where) == 0 {
		return "", nil, fmt.Errorf("%w: update without filter", store.ErrRejected)
	}

	cols := sortedColumns(patch)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(where))
	for i, col := range cols {
		args = append(args, patch[col])
		sets[i] = fmt.Sprintf("%s = $%d", ident(col), len(args))
	}

	whereSQL, args, err := buildWhere(where, args)
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("UPDATE %s SET %s%s", ident(table), strings.Join(sets, ", "), whereSQL)
	return sql, args, nil
}

func buildWhere(filters []store.Filter, args []any) (string, []any, error) {
	if len(filters) == 0 {
		return "", args, nil
	}
	clauses := make([]string, 0, len(filters))
	for _, f := range filters {
		col := ident(f.Column)
		switch f.Op {
		case store.OpEq:
			args = append(args, f.Value)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", col, len(args)))
		case store.OpIsNull:
			clauses = append(clauses, col+" IS NULL")
		case store.OpIn:
			args = append(args, f.Value)
			clauses = append(clauses, fmt.Sprintf("%s = ANY($%d)", col, len(args)))
		case store.OpILike:
			args = append(args, f.Value)
			clauses = append(clauses, fmt.Sprintf("%s ILIKE $%d", col, len(args)))
		default:
			return "", nil, fmt.Errorf("%w: unsupported operator %q", store.ErrRejected, f.Op)
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "23") {
			return fmt.Errorf("%w: %w", store.ErrConstraint, err)
		}
		return fmt.Errorf("%w: %w", store.ErrRejected, err)
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, pgx.ErrTooManyRows) {
		return fmt.Errorf("%w: %w", store.ErrInvalidRecord, err)
	}
	var scanErr pgx.ScanArgError
	if errors.As(err, &scanErr) {
		return fmt.Errorf("%w: %w", store.ErrInvalidRecord, err)
	}
	return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
}
