package pgstore

import (
	"errors"
	"fmt"
	"testing"

	"orcamento_backend/platform/store"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestBuildInsertOrdersColumns(t *testing.T) {
	sql, args := buildInsert("quotes", map[string]any{
		"quote_name":   "Site",
		"client_name":  "João",
		"quote_number": "ORC-1",
	})

	want := `INSERT INTO "quotes" ("client_name", "quote_name", "quote_number") VALUES ($1, $2, $3) RETURNING *`
	if sql != want {
		t.Fatalf("unexpected sql:\n%s", sql)
	}
	if len(args) != 3 || args[0] != "João" || args[2] != "ORC-1" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestBuildSelectWithFiltersOrderAndLimit(t *testing.T) {
	sql, args, err := buildSelect("quotes", store.Query{
		Filters: []store.Filter{
			store.Active(),
			store.Eq("id", "abc"),
			store.In("client_id", []string{"a", "b"}),
			store.ILike("quote_name", "%site%"),
		},
		Order: []store.Order{store.Desc("created_at"), store.Asc("quote_number")},
		Limit: 10,
	})
	if err != nil {
		t.Fatalf("buildSelect: %v", err)
	}

	want := `SELECT * FROM "quotes" WHERE "deleted_at" IS NULL AND "id" = $1 AND "client_id" = ANY($2) AND "quote_name" ILIKE $3 ORDER BY "created_at" DESC, "quote_number" ASC LIMIT 10`
	if sql != want {
		t.Fatalf("unexpected sql:\n%s", sql)
	}
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(args))
	}
}

func TestBuildSelectQuotesIdentifiers(t *testing.T) {
	sql, _, err := buildSelect(`quotes"; DROP TABLE quotes; --`, store.Query{})
	if err != nil {
		t.Fatalf("buildSelect: %v", err)
	}
	want := `SELECT * FROM "quotes""; DROP TABLE quotes; --"`
	if sql != want {
		t.Fatalf("identifier not sanitized: %s", sql)
	}
}

func TestBuildUpdateNumbersPatchBeforeFilters(t *testing.T) {
	sql, args, err := buildUpdate("quotes",
		[]store.Filter{store.Eq("id", "q1"), store.Active()},
		map[string]any{"updated_at": "now", "deleted_at": "now"},
	)
	if err != nil {
		t.Fatalf("buildUpdate: %v", err)
	}

	want := `UPDATE "quotes" SET "deleted_at" = $1, "updated_at" = $2 WHERE "id" = $3 AND "deleted_at" IS NULL`
	if sql != want {
		t.Fatalf("unexpected sql:\n%s", sql)
	}
	if len(args) != 3 || args[2] != "q1" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestBuildUpdateRequiresFilter(t *testing.T) {
	_, _, err := buildUpdate("quotes", nil, map[string]any{"deleted_at": "now"})
	if !errors.Is(err, store.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestClassifyConstraintViolation(t *testing.T) {
	err := classify(fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", Message: "duplicate key"}))
	if !errors.Is(err, store.ErrConstraint) {
		t.Fatalf("expected ErrConstraint, got %v", err)
	}

	err = classify(errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"))
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
