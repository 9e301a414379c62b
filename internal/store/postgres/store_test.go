package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/store"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/store/storetest"
)

func TestPostgresStoreConformance(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		s, err := Open(ctx, url)
		if err != nil {
			t.Fatalf("open postgres store: %v", err)
		}
		if _, err := s.pool.Exec(ctx, "TRUNCATE players, teams, matches"); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestOpenRequiresURL(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestUniqueKey(t *testing.T) {
	nameErr := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "players_name_key"}
	if key, ok := uniqueKey(nameErr, "players_name_key", "Ana", "p1"); !ok || key != "Ana" {
		t.Fatalf("expected name collision, got %q %v", key, ok)
	}
	pkErr := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "players_pkey"}
	if key, ok := uniqueKey(pkErr, "players_name_key", "Ana", "p1"); !ok || key != "p1" {
		t.Fatalf("expected id collision, got %q %v", key, ok)
	}
	if _, ok := uniqueKey(&pgconn.PgError{Code: "23503"}, "", "", ""); ok {
		t.Fatalf("expected non-unique code to be ignored")
	}
	if _, ok := uniqueKey(errors.New("boom"), "", "", ""); ok {
		t.Fatalf("expected plain error to be ignored")
	}
}
