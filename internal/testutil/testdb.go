package testutil

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/zbennett/bbo-extension/internal/config"
	"github.com/zbennett/bbo-extension/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var testSchemaNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// OpenSQLite opens a store in a fresh temp directory.
func OpenSQLite(t *testing.T) *store.SQLite {
	t.Helper()
	st, err := store.NewSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// OpenPostgres opens a store inside a throwaway schema. Skips without TEST_POSTGRES_DSN.
func OpenPostgres(t *testing.T) *store.Postgres {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil || cfg.TestPostgresDSN == "" {
		t.Skip("skip test db: TEST_POSTGRES_DSN not set")
	}
	dsn := cfg.TestPostgresDSN
	schema := fmt.Sprintf("test_%d", time.Now().UnixNano())
	base, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open base db: %v", err)
	}
	createSchemaSQL, err := schemaDDL("CREATE SCHEMA %s", schema)
	if err != nil {
		base.Close()
		t.Fatalf("invalid schema name: %v", err)
	}
	if _, err := base.Exec(context.Background(), createSchemaSQL); err != nil {
		base.Close()
		t.Fatalf("create schema: %v", err)
	}
	base.Close()

	st, err := store.NewPostgres(context.Background(), withSearchPath(dsn, schema))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
		base, err := pgxpool.New(context.Background(), dsn)
		if err == nil {
			if dropSchemaSQL, ddlErr := schemaDDL("DROP SCHEMA %s CASCADE", schema); ddlErr == nil {
				_, _ = base.Exec(context.Background(), dropSchemaSQL)
			}
			base.Close()
		}
	})
	return st
}

// OpenRedis connects to TEST_REDIS_ADDR with a per-test key prefix. Skips when unset.
func OpenRedis(t *testing.T) *store.Redis {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil || cfg.TestRedisAddr == "" {
		t.Skip("skip test redis: TEST_REDIS_ADDR not set")
	}
	addr := cfg.TestRedisAddr
	if !strings.Contains(addr, "://") {
		addr = "redis://" + addr
	}
	st, err := store.NewRedis(context.Background(), addr, fmt.Sprintf("test_%d:", time.Now().UnixNano()))
	if err != nil {
		t.Fatalf("open redis store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + url.QueryEscape(schema)
}

func schemaDDL(format, schema string) (string, error) {
	if !testSchemaNamePattern.MatchString(schema) {
		return "", fmt.Errorf("schema %q does not match required pattern", schema)
	}
	return fmt.Sprintf(format, pgx.Identifier{schema}.Sanitize()), nil
}
