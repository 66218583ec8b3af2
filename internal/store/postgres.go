package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS kv_items (
    key        TEXT PRIMARY KEY,
    value      BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres stores items in the kv_items table.
type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	s := &Postgres{Pool: pool}
	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

func (s *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	metricGetTotal.Add(1)
	var v []byte
	err := s.Pool.QueryRow(ctx, `SELECT value FROM kv_items WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		metricGetMisses.Add(1)
		return nil, ErrNotFound
	}
	if err != nil {
		metricErrors.Add(1)
		return nil, err
	}
	return v, nil
}

func (s *Postgres) Set(ctx context.Context, key string, value []byte) error {
	metricSetTotal.Add(1)
	_, err := s.Pool.Exec(ctx, `
INSERT INTO kv_items (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, key, value)
	if err != nil {
		metricErrors.Add(1)
	}
	return err
}

func (s *Postgres) Close() error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	return nil
}
