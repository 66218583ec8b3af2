package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrUnsupported = errors.New("unsupported_store_url")
)

// KV is the persisted key-value store behind the analysis cache and timing
// records. Values are opaque bytes and never expire.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open picks a backend from the URL scheme: memory://, postgres://,
// postgresql://, redis://, rediss:// or sqlite://<path>.
func Open(ctx context.Context, rawURL string) (KV, error) {
	rawURL = strings.TrimSpace(rawURL)
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, rawURL)
	}
	switch strings.ToLower(scheme) {
	case "memory", "mem":
		return NewMemory(), nil
	case "postgres", "postgresql":
		return NewPostgres(ctx, rawURL)
	case "redis", "rediss":
		return NewRedis(ctx, rawURL, "")
	case "sqlite", "sqlite3", "file":
		return NewSQLite(ctx, rest)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, scheme)
}
