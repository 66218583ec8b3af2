package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis stores items as plain string keys under an optional prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(ctx context.Context, rawURL, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func (s *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	metricGetTotal.Add(1)
	v, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metricGetMisses.Add(1)
		return nil, ErrNotFound
	}
	if err != nil {
		metricErrors.Add(1)
		return nil, err
	}
	return v, nil
}

func (s *Redis) Set(ctx context.Context, key string, value []byte) error {
	metricSetTotal.Add(1)
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		metricErrors.Add(1)
		return err
	}
	return nil
}

func (s *Redis) Close() error { return s.client.Close() }
