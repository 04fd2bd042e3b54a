// Package redisstore keeps documents in Redis under "container/name" keys.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/artem13815/career/pkg/docstore"
)

type Store struct {
	client *redis.Client
	prefix string
}

var _ docstore.Store = (*Store)(nil)

// New connects using a redis:// URL.
func New(url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	return NewWithClient(redis.NewClient(opts), ""), nil
}

// NewWithClient wraps an existing client; prefix namespaces every key.
func NewWithClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Client() *redis.Client { return s.client }

func (s *Store) key(container, name string) string {
	return s.prefix + container + "/" + name
}

func (s *Store) Get(ctx context.Context, container, name string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.key(container, name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s/%s: %w", container, name, err)
	}
	return raw, nil
}

func (s *Store) Put(ctx context.Context, container, name string, data []byte, _ string) error {
	if err := s.client.Set(ctx, s.key(container, name), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s/%s: %w", container, name, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, container, name string) error {
	if err := s.client.Del(ctx, s.key(container, name)).Err(); err != nil {
		return fmt.Errorf("redis del %s/%s: %w", container, name, err)
	}
	return nil
}

// Lease is SET NX with expiry; Redis drops the marker after ttl.
func (s *Store) Lease(ctx context.Context, container, name string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(container, name), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s/%s: %w", container, name, err)
	}
	return ok, nil
}

func (s *Store) Close() error { return s.client.Close() }
