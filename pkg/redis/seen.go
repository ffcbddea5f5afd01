package redis

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SeenSet records keys that were already processed.
// Backed by SETNX when Redis is enabled, by a process-local map otherwise.
type SeenSet struct {
	client *Client
	prefix string
	ttl    time.Duration

	mu    sync.Mutex
	local map[string]struct{}
}

// NewSeenSet creates a seen-set under prefix
func NewSeenSet(client *Client, prefix string, ttl time.Duration) *SeenSet {
	return &SeenSet{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		local:  make(map[string]struct{}),
	}
}

// MarkNew marks key as seen and reports whether it was new
func (s *SeenSet) MarkNew(ctx context.Context, key string) (bool, error) {
	if s.client == nil || !s.client.Enabled() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if _, ok := s.local[key]; ok {
			return false, nil
		}
		s.local[key] = struct{}{}
		return true, nil
	}

	created, err := s.client.Redis().SetNX(ctx, s.fullKey(key), time.Now().Unix(), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("seen-set SETNX failed: %w", err)
	}
	return created, nil
}

// Has reports whether key is marked, without marking it
func (s *SeenSet) Has(ctx context.Context, key string) (bool, error) {
	if s.client == nil || !s.client.Enabled() {
		s.mu.Lock()
		defer s.mu.Unlock()

		_, ok := s.local[key]
		return ok, nil
	}

	n, err := s.client.Redis().Exists(ctx, s.fullKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("seen-set EXISTS failed: %w", err)
	}
	return n > 0, nil
}

// Forget removes key so that it is treated as new again
func (s *SeenSet) Forget(ctx context.Context, key string) error {
	if s.client == nil || !s.client.Enabled() {
		s.mu.Lock()
		delete(s.local, key)
		s.mu.Unlock()
		return nil
	}

	return s.client.Redis().Del(ctx, s.fullKey(key)).Err()
}

func (s *SeenSet) fullKey(key string) string {
	return fmt.Sprintf("%s:seen:%s", s.prefix, key)
}
