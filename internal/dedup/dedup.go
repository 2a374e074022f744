// Package dedup drops repeated inquiries. A submission is recognised by the
// fingerprint of its fields and remembered for a TTL.
package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is how long a fingerprint is remembered.
	DefaultTTL = 24 * time.Hour

	// keyPrefix namespaces dedup keys in Redis.
	keyPrefix = "fnaconcept:seen:"
)

// Filter tracks which fingerprints have already been processed.
type Filter interface {
	// IsNew reports whether key was not seen within the TTL, and marks it
	// seen in the same step.
	IsNew(ctx context.Context, key string) (bool, error)

	// Forget unmarks key, so that a submission which could not be kept is
	// accepted again on retry.
	Forget(ctx context.Context, key string) error
}

// =============================================================================
// Redis Filter
// =============================================================================

// RedisFilter shares seen fingerprints across server instances.
type RedisFilter struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisFilter creates a dedup filter backed by Redis. A zero ttl means
// DefaultTTL.
func NewRedisFilter(rdb redis.Cmdable, ttl time.Duration) *RedisFilter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisFilter{rdb: rdb, ttl: ttl}
}

// IsNew marks key as seen with SET NX, which only succeeds for a new key.
func (f *RedisFilter) IsNew(ctx context.Context, key string) (bool, error) {
	set, err := f.rdb.SetNX(ctx, keyPrefix+key, 1, f.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup SETNX: %w", err)
	}
	return set, nil
}

// Forget deletes the key.
func (f *RedisFilter) Forget(ctx context.Context, key string) error {
	if err := f.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("dedup DEL: %w", err)
	}
	return nil
}

// =============================================================================
// Memory Filter
// =============================================================================

// MemoryFilter keeps seen fingerprints in process. Used when no Redis is
// configured.
type MemoryFilter struct {
	mu   sync.Mutex
	seen map[string]time.Time // key -> expiry
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryFilter creates an in-process dedup filter. A zero ttl means
// DefaultTTL.
func NewMemoryFilter(ttl time.Duration) *MemoryFilter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryFilter{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// IsNew reports whether key is unseen or expired, and marks it seen.
func (f *MemoryFilter) IsNew(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if expiry, ok := f.seen[key]; ok && now.Before(expiry) {
		return false, nil
	}
	f.seen[key] = now.Add(f.ttl)

	// Sweep while we hold the lock; the map only grows with distinct
	// submissions, so this stays small.
	for k, expiry := range f.seen {
		if !now.Before(expiry) {
			delete(f.seen, k)
		}
	}
	return true, nil
}

// Forget removes key.
func (f *MemoryFilter) Forget(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.seen, key)
	return nil
}

// Len returns the number of remembered fingerprints.
func (f *MemoryFilter) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}
