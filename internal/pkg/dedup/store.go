package dedup

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/FormFoxApp/FormFox/internal/pkg/cache"
)

// Store is the coordination backend the guard deduplicates against. A store
// shared across instances (Redis) gives cross-instance deduplication; the
// local fallback only protects a single process.
type Store interface {
	// Get reports whether a non-expired record exists for key.
	Get(ctx context.Context, key string) (bool, error)
	// SetIfAbsent writes a record with the given TTL and reports whether
	// this call was the one that created it.
	SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Set unconditionally writes a record with the given TTL.
	Set(ctx context.Context, key string, ttl time.Duration) error
	// Delete removes the record for key so a later delivery is processed again.
	Delete(ctx context.Context, key string) error
}

// NewDefaultStore picks the store implementation from the environment: the
// shared Redis store when a cache server is configured, otherwise the
// in-process fallback.
func NewDefaultStore() Store {
	if cache.IsConfigured() {
		return NewRedisStore(cache.GetClient())
	}
	log.Warn("[Dedup] No cache server configured, falling back to in-process store; " +
		"webhook deduplication is NOT safe across multiple running instances")
	return NewLocalStore(DefaultLocalMaxEntries)
}
