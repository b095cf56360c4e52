package dedup

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// DefaultTTL is how long a processed event id suppresses redeliveries.
const DefaultTTL = 24 * time.Hour

// Guard ensures a side-effecting handler runs at most once per key across
// concurrent, stateless invocations. Coordination happens through the
// injected Store; all store failures fail open (favoring a rare duplicate
// execution over wedging every future delivery of an event).
type Guard struct {
	store Store
	ttl   time.Duration

	// retryOnFailure releases the key when the handler errors, so a
	// provider-driven redelivery reprocesses the event. When false (the
	// default) a failed handler keeps its key marked and redeliveries are
	// skipped; recovery is then a manual replay from the provider dashboard.
	retryOnFailure bool
}

// NewGuard creates a guard over the given store. A non-positive ttl selects
// DefaultTTL.
func NewGuard(store Store, ttl time.Duration, retryOnFailure bool) *Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Guard{store: store, ttl: ttl, retryOnFailure: retryOnFailure}
}

// IsProcessed reports whether key has a non-expired record. Store errors
// fail open.
func (g *Guard) IsProcessed(ctx context.Context, key string) bool {
	seen, err := g.store.Get(ctx, key)
	if err != nil {
		log.Warnf("[Dedup] store read failed for %s, failing open: %v", key, err)
		return false
	}
	return seen
}

// MarkProcessed records key unconditionally. Best effort: a failed write is
// logged, not propagated, and raises the odds of duplicate processing on
// redelivery.
func (g *Guard) MarkProcessed(ctx context.Context, key string) {
	if err := g.store.Set(ctx, key, g.ttl); err != nil {
		log.Warnf("[Dedup] store write failed for %s: %v", key, err)
	}
}

// RunOnce executes fn at most once per key. It claims the key atomically
// before executing, so two concurrent deliveries of the same event id cannot
// both run fn against a correct shared store. The returned bool reports
// whether fn was executed; false means the key was already claimed and the
// delivery is a duplicate to acknowledge without side effects.
func (g *Guard) RunOnce(ctx context.Context, key string, fn func(context.Context) error) (bool, error) {
	won, err := g.store.SetIfAbsent(ctx, key, g.ttl)
	if err != nil {
		// Fail open: execute anyway rather than wedge the delivery.
		log.Warnf("[Dedup] store claim failed for %s, failing open: %v", key, err)
		won = true
	}
	if !won {
		return false, nil
	}

	if err := fn(ctx); err != nil {
		if g.retryOnFailure {
			if delErr := g.store.Delete(ctx, key); delErr != nil {
				log.Warnf("[Dedup] failed to release key %s after handler error: %v", key, delErr)
			}
		}
		return true, err
	}
	return true, nil
}
