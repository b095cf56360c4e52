package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/FormFoxApp/FormFox/internal/pkg/cache"
)

const webhookEventsKey = "webhook:counters:events"

// Per-call budget for counter round trips. Counting sits on the webhook
// request path, so a degraded Redis must not stall deliveries.
const redisCallTimeout = 2 * time.Second

// Webhook delivery outcomes tracked per event type.
const (
	OutcomeReceived  = "received"
	OutcomeDuplicate = "duplicate"
	OutcomeProcessed = "processed"
	OutcomeFailed    = "failed"
)

// AddWebhookEvent increments the counter for one delivery outcome in Redis.
// Best effort: counting is skipped entirely when no cache server is
// configured.
func AddWebhookEvent(outcome, eventType string) error {
	if !cache.IsConfigured() {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()
	field := fmt.Sprintf("%s:%s", outcome, eventType)
	return cache.GetClient().HIncrBy(ctx, webhookEventsKey, field, 1).Err()
}

// Snapshot returns all webhook counters, keyed "outcome:event_type".
func Snapshot() (map[string]string, error) {
	if !cache.IsConfigured() {
		return map[string]string{}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()
	return cache.GetClient().HGetAll(ctx, webhookEventsKey).Result()
}
