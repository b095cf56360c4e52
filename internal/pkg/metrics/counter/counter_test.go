package counter

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/FormFoxApp/FormFox/internal/pkg/cache"
)

func setupTestCache(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	t.Setenv("CACHE_HOST", mr.Host())
	t.Setenv("CACHE_PORT", mr.Port())

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(client)
	t.Cleanup(func() {
		_ = client.Close()
		cache.SetClient(nil)
	})
}

func TestAddWebhookEventCountsPerOutcomeAndType(t *testing.T) {
	setupTestCache(t)

	for i := 0; i < 2; i++ {
		if err := AddWebhookEvent(OutcomeReceived, "checkout.session.completed"); err != nil {
			t.Fatalf("AddWebhookEvent failed: %v", err)
		}
	}
	if err := AddWebhookEvent(OutcomeProcessed, "checkout.session.completed"); err != nil {
		t.Fatalf("AddWebhookEvent failed: %v", err)
	}
	if err := AddWebhookEvent(OutcomeDuplicate, "invoice.payment_succeeded"); err != nil {
		t.Fatalf("AddWebhookEvent failed: %v", err)
	}

	snap, err := Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if got := snap["received:checkout.session.completed"]; got != "2" {
		t.Fatalf("received counter = %q, want \"2\"", got)
	}
	if got := snap["processed:checkout.session.completed"]; got != "1" {
		t.Fatalf("processed counter = %q, want \"1\"", got)
	}
	if got := snap["duplicate:invoice.payment_succeeded"]; got != "1" {
		t.Fatalf("duplicate counter = %q, want \"1\"", got)
	}
}

func TestCountersAreSkippedWithoutCacheServer(t *testing.T) {
	t.Setenv("CACHE_HOST", "")

	if err := AddWebhookEvent(OutcomeReceived, "checkout.session.completed"); err != nil {
		t.Fatalf("AddWebhookEvent without cache = %v, want nil", err)
	}
	snap, err := Snapshot()
	if err != nil {
		t.Fatalf("Snapshot without cache = %v, want nil", err)
	}
	if len(snap) != 0 {
		t.Fatalf("expected empty snapshot without cache, got %v", snap)
	}
}
