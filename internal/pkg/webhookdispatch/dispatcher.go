package webhookdispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// Event is the verified, typed envelope handed to handlers. ID is the
// provider-assigned event id, stable across redeliveries of the same logical
// event, and serves as the deduplication key upstream.
type Event struct {
	ID         string
	Type       string
	Payload    json.RawMessage
	ReceivedAt time.Time
}

// Handler processes one event of a registered type.
type Handler func(ctx context.Context, ev Event) error

// Dispatcher routes events by their declared type. Unknown types are
// acknowledged and dropped so the provider stops retrying them.
type Dispatcher struct {
	handlers map[string]Handler
}

// New creates an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

// Register binds a handler to an event type, replacing any previous binding.
func (d *Dispatcher) Register(eventType string, h Handler) {
	d.handlers[eventType] = h
}

// Dispatch routes ev to its handler. An unregistered type is logged and
// acknowledged as success.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	h, ok := d.handlers[ev.Type]
	if !ok {
		log.Infof("[Webhook] ignoring event %s with unhandled type %s", ev.ID, ev.Type)
		return nil
	}
	return h(ctx, ev)
}
