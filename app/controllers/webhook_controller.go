package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/FormFoxApp/FormFox/app/models"
	"github.com/FormFoxApp/FormFox/app/repository"
	"github.com/FormFoxApp/FormFox/internal/pkg/dedup"
	"github.com/FormFoxApp/FormFox/internal/pkg/env"
	"github.com/FormFoxApp/FormFox/internal/pkg/metrics/counter"
	"github.com/FormFoxApp/FormFox/internal/pkg/provisioning"
	"github.com/FormFoxApp/FormFox/internal/pkg/webhookdispatch"
)

const (
	// Stripe recommends ~65kb as the upper bound for webhook bodies
	maxWebhookBodySize = 65536

	providerStripe = "stripe"
)

// WebhookController terminates inbound Stripe deliveries: verify the
// signature against the raw body, record the delivery, then hand the typed
// event to the dispatcher behind the dedup guard.
type WebhookController struct {
	guard       *dedup.Guard
	dispatcher  *webhookdispatch.Dispatcher
	provisioner *provisioning.Provisioner
	events      repository.WebhookEventRepository
}

// NewWebhookController wires the dispatcher's event routing table.
func NewWebhookController(guard *dedup.Guard, provisioner *provisioning.Provisioner, events repository.WebhookEventRepository) *WebhookController {
	wc := &WebhookController{
		guard:       guard,
		dispatcher:  webhookdispatch.New(),
		provisioner: provisioner,
		events:      events,
	}
	wc.dispatcher.Register("checkout.session.completed", wc.handleCheckoutCompleted)
	wc.dispatcher.Register("invoice.payment_succeeded", wc.handlePaymentSucceeded)
	return wc
}

// HandleStripeWebhook is the POST /webhooks/stripe handler.
func (wc *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	if len(rawBody) == 0 || len(rawBody) > maxWebhookBodySize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid request body"})
	}

	sigHeader := strings.TrimSpace(c.Get("Stripe-Signature"))
	if sigHeader == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature", "message": "Missing Stripe-Signature header"})
	}

	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")
	if secret == "" {
		log.Error("[Webhook] STRIPE_WEBHOOK_SECRET is not configured")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "webhook_unavailable", "message": "Webhook secret is not configured"})
	}

	// Verify against the raw, unparsed bytes. Parsing first would normalize
	// the payload and break the signature check.
	event, err := webhook.ConstructEventWithOptions(rawBody, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		log.Warnf("[Webhook] signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature", "message": "Webhook signature verification failed"})
	}

	eventType := string(event.Type)
	_ = counter.AddWebhookEvent(counter.OutcomeReceived, eventType)

	// Audit trail, idempotent on (provider, event id). Failure to record
	// must not block processing.
	var audit *models.WebhookEvent
	_, stored, auditErr := wc.events.CreateIfNotExists(&models.WebhookEvent{
		Provider:        providerStripe,
		ProviderEventID: event.ID,
		EventType:       eventType,
		PayloadJSON:     string(rawBody),
	})
	if auditErr != nil {
		log.Errorf("[Webhook] failed to record event %s: %v", event.ID, auditErr)
	} else {
		audit = stored
	}

	ev := webhookdispatch.Event{
		ID:         event.ID,
		Type:       eventType,
		Payload:    event.Data.Raw,
		ReceivedAt: time.Now(),
	}

	executed, dispatchErr := wc.guard.RunOnce(c.Context(), ev.ID, func(ctx context.Context) error {
		return wc.dispatcher.Dispatch(ctx, ev)
	})
	if !executed {
		log.Infof("[Webhook] duplicate delivery of event %s, skipping", ev.ID)
		_ = counter.AddWebhookEvent(counter.OutcomeDuplicate, eventType)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
	}

	if dispatchErr != nil {
		// Swallowed by design: failing the request would only trigger
		// provider redelivery against an already-claimed key. Operators
		// recover via the audit trail and provider dashboard replay.
		log.Errorf("[Webhook] processing event %s failed: %v", ev.ID, dispatchErr)
		_ = counter.AddWebhookEvent(counter.OutcomeFailed, eventType)
		if audit != nil {
			if err := wc.events.MarkProcessed(audit.ID, dispatchErr.Error()); err != nil {
				log.Errorf("[Webhook] failed to mark event %s: %v", ev.ID, err)
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
	}

	_ = counter.AddWebhookEvent(counter.OutcomeProcessed, eventType)
	if audit != nil {
		if err := wc.events.MarkProcessed(audit.ID, ""); err != nil {
			log.Errorf("[Webhook] failed to mark event %s: %v", ev.ID, err)
		}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

// stripeCheckoutSession is the slice of the checkout.session object this
// service reads.
type stripeCheckoutSession struct {
	ID              string `json:"id"`
	Customer        string `json:"customer"`
	CustomerEmail   string `json:"customer_email"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	Metadata map[string]string `json:"metadata"`
}

func (wc *WebhookController) handleCheckoutCompleted(ctx context.Context, ev webhookdispatch.Event) error {
	var session stripeCheckoutSession
	if err := json.Unmarshal(ev.Payload, &session); err != nil {
		// Redelivery cannot fix a malformed payload; acknowledge and drop.
		log.Errorf("[Webhook] event %s: cannot decode checkout session, dropping: %v", ev.ID, err)
		return nil
	}

	email := strings.TrimSpace(session.Metadata["payer_email"])
	if email == "" {
		email = strings.TrimSpace(session.CustomerEmail)
	}
	if email == "" {
		email = strings.TrimSpace(session.CustomerDetails.Email)
	}

	in := provisioning.Input{
		TenantHandle:       session.Metadata["tenant_handle"],
		PayerEmail:         email,
		Plan:               session.Metadata["plan"],
		BrandColors:        session.Metadata["brand_colors"],
		LogoURL:            session.Metadata["logo_url"],
		ProviderCustomerID: session.Customer,
	}

	if err := wc.provisioner.Provision(ctx, in); err != nil {
		if errors.Is(err, provisioning.ErrMissingMetadata) {
			log.Warnf("[Webhook] event %s: %v, acknowledging without provisioning", ev.ID, err)
			return nil
		}
		return err
	}
	return nil
}

func (wc *WebhookController) handlePaymentSucceeded(_ context.Context, ev webhookdispatch.Event) error {
	// Recurring invoice payments need no provisioning action.
	log.Infof("[Webhook] event %s (%s) acknowledged, no action required", ev.ID, ev.Type)
	return nil
}
