package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/FormFoxApp/FormFox/app/models"
	"github.com/FormFoxApp/FormFox/internal/pkg/dedup"
	"github.com/FormFoxApp/FormFox/internal/pkg/provisioning"
)

const testWebhookSecret = "whsec_test_secret"

// memTenantRepo implements repository.TenantRepository in memory.
type memTenantRepo struct {
	tenants   map[string]*models.Tenant
	owners    map[uint]map[string]struct{}
	nextID    uint
	upsertErr error
}

func newMemTenantRepo() *memTenantRepo {
	return &memTenantRepo{
		tenants: make(map[string]*models.Tenant),
		owners:  make(map[uint]map[string]struct{}),
	}
}

func (m *memTenantRepo) UpsertByHandle(tenant *models.Tenant) (*models.Tenant, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	if existing, ok := m.tenants[tenant.Handle]; ok {
		tenant.ID = existing.ID
	} else {
		m.nextID++
		tenant.ID = m.nextID
	}
	stored := *tenant
	m.tenants[tenant.Handle] = &stored
	return &stored, nil
}

func (m *memTenantRepo) LinkOwner(tenantID uint, ownerEmail string) error {
	if m.owners[tenantID] == nil {
		m.owners[tenantID] = make(map[string]struct{})
	}
	m.owners[tenantID][ownerEmail] = struct{}{}
	return nil
}

func (m *memTenantRepo) GetByHandle(handle string) (*models.Tenant, error) {
	t, ok := m.tenants[handle]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (m *memTenantRepo) GetByAPIKey(apiKey string) (*models.Tenant, error) {
	for _, t := range m.tenants {
		if t.APIKey == apiKey {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memTenantRepo) OwnerCount(tenantID uint) (int64, error) {
	return int64(len(m.owners[tenantID])), nil
}

// memEventRepo implements repository.WebhookEventRepository in memory.
type memEventRepo struct {
	events map[string]*models.WebhookEvent
	nextID uint
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[string]*models.WebhookEvent)}
}

func (m *memEventRepo) CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	key := event.Provider + ":" + event.ProviderEventID
	if existing, ok := m.events[key]; ok {
		return false, existing, nil
	}
	m.nextID++
	event.ID = m.nextID
	stored := *event
	m.events[key] = &stored
	return true, &stored, nil
}

func (m *memEventRepo) MarkProcessed(id uint, processingError string) error {
	for _, e := range m.events {
		if e.ID == id {
			now := time.Now()
			e.ProcessedAt = &now
			e.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memEventRepo) GetByProviderEventID(provider, providerEventID string) (*models.WebhookEvent, error) {
	e, ok := m.events[provider+":"+providerEventID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

// signStripePayload builds a valid Stripe-Signature header for payload.
func signStripePayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newWebhookTestApp(t *testing.T) (*fiber.App, *memTenantRepo, *memEventRepo) {
	t.Helper()
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	tenants := newMemTenantRepo()
	events := newMemEventRepo()
	guard := dedup.NewGuard(dedup.NewLocalStore(100), time.Minute, false)
	provisioner := provisioning.NewProvisioner(tenants, nil, "formfox.app")
	wc := NewWebhookController(guard, provisioner, events)

	app := fiber.New()
	app.Post("/webhooks/stripe", wc.HandleStripeWebhook)
	return app, tenants, events
}

func postWebhook(t *testing.T, app *fiber.App, payload []byte, sigHeader string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if sigHeader != "" {
		req.Header.Set("Stripe-Signature", sigHeader)
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func checkoutCompletedPayload(eventID, handle, email string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_1",
				"customer": "cus_123",
				"customer_details": { "email": %q },
				"metadata": {
					"tenant_handle": %q,
					"plan": "pro",
					"brand_colors": "#ff6600,#222222",
					"logo_url": "https://cdn.example.com/logo.png"
				}
			}
		}
	}`, eventID, email, handle))
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	app, tenants, events := newWebhookTestApp(t)

	payload := checkoutCompletedPayload("evt_1", "acme", "owner@acme.com")
	resp := postWebhook(t, app, payload, "")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, tenants.tenants)
	assert.Empty(t, events.events)
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	app, tenants, events := newWebhookTestApp(t)

	payload := checkoutCompletedPayload("evt_1", "acme", "owner@acme.com")
	resp := postWebhook(t, app, payload, signStripePayload(payload, "whsec_wrong_secret"))

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, tenants.tenants)
	assert.Empty(t, events.events)
}

func TestWebhookProvisionsTenantOnCheckoutCompleted(t *testing.T) {
	app, tenants, events := newWebhookTestApp(t)

	payload := checkoutCompletedPayload("evt_1", "acme", "owner@acme.com")
	resp := postWebhook(t, app, payload, signStripePayload(payload, testWebhookSecret))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	tenant, err := tenants.GetByHandle("acme")
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, tenant.PaymentStatus)
	assert.Equal(t, models.PlanPro, tenant.Plan)
	assert.Equal(t, "cus_123", tenant.ProviderCustomerID)
	assert.Len(t, tenant.APIKey, 48)

	count, _ := tenants.OwnerCount(tenant.ID)
	assert.EqualValues(t, 1, count)

	audit, err := events.GetByProviderEventID("stripe", "evt_1")
	assert.NoError(t, err)
	assert.NotNil(t, audit.ProcessedAt)
	assert.Empty(t, audit.ProcessingError)
}

func TestWebhookSkipsDuplicateDelivery(t *testing.T) {
	app, tenants, _ := newWebhookTestApp(t)

	payload := checkoutCompletedPayload("evt_1", "acme", "owner@acme.com")
	resp := postWebhook(t, app, payload, signStripePayload(payload, testWebhookSecret))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	firstKey := tenants.tenants["acme"].APIKey

	// Redelivery of the identical event id is acknowledged without a
	// second tenant mutation or owner write.
	resp = postWebhook(t, app, payload, signStripePayload(payload, testWebhookSecret))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Len(t, tenants.tenants, 1)
	assert.Equal(t, firstKey, tenants.tenants["acme"].APIKey)
	count, _ := tenants.OwnerCount(tenants.tenants["acme"].ID)
	assert.EqualValues(t, 1, count)
}

func TestWebhookKeepsKeyClaimedAfterFailedProcessing(t *testing.T) {
	app, tenants, events := newWebhookTestApp(t)
	tenants.upsertErr = errors.New("tenant store is down")

	payload := checkoutCompletedPayload("evt_1", "acme", "owner@acme.com")
	resp := postWebhook(t, app, payload, signStripePayload(payload, testWebhookSecret))

	// The failure is acknowledged, not surfaced: redelivery would run
	// against an already-claimed key.
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["received"])
	assert.NotContains(t, body, "duplicate")
	assert.Empty(t, tenants.tenants)

	audit, err := events.GetByProviderEventID("stripe", "evt_1")
	assert.NoError(t, err)
	assert.NotNil(t, audit.ProcessedAt)
	assert.Contains(t, audit.ProcessingError, "tenant store is down")

	// The store recovers, but the key stays claimed: the redelivery is
	// skipped and recovery is a manual replay.
	tenants.upsertErr = nil
	resp = postWebhook(t, app, payload, signStripePayload(payload, testWebhookSecret))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, true, body["duplicate"])
	assert.Empty(t, tenants.tenants)
}

func TestWebhookAcknowledgesNoActionEvent(t *testing.T) {
	app, tenants, _ := newWebhookTestApp(t)

	payload := []byte(`{"id":"evt_2","type":"invoice.payment_succeeded","data":{"object":{"id":"in_1"}}}`)
	resp := postWebhook(t, app, payload, signStripePayload(payload, testWebhookSecret))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, tenants.tenants)
}

func TestWebhookAcknowledgesUnknownEventType(t *testing.T) {
	app, tenants, _ := newWebhookTestApp(t)

	payload := []byte(`{"id":"evt_3","type":"customer.deleted","data":{"object":{"id":"cus_9"}}}`)
	resp := postWebhook(t, app, payload, signStripePayload(payload, testWebhookSecret))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, tenants.tenants)
}

func TestWebhookSwallowsMissingMetadata(t *testing.T) {
	app, tenants, events := newWebhookTestApp(t)

	// No tenant_handle in metadata: un-fixable by redelivery, acknowledged.
	payload := []byte(`{
		"id": "evt_4",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_2",
				"customer": "cus_456",
				"customer_details": { "email": "owner@acme.com" },
				"metadata": {}
			}
		}
	}`)
	resp := postWebhook(t, app, payload, signStripePayload(payload, testWebhookSecret))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, tenants.tenants)

	audit, err := events.GetByProviderEventID("stripe", "evt_4")
	assert.NoError(t, err)
	assert.NotNil(t, audit.ProcessedAt)
}
