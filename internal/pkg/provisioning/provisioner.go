package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/FormFoxApp/FormFox/app/models"
	"github.com/FormFoxApp/FormFox/app/repository"
)

// ErrMissingMetadata marks an event whose metadata lacks the tenant handle
// or payer email. Retrying the delivery cannot fix the payload, so callers
// log and acknowledge instead of failing the request.
var ErrMissingMetadata = errors.New("missing tenant handle or payer email in event metadata")

// Input carries the fields extracted from a payment-completed event.
type Input struct {
	TenantHandle       string
	PayerEmail         string
	Plan               string
	BrandColors        string
	LogoURL            string
	ProviderCustomerID string
}

// Mailer delivers the onboarding notification. Failure to notify never rolls
// back provisioning.
type Mailer interface {
	SendOnboarding(to, handle, loginURL, apiKey, captureURL string) error
}

// Provisioner activates a tenant account for a completed payment: it issues
// the access credential, upserts the tenant record, and links the paying
// identity as owner. It runs beneath the dedup guard and never inspects
// idempotency state itself.
type Provisioner struct {
	tenants    repository.TenantRepository
	mailer     Mailer
	baseDomain string
	now        func() time.Time
}

// NewProvisioner creates a provisioner. mailer may be nil when onboarding
// mail is not configured.
func NewProvisioner(tenants repository.TenantRepository, mailer Mailer, baseDomain string) *Provisioner {
	if baseDomain == "" {
		baseDomain = "formfox.app"
	}
	return &Provisioner{
		tenants:    tenants,
		mailer:     mailer,
		baseDomain: baseDomain,
		now:        time.Now,
	}
}

// Provision performs the account-activation side effect for one payment.
// The caller guarantees at-most-once invocation per event id; the upserts
// below are idempotent on their own as a second line of defense.
func (p *Provisioner) Provision(_ context.Context, in Input) error {
	handle := normalizeHandle(in.TenantHandle)
	email := strings.ToLower(strings.TrimSpace(in.PayerEmail))
	if handle == "" || email == "" {
		return ErrMissingMetadata
	}

	apiKey, err := GenerateAPIKey()
	if err != nil {
		return fmt.Errorf("generate api key for %s: %w", handle, err)
	}

	now := p.now()
	tenant := &models.Tenant{
		Handle:             handle,
		Plan:               normalizePlan(in.Plan),
		BrandColors:        strings.TrimSpace(in.BrandColors),
		LogoURL:            strings.TrimSpace(in.LogoURL),
		APIKey:             apiKey,
		LoginURL:           fmt.Sprintf("https://%s.%s/login", handle, p.baseDomain),
		CaptureURL:         fmt.Sprintf("https://%s.%s/capture", handle, p.baseDomain),
		PaymentStatus:      models.PaymentStatusPaid,
		ProviderCustomerID: strings.TrimSpace(in.ProviderCustomerID),
		LastPaymentAt:      &now,
	}

	stored, err := p.tenants.UpsertByHandle(tenant)
	if err != nil {
		return fmt.Errorf("upsert tenant %s: %w", handle, err)
	}

	if err := p.tenants.LinkOwner(stored.ID, email); err != nil {
		return fmt.Errorf("link owner for tenant %s: %w", handle, err)
	}

	if p.mailer != nil {
		if err := p.mailer.SendOnboarding(email, handle, stored.LoginURL, stored.APIKey, stored.CaptureURL); err != nil {
			log.Warnf("[Provisioning] onboarding mail for tenant %s failed: %v", handle, err)
		}
	}

	log.Infof("[Provisioning] tenant %s provisioned for %s", handle, email)
	return nil
}

func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

func normalizePlan(plan string) string {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case models.PlanPro:
		return models.PlanPro
	case models.PlanAgency:
		return models.PlanAgency
	default:
		return models.PlanStarter
	}
}
