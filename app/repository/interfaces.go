package repository

import (
	"github.com/FormFoxApp/FormFox/app/models"
	"gorm.io/gorm"
)

// TenantRepository defines tenant-related database operations. UpsertByHandle
// and LinkOwner must both be idempotent: they sit beneath the webhook dedup
// guard as a second line of defense.
type TenantRepository interface {
	UpsertByHandle(tenant *models.Tenant) (*models.Tenant, error)
	LinkOwner(tenantID uint, ownerEmail string) error
	GetByHandle(handle string) (*models.Tenant, error)
	GetByAPIKey(apiKey string) (*models.Tenant, error)
	OwnerCount(tenantID uint) (int64, error)
}

// WebhookEventRepository persists the audit trail of verified deliveries.
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
	GetByProviderEventID(provider, providerEventID string) (*models.WebhookEvent, error)
}

// SubmissionRepository stores captured form payloads.
type SubmissionRepository interface {
	Create(sub *models.FormSubmission) error
	ListByTenant(tenantID uint, limit, offset int) ([]models.FormSubmission, error)
	CountByTenant(tenantID uint) (int64, error)
}

// Repositories bundles all repository implementations
type Repositories struct {
	Tenant       TenantRepository
	WebhookEvent WebhookEventRepository
	Submission   SubmissionRepository
}

// NewRepositories creates all repositories with the given database connection
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Tenant:       NewTenantRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
		Submission:   NewSubmissionRepository(db),
	}
}
