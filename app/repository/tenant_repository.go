package repository

import (
	"strings"

	"github.com/FormFoxApp/FormFox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tenantRepository implements the TenantRepository interface
type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository instance
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

// UpsertByHandle inserts or updates a tenant keyed by its handle. The
// payment-derived fields are last-write-wins; repeating the call with the
// same handle is safe.
func (r *tenantRepository) UpsertByHandle(tenant *models.Tenant) (*models.Tenant, error) {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "handle"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan",
			"brand_colors",
			"logo_url",
			"api_key",
			"login_url",
			"capture_url",
			"payment_status",
			"provider_customer_id",
			"last_payment_at",
			"updated_at",
		}),
	}).Create(tenant).Error; err != nil {
		return nil, err
	}

	// Ensure ID is populated after upsert.
	if err := r.db.Where("handle = ?", tenant.Handle).First(tenant).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

// LinkOwner creates the owner link if it does not exist yet. Linking an
// already-linked email is a no-op.
func (r *tenantRepository) LinkOwner(tenantID uint, ownerEmail string) error {
	link := &models.TenantOwner{
		TenantID:   tenantID,
		OwnerEmail: strings.ToLower(strings.TrimSpace(ownerEmail)),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "tenant_id"},
			{Name: "owner_email"},
		},
		DoNothing: true,
	}).Create(link).Error
}

// GetByHandle retrieves a tenant by its handle
func (r *tenantRepository) GetByHandle(handle string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.Where("handle = ?", handle).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetByAPIKey resolves a raw API key to its tenant
func (r *tenantRepository) GetByAPIKey(apiKey string) (*models.Tenant, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var tenant models.Tenant
	err := r.db.Where("api_key = ?", key).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// OwnerCount returns the number of owner links for a tenant
func (r *tenantRepository) OwnerCount(tenantID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.TenantOwner{}).Where("tenant_id = ?", tenantID).Count(&count).Error
	return count, err
}
