package models

import "time"

// Payment status values for tenants.
const (
	PaymentStatusPaid     = "Paid"
	PaymentStatusUnpaid   = "Unpaid"
	PaymentStatusCanceled = "Canceled"
)

// Internal plan identifiers.
const (
	PlanStarter = "starter"
	PlanPro     = "pro"
	PlanAgency  = "agency"
)

// Tenant is a paying customer account. Handle is the natural key: upserts go
// through the handle and must be safe to repeat, with last-write-wins on the
// payment-derived fields. Tenants are never deleted by the provisioning
// subsystem.
type Tenant struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Handle             string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"handle"`
	Plan               string     `gorm:"type:varchar(50);not null;default:'starter'" json:"plan"`
	BrandColors        string     `gorm:"type:varchar(255)" json:"brand_colors"`
	LogoURL            string     `gorm:"type:varchar(500)" json:"logo_url"`
	APIKey             string     `gorm:"type:char(48);not null;uniqueIndex" json:"-"`
	LoginURL           string     `gorm:"type:varchar(500)" json:"login_url"`
	CaptureURL         string     `gorm:"type:varchar(500)" json:"capture_url"`
	PaymentStatus      string     `gorm:"type:varchar(20);not null;default:'Unpaid';index" json:"payment_status"`
	ProviderCustomerID string     `gorm:"type:varchar(191);index" json:"provider_customer_id"`
	LastPaymentAt      *time.Time `json:"last_payment_at"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
