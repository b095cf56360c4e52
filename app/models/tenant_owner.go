package models

import "time"

// TenantOwner links the paying identity to a tenant. Creating an existing
// link is a no-op, not an error.
type TenantOwner struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TenantID   uint      `gorm:"not null;index:ux_tenant_owners_tenant_email,unique,priority:1" json:"tenant_id"`
	OwnerEmail string    `gorm:"type:varchar(191);not null;index:ux_tenant_owners_tenant_email,unique,priority:2" json:"owner_email"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
