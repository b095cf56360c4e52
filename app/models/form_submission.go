package models

import "time"

// FormSubmission is one captured payload for a tenant's form, received
// through the tenant's capture URL.
type FormSubmission struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PublicID   string    `gorm:"type:char(36);not null;uniqueIndex" json:"public_id"`
	TenantID   uint      `gorm:"not null;index" json:"tenant_id"`
	FormName   string    `gorm:"type:varchar(100);not null;index" json:"form_name"`
	FieldsJSON string    `gorm:"type:longtext;not null" json:"fields_json"`
	SourceIP   string    `gorm:"type:varchar(45)" json:"source_ip"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
