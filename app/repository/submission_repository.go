package repository

import (
	"github.com/FormFoxApp/FormFox/app/models"
	"gorm.io/gorm"
)

// submissionRepository implements the SubmissionRepository interface
type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository instance
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create stores a captured form submission
func (r *submissionRepository) Create(sub *models.FormSubmission) error {
	return r.db.Create(sub).Error
}

// ListByTenant returns a tenant's submissions, newest first
func (r *submissionRepository) ListByTenant(tenantID uint, limit, offset int) ([]models.FormSubmission, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var subs []models.FormSubmission
	err := r.db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&subs).Error
	return subs, err
}

// CountByTenant returns the total number of submissions for a tenant
func (r *submissionRepository) CountByTenant(tenantID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.FormSubmission{}).Where("tenant_id = ?", tenantID).Count(&count).Error
	return count, err
}
