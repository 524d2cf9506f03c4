package repositories

import (
	"gigwork_backend/internal/models"

	"gorm.io/gorm"
)

// AuditCriteria filters admin audit-log listings.
type AuditCriteria struct {
	UserID       string `form:"user_id"`
	Action       string `form:"action"`
	ResourceType string `form:"resource_type"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

type AuditRepository interface {
	Create(entry *models.AuditLog) error
	List(criteria AuditCriteria) ([]models.AuditLog, int64, error)
}

type AuditRepositoryImpl struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &AuditRepositoryImpl{db: db}
}

func (r *AuditRepositoryImpl) Create(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

func (r *AuditRepositoryImpl) List(criteria AuditCriteria) ([]models.AuditLog, int64, error) {
	query := r.db.Model(&models.AuditLog{})

	if criteria.UserID != "" {
		query = query.Where("user_id = ?", criteria.UserID)
	}
	if criteria.Action != "" {
		query = query.Where("action = ?", criteria.Action)
	}
	if criteria.ResourceType != "" {
		query = query.Where("resource_type = ?", criteria.ResourceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := criteria.Page
	if page < 1 {
		page = 1
	}
	pageSize := criteria.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}

	var entries []models.AuditLog
	err := query.Order("created_at DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&entries).Error

	return entries, total, err
}
