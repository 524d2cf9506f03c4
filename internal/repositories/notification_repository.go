package repositories

import (
	"errors"
	"time"

	"gigwork_backend/internal/models"

	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationCriteria filters a user's notification listing.
type NotificationCriteria struct {
	UnreadOnly bool   `form:"unread_only"`
	Type       string `form:"type"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

type NotificationRepository interface {
	Create(notification *models.Notification) error
	CreateBulk(notifications []*models.Notification) error
	FindByID(id string) (*models.Notification, error)
	ListForUser(userID string, criteria NotificationCriteria) ([]models.Notification, int64, error)
	ListRecent(userID string, limit int) ([]models.Notification, error)
	MarkRead(id string) error
	MarkAllRead(userID string) (int64, error)
	UnreadCount(userID string) (int64, error)
	DeleteReadOlderThan(userID string, olderThan time.Time) error
}

type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *NotificationRepositoryImpl) CreateBulk(notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.CreateInBatches(notifications, 100).Error
}

func (r *NotificationRepositoryImpl) FindByID(id string) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.First(&notification, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepositoryImpl) ListForUser(userID string, criteria NotificationCriteria) ([]models.Notification, int64, error) {
	query := r.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	if criteria.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if criteria.Type != "" {
		query = query.Where("type = ?", criteria.Type)
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
		pageSize = 20
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *NotificationRepositoryImpl) ListRecent(userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 5
	}
	var notifications []models.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepositoryImpl) MarkRead(id string) error {
	result := r.db.Model(&models.Notification{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flips every unread notification for the user and returns how
// many rows changed. Calling it again right away returns zero.
func (r *NotificationRepositoryImpl) MarkAllRead(userID string) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *NotificationRepositoryImpl) UnreadCount(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepositoryImpl) DeleteReadOlderThan(userID string, olderThan time.Time) error {
	return r.db.Where("user_id = ? AND is_read = ? AND created_at < ?", userID, true, olderThan).
		Delete(&models.Notification{}).Error
}
