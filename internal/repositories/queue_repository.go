package repositories

import (
	"errors"
	"time"

	"gigwork_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrQueueItemNotFound = errors.New("queue item not found")

// QueueCounts reports outstanding work per channel.
type QueueCounts struct {
	EmailPending int64 `json:"email_pending"`
	EmailFailed  int64 `json:"email_failed"`
	PushPending  int64 `json:"push_pending"`
	PushFailed   int64 `json:"push_failed"`
}

type QueueRepository interface {
	EnqueueEmail(item *models.EmailQueueItem) error
	EnqueuePush(item *models.PushQueueItem) error
	ClaimPendingEmails(limit int) ([]models.EmailQueueItem, error)
	ClaimPendingPush(limit int) ([]models.PushQueueItem, error)
	MarkEmailSent(id string) error
	MarkEmailFailed(id string) error
	MarkPushSent(id string) error
	MarkPushFailed(id string) error
	Counts() (*QueueCounts, error)
}

type QueueRepositoryImpl struct {
	db *gorm.DB
}

func NewQueueRepository(db *gorm.DB) QueueRepository {
	return &QueueRepositoryImpl{db: db}
}

func (r *QueueRepositoryImpl) EnqueueEmail(item *models.EmailQueueItem) error {
	return r.db.Create(item).Error
}

func (r *QueueRepositoryImpl) EnqueuePush(item *models.PushQueueItem) error {
	return r.db.Create(item).Error
}

// ClaimPendingEmails locks up to limit pending items with SKIP LOCKED,
// bumps their attempt counters, and returns them. Concurrent processors
// never claim the same row.
func (r *QueueRepositoryImpl) ClaimPendingEmails(limit int) ([]models.EmailQueueItem, error) {
	var items []models.EmailQueueItem

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", models.QueueStatusPending).
			Order("created_at ASC").
			Limit(limit).
			Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}

		now := time.Now()
		ids := make([]string, len(items))
		for i := range items {
			ids[i] = items[i].ID
			items[i].Attempts++
			items[i].LastAttempt = &now
		}

		return tx.Model(&models.EmailQueueItem{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"attempts":     gorm.Expr("attempts + 1"),
				"last_attempt": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *QueueRepositoryImpl) ClaimPendingPush(limit int) ([]models.PushQueueItem, error) {
	var items []models.PushQueueItem

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", models.QueueStatusPending).
			Order("created_at ASC").
			Limit(limit).
			Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}

		now := time.Now()
		ids := make([]string, len(items))
		for i := range items {
			ids[i] = items[i].ID
			items[i].Attempts++
			items[i].LastAttempt = &now
		}

		return tx.Model(&models.PushQueueItem{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"attempts":     gorm.Expr("attempts + 1"),
				"last_attempt": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *QueueRepositoryImpl) MarkEmailSent(id string) error {
	result := r.db.Model(&models.EmailQueueItem{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":  models.QueueStatusSent,
		"sent_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQueueItemNotFound
	}
	return nil
}

// MarkEmailFailed marks the item terminally failed once it has exhausted
// its delivery attempts. Below the cap the item stays pending for retry.
func (r *QueueRepositoryImpl) MarkEmailFailed(id string) error {
	result := r.db.Model(&models.EmailQueueItem{}).
		Where("id = ? AND attempts >= ?", id, models.MaxDeliveryAttempts).
		Update("status", models.QueueStatusFailed)
	return result.Error
}

func (r *QueueRepositoryImpl) MarkPushSent(id string) error {
	result := r.db.Model(&models.PushQueueItem{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":  models.QueueStatusSent,
		"sent_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQueueItemNotFound
	}
	return nil
}

func (r *QueueRepositoryImpl) MarkPushFailed(id string) error {
	result := r.db.Model(&models.PushQueueItem{}).
		Where("id = ? AND attempts >= ?", id, models.MaxDeliveryAttempts).
		Update("status", models.QueueStatusFailed)
	return result.Error
}

func (r *QueueRepositoryImpl) Counts() (*QueueCounts, error) {
	var counts QueueCounts

	if err := r.db.Model(&models.EmailQueueItem{}).
		Where("status = ?", models.QueueStatusPending).
		Count(&counts.EmailPending).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.EmailQueueItem{}).
		Where("status = ?", models.QueueStatusFailed).
		Count(&counts.EmailFailed).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.PushQueueItem{}).
		Where("status = ?", models.QueueStatusPending).
		Count(&counts.PushPending).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.PushQueueItem{}).
		Where("status = ?", models.QueueStatusFailed).
		Count(&counts.PushFailed).Error; err != nil {
		return nil, err
	}

	return &counts, nil
}
