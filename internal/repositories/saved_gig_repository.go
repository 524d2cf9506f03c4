package repositories

import (
	"errors"

	"gigwork_backend/internal/models"

	"gorm.io/gorm"
)

var ErrSavedGigNotFound = errors.New("saved gig not found")

type SavedGigRepository interface {
	Save(userID, gigID string) error
	Unsave(userID, gigID string) error
	IsSaved(userID, gigID string) (bool, error)
	ListForUser(userID string) ([]models.SavedGig, error)
	ListSaverIDs(gigID string) ([]string, error)
}

type SavedGigRepositoryImpl struct {
	db *gorm.DB
}

func NewSavedGigRepository(db *gorm.DB) SavedGigRepository {
	return &SavedGigRepositoryImpl{db: db}
}

func (r *SavedGigRepositoryImpl) Save(userID, gigID string) error {
	saved := models.SavedGig{UserID: userID, GigID: gigID}
	return r.db.Create(&saved).Error
}

func (r *SavedGigRepositoryImpl) Unsave(userID, gigID string) error {
	result := r.db.Where("user_id = ? AND gig_id = ?", userID, gigID).Delete(&models.SavedGig{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSavedGigNotFound
	}
	return nil
}

func (r *SavedGigRepositoryImpl) IsSaved(userID, gigID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.SavedGig{}).
		Where("user_id = ? AND gig_id = ?", userID, gigID).
		Count(&count).Error
	return count > 0, err
}

func (r *SavedGigRepositoryImpl) ListForUser(userID string) ([]models.SavedGig, error) {
	var saved []models.SavedGig
	err := r.db.Preload("Gig").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saved).Error
	return saved, err
}

func (r *SavedGigRepositoryImpl) ListSaverIDs(gigID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.SavedGig{}).
		Where("gig_id = ?", gigID).
		Pluck("user_id", &ids).Error
	return ids, err
}
