package repositories

import (
	"errors"
	"time"

	"gigwork_backend/internal/models"

	"gorm.io/gorm"
)

var ErrRatingNotFound = errors.New("rating not found")

type RatingRepository interface {
	Create(rating *models.Rating) error
	FindByID(id string) (*models.Rating, error)
	FindByGigRaterRatee(gigID, raterID, rateeID string) (*models.Rating, error)
	Update(rating *models.Rating) error
	Delete(id string) error
	ListForUser(userID string) ([]models.Rating, error)
	ListFlagged() ([]models.Rating, error)
	AverageForUser(userID string) (float64, int64, error)
	Flag(id, reason string) error
	Moderate(id, moderatorID string, status models.ModerationStatus, clearFlag bool) error
}

type RatingRepositoryImpl struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &RatingRepositoryImpl{db: db}
}

func (r *RatingRepositoryImpl) Create(rating *models.Rating) error {
	return r.db.Create(rating).Error
}

func (r *RatingRepositoryImpl) FindByID(id string) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.First(&rating, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return &rating, nil
}

func (r *RatingRepositoryImpl) FindByGigRaterRatee(gigID, raterID, rateeID string) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.First(&rating, "gig_id = ? AND rater_id = ? AND ratee_id = ?", gigID, raterID, rateeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return &rating, nil
}

func (r *RatingRepositoryImpl) Update(rating *models.Rating) error {
	return r.db.Save(rating).Error
}

func (r *RatingRepositoryImpl) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.Rating{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRatingNotFound
	}
	return nil
}

func (r *RatingRepositoryImpl) ListForUser(userID string) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.Where("ratee_id = ? AND moderation_status = ?", userID, models.ModerationStatusApproved).
		Order("created_at DESC").
		Find(&ratings).Error
	return ratings, err
}

func (r *RatingRepositoryImpl) ListFlagged() ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.Where("is_flagged = ?", true).
		Order("created_at ASC").
		Find(&ratings).Error
	return ratings, err
}

// AverageForUser returns the mean score over the user's moderation-approved
// ratings plus the count; 0.0 when the user has none.
func (r *RatingRepositoryImpl) AverageForUser(userID string) (float64, int64, error) {
	var row struct {
		Avg   *float64
		Count int64
	}
	err := r.db.Model(&models.Rating{}).
		Select("AVG(score) as avg, COUNT(*) as count").
		Where("ratee_id = ? AND moderation_status = ?", userID, models.ModerationStatusApproved).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	if row.Avg == nil {
		return 0, 0, nil
	}
	return *row.Avg, row.Count, nil
}

func (r *RatingRepositoryImpl) Flag(id, reason string) error {
	result := r.db.Model(&models.Rating{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_flagged":        true,
		"flag_reason":       reason,
		"moderation_status": models.ModerationStatusPending,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRatingNotFound
	}
	return nil
}

func (r *RatingRepositoryImpl) Moderate(id, moderatorID string, status models.ModerationStatus, clearFlag bool) error {
	updates := map[string]interface{}{
		"moderation_status": status,
		"moderated_by":      moderatorID,
		"moderated_at":      time.Now(),
	}
	if clearFlag {
		updates["is_flagged"] = false
		updates["flag_reason"] = ""
	}

	result := r.db.Model(&models.Rating{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRatingNotFound
	}
	return nil
}
