package repositories

import (
	"errors"

	"gigwork_backend/internal/models"

	"gorm.io/gorm"
)

var ErrPreferenceNotFound = errors.New("notification preference not found")

type PreferenceRepository interface {
	ListForUser(userID string) ([]models.NotificationPreference, error)
	FindByUserAndType(userID, notificationType string) (*models.NotificationPreference, error)
	SeedDefaults(userID string) ([]models.NotificationPreference, error)
	Update(pref *models.NotificationPreference) error
}

type PreferenceRepositoryImpl struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &PreferenceRepositoryImpl{db: db}
}

func (r *PreferenceRepositoryImpl) ListForUser(userID string) ([]models.NotificationPreference, error) {
	var prefs []models.NotificationPreference
	err := r.db.Where("user_id = ?", userID).
		Order("notification_type ASC").
		Find(&prefs).Error
	return prefs, err
}

func (r *PreferenceRepositoryImpl) FindByUserAndType(userID, notificationType string) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := r.db.First(&pref, "user_id = ? AND notification_type = ?", userID, notificationType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPreferenceNotFound
		}
		return nil, err
	}
	return &pref, nil
}

// SeedDefaults inserts the default preference rows the user is missing and
// returns the full set. Existing rows are left untouched.
func (r *PreferenceRepositoryImpl) SeedDefaults(userID string) ([]models.NotificationPreference, error) {
	existing, err := r.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[p.NotificationType] = true
	}

	var missing []models.NotificationPreference
	for _, def := range models.DefaultPreferences(userID) {
		if !have[def.NotificationType] {
			missing = append(missing, def)
		}
	}

	if len(missing) > 0 {
		if err := r.db.Create(&missing).Error; err != nil {
			return nil, err
		}
	}

	return r.ListForUser(userID)
}

func (r *PreferenceRepositoryImpl) Update(pref *models.NotificationPreference) error {
	return r.db.Save(pref).Error
}
