package repositories

import (
	"errors"
	"time"

	"gigwork_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrGigNotSelectable    = errors.New("gig is not open for selection")
)

type ApplicationRepository interface {
	Create(application *models.Application) error
	FindByID(id string) (*models.Application, error)
	FindByIDWithRelations(id string) (*models.Application, error)
	FindByGigAndStudent(gigID, studentID string) (*models.Application, error)
	ListByGig(gigID string) ([]models.Application, error)
	ListByStudent(studentID string) ([]models.Application, error)
	ListStudentIDsByGig(gigID string) ([]string, error)
	Update(application *models.Application) error
	UpdateStatus(id string, status models.ApplicationStatus) error
	UpdateBatch(applications []*models.Application) error
	SelectCandidate(gigID, applicationID string) (accepted *models.Application, rejectedIDs []string, err error)
	HasBlockingApplications(gigID string) (bool, error)
	CountByGig(gigID string) (int64, error)
}

type ApplicationRepositoryImpl struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &ApplicationRepositoryImpl{db: db}
}

func (r *ApplicationRepositoryImpl) Create(application *models.Application) error {
	return r.db.Create(application).Error
}

func (r *ApplicationRepositoryImpl) FindByID(id string) (*models.Application, error) {
	var application models.Application
	err := r.db.First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *ApplicationRepositoryImpl) FindByIDWithRelations(id string) (*models.Application, error) {
	var application models.Application
	err := r.db.Preload("Gig").Preload("Student").First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *ApplicationRepositoryImpl) FindByGigAndStudent(gigID, studentID string) (*models.Application, error) {
	var application models.Application
	err := r.db.First(&application, "gig_id = ? AND student_id = ?", gigID, studentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *ApplicationRepositoryImpl) ListByGig(gigID string) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.Preload("Student").
		Where("gig_id = ?", gigID).
		Order("applied_at ASC").
		Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) ListByStudent(studentID string) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.Preload("Gig").
		Where("student_id = ?", studentID).
		Order("applied_at DESC").
		Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) ListStudentIDsByGig(gigID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Application{}).
		Where("gig_id = ?", gigID).
		Pluck("student_id", &ids).Error
	return ids, err
}

func (r *ApplicationRepositoryImpl) Update(application *models.Application) error {
	return r.db.Save(application).Error
}

// UpdateBatch saves the given applications in one transaction.
func (r *ApplicationRepositoryImpl) UpdateBatch(applications []*models.Application) error {
	if len(applications) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, application := range applications {
			if err := tx.Save(application).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ApplicationRepositoryImpl) UpdateStatus(id string, status models.ApplicationStatus) error {
	result := r.db.Model(&models.Application{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// SelectCandidate accepts one application and rejects every sibling in a
// single transaction. The gig row is locked first and re-checked so that a
// concurrent selection on the same gig fails with ErrGigNotSelectable
// instead of accepting a second candidate.
func (r *ApplicationRepositoryImpl) SelectCandidate(gigID, applicationID string) (*models.Application, []string, error) {
	var accepted models.Application
	var rejectedIDs []string

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var gig models.Gig
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&gig, "id = ?", gigID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGigNotFound
			}
			return err
		}

		if gig.Status != models.GigStatusOpen {
			return ErrGigNotSelectable
		}

		if err := tx.First(&accepted, "id = ? AND gig_id = ?", applicationID, gigID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			return err
		}

		now := time.Now()
		if err := tx.Model(&accepted).Updates(map[string]interface{}{
			"status":      models.ApplicationStatusAccepted,
			"selected_at": now,
		}).Error; err != nil {
			return err
		}
		accepted.Status = models.ApplicationStatusAccepted
		accepted.SelectedAt = &now

		if err := tx.Model(&models.Application{}).
			Where("gig_id = ? AND id <> ?", gigID, applicationID).
			Pluck("id", &rejectedIDs).Error; err != nil {
			return err
		}

		if len(rejectedIDs) > 0 {
			if err := tx.Model(&models.Application{}).
				Where("id IN ?", rejectedIDs).
				Update("status", models.ApplicationStatusRejected).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Gig{}).
			Where("id = ?", gigID).
			Update("status", models.GigStatusInProgress).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &accepted, rejectedIDs, nil
}

// HasBlockingApplications reports whether the gig has any accepted or
// completed application, which blocks gig deletion.
func (r *ApplicationRepositoryImpl) HasBlockingApplications(gigID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Application{}).
		Where("gig_id = ? AND status IN ?", gigID,
			[]models.ApplicationStatus{models.ApplicationStatusAccepted, models.ApplicationStatusCompleted}).
		Count(&count).Error
	return count > 0, err
}

func (r *ApplicationRepositoryImpl) CountByGig(gigID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Application{}).Where("gig_id = ?", gigID).Count(&count).Error
	return count, err
}
