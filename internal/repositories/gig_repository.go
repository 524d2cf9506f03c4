package repositories

import (
	"errors"
	"time"

	"gigwork_backend/internal/models"

	"gorm.io/gorm"
)

var ErrGigNotFound = errors.New("gig not found")

// GigCriteria filters the public gig listing. ApprovalStatus defaults to
// approved and Sort accepts "rating" to order by provider average rating;
// anything else sorts newest first.
type GigCriteria struct {
	Category       string  `form:"category"`
	Location       string  `form:"location"`
	MinBudget      float64 `form:"min_budget"`
	MaxBudget      float64 `form:"max_budget"`
	Search         string  `form:"search"`
	Status         string  `form:"status"`
	ApprovalStatus string  `form:"approval_status"`
	Sort           string  `form:"sort"`
	Page           int     `form:"page"`
	PageSize       int     `form:"page_size"`
}

type GigRepository interface {
	Create(gig *models.Gig) error
	FindByID(id string) (*models.Gig, error)
	FindByIDWithProvider(id string) (*models.Gig, error)
	Update(gig *models.Gig) error
	Delete(id string) error
	ListVisible(criteria GigCriteria) ([]models.Gig, int64, error)
	ListByProvider(providerID string) ([]models.Gig, error)
	ListPendingApproval() ([]models.Gig, error)
	UpdateStatus(id string, status models.GigStatus) error
	SetApproval(id string, approval models.ApprovalStatus, status models.GigStatus) error
	ExpireOpenPastDeadline(now time.Time) (int64, error)
	ListExpiringBetween(from, to time.Time) ([]models.Gig, error)
}

type GigRepositoryImpl struct {
	db *gorm.DB
}

func NewGigRepository(db *gorm.DB) GigRepository {
	return &GigRepositoryImpl{db: db}
}

func (r *GigRepositoryImpl) Create(gig *models.Gig) error {
	return r.db.Create(gig).Error
}

func (r *GigRepositoryImpl) FindByID(id string) (*models.Gig, error) {
	var gig models.Gig
	err := r.db.First(&gig, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGigNotFound
		}
		return nil, err
	}
	return &gig, nil
}

func (r *GigRepositoryImpl) FindByIDWithProvider(id string) (*models.Gig, error) {
	var gig models.Gig
	err := r.db.Preload("Provider").First(&gig, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGigNotFound
		}
		return nil, err
	}
	return &gig, nil
}

func (r *GigRepositoryImpl) Update(gig *models.Gig) error {
	return r.db.Save(gig).Error
}

func (r *GigRepositoryImpl) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.Gig{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGigNotFound
	}
	return nil
}

func (r *GigRepositoryImpl) ListVisible(criteria GigCriteria) ([]models.Gig, int64, error) {
	approval := models.ApprovalStatus(criteria.ApprovalStatus)
	if approval == "" {
		approval = models.ApprovalStatusApproved
	}

	query := r.db.Model(&models.Gig{}).
		Where("gigs.approval_status = ?", approval)

	if criteria.Status != "" {
		query = query.Where("gigs.status = ?", criteria.Status)
	} else {
		query = query.Where("gigs.status = ?", models.GigStatusOpen)
	}

	if criteria.Category != "" {
		query = query.Where("gigs.category = ?", criteria.Category)
	}
	if criteria.Location != "" {
		query = query.Where("gigs.location = ?", criteria.Location)
	}
	if criteria.MinBudget > 0 {
		query = query.Where("gigs.budget >= ?", criteria.MinBudget)
	}
	if criteria.MaxBudget > 0 {
		query = query.Where("gigs.budget <= ?", criteria.MaxBudget)
	}
	if criteria.Search != "" {
		like := "%" + criteria.Search + "%"
		query = query.Where("gigs.title ILIKE ? OR gigs.description ILIKE ?", like, like)
	}

	order := "gigs.created_at DESC"
	if criteria.Sort == "rating" {
		query = query.Joins("JOIN users ON users.id = gigs.provider_id")
		order = "users.average_rating DESC, gigs.created_at DESC"
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

	var gigs []models.Gig
	err := query.Order(order).
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&gigs).Error

	return gigs, total, err
}

func (r *GigRepositoryImpl) ListByProvider(providerID string) ([]models.Gig, error) {
	var gigs []models.Gig
	err := r.db.Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&gigs).Error
	return gigs, err
}

func (r *GigRepositoryImpl) ListPendingApproval() ([]models.Gig, error) {
	var gigs []models.Gig
	err := r.db.Where("approval_status = ?", models.ApprovalStatusPending).
		Order("created_at ASC").
		Find(&gigs).Error
	return gigs, err
}

func (r *GigRepositoryImpl) UpdateStatus(id string, status models.GigStatus) error {
	result := r.db.Model(&models.Gig{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGigNotFound
	}
	return nil
}

func (r *GigRepositoryImpl) SetApproval(id string, approval models.ApprovalStatus, status models.GigStatus) error {
	result := r.db.Model(&models.Gig{}).Where("id = ?", id).Updates(map[string]interface{}{
		"approval_status": approval,
		"status":          status,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGigNotFound
	}
	return nil
}

// ExpireOpenPastDeadline closes open gigs whose deadline has passed and
// returns how many rows changed.
func (r *GigRepositoryImpl) ExpireOpenPastDeadline(now time.Time) (int64, error) {
	result := r.db.Model(&models.Gig{}).
		Where("status = ? AND deadline IS NOT NULL AND deadline < ?", models.GigStatusOpen, now).
		Update("status", models.GigStatusClosed)
	return result.RowsAffected, result.Error
}

func (r *GigRepositoryImpl) ListExpiringBetween(from, to time.Time) ([]models.Gig, error) {
	var gigs []models.Gig
	err := r.db.Where("status = ? AND deadline IS NOT NULL AND deadline BETWEEN ? AND ?",
		models.GigStatusOpen, from, to).
		Order("deadline ASC").
		Find(&gigs).Error
	return gigs, err
}
