package repositories

import (
	"errors"

	"gigwork_backend/internal/models"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(user *models.User) error
	FindByID(id string) (*models.User, error)
	FindByUID(uid string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByIDs(ids []string) ([]models.User, error)
	FindAdmins() ([]models.User, error)
	CountAdmins() (int64, error)
	UpdateRole(userID string, role models.UserRole) error
	UpdateAverageRating(userID string, average float64) error
	Update(user *models.User) error
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepositoryImpl) FindByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByUID(uid string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "uid = ?", uid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByIDs(ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	err := r.db.Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) FindAdmins() ([]models.User, error) {
	var users []models.User
	err := r.db.Where("role = ?", models.UserRoleAdmin).Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) CountAdmins() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&count).Error
	return count, err
}

func (r *UserRepositoryImpl) UpdateRole(userID string, role models.UserRole) error {
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) UpdateAverageRating(userID string, average float64) error {
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Update("average_rating", average)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) Update(user *models.User) error {
	return r.db.Save(user).Error
}
