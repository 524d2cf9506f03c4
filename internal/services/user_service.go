package services

import (
	"errors"

	"gigwork_backend/internal/auth"
	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/models"
	"gigwork_backend/internal/repositories"
	"gigwork_backend/internal/services/dto"
	"gigwork_backend/pkg/apperrors"

	"github.com/google/uuid"
)

type UserService interface {
	Register(req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(req *dto.LoginRequest) (*dto.AuthResponse, error)
	GetUser(userID string) (*dto.UserResponse, error)
	ChangeRole(userID, adminID string, req *dto.ChangeRoleRequest) (*dto.UserResponse, error)
}

type userService struct {
	userRepo       repositories.UserRepository
	preferenceRepo repositories.PreferenceRepository
	auditRepo      repositories.AuditRepository
	notifications  NotificationService
}

func NewUserService(
	userRepo repositories.UserRepository,
	preferenceRepo repositories.PreferenceRepository,
	auditRepo repositories.AuditRepository,
	notifications NotificationService,
) UserService {
	return &userService{
		userRepo:       userRepo,
		preferenceRepo: preferenceRepo,
		auditRepo:      auditRepo,
		notifications:  notifications,
	}
}

func (s *userService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	role, err := models.ParseUserRole(req.Role)
	if err != nil {
		return nil, apperrors.NewValidationError("users", err.Error())
	}
	if role == models.UserRoleAdmin {
		return nil, apperrors.NewValidationError("users", "cannot self-register as admin")
	}

	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.NewValidationError("users", err.Error())
	}

	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, apperrors.NewValidationError("users", "email is already registered")
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "users", "failed to check email")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "users", "failed to hash password")
	}

	user := &models.User{
		UID:          uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "users", "failed to create user")
	}

	if _, err := s.preferenceRepo.SeedDefaults(user.ID); err != nil {
		logger.WithError(err).Warn("failed to seed preferences", "user_id", user.ID)
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "users", "failed to sign token")
	}

	return &dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *userService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewAuthenticationError("users", "invalid email or password")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "users", "failed to load user")
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.NewAuthenticationError("users", "invalid email or password")
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "users", "failed to sign token")
	}

	return &dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *userService) GetUser(userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("users", "user not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "users", "failed to load user")
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userService) ChangeRole(userID, adminID string, req *dto.ChangeRoleRequest) (*dto.UserResponse, error) {
	role, err := models.ParseUserRole(req.Role)
	if err != nil {
		return nil, apperrors.NewValidationError("users", err.Error())
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("users", "user not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "users", "failed to load user")
	}

	if user.Role == role {
		resp := dto.NewUserResponse(user)
		return &resp, nil
	}

	if err := s.userRepo.UpdateRole(userID, role); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "users", "failed to change role")
	}
	user.Role = role

	entry := &models.AuditLog{
		UserID:       &adminID,
		Action:       "role_changed",
		ResourceType: "user",
		ResourceID:   userID,
	}
	if err := s.auditRepo.Create(entry); err != nil {
		logger.WithError(err).Warn("audit write failed", "action", "role_changed", "user_id", userID)
	}

	if err := s.notifications.NotifyRoleChanged(userID, role); err != nil {
		logger.WithError(err).Warn("role change notice failed", "user_id", userID)
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}
