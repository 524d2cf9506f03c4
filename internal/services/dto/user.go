package dto

import (
	"time"

	"gigwork_backend/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=student provider"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student provider admin"`
}

type UserResponse struct {
	ID            string          `json:"id"`
	UID           string          `json:"uid"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Role          models.UserRole `json:"role"`
	AverageRating float64         `json:"average_rating"`
	CreatedAt     time.Time       `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		UID:           u.UID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		AverageRating: u.AverageRating,
		CreatedAt:     u.CreatedAt,
	}
}
