package dto

import (
	"time"

	"gigwork_backend/internal/models"
)

type CreateGigRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Description string     `json:"description" binding:"required"`
	Budget      *float64   `json:"budget" binding:"omitempty,gt=0"`
	Category    string     `json:"category" binding:"required"`
	Location    string     `json:"location"`
	Deadline    *time.Time `json:"deadline"`
}

type UpdateGigRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=255"`
	Description *string    `json:"description"`
	Budget      *float64   `json:"budget" binding:"omitempty,gt=0"`
	Category    *string    `json:"category"`
	Location    *string    `json:"location"`
	Deadline    *time.Time `json:"deadline"`
	Status      *string    `json:"status"`
}

type RejectGigRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type GigResponse struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Budget         *float64              `json:"budget,omitempty"`
	Category       string                `json:"category"`
	Location       string                `json:"location,omitempty"`
	ProviderID     string                `json:"provider_id"`
	ProviderName   string                `json:"provider_name,omitempty"`
	Deadline       *time.Time            `json:"deadline,omitempty"`
	Status         models.GigStatus      `json:"status"`
	ApprovalStatus models.ApprovalStatus `json:"approval_status"`
	CreatedAt      time.Time             `json:"created_at"`
}

type GigListResponse struct {
	Gigs     []GigResponse `json:"gigs"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

func NewGigResponse(gig *models.Gig) GigResponse {
	resp := GigResponse{
		ID:             gig.ID,
		Title:          gig.Title,
		Description:    gig.Description,
		Budget:         gig.Budget,
		Category:       gig.Category,
		Location:       gig.Location,
		ProviderID:     gig.ProviderID,
		Deadline:       gig.Deadline,
		Status:         gig.Status,
		ApprovalStatus: gig.ApprovalStatus,
		CreatedAt:      gig.CreatedAt,
	}
	if gig.Provider.Name != "" {
		resp.ProviderName = gig.Provider.Name
	}
	return resp
}
