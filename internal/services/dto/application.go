package dto

import (
	"time"

	"gigwork_backend/internal/models"
)

type CreateApplicationRequest struct {
	GigID string `json:"gig_id" binding:"required,uuid"`
	Notes string `json:"notes"`
}

// ApplicationStatusUpdate is one item of a bulk update, carrying its own
// target status.
type ApplicationStatusUpdate struct {
	ApplicationID string `json:"application_id" binding:"required"`
	Status        string `json:"status" binding:"required"`
}

type BulkUpdateApplicationsRequest struct {
	Updates []ApplicationStatusUpdate `json:"updates" binding:"required,min=1,dive"`
}

// SkippedApplication explains why a bulk update left an item untouched.
type SkippedApplication struct {
	ApplicationID string `json:"application_id"`
	Reason        string `json:"reason"`
}

type BulkUpdateApplicationsResponse struct {
	Updated int                  `json:"updated"`
	Skipped []SkippedApplication `json:"skipped"`
}

type ApplicationResponse struct {
	ID          string                   `json:"id"`
	GigID       string                   `json:"gig_id"`
	GigTitle    string                   `json:"gig_title,omitempty"`
	StudentID   string                   `json:"student_id"`
	StudentName string                   `json:"student_name,omitempty"`
	Status      models.ApplicationStatus `json:"status"`
	Notes       string                   `json:"notes,omitempty"`
	AppliedAt   time.Time                `json:"applied_at"`
	SelectedAt  *time.Time               `json:"selected_at,omitempty"`
}

type ApplicationListResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Total        int                   `json:"total"`
}

func NewApplicationResponse(app *models.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:         app.ID,
		GigID:      app.GigID,
		StudentID:  app.StudentID,
		Status:     app.Status,
		Notes:      app.Notes,
		AppliedAt:  app.AppliedAt,
		SelectedAt: app.SelectedAt,
	}
	if app.Gig.Title != "" {
		resp.GigTitle = app.Gig.Title
	}
	if app.Student.Name != "" {
		resp.StudentName = app.Student.Name
	}
	return resp
}
