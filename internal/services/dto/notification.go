package dto

import (
	"encoding/json"
	"time"

	"gigwork_backend/internal/models"
)

type NotificationResponse struct {
	ID                   string         `json:"id"`
	UserID               string         `json:"user_id"`
	Type                 string         `json:"type"`
	Title                string         `json:"title"`
	Message              string         `json:"message"`
	Data                 map[string]any `json:"data,omitempty"`
	IsRead               bool           `json:"is_read"`
	ReadAt               *time.Time     `json:"read_at,omitempty"`
	RelatedGigID         *string        `json:"related_gig_id,omitempty"`
	RelatedApplicationID *string        `json:"related_application_id,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int64                  `json:"total"`
	UnreadCount   int64                  `json:"unread_count"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
}

// NotificationSummary backs the header badge: unread count plus a few
// most recent items.
type NotificationSummary struct {
	UnreadCount int64                  `json:"unread_count"`
	Recent      []NotificationResponse `json:"recent"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

type PreferenceUpdateRequest struct {
	NotificationType string `json:"notification_type" binding:"required"`
	EmailEnabled     *bool  `json:"email_enabled"`
	PushEnabled      *bool  `json:"push_enabled"`
	InAppEnabled     *bool  `json:"in_app_enabled"`
}

type PreferenceResponse struct {
	NotificationType string `json:"notification_type"`
	EmailEnabled     bool   `json:"email_enabled"`
	PushEnabled      bool   `json:"push_enabled"`
	InAppEnabled     bool   `json:"in_app_enabled"`
}

type BulkPreferenceUpdateRequest struct {
	Preferences []PreferenceUpdateRequest `json:"preferences" binding:"required,min=1,dive"`
}

type SendBulkNotificationRequest struct {
	UserIDs       []string       `json:"user_ids" binding:"required,min=1"`
	Type          string         `json:"type" binding:"required"`
	Title         string         `json:"title" binding:"required"`
	Message       string         `json:"message" binding:"required"`
	EmailTemplate string         `json:"email_template"`
	Data          map[string]any `json:"data"`
}

// BulkNotificationResult reports the fan-out outcome per channel.
type BulkNotificationResult struct {
	TotalUsers   int      `json:"total_users"`
	InAppSent    int      `json:"in_app_sent"`
	EmailsQueued int      `json:"emails_queued"`
	PushQueued   int      `json:"push_queued"`
	Errors       []string `json:"errors"`
}

func NewNotificationResponse(n *models.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:                   n.ID,
		UserID:               n.UserID,
		Type:                 n.Type,
		Title:                n.Title,
		Message:              n.Message,
		IsRead:               n.IsRead,
		ReadAt:               n.ReadAt,
		RelatedGigID:         n.RelatedGigID,
		RelatedApplicationID: n.RelatedApplicationID,
		CreatedAt:            n.CreatedAt,
	}
	if len(n.Data) > 0 {
		_ = json.Unmarshal(n.Data, &resp.Data)
	}
	return resp
}

func NewPreferenceResponse(p *models.NotificationPreference) PreferenceResponse {
	return PreferenceResponse{
		NotificationType: p.NotificationType,
		EmailEnabled:     p.EmailEnabled,
		PushEnabled:      p.PushEnabled,
		InAppEnabled:     p.InAppEnabled,
	}
}
