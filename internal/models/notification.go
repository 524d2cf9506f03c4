package models

import (
	"time"

	"gorm.io/datatypes"
)

// Built-in notification types. Any lifecycle event producing a user-facing
// notice uses one of these; ad hoc types are allowed for admin bulk sends.
const (
	NotificationTypeApplicationReceived  = "application_received"
	NotificationTypeApplicationStatus    = "application_status"
	NotificationTypeApplicationSubmitted = "application_submitted"
	NotificationTypeGigUpdate            = "gig_update"
	NotificationTypeGigApproved          = "gig_approved"
	NotificationTypeGigRejected          = "gig_rejected"
	NotificationTypeGigPendingApproval   = "gig_pending_approval"
	NotificationTypeRatingReceived       = "rating_received"
	NotificationTypeRatingWarning        = "rating_warning"
	NotificationTypeRoleChanged          = "role_changed"
)

type Notification struct {
	BaseModel
	UserID               string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Type                 string         `gorm:"size:50;not null" json:"type"`
	Title                string         `gorm:"size:255;not null" json:"title"`
	Message              string         `gorm:"not null" json:"message"`
	Data                 datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`
	IsRead               bool           `gorm:"default:false" json:"is_read"`
	ReadAt               *time.Time     `json:"read_at,omitempty"`
	RelatedGigID         *string        `gorm:"type:uuid" json:"related_gig_id,omitempty"`
	RelatedApplicationID *string        `gorm:"type:uuid" json:"related_application_id,omitempty"`
}
