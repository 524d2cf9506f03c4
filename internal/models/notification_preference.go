package models

// NotificationPreference is the per-user, per-type channel toggle row.
// Rows are created lazily: first read of a user's preferences materializes
// the defaults below, and dispatching for an unknown type falls back to
// all channels enabled.
type NotificationPreference struct {
	BaseModel
	UserID           string `gorm:"type:uuid;not null;uniqueIndex:uq_preferences_user_type" json:"user_id"`
	NotificationType string `gorm:"size:50;not null;uniqueIndex:uq_preferences_user_type" json:"notification_type"`
	EmailEnabled     bool   `gorm:"default:true" json:"email_enabled"`
	PushEnabled      bool   `gorm:"default:true" json:"push_enabled"`
	InAppEnabled     bool   `gorm:"default:true" json:"in_app_enabled"`
}

// DefaultPreferences returns the built-in preference rows for a new user.
func DefaultPreferences(userID string) []NotificationPreference {
	mk := func(notificationType string, email, push, inApp bool) NotificationPreference {
		return NotificationPreference{
			UserID:           userID,
			NotificationType: notificationType,
			EmailEnabled:     email,
			PushEnabled:      push,
			InAppEnabled:     inApp,
		}
	}
	return []NotificationPreference{
		mk(NotificationTypeApplicationReceived, true, true, true),
		mk(NotificationTypeApplicationStatus, true, true, true),
		mk(NotificationTypeGigUpdate, false, true, true),
		mk(NotificationTypeGigApproved, true, true, true),
		mk(NotificationTypeRatingReceived, false, true, true),
		mk(NotificationTypeRatingWarning, true, true, true),
		mk(NotificationTypeRoleChanged, true, true, true),
	}
}
