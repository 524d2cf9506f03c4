package models

import (
	"time"

	"gorm.io/datatypes"
)

// MaxDeliveryAttempts is the bounded-retry cap for outbound email and push
// deliveries. After the third failed attempt an item is terminally failed;
// until then it stays pending and the next processor sweep retries it.
const MaxDeliveryAttempts = 3

type EmailQueueItem struct {
	BaseModel
	UserID       string         `gorm:"type:uuid;not null;index" json:"user_id"`
	EmailAddress string         `gorm:"size:255;not null" json:"email_address"`
	Subject      string         `gorm:"size:255;not null" json:"subject"`
	Body         string         `gorm:"not null" json:"body"`
	Template     string         `gorm:"size:100" json:"template,omitempty"`
	TemplateData datatypes.JSON `gorm:"type:jsonb" json:"template_data,omitempty"`
	Status       QueueStatus    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Attempts     int            `gorm:"default:0" json:"attempts"`
	LastAttempt  *time.Time     `json:"last_attempt,omitempty"`
	SentAt       *time.Time     `json:"sent_at,omitempty"`
}

type PushQueueItem struct {
	BaseModel
	UserID      string         `gorm:"type:uuid;not null;index" json:"user_id"`
	DeviceToken string         `gorm:"size:255" json:"device_token,omitempty"`
	Platform    string         `gorm:"size:20" json:"platform,omitempty"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Body        string         `gorm:"not null" json:"body"`
	Data        datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`
	Status      QueueStatus    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Attempts    int            `gorm:"default:0" json:"attempts"`
	LastAttempt *time.Time     `json:"last_attempt,omitempty"`
	SentAt      *time.Time     `json:"sent_at,omitempty"`
}
