package models

import "gorm.io/datatypes"

// AuditLog is an append-only record of admin/system actions. Written by the
// lifecycle services, never read back by them.
type AuditLog struct {
	BaseModel
	UserID       *string        `gorm:"type:uuid;index" json:"user_id"`
	Action       string         `gorm:"size:100;not null;index" json:"action"`
	ResourceType string         `gorm:"size:50;not null;index" json:"resource_type"`
	ResourceID   string         `gorm:"size:64;not null" json:"resource_id"`
	Details      datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`
}
