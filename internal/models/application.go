package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application is a student's request to perform a gig. A student may hold at
// most one application per gig, and at most one application per gig may be
// accepted (enforced by the selection cascade, not by a DB constraint).
type Application struct {
	ID         string            `gorm:"type:uuid;primaryKey" json:"id"`
	GigID      string            `gorm:"type:uuid;not null;uniqueIndex:uq_applications_gig_student" json:"gig_id"`
	StudentID  string            `gorm:"type:uuid;not null;uniqueIndex:uq_applications_gig_student" json:"student_id"`
	Status     ApplicationStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Notes      string            `json:"notes"`
	AppliedAt  time.Time         `gorm:"autoCreateTime" json:"applied_at"`
	SelectedAt *time.Time        `json:"selected_at"`

	// Relations
	Gig     Gig  `gorm:"foreignKey:GigID" json:"-"`
	Student User `gorm:"foreignKey:StudentID" json:"-"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
