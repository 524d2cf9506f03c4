package models

import "time"

type Gig struct {
	BaseModel
	Title          string         `gorm:"size:255;not null" json:"title"`
	Description    string         `gorm:"not null" json:"description"`
	Budget         *float64       `gorm:"type:numeric(10,2)" json:"budget"`
	Category       string         `gorm:"size:100" json:"category"`
	Location       string         `gorm:"size:255" json:"location"`
	ProviderID     string         `gorm:"type:uuid;not null;index" json:"provider_id"`
	Deadline       *time.Time     `gorm:"type:date" json:"deadline"`
	Status         GigStatus      `gorm:"type:varchar(20);default:'open'" json:"status"`
	ApprovalStatus ApprovalStatus `gorm:"type:varchar(20);default:'pending'" json:"approval_status"`

	// Relations
	Provider     User          `gorm:"foreignKey:ProviderID" json:"-"`
	Applications []Application `gorm:"foreignKey:GigID;constraint:OnDelete:CASCADE" json:"-"`
	Ratings      []Rating      `gorm:"foreignKey:GigID;constraint:OnDelete:CASCADE" json:"-"`
	SavedBy      []SavedGig    `gorm:"foreignKey:GigID;constraint:OnDelete:CASCADE" json:"-"`
}

// Visible reports whether the gig may be shown to students.
func (g *Gig) Visible() bool {
	return g.ApprovalStatus == ApprovalStatusApproved
}

// AcceptsApplications reports whether new applications may be created
// against the gig.
func (g *Gig) AcceptsApplications() bool {
	return g.ApprovalStatus == ApprovalStatusApproved && g.Status == GigStatusOpen
}
