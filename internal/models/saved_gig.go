package models

type SavedGig struct {
	BaseModel
	UserID string `gorm:"type:uuid;not null;uniqueIndex:uq_saved_gigs_user_gig" json:"user_id"`
	GigID  string `gorm:"type:uuid;not null;uniqueIndex:uq_saved_gigs_user_gig" json:"gig_id"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
	Gig  Gig  `gorm:"foreignKey:GigID" json:"-"`
}
