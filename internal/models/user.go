package models

type User struct {
	BaseModel
	UID           string   `gorm:"uniqueIndex;not null" json:"uid"`
	Name          string   `gorm:"not null" json:"name"`
	Email         string   `gorm:"uniqueIndex;not null" json:"email"`
	Role          UserRole `gorm:"type:varchar(20);not null" json:"role"`
	PasswordHash  string   `gorm:"not null" json:"-"`
	AverageRating float64  `gorm:"default:0" json:"average_rating"`

	// Relations
	Gigs          []Gig          `gorm:"foreignKey:ProviderID" json:"-"`
	Applications  []Application  `gorm:"foreignKey:StudentID" json:"-"`
	Notifications []Notification `gorm:"foreignKey:UserID" json:"-"`
	SavedGigs     []SavedGig     `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) IsRole(roles ...UserRole) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
