package models

import (
	"fmt"
	"time"
)

// RatingEditWindow is how long the rater may amend score/comment after
// creation.
const RatingEditWindow = 24 * time.Hour

type Rating struct {
	BaseModel
	RaterID string `gorm:"type:uuid;not null;uniqueIndex:uq_ratings_gig_rater_ratee" json:"rater_id"`
	RateeID string `gorm:"type:uuid;not null;uniqueIndex:uq_ratings_gig_rater_ratee" json:"ratee_id"`
	GigID   string `gorm:"type:uuid;not null;uniqueIndex:uq_ratings_gig_rater_ratee" json:"gig_id"`
	Score   int    `gorm:"not null;check:score >= 1 AND score <= 5" json:"score"`
	Comment string `json:"comment"`

	// Moderation
	IsFlagged        bool             `gorm:"default:false" json:"is_flagged"`
	FlagReason       string           `json:"flag_reason,omitempty"`
	ModerationStatus ModerationStatus `gorm:"type:varchar(20);default:'approved'" json:"moderation_status"`
	ModeratedBy      *string          `gorm:"type:uuid" json:"moderated_by,omitempty"`
	ModeratedAt      *time.Time       `json:"moderated_at,omitempty"`

	// Relations
	Rater User `gorm:"foreignKey:RaterID" json:"-"`
	Ratee User `gorm:"foreignKey:RateeID" json:"-"`
	Gig   Gig  `gorm:"foreignKey:GigID" json:"-"`
}

func ValidateScore(score int) error {
	if score < 1 || score > 5 {
		return fmt.Errorf("score must be an integer between 1 and 5, got %d", score)
	}
	return nil
}

// Editable reports whether the rating is still within its edit window.
func (r *Rating) Editable(now time.Time) bool {
	return now.Sub(r.CreatedAt) <= RatingEditWindow
}
