package dto

import (
	"time"

	"gigwork_backend/internal/models"
)

type CreateRatingRequest struct {
	GigID   string `json:"gig_id" binding:"required,uuid"`
	RateeID string `json:"ratee_id" binding:"required,uuid"`
	Score   int    `json:"score" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type UpdateRatingRequest struct {
	Score   *int    `json:"score" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment"`
}

type FlagRatingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ModerateRatingRequest struct {
	Action string `json:"action" binding:"required,oneof=approve remove warn_user"`
}

type RatingResponse struct {
	ID               string                  `json:"id"`
	GigID            string                  `json:"gig_id"`
	RaterID          string                  `json:"rater_id"`
	RateeID          string                  `json:"ratee_id"`
	Score            int                     `json:"score"`
	Comment          string                  `json:"comment,omitempty"`
	IsFlagged        bool                    `json:"is_flagged"`
	FlagReason       string                  `json:"flag_reason,omitempty"`
	ModerationStatus models.ModerationStatus `json:"moderation_status"`
	CreatedAt        time.Time               `json:"created_at"`
}

type UserRatingsResponse struct {
	Ratings []RatingResponse `json:"ratings"`
	Average float64          `json:"average"`
	Count   int64            `json:"count"`
}

func NewRatingResponse(r *models.Rating) RatingResponse {
	return RatingResponse{
		ID:               r.ID,
		GigID:            r.GigID,
		RaterID:          r.RaterID,
		RateeID:          r.RateeID,
		Score:            r.Score,
		Comment:          r.Comment,
		IsFlagged:        r.IsFlagged,
		FlagReason:       r.FlagReason,
		ModerationStatus: r.ModerationStatus,
		CreatedAt:        r.CreatedAt,
	}
}
