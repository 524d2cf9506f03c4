package services

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/models"
	"gigwork_backend/internal/repositories"
	"gigwork_backend/internal/services/dto"
	"gigwork_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

type RatingService interface {
	CreateRating(raterID string, raterRole models.UserRole, req *dto.CreateRatingRequest) (*dto.RatingResponse, error)
	UpdateRating(ratingID, raterID string, req *dto.UpdateRatingRequest) (*dto.RatingResponse, error)
	GetUserRatings(userID string) (*dto.UserRatingsResponse, error)
	FlagRating(ratingID, reporterID, reason string) error
	ListFlagged() ([]dto.RatingResponse, error)
	ModerateRating(ratingID, adminID, action string) error
	UpdateAverageRating(userID string) error
}

type ratingService struct {
	ratingRepo      repositories.RatingRepository
	gigRepo         repositories.GigRepository
	applicationRepo repositories.ApplicationRepository
	userRepo        repositories.UserRepository
	auditRepo       repositories.AuditRepository
	notifications   NotificationService
}

func NewRatingService(
	ratingRepo repositories.RatingRepository,
	gigRepo repositories.GigRepository,
	applicationRepo repositories.ApplicationRepository,
	userRepo repositories.UserRepository,
	auditRepo repositories.AuditRepository,
	notifications NotificationService,
) RatingService {
	return &ratingService{
		ratingRepo:      ratingRepo,
		gigRepo:         gigRepo,
		applicationRepo: applicationRepo,
		userRepo:        userRepo,
		auditRepo:       auditRepo,
		notifications:   notifications,
	}
}

// CreateRating checks, in order: no self-rating, gig completed, opposite
// roles, actual participation through an accepted or completed application
// on this gig, one rating per (gig, rater, ratee), score in range.
func (s *ratingService) CreateRating(raterID string, raterRole models.UserRole, req *dto.CreateRatingRequest) (*dto.RatingResponse, error) {
	if raterID == req.RateeID {
		return nil, apperrors.NewValidationError("ratings", "you cannot rate yourself")
	}

	gig, err := s.gigRepo.FindByID(req.GigID)
	if err != nil {
		if errors.Is(err, repositories.ErrGigNotFound) {
			return nil, apperrors.NewNotFoundError("ratings", "gig not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to load gig")
	}

	if gig.Status != models.GigStatusCompleted {
		return nil, apperrors.NewValidationError("ratings", "ratings are allowed only after the gig is completed")
	}

	ratee, err := s.userRepo.FindByID(req.RateeID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("ratings", "ratee not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to load ratee")
	}

	if err := s.checkParticipants(gig, raterID, raterRole, ratee); err != nil {
		return nil, err
	}

	if _, err := s.ratingRepo.FindByGigRaterRatee(req.GigID, raterID, req.RateeID); err == nil {
		return nil, apperrors.NewValidationError("ratings", "you have already rated this user for this gig")
	} else if !errors.Is(err, repositories.ErrRatingNotFound) {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to check existing rating")
	}

	if err := models.ValidateScore(req.Score); err != nil {
		return nil, apperrors.NewValidationError("ratings", err.Error())
	}

	rating := &models.Rating{
		RaterID:          raterID,
		RateeID:          req.RateeID,
		GigID:            req.GigID,
		Score:            req.Score,
		Comment:          req.Comment,
		ModerationStatus: models.ModerationStatusApproved,
	}
	if err := s.ratingRepo.Create(rating); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to create rating")
	}

	if err := s.UpdateAverageRating(req.RateeID); err != nil {
		logger.WithError(err).Warn("average recompute failed", "user_id", req.RateeID)
	}
	if err := s.notifications.NotifyRatingReceived(req.RateeID, gig); err != nil {
		logger.WithError(err).Warn("rating received notice failed", "rating_id", rating.ID)
	}

	resp := dto.NewRatingResponse(rating)
	return &resp, nil
}

// checkParticipants enforces the provider-student pairing: one party owns
// the gig, the other holds an accepted or completed application on it.
func (s *ratingService) checkParticipants(gig *models.Gig, raterID string, raterRole models.UserRole, ratee *models.User) error {
	if raterRole == ratee.Role {
		return apperrors.NewValidationError("ratings", "providers and students can only rate each other")
	}

	var providerID, studentID string
	switch {
	case raterRole == models.UserRoleProvider && ratee.Role == models.UserRoleStudent:
		providerID, studentID = raterID, ratee.ID
	case raterRole == models.UserRoleStudent && ratee.Role == models.UserRoleProvider:
		providerID, studentID = ratee.ID, raterID
	default:
		return apperrors.NewValidationError("ratings", "only gig participants can rate")
	}

	if gig.ProviderID != providerID {
		return apperrors.NewValidationError("ratings", "the provider did not own this gig")
	}

	application, err := s.applicationRepo.FindByGigAndStudent(gig.ID, studentID)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return apperrors.NewValidationError("ratings", "the student did not participate in this gig")
		}
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to load application")
	}
	if application.Status != models.ApplicationStatusAccepted && application.Status != models.ApplicationStatusCompleted {
		return apperrors.NewValidationError("ratings", "the student did not participate in this gig")
	}

	return nil
}

func (s *ratingService) UpdateRating(ratingID, raterID string, req *dto.UpdateRatingRequest) (*dto.RatingResponse, error) {
	rating, err := s.ratingRepo.FindByID(ratingID)
	if err != nil {
		if errors.Is(err, repositories.ErrRatingNotFound) {
			return nil, apperrors.NewNotFoundError("ratings", "rating not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to load rating")
	}

	if rating.RaterID != raterID {
		return nil, apperrors.NewAuthorizationError("ratings", "only the author can edit a rating")
	}
	if !rating.Editable(time.Now()) {
		return nil, apperrors.NewValidationError("ratings", "the rating edit window has expired")
	}

	if req.Score != nil {
		if err := models.ValidateScore(*req.Score); err != nil {
			return nil, apperrors.NewValidationError("ratings", err.Error())
		}
		rating.Score = *req.Score
	}
	if req.Comment != nil {
		rating.Comment = *req.Comment
	}

	if err := s.ratingRepo.Update(rating); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to update rating")
	}

	if err := s.UpdateAverageRating(rating.RateeID); err != nil {
		logger.WithError(err).Warn("average recompute failed", "user_id", rating.RateeID)
	}

	resp := dto.NewRatingResponse(rating)
	return &resp, nil
}

func (s *ratingService) GetUserRatings(userID string) (*dto.UserRatingsResponse, error) {
	ratings, err := s.ratingRepo.ListForUser(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to list ratings")
	}

	average, count, err := s.ratingRepo.AverageForUser(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to compute average")
	}

	resp := &dto.UserRatingsResponse{
		Ratings: make([]dto.RatingResponse, 0, len(ratings)),
		Average: round2(average),
		Count:   count,
	}
	for i := range ratings {
		resp.Ratings = append(resp.Ratings, dto.NewRatingResponse(&ratings[i]))
	}
	return resp, nil
}

func (s *ratingService) FlagRating(ratingID, reporterID, reason string) error {
	if err := s.ratingRepo.Flag(ratingID, reason); err != nil {
		if errors.Is(err, repositories.ErrRatingNotFound) {
			return apperrors.NewNotFoundError("ratings", "rating not found")
		}
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to flag rating")
	}

	s.audit(reporterID, "rating_flagged", ratingID, map[string]any{"reason": reason})
	return nil
}

func (s *ratingService) ListFlagged() ([]dto.RatingResponse, error) {
	ratings, err := s.ratingRepo.ListFlagged()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to list flagged ratings")
	}

	resp := make([]dto.RatingResponse, 0, len(ratings))
	for i := range ratings {
		resp = append(resp, dto.NewRatingResponse(&ratings[i]))
	}
	return resp, nil
}

// ModerateRating handles an admin decision on a flagged rating. Approve
// clears the flag, remove deletes the row and recomputes the ratee's
// average, warn_user keeps the rating flagged and warns its author.
func (s *ratingService) ModerateRating(ratingID, adminID, action string) error {
	rating, err := s.ratingRepo.FindByID(ratingID)
	if err != nil {
		if errors.Is(err, repositories.ErrRatingNotFound) {
			return apperrors.NewNotFoundError("ratings", "rating not found")
		}
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to load rating")
	}

	switch action {
	case "approve":
		if err := s.ratingRepo.Moderate(ratingID, adminID, models.ModerationStatusApproved, true); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to approve rating")
		}

	case "remove":
		if err := s.ratingRepo.Delete(ratingID); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to remove rating")
		}
		if err := s.UpdateAverageRating(rating.RateeID); err != nil {
			logger.WithError(err).Warn("average recompute failed", "user_id", rating.RateeID)
		}

	case "warn_user":
		if err := s.ratingRepo.Moderate(ratingID, adminID, models.ModerationStatusFlagged, false); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to update rating")
		}
		if err := s.notifications.NotifyRatingWarning(rating.RaterID, rating.FlagReason); err != nil {
			logger.WithError(err).Warn("rating warning notice failed", "rating_id", ratingID)
		}

	default:
		return apperrors.NewValidationError("ratings", "unknown moderation action")
	}

	s.audit(adminID, "rating_moderated", ratingID, map[string]any{"action": action})
	return nil
}

// UpdateAverageRating recomputes the mean of the user's ratings, rounded
// to two decimals, 0.0 when they have none.
func (s *ratingService) UpdateAverageRating(userID string) error {
	average, _, err := s.ratingRepo.AverageForUser(userID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "ratings", "failed to compute average")
	}
	return s.userRepo.UpdateAverageRating(userID, round2(average))
}

func (s *ratingService) audit(actorID, action, ratingID string, details map[string]any) {
	entry := &models.AuditLog{
		UserID:       &actorID,
		Action:       action,
		ResourceType: "rating",
		ResourceID:   ratingID,
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = datatypes.JSON(raw)
		}
	}
	if err := s.auditRepo.Create(entry); err != nil {
		logger.WithError(err).Warn("audit write failed", "action", action, "rating_id", ratingID)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
