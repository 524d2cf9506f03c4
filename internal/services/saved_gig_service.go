package services

import (
	"errors"

	"gigwork_backend/internal/repositories"
	"gigwork_backend/internal/services/dto"
	"gigwork_backend/pkg/apperrors"
)

type SavedGigService interface {
	SaveGig(userID, gigID string) error
	UnsaveGig(userID, gigID string) error
	ListSaved(userID string) ([]dto.GigResponse, error)
}

type savedGigService struct {
	savedGigRepo repositories.SavedGigRepository
	gigRepo      repositories.GigRepository
}

func NewSavedGigService(savedGigRepo repositories.SavedGigRepository, gigRepo repositories.GigRepository) SavedGigService {
	return &savedGigService{savedGigRepo: savedGigRepo, gigRepo: gigRepo}
}

func (s *savedGigService) SaveGig(userID, gigID string) error {
	gig, err := s.gigRepo.FindByID(gigID)
	if err != nil {
		if errors.Is(err, repositories.ErrGigNotFound) {
			return apperrors.NewNotFoundError("saved_gigs", "gig not found")
		}
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "saved_gigs", "failed to load gig")
	}
	if !gig.Visible() {
		return apperrors.NewValidationError("saved_gigs", "gig is not available")
	}

	saved, err := s.savedGigRepo.IsSaved(userID, gigID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "saved_gigs", "failed to check saved state")
	}
	if saved {
		return nil
	}

	if err := s.savedGigRepo.Save(userID, gigID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "saved_gigs", "failed to save gig")
	}
	return nil
}

func (s *savedGigService) UnsaveGig(userID, gigID string) error {
	if err := s.savedGigRepo.Unsave(userID, gigID); err != nil {
		if errors.Is(err, repositories.ErrSavedGigNotFound) {
			return apperrors.NewNotFoundError("saved_gigs", "gig is not saved")
		}
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "saved_gigs", "failed to unsave gig")
	}
	return nil
}

func (s *savedGigService) ListSaved(userID string) ([]dto.GigResponse, error) {
	saved, err := s.savedGigRepo.ListForUser(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "saved_gigs", "failed to list saved gigs")
	}

	resp := make([]dto.GigResponse, 0, len(saved))
	for i := range saved {
		gig := saved[i].Gig
		if gig.ID == "" {
			continue
		}
		resp = append(resp, dto.NewGigResponse(&gig))
	}
	return resp, nil
}
