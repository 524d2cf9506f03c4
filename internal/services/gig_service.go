package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/metrics"
	"gigwork_backend/internal/models"
	"gigwork_backend/internal/repositories"
	"gigwork_backend/internal/services/dto"
	"gigwork_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

type GigService interface {
	CreateGig(providerID string, role models.UserRole, req *dto.CreateGigRequest) (*dto.GigResponse, error)
	GetGig(gigID, viewerID string, viewerRole models.UserRole) (*dto.GigResponse, error)
	BrowseGigs(criteria repositories.GigCriteria) (*dto.GigListResponse, error)
	ListMyGigs(providerID string) ([]dto.GigResponse, error)
	ListPendingGigs() ([]dto.GigResponse, error)
	UpdateGig(gigID, userID string, req *dto.UpdateGigRequest) (*dto.GigResponse, error)
	UpdateGigStatus(gigID, userID, status string) (*dto.GigResponse, error)
	ApproveGig(gigID, adminID string) error
	RejectGig(gigID, adminID, reason string) error
	DeleteGig(gigID, userID string, role models.UserRole) error
	MarkExpiredGigs() (int64, error)
	ListExpiringSoon(within time.Duration) ([]dto.GigResponse, error)
}

type gigService struct {
	gigRepo         repositories.GigRepository
	applicationRepo repositories.ApplicationRepository
	savedGigRepo    repositories.SavedGigRepository
	auditRepo       repositories.AuditRepository
	notifications   NotificationService
	applications    ApplicationService
}

func NewGigService(
	gigRepo repositories.GigRepository,
	applicationRepo repositories.ApplicationRepository,
	savedGigRepo repositories.SavedGigRepository,
	auditRepo repositories.AuditRepository,
	notifications NotificationService,
	applications ApplicationService,
) GigService {
	return &gigService{
		gigRepo:         gigRepo,
		applicationRepo: applicationRepo,
		savedGigRepo:    savedGigRepo,
		auditRepo:       auditRepo,
		notifications:   notifications,
		applications:    applications,
	}
}

func (s *gigService) CreateGig(providerID string, role models.UserRole, req *dto.CreateGigRequest) (*dto.GigResponse, error) {
	if role != models.UserRoleProvider && role != models.UserRoleAdmin {
		return nil, apperrors.NewAuthorizationError("gigs", "only providers can create gigs")
	}

	// Approval is always pending on create, whatever the caller sends.
	gig := &models.Gig{
		Title:          req.Title,
		Description:    req.Description,
		Budget:         req.Budget,
		Category:       req.Category,
		Location:       req.Location,
		ProviderID:     providerID,
		Deadline:       req.Deadline,
		Status:         models.GigStatusOpen,
		ApprovalStatus: models.ApprovalStatusPending,
	}

	if err := s.gigRepo.Create(gig); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to create gig")
	}

	// Admin notices are best effort and never fail the create.
	if err := s.notifications.NotifyGigPendingToAdmins(gig); err != nil {
		logger.WithError(err).Warn("pending gig notice failed", "gig_id", gig.ID)
	}

	resp := dto.NewGigResponse(gig)
	return &resp, nil
}

func (s *gigService) GetGig(gigID, viewerID string, viewerRole models.UserRole) (*dto.GigResponse, error) {
	gig, err := s.gigRepo.FindByIDWithProvider(gigID)
	if err != nil {
		if errors.Is(err, repositories.ErrGigNotFound) {
			return nil, apperrors.NewNotFoundError("gigs", "gig not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to load gig")
	}

	// Unapproved gigs are visible only to their owner and admins.
	if !gig.Visible() && viewerID != gig.ProviderID && viewerRole != models.UserRoleAdmin {
		return nil, apperrors.NewNotFoundError("gigs", "gig not found")
	}

	resp := dto.NewGigResponse(gig)
	return &resp, nil
}

func (s *gigService) BrowseGigs(criteria repositories.GigCriteria) (*dto.GigListResponse, error) {
	gigs, total, err := s.gigRepo.ListVisible(criteria)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to list gigs")
	}

	resp := &dto.GigListResponse{
		Gigs:     make([]dto.GigResponse, 0, len(gigs)),
		Total:    total,
		Page:     criteria.Page,
		PageSize: criteria.PageSize,
	}
	for i := range gigs {
		resp.Gigs = append(resp.Gigs, dto.NewGigResponse(&gigs[i]))
	}
	return resp, nil
}

func (s *gigService) ListMyGigs(providerID string) ([]dto.GigResponse, error) {
	gigs, err := s.gigRepo.ListByProvider(providerID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to list gigs")
	}

	resp := make([]dto.GigResponse, 0, len(gigs))
	for i := range gigs {
		resp = append(resp, dto.NewGigResponse(&gigs[i]))
	}
	return resp, nil
}

func (s *gigService) ListPendingGigs() ([]dto.GigResponse, error) {
	gigs, err := s.gigRepo.ListPendingApproval()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to list pending gigs")
	}

	resp := make([]dto.GigResponse, 0, len(gigs))
	for i := range gigs {
		resp = append(resp, dto.NewGigResponse(&gigs[i]))
	}
	return resp, nil
}

func (s *gigService) UpdateGig(gigID, userID string, req *dto.UpdateGigRequest) (*dto.GigResponse, error) {
	gig, err := s.ownedGig(gigID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		gig.Title = *req.Title
	}
	if req.Description != nil {
		gig.Description = *req.Description
	}
	if req.Budget != nil {
		gig.Budget = req.Budget
	}
	if req.Category != nil {
		gig.Category = *req.Category
	}
	if req.Location != nil {
		gig.Location = *req.Location
	}
	if req.Deadline != nil {
		gig.Deadline = req.Deadline
	}
	if req.Status != nil {
		newStatus, err := models.ParseGigStatus(*req.Status)
		if err != nil {
			return nil, apperrors.NewValidationError("gigs", err.Error())
		}
		gig.Status = newStatus
	}

	if err := s.gigRepo.Update(gig); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to update gig")
	}

	if gig.Status == models.GigStatusCompleted {
		s.completeApplications(gig.ID)
	}

	s.fanOutGigUpdate(gig, fmt.Sprintf("Gig %q was updated", gig.Title))

	resp := dto.NewGigResponse(gig)
	return &resp, nil
}

func (s *gigService) UpdateGigStatus(gigID, userID, status string) (*dto.GigResponse, error) {
	newStatus, err := models.ParseGigStatus(status)
	if err != nil {
		return nil, apperrors.NewValidationError("gigs", err.Error())
	}

	gig, err := s.ownedGig(gigID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.gigRepo.UpdateStatus(gigID, newStatus); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to update gig status")
	}
	gig.Status = newStatus

	if newStatus == models.GigStatusCompleted {
		s.completeApplications(gigID)
	}

	s.fanOutGigUpdate(gig, fmt.Sprintf("Gig %q is now %s", gig.Title, newStatus))

	resp := dto.NewGigResponse(gig)
	return &resp, nil
}

func (s *gigService) ApproveGig(gigID, adminID string) error {
	gig, err := s.gigRepo.FindByID(gigID)
	if err != nil {
		if errors.Is(err, repositories.ErrGigNotFound) {
			return apperrors.NewNotFoundError("gigs", "gig not found")
		}
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to load gig")
	}

	if err := s.gigRepo.SetApproval(gigID, models.ApprovalStatusApproved, models.GigStatusOpen); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to approve gig")
	}
	gig.ApprovalStatus = models.ApprovalStatusApproved
	gig.Status = models.GigStatusOpen

	s.audit(adminID, "gig_approved", "gig", gigID, map[string]any{"title": gig.Title})

	// Approval already committed: notices are logged-and-dropped on failure.
	if err := s.notifications.NotifyGigApproved(gig); err != nil {
		logger.WithError(err).Warn("gig approved notice failed", "gig_id", gigID)
	}
	s.fanOutGigUpdate(gig, fmt.Sprintf("Gig %q was approved and is open for applications", gig.Title))

	return nil
}

func (s *gigService) RejectGig(gigID, adminID, reason string) error {
	gig, err := s.gigRepo.FindByID(gigID)
	if err != nil {
		if errors.Is(err, repositories.ErrGigNotFound) {
			return apperrors.NewNotFoundError("gigs", "gig not found")
		}
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to load gig")
	}

	if err := s.gigRepo.SetApproval(gigID, models.ApprovalStatusRejected, models.GigStatusClosed); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to reject gig")
	}
	gig.ApprovalStatus = models.ApprovalStatusRejected
	gig.Status = models.GigStatusClosed

	s.audit(adminID, "gig_rejected", "gig", gigID, map[string]any{"title": gig.Title, "reason": reason})

	if err := s.notifications.NotifyGigRejected(gig, reason); err != nil {
		logger.WithError(err).Warn("gig rejected notice failed", "gig_id", gigID)
	}

	return nil
}

func (s *gigService) DeleteGig(gigID, userID string, role models.UserRole) error {
	gig, err := s.gigRepo.FindByID(gigID)
	if err != nil {
		if errors.Is(err, repositories.ErrGigNotFound) {
			return apperrors.NewNotFoundError("gigs", "gig not found")
		}
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to load gig")
	}

	if gig.ProviderID != userID && role != models.UserRoleAdmin {
		return apperrors.NewAuthorizationError("gigs", "only the gig owner can delete it")
	}

	blocked, err := s.applicationRepo.HasBlockingApplications(gigID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to check applications")
	}
	if blocked {
		return apperrors.NewValidationError("gigs", "cannot delete a gig with accepted or completed applications")
	}

	if err := s.gigRepo.Delete(gigID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to delete gig")
	}

	s.audit(userID, "gig_deleted", "gig", gigID, map[string]any{"title": gig.Title})
	return nil
}

func (s *gigService) MarkExpiredGigs() (int64, error) {
	count, err := s.gigRepo.ExpireOpenPastDeadline(time.Now())
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to expire gigs")
	}
	if count > 0 {
		metrics.GigsExpired.Add(float64(count))
	}
	return count, nil
}

func (s *gigService) ListExpiringSoon(within time.Duration) ([]dto.GigResponse, error) {
	now := time.Now()
	gigs, err := s.gigRepo.ListExpiringBetween(now, now.Add(within))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to list expiring gigs")
	}

	resp := make([]dto.GigResponse, 0, len(gigs))
	for i := range gigs {
		resp = append(resp, dto.NewGigResponse(&gigs[i]))
	}
	return resp, nil
}

// completeApplications moves the gig's accepted applications to completed.
// The gig status change already committed, so failures here are logged and
// the accepted rows are picked up on the next status write.
func (s *gigService) completeApplications(gigID string) {
	if err := s.applications.CompleteApplicationsForGig(gigID); err != nil {
		logger.WithError(err).Warn("application completion cascade failed", "gig_id", gigID)
	}
}

// ownedGig loads the gig and verifies ownership.
func (s *gigService) ownedGig(gigID, userID string) (*models.Gig, error) {
	gig, err := s.gigRepo.FindByID(gigID)
	if err != nil {
		if errors.Is(err, repositories.ErrGigNotFound) {
			return nil, apperrors.NewNotFoundError("gigs", "gig not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "gigs", "failed to load gig")
	}
	if gig.ProviderID != userID {
		return nil, apperrors.NewAuthorizationError("gigs", "only the gig owner can modify it")
	}
	return gig, nil
}

// fanOutGigUpdate notifies everyone who applied to or saved the gig.
// Delivery problems are logged, never surfaced to the caller.
func (s *gigService) fanOutGigUpdate(gig *models.Gig, message string) {
	applicants, err := s.applicationRepo.ListStudentIDsByGig(gig.ID)
	if err != nil {
		logger.WithError(err).Warn("failed to list applicants for gig update", "gig_id", gig.ID)
		applicants = nil
	}

	savers, err := s.savedGigRepo.ListSaverIDs(gig.ID)
	if err != nil {
		logger.WithError(err).Warn("failed to list savers for gig update", "gig_id", gig.ID)
		savers = nil
	}

	seen := make(map[string]bool, len(applicants)+len(savers))
	var recipients []string
	for _, id := range append(applicants, savers...) {
		if !seen[id] {
			seen[id] = true
			recipients = append(recipients, id)
		}
	}

	if len(recipients) == 0 {
		return
	}
	if err := s.notifications.NotifyGigUpdate(recipients, gig, message); err != nil {
		logger.WithError(err).Warn("gig update fan-out failed", "gig_id", gig.ID)
	}
}

func (s *gigService) audit(actorID, action, resourceType, resourceID string, details map[string]any) {
	entry := &models.AuditLog{
		UserID:       &actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = datatypes.JSON(raw)
		}
	}
	if err := s.auditRepo.Create(entry); err != nil {
		logger.WithError(err).Warn("audit write failed", "action", action, "resource_id", resourceID)
	}
}
