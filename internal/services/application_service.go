package services

import (
	"errors"
	"fmt"
	"time"

	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/models"
	"gigwork_backend/internal/repositories"
	"gigwork_backend/internal/services/dto"
	"gigwork_backend/pkg/apperrors"
)

type ApplicationService interface {
	CreateApplication(studentID string, role models.UserRole, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error)
	GetApplication(applicationID, viewerID string, viewerRole models.UserRole) (*dto.ApplicationResponse, error)
	ListByGig(gigID, providerID string) (*dto.ApplicationListResponse, error)
	ListMine(studentID string) (*dto.ApplicationListResponse, error)
	SelectCandidate(applicationID, providerID string) (*dto.ApplicationResponse, error)
	UpdateApplicationStatus(applicationID, callerID string, callerRole models.UserRole, status string) (*dto.ApplicationResponse, error)
	WithdrawApplication(applicationID, studentID string) error
	BulkUpdateApplications(gigID, providerID string, req *dto.BulkUpdateApplicationsRequest) (*dto.BulkUpdateApplicationsResponse, error)
	CompleteApplicationsForGig(gigID string) error
}

type applicationService struct {
	applicationRepo repositories.ApplicationRepository
	gigRepo         repositories.GigRepository
	userRepo        repositories.UserRepository
	notifications   NotificationService
}

func NewApplicationService(
	applicationRepo repositories.ApplicationRepository,
	gigRepo repositories.GigRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
) ApplicationService {
	return &applicationService{
		applicationRepo: applicationRepo,
		gigRepo:         gigRepo,
		userRepo:        userRepo,
		notifications:   notifications,
	}
}

func (s *applicationService) CreateApplication(studentID string, role models.UserRole, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error) {
	if role != models.UserRoleStudent {
		return nil, apperrors.NewAuthorizationError("applications", "only students can apply to gigs")
	}

	gig, err := s.gigRepo.FindByID(req.GigID)
	if err != nil {
		if errors.Is(err, repositories.ErrGigNotFound) {
			return nil, apperrors.NewNotFoundError("applications", "gig not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications", "failed to load gig")
	}

	if !gig.AcceptsApplications() {
		return nil, apperrors.NewValidationError("applications", "gig is not accepting applications")
	}

	if _, err := s.applicationRepo.FindByGigAndStudent(req.GigID, studentID); err == nil {
		return nil, apperrors.NewValidationError("applications", "you have already applied to this gig")
	} else if !errors.Is(err, repositories.ErrApplicationNotFound) {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications", "failed to check existing application")
	}

	application := &models.Application{
		GigID:     req.GigID,
		StudentID: studentID,
		Status:    models.ApplicationStatusPending,
		Notes:     req.Notes,
	}
	if err := s.applicationRepo.Create(application); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications", "failed to create application")
	}

	studentName := studentID
	if student, err := s.userRepo.FindByID(studentID); err == nil {
		studentName = student.Name
	}

	// Provider and admin notices never fail the create.
	if err := s.notifications.NotifyApplicationReceived(gig, application, studentName); err != nil {
		logger.WithError(err).Warn("application received notice failed", "application_id", application.ID)
	}
	if err := s.notifications.NotifyApplicationSubmittedToAdmins(gig, studentName); err != nil {
		logger.WithError(err).Warn("application submitted admin notice failed", "application_id", application.ID)
	}

	resp := dto.NewApplicationResponse(application)
	return &resp, nil
}

func (s *applicationService) GetApplication(applicationID, viewerID string, viewerRole models.UserRole) (*dto.ApplicationResponse, error) {
	application, err := s.applicationRepo.FindByIDWithRelations(applicationID)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.NewNotFoundError("applications", "application not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications", "failed to load application")
	}

	if viewerID != application.StudentID && viewerID != application.Gig.ProviderID && viewerRole != models.UserRoleAdmin {
		return nil, apperrors.NewAuthorizationError("applications", "not a participant of this application")
	}

	resp := dto.NewApplicationResponse(application)
	return &resp, nil
}

func (s *applicationService) ListByGig(gigID, providerID string) (*dto.ApplicationListResponse, error) {
	gig, err := s.gigRepo.FindByID(gigID)
	if err != nil {
		if errors.Is(err, repositories.ErrGigNotFound) {
			return nil, apperrors.NewNotFoundError("applications", "gig not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications", "failed to load gig")
	}
	if gig.ProviderID != providerID {
		return nil, apperrors.NewAuthorizationError("applications", "only the gig owner can list its applications")
	}

	applications, err := s.applicationRepo.ListByGig(gigID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications", "failed to list applications")
	}

	return buildApplicationList(applications), nil
}

func (s *applicationService) ListMine(studentID string) (*dto.ApplicationListResponse, error) {
	applications, err := s.applicationRepo.ListByStudent(studentID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications", "failed to list applications")
	}
	return buildApplicationList(applications), nil
}

// SelectCandidate accepts one application and rejects all siblings. The
// accept-one/reject-rest cascade runs in a single transaction in the
// repository; a concurrent selection on the same gig loses and gets a
// validation error.
func (s *applicationService) SelectCandidate(applicationID, providerID string) (*dto.ApplicationResponse, error) {
	application, err := s.applicationRepo.FindByIDWithRelations(applicationID)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.NewNotFoundError("applications", "application not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications", "failed to load application")
	}

	if application.Gig.ProviderID != providerID {
		return nil, apperrors.NewAuthorizationError("applications", "only the gig owner can select a candidate")
	}

	accepted, rejectedIDs, err := s.applicationRepo.SelectCandidate(application.GigID, applicationID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrGigNotSelectable):
			return nil, apperrors.NewValidationError("applications", "gig is no longer open for selection")
		case errors.Is(err, repositories.ErrApplicationNotFound):
			return nil, apperrors.NewNotFoundError("applications", "application not found")
		case errors.Is(err, repositories.ErrGigNotFound):
			return nil, apperrors.NewNotFoundError("applications", "gig not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications", "failed to select candidate")
	}

	gig := &application.Gig
	gig.Status = models.GigStatusInProgress

	if err := s.notifications.NotifyApplicationStatus(accepted.StudentID, gig, accepted, models.ApplicationStatusAccepted); err != nil {
		logger.WithError(err).Warn("accepted notice failed", "application_id", accepted.ID)
	}
	s.notifyRejectedSiblings(gig, rejectedIDs)

	resp := dto.NewApplicationResponse(accepted)
	resp.GigTitle = gig.Title
	return &resp, nil
}

func (s *applicationService) UpdateApplicationStatus(applicationID, callerID string, callerRole models.UserRole, status string) (*dto.ApplicationResponse, error) {
	newStatus, err := models.ParseApplicationStatus(status)
	if err != nil {
		return nil, apperrors.NewValidationError("applications", err.Error())
	}

	application, err := s.applicationRepo.FindByIDWithRelations(applicationID)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.NewNotFoundError("applications", "application not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications", "failed to load application")
	}

	if application.Gig.ProviderID != callerID && callerRole != models.UserRoleAdmin {
		return nil, apperrors.NewAuthorizationError("applications", "only the gig owner can update application status")
	}

	application.Status = newStatus
	// Safety net for direct accepted transitions outside the cascade.
	if newStatus == models.ApplicationStatusAccepted && application.SelectedAt == nil {
		now := time.Now()
		application.SelectedAt = &now
	}

	if err := s.applicationRepo.Update(application); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications", "failed to update application")
	}

	if err := s.notifications.NotifyApplicationStatus(application.StudentID, &application.Gig, application, newStatus); err != nil {
		logger.WithError(err).Warn("status change notice failed", "application_id", applicationID)
	}

	resp := dto.NewApplicationResponse(application)
	return &resp, nil
}

func (s *applicationService) WithdrawApplication(applicationID, studentID string) error {
	application, err := s.applicationRepo.FindByID(applicationID)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return apperrors.NewNotFoundError("applications", "application not found")
		}
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications", "failed to load application")
	}

	if application.StudentID != studentID {
		return apperrors.NewAuthorizationError("applications", "only the applicant can withdraw")
	}

	if application.Status == models.ApplicationStatusWithdrawn {
		return apperrors.NewValidationError("applications", "application is already withdrawn")
	}
	if application.Status.IsTerminalForWithdrawal() {
		return apperrors.NewValidationError("applications", "cannot withdraw an accepted or completed application")
	}

	return s.applicationRepo.UpdateStatus(applicationID, models.ApplicationStatusWithdrawn)
}

// BulkUpdateApplications applies status changes best-effort: items that
// reference another gig or carry an invalid status are skipped with a
// reason, and the valid subset commits in one batch.
func (s *applicationService) BulkUpdateApplications(gigID, providerID string, req *dto.BulkUpdateApplicationsRequest) (*dto.BulkUpdateApplicationsResponse, error) {
	gig, err := s.gigRepo.FindByID(gigID)
	if err != nil {
		if errors.Is(err, repositories.ErrGigNotFound) {
			return nil, apperrors.NewNotFoundError("applications", "gig not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications", "failed to load gig")
	}
	if gig.ProviderID != providerID {
		return nil, apperrors.NewAuthorizationError("applications", "only the gig owner can bulk-update applications")
	}

	resp := &dto.BulkUpdateApplicationsResponse{Skipped: []dto.SkippedApplication{}}

	var toSave []*models.Application
	now := time.Now()
	for _, update := range req.Updates {
		newStatus, err := models.ParseApplicationStatus(update.Status)
		if err != nil {
			resp.Skipped = append(resp.Skipped, dto.SkippedApplication{ApplicationID: update.ApplicationID, Reason: "invalid status"})
			continue
		}

		application, err := s.applicationRepo.FindByID(update.ApplicationID)
		if err != nil {
			resp.Skipped = append(resp.Skipped, dto.SkippedApplication{ApplicationID: update.ApplicationID, Reason: "application not found"})
			continue
		}
		if application.GigID != gigID {
			resp.Skipped = append(resp.Skipped, dto.SkippedApplication{ApplicationID: update.ApplicationID, Reason: "application belongs to another gig"})
			continue
		}

		application.Status = newStatus
		if newStatus == models.ApplicationStatusAccepted && application.SelectedAt == nil {
			application.SelectedAt = &now
		}
		toSave = append(toSave, application)
	}

	if err := s.applicationRepo.UpdateBatch(toSave); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications", "failed to update applications")
	}
	resp.Updated = len(toSave)

	for _, application := range toSave {
		if err := s.notifications.NotifyApplicationStatus(application.StudentID, gig, application, application.Status); err != nil {
			logger.WithError(err).Warn("bulk status notice failed", "application_id", application.ID)
		}
	}

	return resp, nil
}

// CompleteApplicationsForGig moves the gig's accepted applications to
// completed. Called when a gig itself is completed.
func (s *applicationService) CompleteApplicationsForGig(gigID string) error {
	applications, err := s.applicationRepo.ListByGig(gigID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications", "failed to list applications")
	}

	for i := range applications {
		if applications[i].Status != models.ApplicationStatusAccepted {
			continue
		}
		if err := s.applicationRepo.UpdateStatus(applications[i].ID, models.ApplicationStatusCompleted); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "applications",
				fmt.Sprintf("failed to complete application %s", applications[i].ID))
		}
	}
	return nil
}

func (s *applicationService) notifyRejectedSiblings(gig *models.Gig, rejectedIDs []string) {
	for _, id := range rejectedIDs {
		application, err := s.applicationRepo.FindByID(id)
		if err != nil {
			logger.WithError(err).Warn("failed to load rejected sibling", "application_id", id)
			continue
		}
		if err := s.notifications.NotifyApplicationStatus(application.StudentID, gig, application, models.ApplicationStatusRejected); err != nil {
			logger.WithError(err).Warn("rejected notice failed", "application_id", id)
		}
	}
}

func buildApplicationList(applications []models.Application) *dto.ApplicationListResponse {
	resp := &dto.ApplicationListResponse{
		Applications: make([]dto.ApplicationResponse, 0, len(applications)),
		Total:        len(applications),
	}
	for i := range applications {
		resp.Applications = append(resp.Applications, dto.NewApplicationResponse(&applications[i]))
	}
	return resp
}
