package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/metrics"
	"gigwork_backend/internal/models"
	"gigwork_backend/internal/repositories"
	"gigwork_backend/internal/services/dto"
	"gigwork_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

type NotificationService interface {
	// Reads
	GetUserNotifications(userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error)
	GetSummary(userID string) (*dto.NotificationSummary, error)
	GetUnreadCount(userID string) (int64, error)
	MarkAsRead(userID, notificationID string) error
	MarkAllAsRead(userID string) (int64, error)

	// Preferences
	GetPreferences(userID string) ([]dto.PreferenceResponse, error)
	UpdatePreference(userID string, req *dto.PreferenceUpdateRequest) (*dto.PreferenceResponse, error)
	UpdateBulkPreferences(userID string, req *dto.BulkPreferenceUpdateRequest) ([]dto.PreferenceResponse, error)

	// Lifecycle event notices
	NotifyApplicationReceived(gig *models.Gig, application *models.Application, studentName string) error
	NotifyApplicationStatus(studentID string, gig *models.Gig, application *models.Application, status models.ApplicationStatus) error
	NotifyApplicationSubmittedToAdmins(gig *models.Gig, studentName string) error
	NotifyGigApproved(gig *models.Gig) error
	NotifyGigRejected(gig *models.Gig, reason string) error
	NotifyGigPendingToAdmins(gig *models.Gig) error
	NotifyGigUpdate(userIDs []string, gig *models.Gig, message string) error
	NotifyRatingReceived(rateeID string, gig *models.Gig) error
	NotifyRatingWarning(userID, reason string) error
	NotifyRoleChanged(userID string, newRole models.UserRole) error

	// Admin fan-out
	SendBulkNotification(adminID string, req *dto.SendBulkNotificationRequest) (*dto.BulkNotificationResult, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	preferenceRepo   repositories.PreferenceRepository
	queueRepo        repositories.QueueRepository
	userRepo         repositories.UserRepository
	auditRepo        repositories.AuditRepository
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	preferenceRepo repositories.PreferenceRepository,
	queueRepo repositories.QueueRepository,
	userRepo repositories.UserRepository,
	auditRepo repositories.AuditRepository,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		preferenceRepo:   preferenceRepo,
		queueRepo:        queueRepo,
		userRepo:         userRepo,
		auditRepo:        auditRepo,
	}
}

// notice is a single notification to dispatch across channels.
type notice struct {
	UserID               string
	Type                 string
	Title                string
	Message              string
	EmailTemplate        string
	Data                 map[string]any
	RelatedGigID         *string
	RelatedApplicationID *string
}

// delivered records which channels a dispatch actually reached.
type delivered struct {
	InApp bool
	Email bool
	Push  bool
}

// dispatch fans a notice out to whichever channels the recipient has
// enabled for its type: an in-app row, an email queue item, a push queue
// item. A user with no email address simply gets no email queued.
func (s *notificationService) dispatch(n notice) (delivered, error) {
	var out delivered

	user, err := s.userRepo.FindByID(n.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return out, apperrors.NewNotFoundError("notifications", "recipient not found")
		}
		return out, apperrors.Wrap(err, apperrors.CodeDatabaseError, "notifications", "failed to load recipient")
	}

	pref := s.preferenceFor(n.UserID, n.Type)

	var dataJSON datatypes.JSON
	if n.Data != nil {
		raw, err := json.Marshal(n.Data)
		if err != nil {
			return out, apperrors.Wrap(err, apperrors.CodeInternalError, "notifications", "failed to marshal notification data")
		}
		dataJSON = datatypes.JSON(raw)
	}

	if pref.InAppEnabled {
		notification := &models.Notification{
			UserID:               n.UserID,
			Type:                 n.Type,
			Title:                n.Title,
			Message:              n.Message,
			Data:                 dataJSON,
			RelatedGigID:         n.RelatedGigID,
			RelatedApplicationID: n.RelatedApplicationID,
		}
		if err := s.notificationRepo.Create(notification); err != nil {
			return out, apperrors.Wrap(err, apperrors.CodeDatabaseError, "notifications", "failed to create notification")
		}
		metrics.NotificationsCreated.WithLabelValues(n.Type).Inc()
		out.InApp = true
	}

	if pref.EmailEnabled && user.Email != "" {
		item := &models.EmailQueueItem{
			UserID:       user.ID,
			EmailAddress: user.Email,
			Subject:      n.Title,
			Body:         n.Message,
			Template:     n.EmailTemplate,
			TemplateData: dataJSON,
		}
		if err := s.queueRepo.EnqueueEmail(item); err != nil {
			return out, apperrors.Wrap(err, apperrors.CodeDatabaseError, "notifications", "failed to queue email")
		}
		metrics.EmailsQueued.Inc()
		out.Email = true
	}

	if pref.PushEnabled {
		item := &models.PushQueueItem{
			UserID: user.ID,
			Title:  n.Title,
			Body:   n.Message,
			Data:   dataJSON,
		}
		if err := s.queueRepo.EnqueuePush(item); err != nil {
			return out, apperrors.Wrap(err, apperrors.CodeDatabaseError, "notifications", "failed to queue push")
		}
		metrics.PushQueued.Inc()
		out.Push = true
	}

	return out, nil
}

// send dispatches a notice when the caller has no use for the per-channel
// outcome.
func (s *notificationService) send(n notice) error {
	_, err := s.dispatch(n)
	return err
}

// preferenceFor resolves the channel toggles for one user and type. A
// stored row wins; otherwise the built-in default for the type applies,
// and an unknown type gets every channel.
func (s *notificationService) preferenceFor(userID, notificationType string) models.NotificationPreference {
	if pref, err := s.preferenceRepo.FindByUserAndType(userID, notificationType); err == nil {
		return *pref
	}

	for _, def := range models.DefaultPreferences(userID) {
		if def.NotificationType == notificationType {
			return def
		}
	}

	return models.NotificationPreference{
		UserID:           userID,
		NotificationType: notificationType,
		EmailEnabled:     true,
		PushEnabled:      true,
		InAppEnabled:     true,
	}
}

// ---------------- Reads ----------------

func (s *notificationService) GetUserNotifications(userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error) {
	notifications, total, err := s.notificationRepo.ListForUser(userID, criteria)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "notifications", "failed to list notifications")
	}

	unread, err := s.notificationRepo.UnreadCount(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "notifications", "failed to count unread")
	}

	resp := &dto.NotificationListResponse{
		Notifications: make([]dto.NotificationResponse, 0, len(notifications)),
		Total:         total,
		UnreadCount:   unread,
		Page:          criteria.Page,
		PageSize:      criteria.PageSize,
	}
	for i := range notifications {
		resp.Notifications = append(resp.Notifications, dto.NewNotificationResponse(&notifications[i]))
	}
	return resp, nil
}

func (s *notificationService) GetSummary(userID string) (*dto.NotificationSummary, error) {
	unread, err := s.notificationRepo.UnreadCount(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "notifications", "failed to count unread")
	}

	recent, err := s.notificationRepo.ListRecent(userID, 5)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "notifications", "failed to list recent")
	}

	summary := &dto.NotificationSummary{
		UnreadCount: unread,
		Recent:      make([]dto.NotificationResponse, 0, len(recent)),
	}
	for i := range recent {
		summary.Recent = append(summary.Recent, dto.NewNotificationResponse(&recent[i]))
	}
	return summary, nil
}

func (s *notificationService) GetUnreadCount(userID string) (int64, error) {
	return s.notificationRepo.UnreadCount(userID)
}

func (s *notificationService) MarkAsRead(userID, notificationID string) error {
	notification, err := s.notificationRepo.FindByID(notificationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return apperrors.NewNotFoundError("notifications", "notification not found")
		}
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "notifications", "failed to load notification")
	}

	if notification.UserID != userID {
		return apperrors.NewAuthorizationError("notifications", "notification belongs to another user")
	}

	if notification.IsRead {
		return nil
	}
	return s.notificationRepo.MarkRead(notificationID)
}

func (s *notificationService) MarkAllAsRead(userID string) (int64, error) {
	updated, err := s.notificationRepo.MarkAllRead(userID)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "notifications", "failed to mark all read")
	}
	return updated, nil
}

// ---------------- Preferences ----------------

func (s *notificationService) GetPreferences(userID string) ([]dto.PreferenceResponse, error) {
	prefs, err := s.preferenceRepo.SeedDefaults(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "notifications", "failed to load preferences")
	}

	resp := make([]dto.PreferenceResponse, 0, len(prefs))
	for i := range prefs {
		resp = append(resp, dto.NewPreferenceResponse(&prefs[i]))
	}
	return resp, nil
}

func (s *notificationService) UpdatePreference(userID string, req *dto.PreferenceUpdateRequest) (*dto.PreferenceResponse, error) {
	if _, err := s.preferenceRepo.SeedDefaults(userID); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "notifications", "failed to load preferences")
	}

	pref, err := s.applyPreferenceUpdate(userID, req)
	if err != nil {
		return nil, err
	}

	resp := dto.NewPreferenceResponse(pref)
	return &resp, nil
}

// UpdateBulkPreferences applies a batch of per-type toggles in one call.
// Types not named in the batch keep their current (or default) settings.
func (s *notificationService) UpdateBulkPreferences(userID string, req *dto.BulkPreferenceUpdateRequest) ([]dto.PreferenceResponse, error) {
	if _, err := s.preferenceRepo.SeedDefaults(userID); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "notifications", "failed to load preferences")
	}

	for i := range req.Preferences {
		if _, err := s.applyPreferenceUpdate(userID, &req.Preferences[i]); err != nil {
			return nil, err
		}
	}

	return s.GetPreferences(userID)
}

// applyPreferenceUpdate patches one preference row, materializing an
// all-enabled row for a type with no stored or default entry.
func (s *notificationService) applyPreferenceUpdate(userID string, req *dto.PreferenceUpdateRequest) (*models.NotificationPreference, error) {
	pref, err := s.preferenceRepo.FindByUserAndType(userID, req.NotificationType)
	if err != nil {
		if errors.Is(err, repositories.ErrPreferenceNotFound) {
			pref = &models.NotificationPreference{
				UserID:           userID,
				NotificationType: req.NotificationType,
				EmailEnabled:     true,
				PushEnabled:      true,
				InAppEnabled:     true,
			}
		} else {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "notifications", "failed to load preference")
		}
	}

	if req.EmailEnabled != nil {
		pref.EmailEnabled = *req.EmailEnabled
	}
	if req.PushEnabled != nil {
		pref.PushEnabled = *req.PushEnabled
	}
	if req.InAppEnabled != nil {
		pref.InAppEnabled = *req.InAppEnabled
	}

	if err := s.preferenceRepo.Update(pref); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "notifications", "failed to save preference")
	}
	return pref, nil
}

// ---------------- Lifecycle event notices ----------------

func (s *notificationService) NotifyApplicationReceived(gig *models.Gig, application *models.Application, studentName string) error {
	return s.send(notice{
		UserID:  gig.ProviderID,
		Type:    models.NotificationTypeApplicationReceived,
		Title:   "New application",
		Message: fmt.Sprintf("%s applied to your gig %q", studentName, gig.Title),
		Data: map[string]any{
			"gig_id":         gig.ID,
			"application_id": application.ID,
		},
		RelatedGigID:         &gig.ID,
		RelatedApplicationID: &application.ID,
	})
}

func (s *notificationService) NotifyApplicationStatus(studentID string, gig *models.Gig, application *models.Application, status models.ApplicationStatus) error {
	return s.send(notice{
		UserID:  studentID,
		Type:    models.NotificationTypeApplicationStatus,
		Title:   "Application update",
		Message: fmt.Sprintf("Your application for %q is now %s", gig.Title, status),
		Data: map[string]any{
			"gig_id": gig.ID,
			"status": string(status),
		},
		RelatedGigID:         &gig.ID,
		RelatedApplicationID: &application.ID,
	})
}

// NotifyApplicationSubmittedToAdmins is best effort: a failed admin notice
// never blocks the application itself, so errors are logged and dropped.
func (s *notificationService) NotifyApplicationSubmittedToAdmins(gig *models.Gig, studentName string) error {
	admins, err := s.userRepo.FindAdmins()
	if err != nil {
		logger.WithError(err).Warn("failed to load admins for application notice")
		return nil
	}

	for i := range admins {
		err := s.send(notice{
			UserID:       admins[i].ID,
			Type:         models.NotificationTypeApplicationSubmitted,
			Title:        "Application submitted",
			Message:      fmt.Sprintf("%s applied to %q", studentName, gig.Title),
			Data:         map[string]any{"gig_id": gig.ID},
			RelatedGigID: &gig.ID,
		})
		if err != nil {
			logger.WithError(err).Warn("failed to notify admin of application", "admin_id", admins[i].ID)
		}
	}
	return nil
}

func (s *notificationService) NotifyGigApproved(gig *models.Gig) error {
	return s.send(notice{
		UserID:       gig.ProviderID,
		Type:         models.NotificationTypeGigApproved,
		Title:        "Gig approved",
		Message:      fmt.Sprintf("Your gig %q was approved and is now live", gig.Title),
		Data:         map[string]any{"gig_id": gig.ID},
		RelatedGigID: &gig.ID,
	})
}

func (s *notificationService) NotifyGigRejected(gig *models.Gig, reason string) error {
	return s.send(notice{
		UserID:  gig.ProviderID,
		Type:    models.NotificationTypeGigRejected,
		Title:   "Gig rejected",
		Message: fmt.Sprintf("Your gig %q was rejected: %s", gig.Title, reason),
		Data: map[string]any{
			"gig_id": gig.ID,
			"reason": reason,
		},
		RelatedGigID: &gig.ID,
	})
}

func (s *notificationService) NotifyGigPendingToAdmins(gig *models.Gig) error {
	admins, err := s.userRepo.FindAdmins()
	if err != nil {
		logger.WithError(err).Warn("failed to load admins for pending gig notice")
		return nil
	}

	for i := range admins {
		err := s.send(notice{
			UserID:       admins[i].ID,
			Type:         models.NotificationTypeGigPendingApproval,
			Title:        "Gig awaiting approval",
			Message:      fmt.Sprintf("Gig %q needs review", gig.Title),
			Data:         map[string]any{"gig_id": gig.ID},
			RelatedGigID: &gig.ID,
		})
		if err != nil {
			logger.WithError(err).Warn("failed to notify admin of pending gig", "admin_id", admins[i].ID)
		}
	}
	return nil
}

// NotifyGigUpdate fans a gig change out to interested users. Individual
// failures are logged and skipped so one bad recipient cannot stop the rest.
func (s *notificationService) NotifyGigUpdate(userIDs []string, gig *models.Gig, message string) error {
	for _, userID := range userIDs {
		err := s.send(notice{
			UserID:       userID,
			Type:         models.NotificationTypeGigUpdate,
			Title:        "Gig update",
			Message:      message,
			Data:         map[string]any{"gig_id": gig.ID},
			RelatedGigID: &gig.ID,
		})
		if err != nil {
			logger.WithError(err).Warn("failed to notify user of gig update", "user_id", userID, "gig_id", gig.ID)
		}
	}
	return nil
}

func (s *notificationService) NotifyRatingReceived(rateeID string, gig *models.Gig) error {
	return s.send(notice{
		UserID:       rateeID,
		Type:         models.NotificationTypeRatingReceived,
		Title:        "New rating",
		Message:      fmt.Sprintf("You received a rating for %q", gig.Title),
		Data:         map[string]any{"gig_id": gig.ID},
		RelatedGigID: &gig.ID,
	})
}

func (s *notificationService) NotifyRatingWarning(userID, reason string) error {
	return s.send(notice{
		UserID:  userID,
		Type:    models.NotificationTypeRatingWarning,
		Title:   "Rating warning",
		Message: fmt.Sprintf("One of your ratings was flagged by moderation: %s", reason),
		Data:    map[string]any{"reason": reason},
	})
}

func (s *notificationService) NotifyRoleChanged(userID string, newRole models.UserRole) error {
	return s.send(notice{
		UserID:  userID,
		Type:    models.NotificationTypeRoleChanged,
		Title:   "Role changed",
		Message: fmt.Sprintf("Your account role is now %s", newRole),
		Data:    map[string]any{"role": string(newRole)},
	})
}

// ---------------- Admin fan-out ----------------

// SendBulkNotification fans an admin message out to an explicit recipient
// list, honoring each recipient's channel preferences, and records the batch
// in the audit log.
func (s *notificationService) SendBulkNotification(adminID string, req *dto.SendBulkNotificationRequest) (*dto.BulkNotificationResult, error) {
	result := &dto.BulkNotificationResult{
		TotalUsers: len(req.UserIDs),
		Errors:     []string{},
	}

	for _, userID := range req.UserIDs {
		d, err := s.dispatch(notice{
			UserID:        userID,
			Type:          req.Type,
			Title:         req.Title,
			Message:       req.Message,
			EmailTemplate: req.EmailTemplate,
			Data:          req.Data,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("user %s: %v", userID, err))
			continue
		}
		if d.InApp {
			result.InAppSent++
		}
		if d.Email {
			result.EmailsQueued++
		}
		if d.Push {
			result.PushQueued++
		}
	}

	entry := &models.AuditLog{
		UserID:       &adminID,
		Action:       "bulk_notification_sent",
		ResourceType: "notification",
		ResourceID:   req.Type,
	}
	if raw, err := json.Marshal(map[string]any{
		"title":         req.Title,
		"recipients":    len(req.UserIDs),
		"in_app_sent":   result.InAppSent,
		"emails_queued": result.EmailsQueued,
		"push_queued":   result.PushQueued,
	}); err == nil {
		entry.Details = datatypes.JSON(raw)
	}
	if err := s.auditRepo.Create(entry); err != nil {
		logger.WithError(err).Warn("audit write failed", "action", "bulk_notification_sent")
	}

	return result, nil
}
