package services

import (
	"gigwork_backend/internal/email"
	"gigwork_backend/internal/push"
	"gigwork_backend/internal/repositories"

	"gorm.io/gorm"
)

// ServiceContainer holds every application service.
type ServiceContainer struct {
	UserService         UserService
	GigService          GigService
	ApplicationService  ApplicationService
	RatingService       RatingService
	NotificationService NotificationService
	QueueService        QueueService
	SavedGigService     SavedGigService
	AuditRepo           repositories.AuditRepository
}

// NewServiceContainer wires repositories and services against the given
// database handle and delivery transports.
func NewServiceContainer(db *gorm.DB, emailSender email.Sender, pushSender push.Sender) *ServiceContainer {
	userRepo := repositories.NewUserRepository(db)
	gigRepo := repositories.NewGigRepository(db)
	applicationRepo := repositories.NewApplicationRepository(db)
	ratingRepo := repositories.NewRatingRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	preferenceRepo := repositories.NewPreferenceRepository(db)
	queueRepo := repositories.NewQueueRepository(db)
	savedGigRepo := repositories.NewSavedGigRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	notificationService := NewNotificationService(notificationRepo, preferenceRepo, queueRepo, userRepo, auditRepo)
	applicationService := NewApplicationService(applicationRepo, gigRepo, userRepo, notificationService)

	return &ServiceContainer{
		UserService:         NewUserService(userRepo, preferenceRepo, auditRepo, notificationService),
		GigService:          NewGigService(gigRepo, applicationRepo, savedGigRepo, auditRepo, notificationService, applicationService),
		ApplicationService:  applicationService,
		RatingService:       NewRatingService(ratingRepo, gigRepo, applicationRepo, userRepo, auditRepo, notificationService),
		NotificationService: notificationService,
		QueueService:        NewQueueService(queueRepo, emailSender, pushSender),
		SavedGigService:     NewSavedGigService(savedGigRepo, gigRepo),
		AuditRepo:           auditRepo,
	}
}
