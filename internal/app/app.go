package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gigwork_backend/database"
	"gigwork_backend/internal/config"
	"gigwork_backend/internal/email"
	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/metrics"
	"gigwork_backend/internal/models"
	"gigwork_backend/internal/push"
	"gigwork_backend/internal/routes"
	"gigwork_backend/internal/services"
	"gigwork_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Run boots the whole application: config, database, services, background
// workers and the HTTP server. It blocks until SIGINT/SIGTERM.
func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("logger initialized", "env", cfg.Server.Env)

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get *sql.DB from GORM", "error", err)
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Fatal("database unavailable", "error", err)
	}
	logger.Info("database connected")

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("migration failed", "error", err)
	}

	if err := seedFirstAdmin(db, cfg); err != nil {
		logger.Fatal("failed to seed first admin user", "error", err)
	}

	metrics.Register()

	container := services.NewServiceContainer(db, buildEmailSender(cfg), buildPushSender())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gigWorker := workers.NewGigWorker(container.GigService, cfg.Workers.GigSweepInterval.Duration)
	queueWorker := workers.NewQueueWorker(container.QueueService, cfg.Queue.DrainInterval.Duration, cfg.Queue.BatchSize)
	go gigWorker.Start(ctx)
	go queueWorker.Start(ctx)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupRoutes(router, container)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: address, Handler: router}

	go func() {
		logger.Info("server starting", "address", address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}

// buildEmailSender returns a real SMTP sender when the config carries SMTP
// credentials, and a log-only mock otherwise.
func buildEmailSender(cfg *config.Config) email.Sender {
	smtpConfig := email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		UseTLS:    cfg.Email.UseTLS,
	}
	if err := smtpConfig.Validate(); err != nil {
		logger.Warn("SMTP config incomplete, falling back to mock email sender", "reason", err)
		return &MockEmailSender{}
	}

	sender, err := email.NewSMTPSender(smtpConfig)
	if err != nil {
		logger.Warn("failed to build SMTP sender, falling back to mock", "error", err)
		return &MockEmailSender{}
	}
	return sender
}

// buildPushSender returns the push transport. No real push gateway is wired
// yet, so this is always the log-only mock.
func buildPushSender() push.Sender {
	return &MockPushSender{}
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.Admin.Email
	adminPassword := cfg.Admin.Password

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD not set, skipping admin seeding")
		return nil
	}

	var existing models.User
	result := db.Where("email = ?", adminEmail).First(&existing)
	if result.Error == nil {
		logger.Info("admin user already exists, skipping creation", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		UID:          uuid.NewString(),
		Name:         "Administrator",
		Email:        adminEmail,
		Role:         models.UserRoleAdmin,
		PasswordHash: string(hashed),
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("created first admin user", "email", adminEmail)
	return nil
}
