package database

import (
	"fmt"

	"gigwork_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens a GORM connection using the given Postgres DSN.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates the schema for every model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Gig{},
		&models.Application{},
		&models.Rating{},
		&models.Notification{},
		&models.NotificationPreference{},
		&models.EmailQueueItem{},
		&models.PushQueueItem{},
		&models.SavedGig{},
		&models.AuditLog{},
	)
}
