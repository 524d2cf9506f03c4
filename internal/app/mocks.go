package app

import (
	"gigwork_backend/internal/email"
	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/push"
)

// MockEmailSender logs instead of sending. Used for local development when
// SMTP is not configured.
type MockEmailSender struct{}

func (m *MockEmailSender) Send(msg *email.Message) error {
	logger.Info("[mock email]", "to", msg.To, "subject", msg.Subject)
	return nil
}

// MockPushSender logs instead of delivering to a push gateway.
type MockPushSender struct{}

func (m *MockPushSender) Send(msg *push.Message) error {
	logger.Info("[mock push]", "device", msg.DeviceToken, "title", msg.Title)
	return nil
}
