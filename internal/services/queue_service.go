package services

import (
	"encoding/json"
	"fmt"

	"gigwork_backend/internal/email"
	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/metrics"
	"gigwork_backend/internal/models"
	"gigwork_backend/internal/push"
	"gigwork_backend/internal/repositories"
	"gigwork_backend/internal/services/dto"
	"gigwork_backend/pkg/apperrors"
)

type QueueService interface {
	ProcessEmailQueue(limit int) (*dto.QueueProcessResult, error)
	ProcessPushQueue(limit int) (*dto.QueueProcessResult, error)
	Counts() (*repositories.QueueCounts, error)
}

type queueService struct {
	queueRepo   repositories.QueueRepository
	emailSender email.Sender
	pushSender  push.Sender
}

func NewQueueService(queueRepo repositories.QueueRepository, emailSender email.Sender, pushSender push.Sender) QueueService {
	return &queueService{
		queueRepo:   queueRepo,
		emailSender: emailSender,
		pushSender:  pushSender,
	}
}

// ProcessEmailQueue drains up to limit pending email items. Claiming is
// atomic, so concurrent sweeps never send the same item twice. A failed
// item stays pending until its attempt cap is reached, then goes terminal.
func (s *queueService) ProcessEmailQueue(limit int) (*dto.QueueProcessResult, error) {
	items, err := s.queueRepo.ClaimPendingEmails(limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "queue", "failed to claim email items")
	}

	result := &dto.QueueProcessResult{Errors: []string{}}
	for i := range items {
		item := &items[i]

		sendErr := s.emailSender.Send(&email.Message{
			To:      item.EmailAddress,
			Subject: item.Subject,
			Body:    item.Body,
		})
		if sendErr == nil {
			if err := s.queueRepo.MarkEmailSent(item.ID); err != nil {
				logger.WithError(err).Error("failed to mark email sent", "item_id", item.ID)
			}
			metrics.QueueDeliveries.WithLabelValues("email", "sent").Inc()
			result.Sent++
			continue
		}

		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("email %s: %v", item.ID, sendErr))
		metrics.QueueDeliveries.WithLabelValues("email", "failed").Inc()

		if item.Attempts >= models.MaxDeliveryAttempts {
			if err := s.queueRepo.MarkEmailFailed(item.ID); err != nil {
				logger.WithError(err).Error("failed to mark email failed", "item_id", item.ID)
			}
		}
	}

	return result, nil
}

func (s *queueService) ProcessPushQueue(limit int) (*dto.QueueProcessResult, error) {
	items, err := s.queueRepo.ClaimPendingPush(limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "queue", "failed to claim push items")
	}

	result := &dto.QueueProcessResult{Errors: []string{}}
	for i := range items {
		item := &items[i]

		var data map[string]string
		if len(item.Data) > 0 {
			if err := json.Unmarshal(item.Data, &data); err != nil {
				data = nil
			}
		}

		sendErr := s.pushSender.Send(&push.Message{
			DeviceToken: item.DeviceToken,
			Platform:    item.Platform,
			Title:       item.Title,
			Body:        item.Body,
			Data:        data,
		})
		if sendErr == nil {
			if err := s.queueRepo.MarkPushSent(item.ID); err != nil {
				logger.WithError(err).Error("failed to mark push sent", "item_id", item.ID)
			}
			metrics.QueueDeliveries.WithLabelValues("push", "sent").Inc()
			result.Sent++
			continue
		}

		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("push %s: %v", item.ID, sendErr))
		metrics.QueueDeliveries.WithLabelValues("push", "failed").Inc()

		if item.Attempts >= models.MaxDeliveryAttempts {
			if err := s.queueRepo.MarkPushFailed(item.ID); err != nil {
				logger.WithError(err).Error("failed to mark push failed", "item_id", item.ID)
			}
		}
	}

	return result, nil
}

func (s *queueService) Counts() (*repositories.QueueCounts, error) {
	counts, err := s.queueRepo.Counts()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "queue", "failed to read queue counts")
	}
	return counts, nil
}
