package workers

import (
	"context"
	"time"

	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/services"
)

// QueueWorker periodically drains the email and push delivery queues.
type QueueWorker struct {
	queueService services.QueueService
	interval     time.Duration
	batchSize    int
}

func NewQueueWorker(queueService services.QueueService, interval time.Duration, batchSize int) *QueueWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &QueueWorker{queueService: queueService, interval: interval, batchSize: batchSize}
}

// Start launches the drain loop.
func (w *QueueWorker) Start(ctx context.Context) {
	go w.drain(ctx)
}

func (w *QueueWorker) drain(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("queue worker stopped")
			return
		case <-ticker.C:
			result, err := w.queueService.ProcessEmailQueue(w.batchSize)
			logger.WorkerLog("queue_worker", "process_email", err)
			if err == nil && (result.Sent > 0 || result.Failed > 0) {
				logger.Info("email queue drained", "sent", result.Sent, "failed", result.Failed)
			}

			result, err = w.queueService.ProcessPushQueue(w.batchSize)
			logger.WorkerLog("queue_worker", "process_push", err)
			if err == nil && (result.Sent > 0 || result.Failed > 0) {
				logger.Info("push queue drained", "sent", result.Sent, "failed", result.Failed)
			}
		}
	}
}
