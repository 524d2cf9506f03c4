package workers

import (
	"context"
	"time"

	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/services"
)

// GigWorker sweeps open gigs whose deadline has passed.
type GigWorker struct {
	gigService services.GigService
	interval   time.Duration
}

func NewGigWorker(gigService services.GigService, interval time.Duration) *GigWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &GigWorker{gigService: gigService, interval: interval}
}

// Start launches the expiry sweep loop.
func (w *GigWorker) Start(ctx context.Context) {
	go w.sweepExpired(ctx)
}

func (w *GigWorker) sweepExpired(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("gig worker stopped")
			return
		case <-ticker.C:
			count, err := w.gigService.MarkExpiredGigs()
			logger.WorkerLog("gig_worker", "mark_expired", err)
			if err == nil && count > 0 {
				logger.Info("closed expired gigs", "count", count)
			}
		}
	}
}
