package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/dentika/clinic-api/pkg/logger"
	"github.com/dentika/clinic-api/pkg/repository"
)

type RetentionConfig struct {
	RetentionDays int
	SweepInterval time.Duration
}

// RetentionWorker prunes relayed outbox rows past their retention
// window. Failed rows are kept for inspection; only processed ones go.
type RetentionWorker struct {
	repo   repository.OutboxRepository
	config RetentionConfig
	logger *logger.Logger
}

func NewRetentionWorker(repo repository.OutboxRepository, config RetentionConfig, logger *logger.Logger) *RetentionWorker {
	if config.RetentionDays <= 0 {
		panic("RetentionDays must be greater than 0")
	}
	if config.SweepInterval <= 0 {
		panic("SweepInterval must be greater than 0")
	}

	return &RetentionWorker{
		repo:   repo,
		config: config,
		logger: logger,
	}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	w.logger.Info("starting outbox retention sweep",
		"retention_days", w.config.RetentionDays,
		"sweep_interval", w.config.SweepInterval.String())

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("shutting down retention sweep")
			return
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				w.logger.Error(err, "failed to prune outbox")
			}
		}
	}
}

func (w *RetentionWorker) sweep(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -w.config.RetentionDays)

	rows, err := w.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete processed events: %w", err)
	}

	if rows > 0 {
		w.logger.Info("pruned processed outbox events",
			"rows", rows,
			"cutoff", cutoff.Format(time.RFC3339))
	}
	return nil
}
