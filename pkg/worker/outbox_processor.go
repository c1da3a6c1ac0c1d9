package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dentika/clinic-api/internal/model"
	"github.com/dentika/clinic-api/pkg/logger"
	"github.com/dentika/clinic-api/pkg/messaging"
	"github.com/dentika/clinic-api/pkg/metrics"
	"github.com/dentika/clinic-api/pkg/repository"
)

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	MaxAttempts  int
	RetryBackoff time.Duration
}

// OutboxProcessor polls due outbox rows and relays them to the broker.
// Failed publishes are rescheduled through the row itself (status
// retry, retry_at in the future) rather than retried in-process, so a
// relay crash never loses an attempt.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.MaxAttempts <= 0 {
		panic("MaxAttempts must be greater than 0")
	}
	if config.RetryBackoff <= 0 {
		panic("RetryBackoff must be greater than 0")
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting outbox processor",
		"batch_size", p.config.BatchSize,
		"poll_interval", p.config.PollInterval.String())

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error(err, "failed to process outbox batch")
			}
		}
	}
}

func (p *OutboxProcessor) processBatch(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingEventsWithLock(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()
	p.metrics.OutboxQueueSize.Set(float64(len(events)))

	for _, event := range events {
		if err := p.relay(ctx, event); err != nil {
			p.logger.Error(err, "failed to relay event",
				"event_id", event.ID.String(),
				"event_type", event.EventType)
		}
	}

	return nil
}

// relay publishes one event on a channel named after its type. The
// payload goes out as written; consumers get the same JSON the service
// layer emitted.
func (p *OutboxProcessor) relay(ctx context.Context, event *model.OutboxEvent) error {
	err := p.broker.Publish(ctx, event.EventType, event.Payload)
	if err == nil {
		p.metrics.OutboxEventsProcessed.Inc()
		if updateErr := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil, nil); updateErr != nil {
			return fmt.Errorf("failed to mark event processed: %w", updateErr)
		}
		return nil
	}

	errMsg := err.Error()

	// RetryCount counts publishes already burned on this row.
	if event.RetryCount+1 >= p.config.MaxAttempts {
		p.metrics.OutboxEventsFailed.Inc()
		if updateErr := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusFailed, &errMsg, nil); updateErr != nil {
			p.logger.Error(updateErr, "failed to mark event failed", "event_id", event.ID.String())
		}
		return fmt.Errorf("giving up after %d attempts: %w", p.config.MaxAttempts, err)
	}

	p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
	retryAt := time.Now().Add(time.Duration(event.RetryCount+1) * p.config.RetryBackoff)
	if updateErr := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusRetry, &errMsg, &retryAt); updateErr != nil {
		return fmt.Errorf("failed to schedule retry: %w", updateErr)
	}

	p.logger.Warn("publish failed, retry scheduled",
		"event_id", event.ID.String(),
		"event_type", event.EventType,
		"attempt", event.RetryCount+1,
		"retry_at", retryAt.Format(time.RFC3339))
	return nil
}
