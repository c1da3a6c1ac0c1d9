package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dentika/clinic-api/internal/model"
)

// OutboxRepository is the slice of the outbox store the relay worker
// needs; the full interface lives in internal/repository.
type OutboxRepository interface {
	GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
