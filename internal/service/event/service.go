package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dentika/clinic-api/internal/model"
	"github.com/dentika/clinic-api/internal/repository"
)

// Emitter records a domain event for asynchronous delivery. Services
// emit after every successful mutation; the relay worker drains the
// outbox table and publishes to the broker.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type Service struct {
	outboxRepo repository.OutboxRepository
}

func NewService(outboxRepo repository.OutboxRepository) *Service {
	return &Service{outboxRepo: outboxRepo}
}

// Emit stores the event in the outbox. It returns once the row is
// written; delivery happens out of band and may lag.
func (s *Service) Emit(ctx context.Context, eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	evt := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payloadJSON,
	}

	if err := s.outboxRepo.Create(ctx, evt); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}
