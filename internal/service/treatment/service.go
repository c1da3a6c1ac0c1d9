package treatment

import (
	"context"
	"fmt"

	"github.com/dentika/clinic-api/internal/model"
	"github.com/dentika/clinic-api/internal/repository"
	"github.com/dentika/clinic-api/internal/service/event"
	"github.com/dentika/clinic-api/pkg/logger"
)

// TreatmentServicer manages the treatment catalog. Per-patient courses
// live in the patienttreatment service.
type TreatmentServicer interface {
	CreateTreatment(ctx context.Context, req *model.CreateTreatmentRequest) (*model.Treatment, error)
	GetTreatment(ctx context.Context, id int64) (*model.Treatment, error)
	UpdateTreatment(ctx context.Context, id int64, req *model.CreateTreatmentRequest) (*model.Treatment, error)
	DeleteTreatment(ctx context.Context, id int64) error
	ListTreatments(ctx context.Context) ([]*model.Treatment, error)
}

type Service struct {
	repo   repository.TreatmentRepository
	events event.Emitter
	logger *logger.Logger
}

func NewService(repo repository.TreatmentRepository, events event.Emitter, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

func (s *Service) CreateTreatment(ctx context.Context, req *model.CreateTreatmentRequest) (*model.Treatment, error) {
	treatment := &model.Treatment{
		Name:        req.Name,
		Description: req.Description,
	}

	if err := s.repo.Create(ctx, treatment); err != nil {
		return nil, fmt.Errorf("failed to create treatment: %w", err)
	}

	s.emit(ctx, model.EventTreatmentCreated, treatment)
	return treatment, nil
}

func (s *Service) GetTreatment(ctx context.Context, id int64) (*model.Treatment, error) {
	treatment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get treatment: %w", err)
	}
	return treatment, nil
}

func (s *Service) UpdateTreatment(ctx context.Context, id int64, req *model.CreateTreatmentRequest) (*model.Treatment, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get treatment: %w", err)
	}

	treatment := &model.Treatment{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   existing.CreatedAt,
	}

	if err := s.repo.Update(ctx, treatment); err != nil {
		return nil, fmt.Errorf("failed to update treatment: %w", err)
	}

	s.emit(ctx, model.EventTreatmentUpdated, treatment)
	return treatment, nil
}

// DeleteTreatment removes a catalog entry. Courses reference the
// catalog with RESTRICT, so entries with active history cannot go;
// appointments and images merely null out their pointer.
func (s *Service) DeleteTreatment(ctx context.Context, id int64) error {
	treatment, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get treatment: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete treatment: %w", err)
	}

	s.emit(ctx, model.EventTreatmentDeleted, treatment)
	return nil
}

func (s *Service) ListTreatments(ctx context.Context) ([]*model.Treatment, error) {
	treatments, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	return treatments, nil
}

func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.logger.Error(err, "failed to record event", "event_type", eventType)
	}
}
