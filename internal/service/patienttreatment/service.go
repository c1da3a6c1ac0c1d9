package patienttreatment

import (
	"context"
	"fmt"
	"time"

	"github.com/dentika/clinic-api/internal/model"
	"github.com/dentika/clinic-api/internal/repository"
	"github.com/dentika/clinic-api/internal/service/event"
	apperrors "github.com/dentika/clinic-api/pkg/errors"
	"github.com/dentika/clinic-api/pkg/logger"
)

// PatientTreatmentServicer manages treatment courses: the per-patient
// record of a catalog treatment with status, phase and progress. The
// course lifecycle (active -> completed | cancelled, terminal after)
// is enforced here; the schema below only checks the enum and the
// progress range.
type PatientTreatmentServicer interface {
	CreatePatientTreatment(ctx context.Context, req *model.CreatePatientTreatmentRequest) (*model.PatientTreatment, error)
	GetPatientTreatment(ctx context.Context, id int64) (*model.PatientTreatment, error)
	UpdatePatientTreatment(ctx context.Context, id int64, req *model.CreatePatientTreatmentRequest) (*model.PatientTreatment, error)
	DeletePatientTreatment(ctx context.Context, id int64) error
	ListByPatient(ctx context.Context, patientID int64, status model.TreatmentStatus) ([]*model.PatientTreatment, error)
}

type Service struct {
	repo   repository.PatientTreatmentRepository
	events event.Emitter
	logger *logger.Logger
}

func NewService(repo repository.PatientTreatmentRepository, events event.Emitter, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// CreatePatientTreatment starts a course. Status defaults to active
// and progress to 0; a course created directly as completed gets its
// end date stamped when the client omitted one.
func (s *Service) CreatePatientTreatment(ctx context.Context, req *model.CreatePatientTreatmentRequest) (*model.PatientTreatment, error) {
	status := model.TreatmentStatusActive
	if req.Status != nil {
		status = *req.Status
	}

	progress := 0
	if req.Progress != nil {
		progress = *req.Progress
	}

	endDate, err := resolveEndDate(status, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	course := &model.PatientTreatment{
		PatientID:   req.PatientID,
		TreatmentID: req.TreatmentID,
		Status:      status,
		StartDate:   req.StartDate,
		EndDate:     endDate,
		Notes:       req.Notes,
		Progress:    progress,
		Phase:       req.Phase,
	}

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create patient treatment: %w", err)
	}

	s.emit(ctx, model.EventPatientTreatmentCreated, course)
	return course, nil
}

func (s *Service) GetPatientTreatment(ctx context.Context, id int64) (*model.PatientTreatment, error) {
	course, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient treatment: %w", err)
	}
	return course, nil
}

// UpdatePatientTreatment replaces the course record. Status changes
// run through the lifecycle check; omitted status or progress keeps
// the stored value instead of re-applying creation defaults.
func (s *Service) UpdatePatientTreatment(ctx context.Context, id int64, req *model.CreatePatientTreatmentRequest) (*model.PatientTreatment, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient treatment: %w", err)
	}

	status := existing.Status
	if req.Status != nil {
		status = *req.Status
	}
	if !existing.Status.CanTransitionTo(status) {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot change course status from %s to %s", existing.Status, status), nil)
	}

	progress := existing.Progress
	if req.Progress != nil {
		progress = *req.Progress
	}

	endDate, err := resolveEndDate(status, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	course := &model.PatientTreatment{
		ID:          id,
		PatientID:   req.PatientID,
		TreatmentID: req.TreatmentID,
		Status:      status,
		StartDate:   req.StartDate,
		EndDate:     endDate,
		Notes:       req.Notes,
		Progress:    progress,
		Phase:       req.Phase,
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update patient treatment: %w", err)
	}

	s.emit(ctx, model.EventPatientTreatmentUpdated, course)
	return course, nil
}

func (s *Service) DeletePatientTreatment(ctx context.Context, id int64) error {
	course, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get patient treatment: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient treatment: %w", err)
	}

	s.emit(ctx, model.EventPatientTreatmentDeleted, course)
	return nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64, status model.TreatmentStatus) ([]*model.PatientTreatment, error) {
	courses, err := s.repo.ListByPatient(ctx, patientID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient treatments: %w", err)
	}
	return courses, nil
}

// resolveEndDate applies the two end-date rules: it may not precede
// the start date, and completing a course stamps one when absent.
func resolveEndDate(status model.TreatmentStatus, startDate time.Time, endDate *time.Time) (*time.Time, error) {
	if endDate != nil && endDate.Before(startDate) {
		return nil, apperrors.NewBadRequest("end_date must not be before start_date", nil)
	}
	if status == model.TreatmentStatusCompleted && endDate == nil {
		now := time.Now().UTC()
		return &now, nil
	}
	return endDate, nil
}

func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.logger.Error(err, "failed to record event", "event_type", eventType)
	}
}
