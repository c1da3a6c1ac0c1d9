package patient

import (
	"context"
	"fmt"

	"github.com/dentika/clinic-api/internal/model"
	"github.com/dentika/clinic-api/internal/repository"
	"github.com/dentika/clinic-api/internal/service/event"
	apperrors "github.com/dentika/clinic-api/pkg/errors"
	"github.com/dentika/clinic-api/pkg/logger"
)

type PatientServicer interface {
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, id int64) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id int64, req *model.CreatePatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, id int64) error
	ListPatients(ctx context.Context) ([]*model.Patient, error)
}

type Service struct {
	repo   repository.PatientRepository
	events event.Emitter
	logger *logger.Logger
}

func NewService(repo repository.PatientRepository, events event.Emitter, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// CreatePatient attaches a clinical profile to a user account. Each
// account carries at most one profile; user_id must reference an
// existing user, which the database enforces.
func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	// Fast-path duplicate check; the unique index catches races.
	if existing, err := s.repo.GetByUserID(ctx, req.UserID); err == nil && existing != nil {
		return nil, apperrors.NewConflict("user already has a patient profile", nil)
	}

	patient := &model.Patient{
		UserID:            req.UserID,
		DateOfBirth:       req.DateOfBirth,
		Allergies:         req.Allergies,
		CurrentMedication: req.CurrentMedication,
		MedicalConditions: req.MedicalConditions,
		Notes:             req.Notes,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.emit(ctx, model.EventPatientCreated, patient)
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

// UpdatePatient replaces every client-writable column, including the
// owning user reference.
func (s *Service) UpdatePatient(ctx context.Context, id int64, req *model.CreatePatientRequest) (*model.Patient, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	patient := &model.Patient{
		ID:                id,
		UserID:            req.UserID,
		DateOfBirth:       req.DateOfBirth,
		Allergies:         req.Allergies,
		CurrentMedication: req.CurrentMedication,
		MedicalConditions: req.MedicalConditions,
		Notes:             req.Notes,
		CreatedAt:         existing.CreatedAt,
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	s.emit(ctx, model.EventPatientUpdated, patient)
	return patient, nil
}

// DeletePatient removes the profile. Courses, bookings and images
// keep their patient reference, so the database blocks the delete
// while any exist.
func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get patient: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	s.emit(ctx, model.EventPatientDeleted, patient)
	return nil
}

func (s *Service) ListPatients(ctx context.Context) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.logger.Error(err, "failed to record event", "event_type", eventType)
	}
}
