package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/dentika/clinic-api/internal/email"
	"github.com/dentika/clinic-api/internal/model"
	"github.com/dentika/clinic-api/internal/repository"
	"github.com/dentika/clinic-api/internal/service/event"
	apperrors "github.com/dentika/clinic-api/pkg/errors"
	"github.com/dentika/clinic-api/pkg/logger"
)

// AppointmentServicer manages bookings. The status lifecycle
// (pending -> confirmed | cancelled, confirmed -> completed | cancelled)
// is enforced here. Double booking a staff member is allowed: overlaps
// are logged for the front desk, never rejected.
type AppointmentServicer interface {
	CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (*model.Appointment, error)
	UpdateAppointment(ctx context.Context, id int64, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error
	ListAppointments(ctx context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, error)
	ListToday(ctx context.Context) ([]*model.Appointment, error)
}

type Service struct {
	repo        repository.AppointmentRepository
	patientRepo repository.PatientRepository
	userRepo    repository.UserRepository
	events      event.Emitter
	emailSvc    email.Service
	logger      *logger.Logger
}

func NewService(repo repository.AppointmentRepository, patientRepo repository.PatientRepository, userRepo repository.UserRepository, events event.Emitter, emailSvc email.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		userRepo:    userRepo,
		events:      events,
		emailSvc:    emailSvc,
		logger:      logger,
	}
}

// CreateAppointment books a slot. Status defaults to pending and
// duration to 30 minutes. Past dates are accepted: the front desk
// records visits after the fact.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	status := model.AppointmentStatusPending
	if req.Status != nil {
		status = *req.Status
	}

	duration := model.DefaultAppointmentDuration
	if req.Duration != nil {
		duration = *req.Duration
	}

	appt := &model.Appointment{
		PatientID:   req.PatientID,
		StaffID:     req.StaffID,
		TreatmentID: req.TreatmentID,
		Date:        req.Date,
		Duration:    duration,
		Status:      status,
		Notes:       req.Notes,
	}

	s.warnOnOverlap(ctx, appt, 0)

	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.emit(ctx, model.EventAppointmentCreated, appt)

	if status == model.AppointmentStatusConfirmed {
		s.sendNotice(ctx, appt, model.AppointmentStatusConfirmed)
	}

	return appt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appt, nil
}

// UpdateAppointment replaces the booking. Status changes run through
// the lifecycle check; omitted status or duration keeps the stored
// value. Confirming or cancelling sends the patient a notice.
func (s *Service) UpdateAppointment(ctx context.Context, id int64, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	status := existing.Status
	if req.Status != nil {
		status = *req.Status
	}
	if !existing.Status.CanTransitionTo(status) {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot change appointment status from %s to %s", existing.Status, status), nil)
	}

	duration := existing.Duration
	if req.Duration != nil {
		duration = *req.Duration
	}

	appt := &model.Appointment{
		ID:          id,
		PatientID:   req.PatientID,
		StaffID:     req.StaffID,
		TreatmentID: req.TreatmentID,
		Date:        req.Date,
		Duration:    duration,
		Status:      status,
		Notes:       req.Notes,
		CreatedAt:   existing.CreatedAt,
	}

	s.warnOnOverlap(ctx, appt, id)

	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.emit(ctx, model.EventAppointmentUpdated, appt)

	if status != existing.Status {
		switch status {
		case model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled:
			s.sendNotice(ctx, appt, status)
		}
	}

	return appt, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get appointment: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	s.emit(ctx, model.EventAppointmentDeleted, appt)
	return nil
}

func (s *Service) ListAppointments(ctx context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, error) {
	appts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}

// ListToday returns the current day's bookings in server-local time,
// ordered by date.
func (s *Service) ListToday(ctx context.Context) ([]*model.Appointment, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.ListAppointments(ctx, &model.AppointmentFilter{
		From: start,
		To:   start.AddDate(0, 0, 1),
	})
}

// warnOnOverlap logs double bookings for the assigned staff member.
// Overlaps are legal; excludeID keeps a reschedule from matching
// itself.
func (s *Service) warnOnOverlap(ctx context.Context, appt *model.Appointment, excludeID int64) {
	if appt.StaffID == nil {
		return
	}
	count, err := s.repo.CountOverlapping(ctx, *appt.StaffID, appt.Date, appt.End(), excludeID)
	if err != nil {
		s.logger.Error(err, "overlap check failed", "staff_id", *appt.StaffID)
		return
	}
	if count > 0 {
		s.logger.Warn("staff member double booked",
			"staff_id", *appt.StaffID, "date", appt.Date, "overlapping", count)
	}
}

// sendNotice emails the patient about a confirmation or cancellation.
// Failures are logged; the mutation already succeeded.
func (s *Service) sendNotice(ctx context.Context, appt *model.Appointment, status model.AppointmentStatus) {
	patient, err := s.patientRepo.Get(ctx, appt.PatientID)
	if err != nil {
		s.logger.Warn("appointment notice skipped", "appointment_id", appt.ID, "error", err.Error())
		return
	}
	account, err := s.userRepo.Get(ctx, patient.UserID)
	if err != nil {
		s.logger.Warn("appointment notice skipped", "appointment_id", appt.ID, "error", err.Error())
		return
	}

	switch status {
	case model.AppointmentStatusConfirmed:
		err = s.emailSvc.SendAppointmentConfirmation(ctx, account.Email, account.FullName, appt.Date, appt.Duration)
	case model.AppointmentStatusCancelled:
		err = s.emailSvc.SendAppointmentCancellation(ctx, account.Email, account.FullName, appt.Date)
	default:
		return
	}
	if err != nil {
		s.logger.Warn("appointment notice not sent", "appointment_id", appt.ID, "error", err.Error())
	}
}

func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.logger.Error(err, "failed to record event", "event_type", eventType)
	}
}
