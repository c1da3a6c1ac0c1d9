package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dentika/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	// UserRepository handles account records. Create assigns ID and
	// CreatedAt; the unique username rule surfaces as a conflict error.
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id int64) (*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, filter *model.UserFilter) ([]*model.User, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id int64) (*model.Patient, error)
		GetByUserID(ctx context.Context, userID int64) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	TreatmentRepository interface {
		Create(ctx context.Context, treatment *model.Treatment) error
		Get(ctx context.Context, id int64) (*model.Treatment, error)
		Update(ctx context.Context, treatment *model.Treatment) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context) ([]*model.Treatment, error)
	}

	// PatientTreatmentRepository handles treatment courses. A zero
	// status passed to ListByPatient means no status filter.
	PatientTreatmentRepository interface {
		Create(ctx context.Context, course *model.PatientTreatment) error
		Get(ctx context.Context, id int64) (*model.PatientTreatment, error)
		Update(ctx context.Context, course *model.PatientTreatment) error
		Delete(ctx context.Context, id int64) error
		ListByPatient(ctx context.Context, patientID int64, status model.TreatmentStatus) ([]*model.PatientTreatment, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id int64) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, error)
		// CountOverlapping reports how many live bookings share the
		// staff member's slot. Callers may warn on double booking but
		// must not reject it; excludeID skips the booking itself on
		// reschedule.
		CountOverlapping(ctx context.Context, staffID int64, start, end time.Time, excludeID int64) (int, error)
	}

	ImageRepository interface {
		Create(ctx context.Context, image *model.Image) error
		Get(ctx context.Context, id int64) (*model.Image, error)
		Update(ctx context.Context, image *model.Image) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, filter *model.ImageFilter) ([]*model.Image, error)
	}

	// OutboxRepository persists domain events next to the rows that
	// caused them; the relay worker drains the table.
	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
