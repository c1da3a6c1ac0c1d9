package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusCompleted
}

// CanTransitionTo encodes the booking lifecycle:
// pending -> confirmed | cancelled, confirmed -> completed | cancelled.
// The lifecycle lives here, not in the database; the schema stores
// whatever status the service layer decided on.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case AppointmentStatusPending:
		return next == AppointmentStatusConfirmed || next == AppointmentStatusCancelled
	case AppointmentStatusConfirmed:
		return next == AppointmentStatusCompleted || next == AppointmentStatusCancelled
	}
	return false
}

// DefaultAppointmentDuration is applied when the client omits duration.
const DefaultAppointmentDuration = 30

// Appointment books a patient, optionally with a staff member and a
// treatment, at a point in time. Duration is minutes. Overlapping
// bookings for the same staff member are allowed by the data model;
// nothing below the service layer rejects them.
type Appointment struct {
	ID          int64             `db:"id" json:"id"`
	PatientID   int64             `db:"patient_id" json:"patient_id"`
	StaffID     *int64            `db:"staff_id" json:"staff_id,omitempty"`
	TreatmentID *int64            `db:"treatment_id" json:"treatment_id,omitempty"`
	Date        time.Time         `db:"date" json:"date"`
	Duration    int               `db:"duration" json:"duration"`
	Status      AppointmentStatus `db:"status" json:"status"`
	Notes       *string           `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}

// End is the exclusive end of the booked slot.
func (a *Appointment) End() time.Time {
	return a.Date.Add(time.Duration(a.Duration) * time.Minute)
}

type CreateAppointmentRequest struct {
	PatientID   int64              `json:"patient_id" validate:"required,gt=0"`
	StaffID     *int64             `json:"staff_id" validate:"omitempty,gt=0"`
	TreatmentID *int64             `json:"treatment_id" validate:"omitempty,gt=0"`
	Date        time.Time          `json:"date" validate:"required"`
	Duration    *int               `json:"duration" validate:"omitempty,gt=0"`
	Status      *AppointmentStatus `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	Notes       *string            `json:"notes" validate:"omitempty"`
}

// AppointmentFilter narrows listings; zero values mean "no filter".
type AppointmentFilter struct {
	PatientID int64
	StaffID   int64
	Status    AppointmentStatus
	From      time.Time
	To        time.Time
}
