package model

import "time"

type TreatmentStatus string

const (
	TreatmentStatusActive    TreatmentStatus = "active"
	TreatmentStatusCompleted TreatmentStatus = "completed"
	TreatmentStatusCancelled TreatmentStatus = "cancelled"
)

func (s TreatmentStatus) Valid() bool {
	switch s {
	case TreatmentStatusActive, TreatmentStatusCompleted, TreatmentStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status change is allowed.
func (s TreatmentStatus) Terminal() bool {
	return s == TreatmentStatusCompleted || s == TreatmentStatusCancelled
}

// CanTransitionTo encodes the course lifecycle: an active course may
// complete or be cancelled, terminal states stay put.
func (s TreatmentStatus) CanTransitionTo(next TreatmentStatus) bool {
	if s == next {
		return true
	}
	return s == TreatmentStatusActive && next.Valid()
}

// PatientTreatment is one patient's course of one treatment: the
// many-to-many join carrying status, phase and completion progress.
type PatientTreatment struct {
	ID          int64           `db:"id" json:"id"`
	PatientID   int64           `db:"patient_id" json:"patient_id"`
	TreatmentID int64           `db:"treatment_id" json:"treatment_id"`
	Status      TreatmentStatus `db:"status" json:"status"`
	StartDate   time.Time       `db:"start_date" json:"start_date"`
	EndDate     *time.Time      `db:"end_date" json:"end_date,omitempty"`
	Notes       *string         `db:"notes" json:"notes,omitempty"`
	Progress    int             `db:"progress" json:"progress"`
	Phase       *string         `db:"phase" json:"phase,omitempty"`
}

// CreatePatientTreatmentRequest is the course write-shape. Progress
// outside [0,100] is rejected, never clamped; status defaults to
// active when omitted.
type CreatePatientTreatmentRequest struct {
	PatientID   int64            `json:"patient_id" validate:"required,gt=0"`
	TreatmentID int64            `json:"treatment_id" validate:"required,gt=0"`
	Status      *TreatmentStatus `json:"status" validate:"omitempty,oneof=active completed cancelled"`
	StartDate   time.Time        `json:"start_date" validate:"required"`
	EndDate     *time.Time       `json:"end_date" validate:"omitempty"`
	Notes       *string          `json:"notes" validate:"omitempty"`
	Progress    *int             `json:"progress" validate:"omitempty,min=0,max=100"`
	Phase       *string          `json:"phase" validate:"omitempty"`
}
