package model

import "time"

// Patient is the clinical profile attached 1:1 to a user account.
// Medical fields are free text, nullable by design.
type Patient struct {
	ID                int64      `db:"id" json:"id"`
	UserID            int64      `db:"user_id" json:"user_id"`
	DateOfBirth       *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Allergies         *string    `db:"allergies" json:"allergies,omitempty"`
	CurrentMedication *string    `db:"current_medication" json:"current_medication,omitempty"`
	MedicalConditions *string    `db:"medical_conditions" json:"medical_conditions,omitempty"`
	Notes             *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// CreatePatientRequest is the patient write-shape. user_id must point
// at an existing user; the reference is enforced by the database, not
// by this shape.
type CreatePatientRequest struct {
	UserID            int64      `json:"user_id" validate:"required,gt=0"`
	DateOfBirth       *time.Time `json:"date_of_birth" validate:"omitempty"`
	Allergies         *string    `json:"allergies" validate:"omitempty"`
	CurrentMedication *string    `json:"current_medication" validate:"omitempty"`
	MedicalConditions *string    `json:"medical_conditions" validate:"omitempty"`
	Notes             *string    `json:"notes" validate:"omitempty"`
}
