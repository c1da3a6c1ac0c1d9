package model

import "time"

// Treatment is a catalog entry (e.g. "Invisalign", "Root canal"), not
// a per-patient course; see PatientTreatment for the join.
type Treatment struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type CreateTreatmentRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description" validate:"omitempty"`
}
