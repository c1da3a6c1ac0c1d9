package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusRetry     OutboxStatus = "retry"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Event types emitted on entity mutations. Downstream consumers
// (cache refreshers, the patient-facing frontend feed) subscribe to
// these over the broker.
const (
	EventUserCreated             = "user.created"
	EventUserUpdated             = "user.updated"
	EventUserDeleted             = "user.deleted"
	EventPatientCreated          = "patient.created"
	EventPatientUpdated          = "patient.updated"
	EventPatientDeleted          = "patient.deleted"
	EventTreatmentCreated        = "treatment.created"
	EventTreatmentUpdated        = "treatment.updated"
	EventTreatmentDeleted        = "treatment.deleted"
	EventPatientTreatmentCreated = "patient_treatment.created"
	EventPatientTreatmentUpdated = "patient_treatment.updated"
	EventPatientTreatmentDeleted = "patient_treatment.deleted"
	EventAppointmentCreated      = "appointment.created"
	EventAppointmentUpdated      = "appointment.updated"
	EventAppointmentDeleted      = "appointment.deleted"
	EventImageUploaded           = "image.uploaded"
	EventImageUpdated            = "image.updated"
	EventImageDeleted            = "image.deleted"
)

// OutboxEvent is a mutation notice written in the same transaction
// scope as the mutation itself and relayed to the broker by the
// worker binary. Infrastructure row, not a domain entity: keyed by
// UUID, not by the serial keys the domain tables use.
type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}
