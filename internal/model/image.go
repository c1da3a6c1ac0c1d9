package model

import "time"

// ImageCategory places a treatment photo on the before/after timeline.
type ImageCategory string

const (
	ImageCategoryBefore   ImageCategory = "before"
	ImageCategoryProgress ImageCategory = "progress"
	ImageCategoryAfter    ImageCategory = "after"
)

func (c ImageCategory) Valid() bool {
	switch c {
	case ImageCategoryBefore, ImageCategoryProgress, ImageCategoryAfter:
		return true
	}
	return false
}

// Image is the metadata record for a stored treatment photo. The bytes
// live in object storage under Filename; OriginalName is what the
// client called the file. IsVisible gates the patient-facing gallery.
type Image struct {
	ID           int64          `db:"id" json:"id"`
	PatientID    int64          `db:"patient_id" json:"patient_id"`
	TreatmentID  *int64         `db:"treatment_id" json:"treatment_id,omitempty"`
	Filename     string         `db:"filename" json:"filename"`
	OriginalName string         `db:"original_name" json:"original_name"`
	Type         string         `db:"type" json:"type"`
	Category     *ImageCategory `db:"category" json:"category,omitempty"`
	UploadedByID *int64         `db:"uploaded_by_id" json:"uploaded_by_id,omitempty"`
	IsVisible    bool           `db:"is_visible" json:"is_visible"`
	Notes        *string        `db:"notes" json:"notes,omitempty"`
	UploadedAt   time.Time      `db:"uploaded_at" json:"uploaded_at"`
}

// CreateImageRequest is the image write-shape. The upload handler
// fills filename/original_name/type from the multipart part; the
// shape is validated all the same so a bad assembly cannot slip
// through to the database.
type CreateImageRequest struct {
	PatientID    int64          `json:"patient_id" validate:"required,gt=0"`
	TreatmentID  *int64         `json:"treatment_id" validate:"omitempty,gt=0"`
	Filename     string         `json:"filename" validate:"required"`
	OriginalName string         `json:"original_name" validate:"required"`
	Type         string         `json:"type" validate:"required"`
	Category     *ImageCategory `json:"category" validate:"omitempty,oneof=before progress after"`
	UploadedByID *int64         `json:"uploaded_by_id" validate:"omitempty,gt=0"`
	IsVisible    *bool          `json:"is_visible" validate:"omitempty"`
	Notes        *string        `json:"notes" validate:"omitempty"`
}

// UpdateImageRequest is the metadata write-shape for stored images.
// The file itself and its names are immutable after upload; only the
// gallery-facing fields can change.
type UpdateImageRequest struct {
	TreatmentID *int64         `json:"treatment_id" validate:"omitempty,gt=0"`
	Category    *ImageCategory `json:"category" validate:"omitempty,oneof=before progress after"`
	IsVisible   *bool          `json:"is_visible" validate:"omitempty"`
	Notes       *string        `json:"notes" validate:"omitempty"`
}

// ImageFilter narrows gallery listings. VisibleOnly hides staff-only
// shots from patient-facing views.
type ImageFilter struct {
	PatientID   int64
	TreatmentID int64
	Category    ImageCategory
	VisibleOnly bool
}
