package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dentika/clinic-api/internal/model"
	apperrors "github.com/dentika/clinic-api/pkg/errors"
)

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			user_id, date_of_birth, allergies, current_medication,
			medical_conditions, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	patient.CreatedAt = time.Now().UTC()

	err := r.db.QueryRowContext(ctx, query,
		patient.UserID,
		patient.DateOfBirth,
		patient.Allergies,
		patient.CurrentMedication,
		patient.MedicalConditions,
		patient.Notes,
		patient.CreatedAt,
	).Scan(&patient.ID)
	if err != nil {
		if derr := translateWrite(err); derr != nil {
			return derr
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	query := `
		SELECT id, user_id, date_of_birth, allergies, current_medication,
			   medical_conditions, notes, created_at
		FROM patients
		WHERE id = $1
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID int64) (*model.Patient, error) {
	query := `
		SELECT id, user_id, date_of_birth, allergies, current_medication,
			   medical_conditions, notes, created_at
		FROM patients
		WHERE user_id = $1
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient by user: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET user_id = $1, date_of_birth = $2, allergies = $3,
			current_medication = $4, medical_conditions = $5, notes = $6
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		patient.UserID,
		patient.DateOfBirth,
		patient.Allergies,
		patient.CurrentMedication,
		patient.MedicalConditions,
		patient.Notes,
		patient.ID,
	)
	if err != nil {
		if derr := translateWrite(err); derr != nil {
			return derr
		}
		return fmt.Errorf("failed to update patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("patient", nil)
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM patients
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if derr := translateDelete(err); derr != nil {
			return derr
		}
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("patient", nil)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `
		SELECT id, user_id, date_of_birth, allergies, current_medication,
			   medical_conditions, notes, created_at
		FROM patients
		ORDER BY created_at DESC
	`
	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
