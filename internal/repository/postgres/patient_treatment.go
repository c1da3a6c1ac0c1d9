package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dentika/clinic-api/internal/model"
	apperrors "github.com/dentika/clinic-api/pkg/errors"
)

func (r *patientTreatmentRepository) Create(ctx context.Context, course *model.PatientTreatment) error {
	query := `
		INSERT INTO patient_treatments (
			patient_id, treatment_id, status, start_date,
			end_date, notes, progress, phase
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		course.PatientID,
		course.TreatmentID,
		course.Status,
		course.StartDate,
		course.EndDate,
		course.Notes,
		course.Progress,
		course.Phase,
	).Scan(&course.ID)
	if err != nil {
		if derr := translateWrite(err); derr != nil {
			return derr
		}
		return fmt.Errorf("failed to create patient treatment: %w", err)
	}
	return nil
}

func (r *patientTreatmentRepository) Get(ctx context.Context, id int64) (*model.PatientTreatment, error) {
	query := `
		SELECT id, patient_id, treatment_id, status, start_date,
			   end_date, notes, progress, phase
		FROM patient_treatments
		WHERE id = $1
	`
	var course model.PatientTreatment
	err := r.db.GetContext(ctx, &course, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("patient treatment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient treatment: %w", err)
	}
	return &course, nil
}

func (r *patientTreatmentRepository) Update(ctx context.Context, course *model.PatientTreatment) error {
	query := `
		UPDATE patient_treatments
		SET patient_id = $1, treatment_id = $2, status = $3, start_date = $4,
			end_date = $5, notes = $6, progress = $7, phase = $8
		WHERE id = $9
	`
	result, err := r.db.ExecContext(ctx, query,
		course.PatientID,
		course.TreatmentID,
		course.Status,
		course.StartDate,
		course.EndDate,
		course.Notes,
		course.Progress,
		course.Phase,
		course.ID,
	)
	if err != nil {
		if derr := translateWrite(err); derr != nil {
			return derr
		}
		return fmt.Errorf("failed to update patient treatment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("patient treatment", nil)
	}
	return nil
}

func (r *patientTreatmentRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM patient_treatments
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient treatment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("patient treatment", nil)
	}
	return nil
}

func (r *patientTreatmentRepository) ListByPatient(ctx context.Context, patientID int64, status model.TreatmentStatus) ([]*model.PatientTreatment, error) {
	query := `
		SELECT id, patient_id, treatment_id, status, start_date,
			   end_date, notes, progress, phase
		FROM patient_treatments
		WHERE patient_id = $1
	`
	args := []interface{}{patientID}

	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}

	query += " ORDER BY start_date DESC"

	var courses []*model.PatientTreatment
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patient treatments: %w", err)
	}
	return courses, nil
}
