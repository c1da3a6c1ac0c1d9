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

// All appointment repository methods here

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			patient_id, staff_id, treatment_id, date,
			duration, status, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	appointment.CreatedAt = time.Now().UTC()

	err := r.db.QueryRowContext(ctx, query,
		appointment.PatientID,
		appointment.StaffID,
		appointment.TreatmentID,
		appointment.Date,
		appointment.Duration,
		appointment.Status,
		appointment.Notes,
		appointment.CreatedAt,
	).Scan(&appointment.ID)
	if err != nil {
		if derr := translateWrite(err); derr != nil {
			return derr
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, staff_id, treatment_id, date,
			   duration, status, notes, created_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET patient_id = $1, staff_id = $2, treatment_id = $3, date = $4,
			duration = $5, status = $6, notes = $7
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		appointment.PatientID,
		appointment.StaffID,
		appointment.TreatmentID,
		appointment.Date,
		appointment.Duration,
		appointment.Status,
		appointment.Notes,
		appointment.ID,
	)
	if err != nil {
		if derr := translateWrite(err); derr != nil {
			return derr
		}
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM appointments
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, error) {
	query := `
		SELECT id, patient_id, staff_id, treatment_id, date,
			   duration, status, notes, created_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filter != nil {
		if filter.PatientID != 0 {
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filter.PatientID)
			argCount++
		}
		if filter.StaffID != 0 {
			query += fmt.Sprintf(" AND staff_id = $%d", argCount)
			args = append(args, filter.StaffID)
			argCount++
		}
		if filter.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filter.Status)
			argCount++
		}
		if !filter.From.IsZero() {
			query += fmt.Sprintf(" AND date >= $%d", argCount)
			args = append(args, filter.From)
			argCount++
		}
		if !filter.To.IsZero() {
			query += fmt.Sprintf(" AND date < $%d", argCount)
			args = append(args, filter.To)
			argCount++
		}
	}

	query += " ORDER BY date ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// CountOverlapping counts live bookings that share any part of the
// slot. Cancelled and completed bookings do not block a chair.
func (r *appointmentRepository) CountOverlapping(ctx context.Context, staffID int64, start, end time.Time, excludeID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE staff_id = $1
		AND status NOT IN ('cancelled', 'completed')
		AND date < $3
		AND date + (duration * interval '1 minute') > $2
		AND id != $4
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, staffID, start, end, excludeID)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping appointments: %w", err)
	}
	return count, nil
}
