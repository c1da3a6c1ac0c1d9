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

func (r *imageRepository) Create(ctx context.Context, image *model.Image) error {
	query := `
		INSERT INTO images (
			patient_id, treatment_id, filename, original_name, type,
			category, uploaded_by_id, is_visible, notes, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	image.UploadedAt = time.Now().UTC()

	err := r.db.QueryRowContext(ctx, query,
		image.PatientID,
		image.TreatmentID,
		image.Filename,
		image.OriginalName,
		image.Type,
		image.Category,
		image.UploadedByID,
		image.IsVisible,
		image.Notes,
		image.UploadedAt,
	).Scan(&image.ID)
	if err != nil {
		if derr := translateWrite(err); derr != nil {
			return derr
		}
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

func (r *imageRepository) Get(ctx context.Context, id int64) (*model.Image, error) {
	query := `
		SELECT id, patient_id, treatment_id, filename, original_name, type,
			   category, uploaded_by_id, is_visible, notes, uploaded_at
		FROM images
		WHERE id = $1
	`
	var image model.Image
	err := r.db.GetContext(ctx, &image, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("image", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return &image, nil
}

func (r *imageRepository) Update(ctx context.Context, image *model.Image) error {
	query := `
		UPDATE images
		SET treatment_id = $1, category = $2, is_visible = $3, notes = $4
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		image.TreatmentID,
		image.Category,
		image.IsVisible,
		image.Notes,
		image.ID,
	)
	if err != nil {
		if derr := translateWrite(err); derr != nil {
			return derr
		}
		return fmt.Errorf("failed to update image: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("image", nil)
	}
	return nil
}

func (r *imageRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM images
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("image", nil)
	}
	return nil
}

func (r *imageRepository) List(ctx context.Context, filter *model.ImageFilter) ([]*model.Image, error) {
	query := `
		SELECT id, patient_id, treatment_id, filename, original_name, type,
			   category, uploaded_by_id, is_visible, notes, uploaded_at
		FROM images
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
		if filter.TreatmentID != 0 {
			query += fmt.Sprintf(" AND treatment_id = $%d", argCount)
			args = append(args, filter.TreatmentID)
			argCount++
		}
		if filter.Category != "" {
			query += fmt.Sprintf(" AND category = $%d", argCount)
			args = append(args, filter.Category)
			argCount++
		}
		if filter.VisibleOnly {
			query += " AND is_visible = TRUE"
		}
	}

	query += " ORDER BY uploaded_at DESC"

	var images []*model.Image
	if err := r.db.SelectContext(ctx, &images, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}
