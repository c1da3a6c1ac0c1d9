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

func (r *treatmentRepository) Create(ctx context.Context, treatment *model.Treatment) error {
	query := `
		INSERT INTO treatments (name, description, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	treatment.CreatedAt = time.Now().UTC()

	err := r.db.QueryRowContext(ctx, query,
		treatment.Name,
		treatment.Description,
		treatment.CreatedAt,
	).Scan(&treatment.ID)
	if err != nil {
		return fmt.Errorf("failed to create treatment: %w", err)
	}
	return nil
}

func (r *treatmentRepository) Get(ctx context.Context, id int64) (*model.Treatment, error) {
	query := `
		SELECT id, name, description, created_at
		FROM treatments
		WHERE id = $1
	`
	var treatment model.Treatment
	err := r.db.GetContext(ctx, &treatment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("treatment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get treatment: %w", err)
	}
	return &treatment, nil
}

func (r *treatmentRepository) Update(ctx context.Context, treatment *model.Treatment) error {
	query := `
		UPDATE treatments
		SET name = $1, description = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query,
		treatment.Name,
		treatment.Description,
		treatment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update treatment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("treatment", nil)
	}
	return nil
}

func (r *treatmentRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM treatments
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if derr := translateDelete(err); derr != nil {
			return derr
		}
		return fmt.Errorf("failed to delete treatment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("treatment", nil)
	}
	return nil
}

func (r *treatmentRepository) List(ctx context.Context) ([]*model.Treatment, error) {
	query := `
		SELECT id, name, description, created_at
		FROM treatments
		ORDER BY name ASC
	`
	var treatments []*model.Treatment
	if err := r.db.SelectContext(ctx, &treatments, query); err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	return treatments, nil
}
