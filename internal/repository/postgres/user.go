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

// All user repository methods here

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			username, password, full_name, email,
			phone, address, role, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	user.CreatedAt = time.Now().UTC()

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Password,
		user.FullName,
		user.Email,
		user.Phone,
		user.Address,
		user.Role,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if derr := translateWrite(err); derr != nil {
			return derr
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, username, password, full_name, email,
			   phone, address, role, created_at
		FROM users
		WHERE id = $1
	`
	var user model.User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("user", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT id, username, password, full_name, email,
			   phone, address, role, created_at
		FROM users
		WHERE username = $1
	`
	var user model.User
	err := r.db.GetContext(ctx, &user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("user", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET username = $1, password = $2, full_name = $3, email = $4,
			phone = $5, address = $6, role = $7
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Password,
		user.FullName,
		user.Email,
		user.Phone,
		user.Address,
		user.Role,
		user.ID,
	)
	if err != nil {
		if derr := translateWrite(err); derr != nil {
			return derr
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("user", nil)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM users
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if derr := translateDelete(err); derr != nil {
			return derr
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("user", nil)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, filter *model.UserFilter) ([]*model.User, error) {
	query := `
		SELECT id, username, password, full_name, email,
			   phone, address, role, created_at
		FROM users
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filter != nil {
		if filter.Role != "" {
			query += fmt.Sprintf(" AND role = $%d", argCount)
			args = append(args, filter.Role)
			argCount++
		}
		if filter.SearchTerm != "" {
			query += fmt.Sprintf(" AND (username ILIKE $%d OR full_name ILIKE $%d OR email ILIKE $%d)",
				argCount, argCount, argCount)
			args = append(args, "%"+filter.SearchTerm+"%")
			argCount++
		}
	}

	query += " ORDER BY created_at DESC"

	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
