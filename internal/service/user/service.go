package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/dentika/clinic-api/internal/email"
	"github.com/dentika/clinic-api/internal/model"
	"github.com/dentika/clinic-api/internal/repository"
	"github.com/dentika/clinic-api/internal/service/event"
	apperrors "github.com/dentika/clinic-api/pkg/errors"
	"github.com/dentika/clinic-api/pkg/logger"
	"github.com/dentika/clinic-api/pkg/security"
)

type UserServicer interface {
	CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	UpdateUser(ctx context.Context, id int64, req *model.CreateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context, filter *model.UserFilter) ([]*model.User, error)
}

type Service struct {
	repo     repository.UserRepository
	events   event.Emitter
	emailSvc email.Service
	hasher   security.PasswordHasher
	logger   *logger.Logger
}

func NewService(repo repository.UserRepository, events event.Emitter, emailSvc email.Service, hasher security.PasswordHasher, logger *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		events:   events,
		emailSvc: emailSvc,
		hasher:   hasher,
		logger:   logger,
	}
}

// CreateUser stores a new account. The password is hashed before it
// ever reaches the repository; role defaults to patient when omitted.
func (s *Service) CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	hashed, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	// Fast-path duplicate check; the unique index catches races.
	if existing, err := s.repo.GetByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, apperrors.NewConflict("username is already taken", nil)
	}

	role := model.RolePatient
	if req.Role != nil {
		role = *req.Role
	}

	user := &model.User{
		Username: req.Username,
		Password: hashed,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.emit(ctx, model.EventUserCreated, user)

	if err := s.emailSvc.SendWelcome(ctx, user.Email, user.FullName); err != nil {
		s.logger.Warn("welcome email not sent", "user_id", user.ID, "error", err.Error())
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateUser replaces every client-writable column. The password is
// part of the write shape and is re-hashed on every update; an omitted
// role keeps the stored one rather than falling back to the creation
// default.
func (s *Service) UpdateUser(ctx context.Context, id int64, req *model.CreateUserRequest) (*model.User, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	hashed, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := existing.Role
	if req.Role != nil {
		role = *req.Role
	}

	user := &model.User{
		ID:        id,
		Username:  req.Username,
		Password:  hashed,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Role:      role,
		CreatedAt: existing.CreatedAt,
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.emit(ctx, model.EventUserUpdated, user)
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.emit(ctx, model.EventUserDeleted, user)
	return nil
}

func (s *Service) ListUsers(ctx context.Context, filter *model.UserFilter) ([]*model.User, error) {
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return "", apperrors.NewBadRequest(
				fmt.Sprintf("password must be at least %d characters", security.MinPasswordLen), err)
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hashed, nil
}

func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.logger.Error(err, "failed to record event", "event_type", eventType)
	}
}
