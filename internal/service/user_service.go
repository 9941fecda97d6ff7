package service

import (
	"context"
	"strings"

	"github.com/neurodesk/helpdesk-service/internal/auth"
	"github.com/neurodesk/helpdesk-service/internal/domain"
	"github.com/neurodesk/helpdesk-service/internal/repository"
	"github.com/neurodesk/helpdesk-service/pkg/util"
)

// UserService provides account CRUD for administration.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

func NewUserService(users repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// UpdateUserInput carries a partial account update; nil fields are untouched.
type UpdateUserInput struct {
	Name       *string
	Email      *string
	Password   *string
	ContactNo  *string
	Role       *string
	Department *string
	IsActive   *bool
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, int64, error) {
	users, total, err := s.users.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, util.NewInternalError(err)
	}
	return users, total, nil
}

func (s *UserService) Update(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != user.Email {
			if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
				return nil, util.NewConflict("email already registered", map[string]any{"email": email})
			} else if err != nil && !util.IsNotFound(err) {
				return nil, util.NewInternalError(err)
			}
			user.Email = email
		}
	}
	if input.Role != nil {
		role := domain.UserRole(*input.Role)
		if !role.IsValid() {
			return nil, util.NewValidationError("user validation failed", map[string]any{"role": "invalid value"})
		}
		user.Role = role
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, util.NewInternalError(err)
		}
		user.PasswordHash = hash
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.ContactNo != nil {
		user.ContactNo = *input.ContactNo
	}
	if input.Department != nil {
		user.Department = *input.Department
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, util.NewInternalError(err)
	}
	return user, nil
}

// Delete deactivates the account; the row survives for audit attribution.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.setActive(ctx, id, false)
}

// Reactivate restores a previously deactivated account.
func (s *UserService) Reactivate(ctx context.Context, id int64) (*domain.User, error) {
	if err := s.setActive(ctx, id, true); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// PermanentDelete removes the account row entirely.
func (s *UserService) PermanentDelete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return util.MapError(err)
	}
	return nil
}

func (s *UserService) setActive(ctx context.Context, id int64, active bool) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return util.MapError(err)
	}
	if user.IsActive == active {
		return nil
	}
	user.IsActive = active
	if err := s.users.Update(ctx, user); err != nil {
		return util.NewInternalError(err)
	}
	return nil
}
