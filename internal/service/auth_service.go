package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/neurodesk/helpdesk-service/internal/auth"
	"github.com/neurodesk/helpdesk-service/internal/domain"
	"github.com/neurodesk/helpdesk-service/internal/repository"
	"github.com/neurodesk/helpdesk-service/pkg/util"
)

// AuthService handles registration and login.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, bcryptCost int, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// RegisterInput carries signup data.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	ContactNo  string
	Role       string
	Department string
}

// Session is the issued credential pair.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Register creates an account. Emails are unique; the role defaults to the
// plain user role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	role := domain.UserRole(input.Role)
	if role == "" {
		role = domain.UserRoleUser
	}
	if !role.IsValid() {
		return nil, util.NewValidationError("user validation failed", map[string]any{"role": "invalid value"})
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, util.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != nil && !util.IsNotFound(err) {
		return nil, util.NewInternalError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        email,
		PasswordHash: hash,
		ContactNo:    input.ContactNo,
		Role:         role,
		Department:   input.Department,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, util.NewInternalError(err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Login verifies credentials and issues a signed token. Credential failures
// are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if util.IsNotFound(err) {
			return nil, util.NewUnauthorized("invalid credentials")
		}
		return nil, util.NewInternalError(err)
	}
	if !user.IsActive {
		return nil, util.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, util.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
