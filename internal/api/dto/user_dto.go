package dto

import (
	"time"

	"github.com/neurodesk/helpdesk-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	ContactNo  string `json:"contact_no"`
	Role       string `json:"role" validate:"omitempty,oneof=admin technician user"`
	Department string `json:"department"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UpdateUserRequest payload; absent fields stay unchanged.
type UpdateUserRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Password   *string `json:"password" validate:"omitempty,min=8,max=72"`
	ContactNo  *string `json:"contact_no"`
	Role       *string `json:"role" validate:"omitempty,oneof=admin technician user"`
	Department *string `json:"department"`
	IsActive   *bool   `json:"is_active"`
}

// UserResponse is the account wire shape; the password hash never leaves.
type UserResponse struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	ContactNo  string          `json:"contact_no,omitempty"`
	Role       domain.UserRole `json:"role"`
	Department string          `json:"department,omitempty"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// FromUser maps the domain model to its wire form.
func FromUser(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		ContactNo:  user.ContactNo,
		Role:       user.Role,
		Department: user.Department,
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}
