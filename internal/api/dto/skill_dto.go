package dto

import (
	"time"

	"github.com/neurodesk/helpdesk-service/internal/domain"
)

// CreateSkillRequest payload.
type CreateSkillRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description"`
}

// UpdateSkillRequest payload; absent fields stay unchanged.
type UpdateSkillRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// SkillResponse is the catalog entry wire shape.
type SkillResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FromSkill maps the domain model to its wire form.
func FromSkill(skill *domain.Skill) SkillResponse {
	return SkillResponse{
		ID:          skill.ID,
		Name:        skill.Name,
		Description: skill.Description,
		IsActive:    skill.IsActive,
		CreatedAt:   skill.CreatedAt,
		UpdatedAt:   skill.UpdatedAt,
	}
}
