package dto

import (
	"time"

	"github.com/neurodesk/helpdesk-service/internal/domain"
)

// CreateTechnicianRequest payload.
type CreateTechnicianRequest struct {
	Name               string                   `json:"name" validate:"required,min=2,max=255"`
	UserID             int64                    `json:"user_id" validate:"required,gt=0"`
	Skills             []domain.TechnicianSkill `json:"skills" validate:"omitempty,dive"`
	AvailabilityStatus string                   `json:"availability_status" validate:"omitempty,oneof=available busy in_meeting on_break end_of_shift focus_mode"`
	SkillLevel         string                   `json:"skill_level" validate:"omitempty,oneof=junior mid senior expert"`
	Specialization     string                   `json:"specialization"`
}

// UpdateTechnicianRequest payload; absent fields stay unchanged.
type UpdateTechnicianRequest struct {
	Name               *string                   `json:"name" validate:"omitempty,min=2,max=255"`
	Skills             *[]domain.TechnicianSkill `json:"skills"`
	Workload           *int                      `json:"workload" validate:"omitempty,gte=0"`
	AvailabilityStatus *string                   `json:"availability_status" validate:"omitempty,oneof=available busy in_meeting on_break end_of_shift focus_mode"`
	SkillLevel         *string                   `json:"skill_level" validate:"omitempty,oneof=junior mid senior expert"`
	Specialization     *string                   `json:"specialization"`
	IsActive           *bool                     `json:"is_active"`
}

// TechnicianResponse is the profile wire shape.
type TechnicianResponse struct {
	ID                   int64                     `json:"id"`
	Name                 string                    `json:"name"`
	UserID               int64                     `json:"user_id"`
	Skills               []domain.TechnicianSkill  `json:"skills"`
	Workload             int                       `json:"workload"`
	AvailabilityStatus   domain.AvailabilityStatus `json:"availability_status"`
	SkillLevel           domain.SkillLevel         `json:"skill_level"`
	Specialization       string                    `json:"specialization,omitempty"`
	AssignedTicketsTotal int                       `json:"assigned_tickets_total"`
	IsActive             bool                      `json:"is_active"`
	CreatedAt            time.Time                 `json:"created_at"`
	UpdatedAt            time.Time                 `json:"updated_at"`
	User                 *domain.UserSummary       `json:"user,omitempty"`
}

// FromTechnician maps the domain model to its wire form.
func FromTechnician(technician *domain.Technician) TechnicianResponse {
	resp := TechnicianResponse{
		ID:                   technician.ID,
		Name:                 technician.Name,
		UserID:               technician.UserID,
		Skills:               technician.Skills,
		Workload:             technician.Workload,
		AvailabilityStatus:   technician.AvailabilityStatus,
		SkillLevel:           technician.SkillLevel,
		Specialization:       technician.Specialization,
		AssignedTicketsTotal: technician.AssignedTicketsTotal,
		IsActive:             technician.IsActive,
		CreatedAt:            technician.CreatedAt,
		UpdatedAt:            technician.UpdatedAt,
		User:                 technician.User,
	}
	if resp.Skills == nil {
		resp.Skills = []domain.TechnicianSkill{}
	}
	return resp
}
