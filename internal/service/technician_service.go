package service

import (
	"context"

	"github.com/neurodesk/helpdesk-service/internal/domain"
	"github.com/neurodesk/helpdesk-service/internal/repository"
	"github.com/neurodesk/helpdesk-service/pkg/util"
)

// TechnicianService provides technician profile CRUD. Profiles link to a
// user account and carry the skill matrix the assignment oracle trains on.
type TechnicianService struct {
	technicians repository.TechnicianRepository
	users       repository.UserRepository
	skills      repository.SkillRepository
}

func NewTechnicianService(technicians repository.TechnicianRepository, users repository.UserRepository, skills repository.SkillRepository) *TechnicianService {
	return &TechnicianService{technicians: technicians, users: users, skills: skills}
}

// CreateTechnicianInput carries profile creation data.
type CreateTechnicianInput struct {
	Name               string
	UserID             int64
	Skills             []domain.TechnicianSkill
	AvailabilityStatus string
	SkillLevel         string
	Specialization     string
}

// UpdateTechnicianInput carries a partial profile update.
type UpdateTechnicianInput struct {
	Name               *string
	Skills             *[]domain.TechnicianSkill
	Workload           *int
	AvailabilityStatus *string
	SkillLevel         *string
	Specialization     *string
	IsActive           *bool
}

func (s *TechnicianService) Create(ctx context.Context, input CreateTechnicianInput) (*domain.Technician, error) {
	availability := domain.AvailabilityStatus(input.AvailabilityStatus)
	if availability == "" {
		availability = domain.AvailabilityAvailable
	}
	level := domain.SkillLevel(input.SkillLevel)
	if level == "" {
		level = domain.SkillLevelJunior
	}
	if details := s.validateProfile(ctx, availability, level, input.Skills); details != nil {
		return nil, util.NewValidationError("technician validation failed", details)
	}

	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		if util.IsNotFound(err) {
			return nil, util.NewNotFound("user", map[string]any{"user_id": input.UserID})
		}
		return nil, util.NewInternalError(err)
	}

	technician := &domain.Technician{
		Name:               input.Name,
		UserID:             input.UserID,
		Skills:             input.Skills,
		AvailabilityStatus: availability,
		SkillLevel:         level,
		Specialization:     input.Specialization,
		IsActive:           true,
	}
	if technician.Skills == nil {
		technician.Skills = []domain.TechnicianSkill{}
	}
	if err := s.technicians.Create(ctx, technician); err != nil {
		return nil, util.NewInternalError(err)
	}
	return technician, nil
}

func (s *TechnicianService) Get(ctx context.Context, id int64) (*domain.Technician, error) {
	technician, err := s.technicians.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}
	if user, err := s.users.GetByID(ctx, technician.UserID); err == nil {
		technician.User = user.Summary()
	}
	return technician, nil
}

func (s *TechnicianService) List(ctx context.Context, filter repository.TechnicianFilter) ([]domain.Technician, int64, error) {
	technicians, total, err := s.technicians.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, util.NewInternalError(err)
	}
	for i := range technicians {
		if user, err := s.users.GetByID(ctx, technicians[i].UserID); err == nil {
			technicians[i].User = user.Summary()
		}
	}
	return technicians, total, nil
}

func (s *TechnicianService) Update(ctx context.Context, id int64, input UpdateTechnicianInput) (*domain.Technician, error) {
	technician, err := s.technicians.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}

	availability := technician.AvailabilityStatus
	if input.AvailabilityStatus != nil {
		availability = domain.AvailabilityStatus(*input.AvailabilityStatus)
	}
	level := technician.SkillLevel
	if input.SkillLevel != nil {
		level = domain.SkillLevel(*input.SkillLevel)
	}
	skills := technician.Skills
	if input.Skills != nil {
		skills = *input.Skills
	}
	if details := s.validateProfile(ctx, availability, level, skills); details != nil {
		return nil, util.NewValidationError("technician validation failed", details)
	}

	technician.AvailabilityStatus = availability
	technician.SkillLevel = level
	technician.Skills = skills
	if input.Name != nil {
		technician.Name = *input.Name
	}
	if input.Workload != nil {
		technician.Workload = *input.Workload
	}
	if input.Specialization != nil {
		technician.Specialization = *input.Specialization
	}
	if input.IsActive != nil {
		technician.IsActive = *input.IsActive
	}

	if err := s.technicians.Update(ctx, technician); err != nil {
		return nil, util.NewInternalError(err)
	}
	return technician, nil
}

// Delete deactivates the profile; assigned tickets keep their technician id.
func (s *TechnicianService) Delete(ctx context.Context, id int64) error {
	return s.setActive(ctx, id, false)
}

func (s *TechnicianService) Reactivate(ctx context.Context, id int64) (*domain.Technician, error) {
	if err := s.setActive(ctx, id, true); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *TechnicianService) PermanentDelete(ctx context.Context, id int64) error {
	if err := s.technicians.Delete(ctx, id); err != nil {
		return util.MapError(err)
	}
	return nil
}

func (s *TechnicianService) setActive(ctx context.Context, id int64, active bool) error {
	technician, err := s.technicians.GetByID(ctx, id)
	if err != nil {
		return util.MapError(err)
	}
	if technician.IsActive == active {
		return nil
	}
	technician.IsActive = active
	if err := s.technicians.Update(ctx, technician); err != nil {
		return util.NewInternalError(err)
	}
	return nil
}

func (s *TechnicianService) validateProfile(ctx context.Context, availability domain.AvailabilityStatus, level domain.SkillLevel, skills []domain.TechnicianSkill) map[string]any {
	details := map[string]any{}
	if !availability.IsValid() {
		details["availability_status"] = "invalid value"
	}
	if !level.IsValid() {
		details["skill_level"] = "invalid value"
	}
	for _, skill := range skills {
		if skill.Percentage < 0 || skill.Percentage > 100 {
			details["skills"] = "percentage must be between 0 and 100"
			break
		}
		if _, err := s.skills.GetByID(ctx, skill.SkillID); err != nil {
			details["skills"] = "unknown skill id"
			break
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
