package service

import (
	"context"

	"github.com/neurodesk/helpdesk-service/internal/domain"
	"github.com/neurodesk/helpdesk-service/internal/repository"
	"github.com/neurodesk/helpdesk-service/pkg/util"
)

// SkillService provides skill catalog CRUD. Names are unique.
type SkillService struct {
	skills repository.SkillRepository
}

func NewSkillService(skills repository.SkillRepository) *SkillService {
	return &SkillService{skills: skills}
}

// UpdateSkillInput carries a partial skill update.
type UpdateSkillInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

func (s *SkillService) Create(ctx context.Context, name, description string) (*domain.Skill, error) {
	if existing, err := s.skills.GetByName(ctx, name); err == nil && existing != nil {
		return nil, util.NewConflict("skill already exists", map[string]any{"name": name})
	} else if err != nil && !util.IsNotFound(err) {
		return nil, util.NewInternalError(err)
	}

	skill := &domain.Skill{Name: name, Description: description, IsActive: true}
	if err := s.skills.Create(ctx, skill); err != nil {
		return nil, util.NewInternalError(err)
	}
	return skill, nil
}

func (s *SkillService) Get(ctx context.Context, id int64) (*domain.Skill, error) {
	skill, err := s.skills.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}
	return skill, nil
}

func (s *SkillService) List(ctx context.Context, filter repository.SkillFilter) ([]domain.Skill, int64, error) {
	skills, total, err := s.skills.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, util.NewInternalError(err)
	}
	return skills, total, nil
}

func (s *SkillService) Update(ctx context.Context, id int64, input UpdateSkillInput) (*domain.Skill, error) {
	skill, err := s.skills.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}

	if input.Name != nil && *input.Name != skill.Name {
		if existing, err := s.skills.GetByName(ctx, *input.Name); err == nil && existing != nil {
			return nil, util.NewConflict("skill already exists", map[string]any{"name": *input.Name})
		} else if err != nil && !util.IsNotFound(err) {
			return nil, util.NewInternalError(err)
		}
		skill.Name = *input.Name
	}
	if input.Description != nil {
		skill.Description = *input.Description
	}
	if input.IsActive != nil {
		skill.IsActive = *input.IsActive
	}

	if err := s.skills.Update(ctx, skill); err != nil {
		return nil, util.NewInternalError(err)
	}
	return skill, nil
}

// Delete deactivates the skill so existing tickets keep a valid reference.
func (s *SkillService) Delete(ctx context.Context, id int64) error {
	return s.setActive(ctx, id, false)
}

func (s *SkillService) Reactivate(ctx context.Context, id int64) (*domain.Skill, error) {
	if err := s.setActive(ctx, id, true); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *SkillService) PermanentDelete(ctx context.Context, id int64) error {
	if err := s.skills.Delete(ctx, id); err != nil {
		return util.MapError(err)
	}
	return nil
}

func (s *SkillService) setActive(ctx context.Context, id int64, active bool) error {
	skill, err := s.skills.GetByID(ctx, id)
	if err != nil {
		return util.MapError(err)
	}
	if skill.IsActive == active {
		return nil
	}
	skill.IsActive = active
	if err := s.skills.Update(ctx, skill); err != nil {
		return util.NewInternalError(err)
	}
	return nil
}
