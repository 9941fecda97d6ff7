package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/neurodesk/helpdesk-service/internal/api/dto"
	"github.com/neurodesk/helpdesk-service/internal/repository"
	"github.com/neurodesk/helpdesk-service/internal/service"
	"github.com/neurodesk/helpdesk-service/pkg/util"
)

// SkillsHandler manages skill catalog endpoints.
type SkillsHandler struct {
	service *service.SkillService
}

// NewSkillsHandler constructs handler.
func NewSkillsHandler(skillService *service.SkillService) *SkillsHandler {
	return &SkillsHandler{service: skillService}
}

// Create POST /skills.
func (h *SkillsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSkillRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	skill, err := h.service.Create(c.UserContext(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromSkill(skill)})
}

// List GET /skills.
func (h *SkillsHandler) List(c *fiber.Ctx) error {
	filter, page, pageSize := parseSkillQuery(c)
	skills, total, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.SkillResponse, 0, len(skills))
	for i := range skills {
		items = append(items, dto.FromSkill(&skills[i]))
	}
	return c.JSON(fiber.Map{
		"data":       items,
		"pagination": dto.NewPagination(page, pageSize, total),
	})
}

// Get GET /skills/:id.
func (h *SkillsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	skill, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSkill(skill)})
}

// Update PUT /skills/:id.
func (h *SkillsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateSkillRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	skill, err := h.service.Update(c.UserContext(), id, service.UpdateSkillInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSkill(skill)})
}

// Delete DELETE /skills/:id. Deactivates the skill.
func (h *SkillsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Reactivate PATCH /skills/:id/reactivate.
func (h *SkillsHandler) Reactivate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	skill, err := h.service.Reactivate(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSkill(skill)})
}

// PermanentDelete DELETE /skills/:id/permanent.
func (h *SkillsHandler) PermanentDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.PermanentDelete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseSkillQuery(c *fiber.Ctx) (repository.SkillFilter, int, int) {
	filter := repository.SkillFilter{}
	if v := c.Query("name"); v != "" {
		filter.Name = &v
	}
	if v := c.Query("description"); v != "" {
		filter.Description = &v
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}
	filter.SortBy = c.Query("sort_by")
	filter.SortOrder = c.Query("sort_order")

	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter, page, pageSize
}
