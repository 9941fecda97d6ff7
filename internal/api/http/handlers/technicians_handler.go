package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/neurodesk/helpdesk-service/internal/api/dto"
	"github.com/neurodesk/helpdesk-service/internal/domain"
	"github.com/neurodesk/helpdesk-service/internal/repository"
	"github.com/neurodesk/helpdesk-service/internal/service"
	"github.com/neurodesk/helpdesk-service/pkg/util"
)

// TechniciansHandler manages technician profile endpoints.
type TechniciansHandler struct {
	service *service.TechnicianService
}

// NewTechniciansHandler constructs handler.
func NewTechniciansHandler(technicianService *service.TechnicianService) *TechniciansHandler {
	return &TechniciansHandler{service: technicianService}
}

// Create POST /technicians.
func (h *TechniciansHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	technician, err := h.service.Create(c.UserContext(), service.CreateTechnicianInput{
		Name:               req.Name,
		UserID:             req.UserID,
		Skills:             req.Skills,
		AvailabilityStatus: req.AvailabilityStatus,
		SkillLevel:         req.SkillLevel,
		Specialization:     req.Specialization,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromTechnician(technician)})
}

// List GET /technicians.
func (h *TechniciansHandler) List(c *fiber.Ctx) error {
	filter, page, pageSize := parseTechnicianQuery(c)
	technicians, total, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TechnicianResponse, 0, len(technicians))
	for i := range technicians {
		items = append(items, dto.FromTechnician(&technicians[i]))
	}
	return c.JSON(fiber.Map{
		"data":       items,
		"pagination": dto.NewPagination(page, pageSize, total),
	})
}

// Get GET /technicians/:id.
func (h *TechniciansHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	technician, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTechnician(technician)})
}

// Update PUT /technicians/:id.
func (h *TechniciansHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	technician, err := h.service.Update(c.UserContext(), id, service.UpdateTechnicianInput{
		Name:               req.Name,
		Skills:             req.Skills,
		Workload:           req.Workload,
		AvailabilityStatus: req.AvailabilityStatus,
		SkillLevel:         req.SkillLevel,
		Specialization:     req.Specialization,
		IsActive:           req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTechnician(technician)})
}

// Delete DELETE /technicians/:id. Deactivates the profile.
func (h *TechniciansHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Reactivate PATCH /technicians/:id/reactivate.
func (h *TechniciansHandler) Reactivate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	technician, err := h.service.Reactivate(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTechnician(technician)})
}

// PermanentDelete DELETE /technicians/:id/permanent.
func (h *TechniciansHandler) PermanentDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.PermanentDelete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseTechnicianQuery(c *fiber.Ctx) (repository.TechnicianFilter, int, int) {
	filter := repository.TechnicianFilter{}
	if v := c.Query("name"); v != "" {
		filter.Name = &v
	}
	if v := c.Query("user_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.UserID = &id
		}
	}
	for _, part := range splitCSV(c.Query("availability_status")) {
		filter.AvailabilityStatuses = append(filter.AvailabilityStatuses, domain.AvailabilityStatus(part))
	}
	for _, part := range splitCSV(c.Query("skill_level")) {
		filter.SkillLevels = append(filter.SkillLevels, domain.SkillLevel(part))
	}
	if v := c.Query("specialization"); v != "" {
		filter.Specialization = &v
	}
	filter.WorkloadMin = parseIntPtr(c.Query("workload_min"))
	filter.WorkloadMax = parseIntPtr(c.Query("workload_max"))
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
