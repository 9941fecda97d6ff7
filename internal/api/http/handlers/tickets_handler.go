package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/neurodesk/helpdesk-service/internal/api/dto"
	"github.com/neurodesk/helpdesk-service/internal/auth"
	"github.com/neurodesk/helpdesk-service/internal/domain"
	"github.com/neurodesk/helpdesk-service/internal/repository"
	"github.com/neurodesk/helpdesk-service/internal/service"
	"github.com/neurodesk/helpdesk-service/pkg/util"
)

// TicketsHandler manages the ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	input := service.CreateTicketInput{
		Subject:              req.Subject,
		Description:          req.Description,
		Priority:             defaultString(req.Priority, string(domain.TicketPriorityNormal)),
		Impact:               defaultString(req.Impact, string(domain.TicketImpactMedium)),
		Urgency:              defaultString(req.Urgency, string(domain.TicketUrgencyNormal)),
		RequesterID:          req.RequesterID,
		AssignedTechnicianID: req.AssignedTechnicianID,
		RequiredSkills:       req.RequiredSkills,
		Tags:                 req.Tags,
		ResolutionDue:        req.ResolutionDue,
		Score:                req.Score,
		Justification:        req.Justification,
	}
	ticket, err := h.service.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter, page, pageSize := parseTicketQuery(c)
	tickets, total, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicket(&tickets[i]))
	}
	return c.JSON(fiber.Map{
		"data":       items,
		"pagination": dto.NewPagination(page, pageSize, total),
	})
}

// ListAll GET /tickets/all. The full set in one page, filters still apply.
func (h *TicketsHandler) ListAll(c *fiber.Ctx) error {
	filter, _, _ := parseTicketQuery(c)
	filter.Limit = allTicketsWindow
	filter.Offset = 0
	tickets, total, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicket(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items, "total": total})
}

// ListBySkills GET /tickets/by-skills?skills=1,2.
func (h *TicketsHandler) ListBySkills(c *fiber.Ctx) error {
	filter, page, pageSize := parseTicketQuery(c)
	for _, part := range splitCSV(c.Query("skills")) {
		if id, err := strconv.ParseInt(part, 10, 64); err == nil && id > 0 {
			filter.RequiredSkills = append(filter.RequiredSkills, id)
		}
	}
	if len(filter.RequiredSkills) == 0 {
		return util.NewValidationError("at least one skill id is required", nil)
	}
	return h.listFiltered(c, filter, page, pageSize)
}

// ListByUser GET /tickets/user/:userId.
func (h *TicketsHandler) ListByUser(c *fiber.Ctx) error {
	id, err := parseParamID(c, "userId")
	if err != nil {
		return err
	}
	filter, page, pageSize := parseTicketQuery(c)
	filter.RequesterID = &id
	return h.listFiltered(c, filter, page, pageSize)
}

// ListByTechnician GET /tickets/technician/:technicianId.
func (h *TicketsHandler) ListByTechnician(c *fiber.Ctx) error {
	id, err := parseParamID(c, "technicianId")
	if err != nil {
		return err
	}
	filter, page, pageSize := parseTicketQuery(c)
	filter.AssignedTechnicianID = &id
	return h.listFiltered(c, filter, page, pageSize)
}

func (h *TicketsHandler) listFiltered(c *fiber.Ctx, filter repository.TicketFilter, page, pageSize int) error {
	tickets, total, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicket(&tickets[i]))
	}
	return c.JSON(fiber.Map{
		"data":       items,
		"pagination": dto.NewPagination(page, pageSize, total),
	})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Update PUT /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	input := service.UpdateTicketInput{
		Subject:              req.Subject,
		Description:          req.Description,
		Status:               req.Status,
		Priority:             req.Priority,
		Impact:               req.Impact,
		Urgency:              req.Urgency,
		AssignedTechnicianID: req.AssignedTechnicianID,
		RequiredSkills:       req.RequiredSkills,
		Tags:                 req.Tags,
		Tasks:                req.Tasks,
		WorkLogs:             req.WorkLogs,
		ResolutionDue:        req.ResolutionDue,
		SLAViolated:          req.SLAViolated,
		SatisfactionRating:   req.SatisfactionRating,
		Score:                req.Score,
		Justification:        req.Justification,
		Feedback:             req.Feedback,
	}
	ticket, err := h.service.Update(c.UserContext(), id, auth.ActorFromContext(c), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Close PUT /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.CloseTicketRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return util.NewValidationError("invalid payload", nil)
		}
		if err := dto.Validate(req); err != nil {
			return err
		}
	}

	result, err := h.service.Close(c.UserContext(), id, auth.ActorFromContext(c), service.CloseTicketInput{
		Feedback:           req.Feedback,
		SatisfactionRating: req.SatisfactionRating,
		ResolutionNotes:    req.ResolutionNotes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CloseTicketResponse{
		Ticket:     dto.FromTicket(result.Ticket),
		Evaluation: result.Evaluation,
	}})
}

// Cancel DELETE /tickets/:id (soft delete).
func (h *TicketsHandler) Cancel(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Cancel(c.UserContext(), id, auth.ActorFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Reactivate PATCH /tickets/:id/reactivate.
func (h *TicketsHandler) Reactivate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Reactivate(c.UserContext(), id, auth.ActorFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// PermanentDelete DELETE /tickets/:id/permanent.
func (h *TicketsHandler) PermanentDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.PermanentDelete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseTicketQuery(c *fiber.Ctx) (repository.TicketFilter, int, int) {
	filter := repository.TicketFilter{}

	if v := c.Query("requester_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.RequesterID = &id
		}
	}
	if v := c.Query("assigned_technician_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.AssignedTechnicianID = &id
		}
	}
	for _, part := range splitCSV(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(part))
	}
	for _, part := range splitCSV(c.Query("priority")) {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(part))
	}
	for _, part := range splitCSV(c.Query("urgency")) {
		filter.Urgencies = append(filter.Urgencies, domain.TicketUrgency(part))
	}
	for _, part := range splitCSV(c.Query("impact")) {
		filter.Impacts = append(filter.Impacts, domain.TicketImpact(part))
	}
	for _, part := range splitCSV(c.Query("required_skills")) {
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			filter.RequiredSkills = append(filter.RequiredSkills, id)
		}
	}
	if v := c.Query("sla_violated"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.SLAViolated = &b
		}
	}
	if v := c.Query("subject"); v != "" {
		filter.Subject = &v
	}
	if v := c.Query("description"); v != "" {
		filter.Description = &v
	}
	if v := c.Query("search"); v != "" {
		filter.SearchTerm = &v
	}
	filter.EscalationCountMin = parseIntPtr(c.Query("escalation_count_min"))
	filter.EscalationCountMax = parseIntPtr(c.Query("escalation_count_max"))
	filter.SatisfactionRatingMin = parseIntPtr(c.Query("satisfaction_rating_min"))
	filter.SatisfactionRatingMax = parseIntPtr(c.Query("satisfaction_rating_max"))
	filter.CreatedFrom = parseTime(c.Query("created_from"))
	filter.CreatedTo = parseTime(c.Query("created_to"))
	filter.UpdatedFrom = parseTime(c.Query("updated_from"))
	filter.UpdatedTo = parseTime(c.Query("updated_to"))
	filter.ResolutionDueFrom = parseTime(c.Query("resolution_due_from"))
	filter.ResolutionDueTo = parseTime(c.Query("resolution_due_to"))
	filter.SortBy = c.Query("sort_by")
	filter.SortOrder = c.Query("sort_order")

	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter, page, pageSize
}

// allTicketsWindow caps the unpaginated listing endpoint.
const allTicketsWindow = 1000

func parseID(c *fiber.Ctx) (int64, error) {
	return parseParamID(c, "id")
}

func parseParamID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.NewValidationError("invalid "+name, nil)
	}
	return id, nil
}

func splitCSV(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseIntPtr(val string) *int {
	if val == "" {
		return nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return nil
	}
	return &parsed
}

func defaultString(val, def string) string {
	if val == "" {
		return def
	}
	return val
}
