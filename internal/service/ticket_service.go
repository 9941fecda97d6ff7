package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neurodesk/helpdesk-service/internal/config"
	"github.com/neurodesk/helpdesk-service/internal/domain"
	"github.com/neurodesk/helpdesk-service/internal/events"
	"github.com/neurodesk/helpdesk-service/internal/oracle"
	"github.com/neurodesk/helpdesk-service/internal/repository"
	"github.com/neurodesk/helpdesk-service/pkg/util"
)

const defaultJustification = "Severity: Medium"

// ResolutionEvaluator is the slice of the oracle client the close path needs.
type ResolutionEvaluator interface {
	EvaluateResolution(ctx context.Context, req oracle.EvaluationRequest) (json.RawMessage, error)
}

// TicketService owns the ticket lifecycle: creation with conditional AI
// assignment, partial updates with derived timestamps, close/cancel/
// reactivate transitions, and the append-only audit trail. All writes to a
// ticket run under that ticket's lock so concurrent read-modify-write
// cycles cannot drop audit entries.
type TicketService struct {
	tickets    repository.TicketRepository
	directory  *DirectoryService
	assignment *AssignmentService
	evaluator  ResolutionEvaluator
	dispatcher events.Dispatcher
	cfg        config.TicketConfig
	locks      *ticketLocks
	logger     *zap.Logger
}

func NewTicketService(
	tickets repository.TicketRepository,
	directory *DirectoryService,
	assignment *AssignmentService,
	evaluator ResolutionEvaluator,
	dispatcher events.Dispatcher,
	cfg config.TicketConfig,
	logger *zap.Logger,
) *TicketService {
	return &TicketService{
		tickets:    tickets,
		directory:  directory,
		assignment: assignment,
		evaluator:  evaluator,
		dispatcher: dispatcher,
		cfg:        cfg,
		locks:      newTicketLocks(),
		logger:     logger,
	}
}

// CreateTicketInput carries validated creation data.
type CreateTicketInput struct {
	Subject              string
	Description          string
	Priority             string
	Impact               string
	Urgency              string
	RequesterID          int64
	AssignedTechnicianID *int64
	RequiredSkills       []int64
	Tags                 []string
	ResolutionDue        *time.Time
	Score                *float64
	Justification        *string
}

// UpdateTicketInput carries a partial update; nil fields are untouched.
type UpdateTicketInput struct {
	Subject              *string
	Description          *string
	Status               *string
	Priority             *string
	Impact               *string
	Urgency              *string
	AssignedTechnicianID *int64
	RequiredSkills       *[]int64
	Tags                 *[]string
	Tasks                *[]domain.Task
	WorkLogs             *[]domain.WorkLog
	ResolutionDue        *time.Time
	SLAViolated          *bool
	SatisfactionRating   *int
	Score                *float64
	Justification        *string
	Feedback             *string
}

// CloseTicketInput is the constrained update accepted on close.
type CloseTicketInput struct {
	Feedback           *string
	SatisfactionRating *int
	ResolutionNotes    *string
}

// CloseResult couples the closed ticket with the evaluation engine's raw
// verdict, when one was obtainable.
type CloseResult struct {
	Ticket     *domain.Ticket
	Evaluation json.RawMessage
}

// Create builds the ticket with its seed audit entry, persists it, and, when
// no technician was supplied and the oracle is configured, consults the
// assignment resolver before returning. Oracle trouble never fails the
// request: it is folded into the audit trail instead.
func (s *TicketService) Create(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	ticket, err := s.buildTicket(input)
	if err != nil {
		return nil, err
	}

	exists, err := s.directory.UserExists(ctx, input.RequesterID)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	if !exists {
		return nil, util.NewNotFound("requester", map[string]any{"requester_id": input.RequesterID})
	}
	if input.AssignedTechnicianID != nil {
		exists, err := s.directory.TechnicianExists(ctx, *input.AssignedTechnicianID)
		if err != nil {
			return nil, util.NewInternalError(err)
		}
		if !exists {
			return nil, util.NewNotFound("technician", map[string]any{"technician_id": *input.AssignedTechnicianID})
		}
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, util.NewInternalError(err)
	}

	s.publish(ctx, events.EventTicketCreated, ticket.ID, &input.RequesterID, events.TicketCreatedPayload{
		Subject:     ticket.Subject,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		RequesterID: ticket.RequesterID,
	})

	if input.AssignedTechnicianID == nil && s.assignment.Enabled() {
		s.resolveAssignment(ctx, ticket)
	}

	s.hydrate(ctx, ticket)
	return ticket, nil
}

func (s *TicketService) buildTicket(input CreateTicketInput) (*domain.Ticket, error) {
	if details := validateCreate(input); len(details) > 0 {
		return nil, util.NewValidationError("ticket validation failed", details)
	}

	status := domain.TicketStatusNew
	if input.AssignedTechnicianID != nil {
		status = domain.TicketStatusAssigned
	}

	justification := input.Justification
	if justification == nil {
		j := defaultJustification
		justification = &j
	}

	requester := input.RequesterID
	seed := domain.NewAuditEntry(domain.AuditActionCreated, &requester, "Ticket created", nil)

	return &domain.Ticket{
		Subject:              input.Subject,
		Description:          input.Description,
		Status:               status,
		Priority:             domain.TicketPriority(input.Priority),
		Impact:               domain.TicketImpact(input.Impact),
		Urgency:              domain.TicketUrgency(input.Urgency),
		RequesterID:          input.RequesterID,
		AssignedTechnicianID: input.AssignedTechnicianID,
		RequiredSkills:       input.RequiredSkills,
		Tags:                 input.Tags,
		Tasks:                []domain.Task{},
		WorkLogs:             []domain.WorkLog{},
		AuditTrail:           []domain.AuditEntry{seed},
		ResolutionDue:        input.ResolutionDue,
		Score:                input.Score,
		Justification:        justification,
	}, nil
}

// resolveAssignment runs the oracle consultation as a follow-up
// read-modify-write on the freshly created row, under the ticket lock so a
// racing manual update cannot lose either side's audit append.
func (s *TicketService) resolveAssignment(ctx context.Context, ticket *domain.Ticket) {
	s.locks.Lock(ticket.ID)
	defer s.locks.Unlock(ticket.ID)

	entry, assigned := s.assignment.Resolve(ctx, ticket)
	ticket.AuditTrail = domain.AppendAudit(ticket.AuditTrail, entry)

	if err := s.tickets.Update(ctx, ticket); err != nil {
		// The ticket itself was created; losing the oracle follow-up is
		// logged rather than failing the request.
		s.logger.Error("persisting assignment outcome failed",
			zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		return
	}

	if assigned && ticket.AssignedTechnicianID != nil {
		payload := events.TicketAssignedPayload{
			TechnicianID: *ticket.AssignedTechnicianID,
			Source:       "ai",
		}
		if ticket.Justification != nil {
			payload.Justification = *ticket.Justification
		}
		s.publish(ctx, events.EventTicketAssigned, ticket.ID, nil, payload)
	}
}

// Update applies a partial update, derives resolved_at/closed_at on first
// transition into those states, and appends one "updated" audit entry
// listing the changed field names.
func (s *TicketService) Update(ctx context.Context, id int64, actor *int64, input UpdateTicketInput) (*domain.Ticket, error) {
	if details := validateUpdate(input); len(details) > 0 {
		return nil, util.NewValidationError("ticket validation failed", details)
	}

	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}

	if input.AssignedTechnicianID != nil && !sameTechnician(ticket.AssignedTechnicianID, input.AssignedTechnicianID) {
		exists, err := s.directory.TechnicianExists(ctx, *input.AssignedTechnicianID)
		if err != nil {
			return nil, util.NewInternalError(err)
		}
		if !exists {
			return nil, util.NewNotFound("technician", map[string]any{"technician_id": *input.AssignedTechnicianID})
		}
	}

	changed := applyUpdate(ticket, input)
	entry := domain.NewAuditEntry(domain.AuditActionUpdated, actor, "Ticket updated", map[string]any{
		"changes": changed,
	})
	ticket.AuditTrail = domain.AppendAudit(ticket.AuditTrail, entry)

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, util.NewInternalError(err)
	}

	s.publish(ctx, events.EventTicketUpdated, ticket.ID, actor, events.TicketUpdatedPayload{
		ChangedFields: changed,
		NewStatus:     ticket.Status,
	})

	s.hydrate(ctx, ticket)
	return ticket, nil
}

// Close forces status to closed, merges the optional feedback fields, and
// asks the evaluation engine for a resolution-quality verdict. Evaluation
// trouble never fails the close; the verdict is simply absent.
func (s *TicketService) Close(ctx context.Context, id int64, actor *int64, input CloseTicketInput) (*CloseResult, error) {
	if input.SatisfactionRating != nil && (*input.SatisfactionRating < 1 || *input.SatisfactionRating > 5) {
		return nil, util.NewValidationError("ticket validation failed", map[string]any{
			"satisfaction_rating": "must be between 1 and 5",
		})
	}

	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}

	changed := []string{"status"}
	if ticket.Status != domain.TicketStatusClosed {
		now := time.Now().UTC()
		ticket.ClosedAt = &now
	}
	ticket.Status = domain.TicketStatusClosed
	if input.Feedback != nil {
		ticket.Feedback = input.Feedback
		changed = append(changed, "feedback")
	}
	if input.SatisfactionRating != nil {
		ticket.SatisfactionRating = input.SatisfactionRating
		changed = append(changed, "satisfaction_rating")
	}
	if input.ResolutionNotes != nil && *input.ResolutionNotes != "" {
		log := domain.WorkLog{
			Timestamp: time.Now().UTC(),
			Notes:     *input.ResolutionNotes,
		}
		if ticket.AssignedTechnicianID != nil {
			log.TechnicianID = *ticket.AssignedTechnicianID
		}
		ticket.WorkLogs = append(ticket.WorkLogs, log)
		changed = append(changed, "work_logs")
	}

	entry := domain.NewAuditEntry(domain.AuditActionUpdated, actor, "Ticket closed", map[string]any{
		"changes": changed,
	})
	ticket.AuditTrail = domain.AppendAudit(ticket.AuditTrail, entry)

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, util.NewInternalError(err)
	}

	s.publish(ctx, events.EventTicketClosed, ticket.ID, actor, events.TicketClosedPayload{
		SatisfactionRating: ticket.SatisfactionRating,
	})

	s.hydrate(ctx, ticket)
	return &CloseResult{Ticket: ticket, Evaluation: s.evaluate(ctx, ticket)}, nil
}

// Cancel soft-deletes: the row stays, status becomes cancelled.
func (s *TicketService) Cancel(ctx context.Context, id int64, actor *int64) (*domain.Ticket, error) {
	return s.transition(ctx, id, actor, domain.TicketStatusCancelled,
		domain.AuditActionCancelled, "Ticket cancelled", events.EventTicketCancelled)
}

// Reactivate resets a ticket to new. By default any source status is
// accepted; with TICKET_REACTIVATE_ANY_STATUS=false only cancelled tickets
// may be reactivated.
func (s *TicketService) Reactivate(ctx context.Context, id int64, actor *int64) (*domain.Ticket, error) {
	if !s.cfg.ReactivateAnyStatus {
		s.locks.Lock(id)
		current, err := s.tickets.GetByID(ctx, id)
		s.locks.Unlock(id)
		if err != nil {
			return nil, util.MapError(err)
		}
		if current.Status != domain.TicketStatusCancelled {
			return nil, util.NewConflict("only cancelled tickets can be reactivated", map[string]any{
				"status": current.Status,
			})
		}
	}
	return s.transition(ctx, id, actor, domain.TicketStatusNew,
		domain.AuditActionReactivated, "Ticket reactivated", events.EventTicketReactivated)
}

// PermanentDelete removes the row and its embedded history entirely.
func (s *TicketService) PermanentDelete(ctx context.Context, id int64) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		return util.MapError(err)
	}
	return nil
}

// Get returns the ticket joined with requester and technician summaries.
func (s *TicketService) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}
	s.hydrate(ctx, ticket)
	return ticket, nil
}

// List returns a filtered page of tickets plus the unpaged total.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, int64, error) {
	tickets, total, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, util.NewInternalError(err)
	}
	for i := range tickets {
		s.hydrate(ctx, &tickets[i])
	}
	return tickets, total, nil
}

func (s *TicketService) transition(ctx context.Context, id int64, actor *int64, status domain.TicketStatus, action, details string, eventType events.EventType) (*domain.Ticket, error) {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}

	applyStatus(ticket, status)
	entry := domain.NewAuditEntry(action, actor, details, nil)
	ticket.AuditTrail = domain.AppendAudit(ticket.AuditTrail, entry)

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, util.NewInternalError(err)
	}

	s.publish(ctx, eventType, ticket.ID, actor, events.TicketUpdatedPayload{
		ChangedFields: []string{"status"},
		NewStatus:     ticket.Status,
	})

	s.hydrate(ctx, ticket)
	return ticket, nil
}

// evaluate calls the evaluation engine fail-open.
func (s *TicketService) evaluate(ctx context.Context, ticket *domain.Ticket) json.RawMessage {
	if s.evaluator == nil {
		return nil
	}
	req := oracle.EvaluationRequest{Ticket: map[string]any{
		"id":          ticket.ID,
		"subject":     ticket.Subject,
		"description": ticket.Description,
		"status":      ticket.Status,
		"priority":    ticket.Priority,
		"work_logs":   ticket.WorkLogs,
		"feedback":    ticket.Feedback,
	}}
	result, err := s.evaluator.EvaluateResolution(ctx, req)
	if err != nil {
		s.logger.Warn("resolution evaluation unavailable",
			zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		return nil
	}
	return result
}

func (s *TicketService) hydrate(ctx context.Context, ticket *domain.Ticket) {
	if requester, err := s.directory.GetUserSummary(ctx, ticket.RequesterID); err == nil {
		ticket.Requester = requester
	}
	if ticket.AssignedTechnicianID != nil {
		if technician, err := s.directory.GetTechnicianSummary(ctx, *ticket.AssignedTechnicianID); err == nil {
			ticket.AssignedTechnician = technician
		}
	}
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticketID int64, userID *int64, payload any) {
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

// applyStatus sets the status and derives resolved_at/closed_at exactly
// once per transition into the respective state.
func applyStatus(ticket *domain.Ticket, status domain.TicketStatus) {
	if status == domain.TicketStatusResolved && ticket.Status != domain.TicketStatusResolved {
		now := time.Now().UTC()
		ticket.ResolvedAt = &now
	}
	if status == domain.TicketStatusClosed && ticket.Status != domain.TicketStatusClosed {
		now := time.Now().UTC()
		ticket.ClosedAt = &now
	}
	ticket.Status = status
}

func applyUpdate(ticket *domain.Ticket, input UpdateTicketInput) []string {
	changed := make([]string, 0, 8)
	if input.Subject != nil {
		ticket.Subject = *input.Subject
		changed = append(changed, "subject")
	}
	if input.Description != nil {
		ticket.Description = *input.Description
		changed = append(changed, "description")
	}
	if input.Status != nil {
		applyStatus(ticket, domain.TicketStatus(*input.Status))
		changed = append(changed, "status")
	}
	if input.Priority != nil {
		ticket.Priority = domain.TicketPriority(*input.Priority)
		changed = append(changed, "priority")
	}
	if input.Impact != nil {
		ticket.Impact = domain.TicketImpact(*input.Impact)
		changed = append(changed, "impact")
	}
	if input.Urgency != nil {
		ticket.Urgency = domain.TicketUrgency(*input.Urgency)
		changed = append(changed, "urgency")
	}
	if input.AssignedTechnicianID != nil {
		if !sameTechnician(ticket.AssignedTechnicianID, input.AssignedTechnicianID) {
			changed = append(changed, "assigned_technician_id")
		}
		ticket.AssignedTechnicianID = input.AssignedTechnicianID
	}
	if input.RequiredSkills != nil {
		ticket.RequiredSkills = *input.RequiredSkills
		changed = append(changed, "required_skills")
	}
	if input.Tags != nil {
		ticket.Tags = *input.Tags
		changed = append(changed, "tags")
	}
	if input.Tasks != nil {
		ticket.Tasks = *input.Tasks
		changed = append(changed, "tasks")
	}
	if input.WorkLogs != nil {
		ticket.WorkLogs = *input.WorkLogs
		changed = append(changed, "work_logs")
	}
	if input.ResolutionDue != nil {
		ticket.ResolutionDue = input.ResolutionDue
		changed = append(changed, "resolution_due")
	}
	if input.SLAViolated != nil {
		ticket.SLAViolated = *input.SLAViolated
		changed = append(changed, "sla_violated")
	}
	if input.SatisfactionRating != nil {
		ticket.SatisfactionRating = input.SatisfactionRating
		changed = append(changed, "satisfaction_rating")
	}
	if input.Score != nil {
		ticket.Score = input.Score
		changed = append(changed, "score")
	}
	if input.Justification != nil {
		ticket.Justification = input.Justification
		changed = append(changed, "justification")
	}
	if input.Feedback != nil {
		ticket.Feedback = input.Feedback
		changed = append(changed, "feedback")
	}
	return changed
}

func sameTechnician(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func validateCreate(input CreateTicketInput) map[string]any {
	details := map[string]any{}
	if n := len(input.Subject); n < 5 || n > 500 {
		details["subject"] = "must be between 5 and 500 characters"
	}
	if len(input.Description) < 10 {
		details["description"] = "must be at least 10 characters"
	}
	if input.RequesterID <= 0 {
		details["requester_id"] = "is required"
	}
	if !domain.TicketPriority(input.Priority).IsValid() {
		details["priority"] = "invalid value"
	}
	if !domain.TicketImpact(input.Impact).IsValid() {
		details["impact"] = "invalid value"
	}
	if !domain.TicketUrgency(input.Urgency).IsValid() {
		details["urgency"] = "invalid value"
	}
	for _, id := range input.RequiredSkills {
		if id <= 0 {
			details["required_skills"] = "must contain positive skill ids"
			break
		}
	}
	if input.Score != nil && (*input.Score < 0 || *input.Score > 10) {
		details["score"] = "must be between 0.0 and 10.0"
	}
	if input.Justification != nil && len(*input.Justification) > 1000 {
		details["justification"] = "must be at most 1000 characters"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func validateUpdate(input UpdateTicketInput) map[string]any {
	details := map[string]any{}
	if input.Subject != nil {
		if n := len(*input.Subject); n < 5 || n > 500 {
			details["subject"] = "must be between 5 and 500 characters"
		}
	}
	if input.Description != nil && len(*input.Description) < 10 {
		details["description"] = "must be at least 10 characters"
	}
	if input.Status != nil && !domain.TicketStatus(*input.Status).IsValid() {
		details["status"] = "invalid value"
	}
	if input.Priority != nil && !domain.TicketPriority(*input.Priority).IsValid() {
		details["priority"] = "invalid value"
	}
	if input.Impact != nil && !domain.TicketImpact(*input.Impact).IsValid() {
		details["impact"] = "invalid value"
	}
	if input.Urgency != nil && !domain.TicketUrgency(*input.Urgency).IsValid() {
		details["urgency"] = "invalid value"
	}
	if input.SatisfactionRating != nil && (*input.SatisfactionRating < 1 || *input.SatisfactionRating > 5) {
		details["satisfaction_rating"] = "must be between 1 and 5"
	}
	if input.Score != nil && (*input.Score < 0 || *input.Score > 10) {
		details["score"] = "must be between 0.0 and 10.0"
	}
	if input.Justification != nil && len(*input.Justification) > 1000 {
		details["justification"] = "must be at most 1000 characters"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
