package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/neurodesk/helpdesk-service/internal/domain"
	"github.com/neurodesk/helpdesk-service/internal/observability"
	"github.com/neurodesk/helpdesk-service/internal/oracle"
)

// AssignmentOracle is the slice of the oracle client the resolver needs.
type AssignmentOracle interface {
	Enabled() bool
	AssignTechnician(ctx context.Context, req oracle.AssignmentRequest) (oracle.Outcome, error)
}

// AssignmentService resolves an oracle consultation into exactly one audit
// entry and, when the response is usable, an assignment on the ticket. It
// never returns an error: oracle trouble becomes an audit record, not a
// failure of the surrounding request.
type AssignmentService struct {
	oracle    AssignmentOracle
	directory *DirectoryService
	metrics   *observability.Metrics
	logger    *zap.Logger
}

func NewAssignmentService(client AssignmentOracle, directory *DirectoryService, metrics *observability.Metrics, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{
		oracle:    client,
		directory: directory,
		metrics:   metrics,
		logger:    logger,
	}
}

// Enabled reports whether the resolver has an endpoint to consult.
func (s *AssignmentService) Enabled() bool {
	return s.oracle != nil && s.oracle.Enabled()
}

// Resolve consults the oracle for the given ticket and returns the single
// audit entry describing the outcome. When the outcome is a validated
// assignment the ticket's technician, status and justification are set and
// assigned is true; the caller persists.
func (s *AssignmentService) Resolve(ctx context.Context, ticket *domain.Ticket) (entry domain.AuditEntry, assigned bool) {
	req := oracle.AssignmentRequest{Ticket: oracle.TicketPayload{
		Subject:         ticket.Subject,
		Description:     ticket.Description,
		RequesterID:     ticket.RequesterID,
		Priority:        string(ticket.Priority),
		Impact:          string(ticket.Impact),
		Urgency:         string(ticket.Urgency),
		ComplexityLevel: complexityFor(ticket),
		Tags:            ticket.Tags,
	}}

	outcome, err := s.oracle.AssignTechnician(ctx, req)
	if err != nil {
		s.logger.Warn("assignment oracle unreachable",
			zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		s.metrics.RecordOracleOutcome(domain.AuditActionAIAssignmentFailed)
		return domain.NewAuditEntry(domain.AuditActionAIAssignmentFailed, nil,
			"AI assignment failed", map[string]any{"error": err.Error()}), false
	}

	switch outcome.Kind {
	case oracle.OutcomeAssigned:
		return s.resolveAssigned(ctx, ticket, outcome)
	case oracle.OutcomeExplicitFailure, oracle.OutcomeNoUsableID:
		s.metrics.RecordOracleOutcome(domain.AuditActionAINoAssignment)
		return domain.NewAuditEntry(domain.AuditActionAINoAssignment, nil,
			"AI could not determine an assignment", map[string]any{
				"response": rawExtra(outcome.Raw),
			}), false
	default:
		s.metrics.RecordOracleOutcome(domain.AuditActionAINoAssignment)
		return domain.NewAuditEntry(domain.AuditActionAINoAssignment, nil,
			"AI could not determine an assignment", nil), false
	}
}

func (s *AssignmentService) resolveAssigned(ctx context.Context, ticket *domain.Ticket, outcome oracle.Outcome) (domain.AuditEntry, bool) {
	exists, err := s.directory.TechnicianExists(ctx, outcome.TechnicianID)
	if err != nil {
		s.logger.Warn("technician lookup failed during assignment",
			zap.Int64("ticket_id", ticket.ID),
			zap.Int64("technician_id", outcome.TechnicianID), zap.Error(err))
		s.metrics.RecordOracleOutcome(domain.AuditActionAIAssignmentFailed)
		return domain.NewAuditEntry(domain.AuditActionAIAssignmentFailed, nil,
			"AI assignment failed", map[string]any{
				"technician_id": outcome.TechnicianID,
				"error":         err.Error(),
			}), false
	}
	if !exists {
		s.logger.Warn("oracle proposed unknown technician",
			zap.Int64("ticket_id", ticket.ID),
			zap.Int64("technician_id", outcome.TechnicianID))
		s.metrics.RecordOracleOutcome(domain.AuditActionAIAssignmentFailed)
		return domain.NewAuditEntry(domain.AuditActionAIAssignmentFailed, nil,
			"AI proposed a technician that does not exist", map[string]any{
				"technician_id": outcome.TechnicianID,
				"response":      rawExtra(outcome.Raw),
			}), false
	}

	id := outcome.TechnicianID
	ticket.AssignedTechnicianID = &id
	ticket.Status = domain.TicketStatusAssigned
	if outcome.Justification != "" {
		justification := outcome.Justification
		ticket.Justification = &justification
	}

	extra := map[string]any{"technician_id": id}
	if outcome.Justification != "" {
		extra["justification"] = outcome.Justification
	}
	s.metrics.RecordOracleOutcome(domain.AuditActionAIAssigned)
	return domain.NewAuditEntry(domain.AuditActionAIAssigned, nil,
		"AI assigned technician", extra), true
}

// rawExtra preserves the oracle body inside an audit entry. Bodies that are
// valid JSON embed structurally; anything else is kept as a string.
func rawExtra(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

// complexityFor maps priority and impact onto the coarse complexity label
// the oracle's model was trained with.
func complexityFor(ticket *domain.Ticket) string {
	if ticket.Priority == domain.TicketPriorityCritical || ticket.Impact == domain.TicketImpactCritical {
		return "high"
	}
	if ticket.Priority == domain.TicketPriorityHigh || ticket.Impact == domain.TicketImpactHigh {
		return "medium"
	}
	return "low"
}
