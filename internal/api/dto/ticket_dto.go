package dto

import (
	"encoding/json"
	"time"

	"github.com/neurodesk/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject              string     `json:"subject" validate:"required,min=5,max=500"`
	Description          string     `json:"description" validate:"required,min=10"`
	Priority             string     `json:"priority" validate:"omitempty,oneof=low normal high critical"`
	Impact               string     `json:"impact" validate:"omitempty,oneof=low medium high critical"`
	Urgency              string     `json:"urgency" validate:"omitempty,oneof=low normal high critical"`
	RequesterID          int64      `json:"requester_id" validate:"required,gt=0"`
	AssignedTechnicianID *int64     `json:"assigned_technician_id" validate:"omitempty,gt=0"`
	RequiredSkills       []int64    `json:"required_skills" validate:"omitempty,dive,gt=0"`
	Tags                 []string   `json:"tags"`
	ResolutionDue        *time.Time `json:"resolution_due"`
	Score                *float64   `json:"score" validate:"omitempty,gte=0,lte=10"`
	Justification        *string    `json:"justification" validate:"omitempty,max=1000"`
}

// UpdateTicketRequest payload; absent fields stay unchanged.
type UpdateTicketRequest struct {
	Subject              *string           `json:"subject" validate:"omitempty,min=5,max=500"`
	Description          *string           `json:"description" validate:"omitempty,min=10"`
	Status               *string           `json:"status" validate:"omitempty,oneof=new assigned in_progress on_hold resolved closed cancelled"`
	Priority             *string           `json:"priority" validate:"omitempty,oneof=low normal high critical"`
	Impact               *string           `json:"impact" validate:"omitempty,oneof=low medium high critical"`
	Urgency              *string           `json:"urgency" validate:"omitempty,oneof=low normal high critical"`
	AssignedTechnicianID *int64            `json:"assigned_technician_id" validate:"omitempty,gt=0"`
	RequiredSkills       *[]int64          `json:"required_skills" validate:"omitempty,dive,gt=0"`
	Tags                 *[]string         `json:"tags"`
	Tasks                *[]domain.Task    `json:"tasks"`
	WorkLogs             *[]domain.WorkLog `json:"work_logs"`
	ResolutionDue        *time.Time        `json:"resolution_due"`
	SLAViolated          *bool             `json:"sla_violated"`
	SatisfactionRating   *int              `json:"satisfaction_rating" validate:"omitempty,gte=1,lte=5"`
	Score                *float64          `json:"score" validate:"omitempty,gte=0,lte=10"`
	Justification        *string           `json:"justification" validate:"omitempty,max=1000"`
	Feedback             *string           `json:"feedback"`
}

// CloseTicketRequest payload.
type CloseTicketRequest struct {
	Feedback           *string `json:"feedback"`
	SatisfactionRating *int    `json:"satisfaction_rating" validate:"omitempty,gte=1,lte=5"`
	ResolutionNotes    *string `json:"resolution_notes"`
}

// AuditEntryResponse is the wire form of one audit trail record.
type AuditEntryResponse = domain.AuditEntry

// TicketResponse is the full ticket shape with joined summaries.
type TicketResponse struct {
	ID                   int64                     `json:"id"`
	Subject              string                    `json:"subject"`
	Description          string                    `json:"description"`
	Status               domain.TicketStatus       `json:"status"`
	Priority             domain.TicketPriority     `json:"priority"`
	Impact               domain.TicketImpact       `json:"impact"`
	Urgency              domain.TicketUrgency      `json:"urgency"`
	RequesterID          int64                     `json:"requester_id"`
	AssignedTechnicianID *int64                    `json:"assigned_technician_id"`
	RequiredSkills       []int64                   `json:"required_skills"`
	Tags                 []string                  `json:"tags"`
	Tasks                []domain.Task             `json:"tasks"`
	WorkLogs             []domain.WorkLog          `json:"work_logs"`
	AuditTrail           []AuditEntryResponse      `json:"audit_trail"`
	SLAViolated          bool                      `json:"sla_violated"`
	EscalationCount      int                       `json:"escalation_count"`
	ReopenedCount        int                       `json:"reopened_count"`
	ResolutionDue        *time.Time                `json:"resolution_due"`
	FirstResponseAt      *time.Time                `json:"first_response_at"`
	ResolvedAt           *time.Time                `json:"resolved_at"`
	ClosedAt             *time.Time                `json:"closed_at"`
	SatisfactionRating   *int                      `json:"satisfaction_rating"`
	Score                *float64                  `json:"score"`
	Justification        *string                   `json:"justification"`
	Feedback             *string                   `json:"feedback"`
	CreatedAt            time.Time                 `json:"created_at"`
	UpdatedAt            time.Time                 `json:"updated_at"`
	Requester            *domain.UserSummary       `json:"requester,omitempty"`
	AssignedTechnician   *domain.TechnicianSummary `json:"assigned_technician,omitempty"`
}

// CloseTicketResponse couples the closed ticket with the evaluation verdict.
type CloseTicketResponse struct {
	Ticket     TicketResponse  `json:"ticket"`
	Evaluation json.RawMessage `json:"evaluation"`
}

// FromTicket maps the domain aggregate to its wire form.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:                   ticket.ID,
		Subject:              ticket.Subject,
		Description:          ticket.Description,
		Status:               ticket.Status,
		Priority:             ticket.Priority,
		Impact:               ticket.Impact,
		Urgency:              ticket.Urgency,
		RequesterID:          ticket.RequesterID,
		AssignedTechnicianID: ticket.AssignedTechnicianID,
		RequiredSkills:       ticket.RequiredSkills,
		Tags:                 ticket.Tags,
		Tasks:                ticket.Tasks,
		WorkLogs:             ticket.WorkLogs,
		AuditTrail:           ticket.AuditTrail,
		SLAViolated:          ticket.SLAViolated,
		EscalationCount:      ticket.EscalationCount,
		ReopenedCount:        ticket.ReopenedCount,
		ResolutionDue:        ticket.ResolutionDue,
		FirstResponseAt:      ticket.FirstResponseAt,
		ResolvedAt:           ticket.ResolvedAt,
		ClosedAt:             ticket.ClosedAt,
		SatisfactionRating:   ticket.SatisfactionRating,
		Score:                ticket.Score,
		Justification:        ticket.Justification,
		Feedback:             ticket.Feedback,
		CreatedAt:            ticket.CreatedAt,
		UpdatedAt:            ticket.UpdatedAt,
		Requester:            ticket.Requester,
		AssignedTechnician:   ticket.AssignedTechnician,
	}
	if resp.RequiredSkills == nil {
		resp.RequiredSkills = []int64{}
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if resp.Tasks == nil {
		resp.Tasks = []domain.Task{}
	}
	if resp.WorkLogs == nil {
		resp.WorkLogs = []domain.WorkLog{}
	}
	return resp
}
