package events

import (
	"time"

	"github.com/neurodesk/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated     EventType = "ticket_created"
	EventTicketUpdated     EventType = "ticket_updated"
	EventTicketAssigned    EventType = "ticket_assigned"
	EventTicketClosed      EventType = "ticket_closed"
	EventTicketCancelled   EventType = "ticket_cancelled"
	EventTicketReactivated EventType = "ticket_reactivated"
)

// Event represents a domain event emitted by services. UserID is nil for
// system actions such as oracle-driven assignment.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	UserID    *int64      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject     string                `json:"subject"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	RequesterID int64                 `json:"requester_id"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	ChangedFields []string            `json:"changed_fields"`
	NewStatus     domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TechnicianID  int64  `json:"technician_id"`
	Source        string `json:"source"`
	Justification string `json:"justification,omitempty"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	SatisfactionRating *int `json:"satisfaction_rating,omitempty"`
}
