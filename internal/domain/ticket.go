package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusAssigned   TicketStatus = "assigned"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusOnHold     TicketStatus = "on_hold"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
	TicketStatusCancelled  TicketStatus = "cancelled"
)

// IsValid reports whether the value is a known status.
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusNew, TicketStatusAssigned, TicketStatusInProgress,
		TicketStatusOnHold, TicketStatusResolved, TicketStatusClosed, TicketStatusCancelled:
		return true
	}
	return false
}

// TicketPriority enumerates SLA urgency of the request itself.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityNormal   TicketPriority = "normal"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

func (p TicketPriority) IsValid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityNormal, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// TicketImpact enumerates business impact.
type TicketImpact string

const (
	TicketImpactLow      TicketImpact = "low"
	TicketImpactMedium   TicketImpact = "medium"
	TicketImpactHigh     TicketImpact = "high"
	TicketImpactCritical TicketImpact = "critical"
)

func (i TicketImpact) IsValid() bool {
	switch i {
	case TicketImpactLow, TicketImpactMedium, TicketImpactHigh, TicketImpactCritical:
		return true
	}
	return false
}

// TicketUrgency enumerates how quickly a resolution is needed.
type TicketUrgency string

const (
	TicketUrgencyLow      TicketUrgency = "low"
	TicketUrgencyNormal   TicketUrgency = "normal"
	TicketUrgencyHigh     TicketUrgency = "high"
	TicketUrgencyCritical TicketUrgency = "critical"
)

func (u TicketUrgency) IsValid() bool {
	switch u {
	case TicketUrgencyLow, TicketUrgencyNormal, TicketUrgencyHigh, TicketUrgencyCritical:
		return true
	}
	return false
}

// Task is an embedded checklist item owned by a ticket.
type Task struct {
	Subject     string     `json:"subject"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// WorkLog is an append-only note with time spent, embedded in a ticket.
type WorkLog struct {
	Timestamp    time.Time `json:"timestamp"`
	TechnicianID int64     `json:"technician_id"`
	Notes        string    `json:"notes"`
	TimeSpent    int       `json:"time_spent"`
}

// Ticket is the aggregate for service requests. Tags, required skills,
// tasks, work logs and the audit trail are owned by composition and are
// serialized together with the row.
type Ticket struct {
	ID                   int64
	Subject              string
	Description          string
	Status               TicketStatus
	Priority             TicketPriority
	Impact               TicketImpact
	Urgency              TicketUrgency
	RequesterID          int64
	AssignedTechnicianID *int64
	RequiredSkills       []int64
	Tags                 []string
	Tasks                []Task
	WorkLogs             []WorkLog
	AuditTrail           []AuditEntry
	SLAViolated          bool
	EscalationCount      int
	ReopenedCount        int
	ResolutionDue        *time.Time
	FirstResponseAt      *time.Time
	ResolvedAt           *time.Time
	ClosedAt             *time.Time
	SatisfactionRating   *int
	Score                *float64
	Justification        *string
	Feedback             *string
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Joined summaries, populated on read paths only.
	Requester          *UserSummary
	AssignedTechnician *TechnicianSummary
}

// IsTerminal reports whether the status ends the normal flow.
func (t *Ticket) IsTerminal() bool {
	return t.Status == TicketStatusClosed || t.Status == TicketStatusCancelled
}
