package domain

import (
	"encoding/json"
	"time"
)

// Audit action tags. The column is free-form; these cover every action the
// service itself records.
const (
	AuditActionCreated            = "created"
	AuditActionUpdated            = "updated"
	AuditActionCancelled          = "cancelled"
	AuditActionReactivated        = "reactivated"
	AuditActionAIAssigned         = "ai_assigned"
	AuditActionAIAssignmentFailed = "ai_assignment_failed"
	AuditActionAINoAssignment     = "ai_no_assignment"
)

// AuditEntry is one immutable record of a state-changing action on a ticket.
// It serializes as a flat JSON object: the fixed fields plus any
// action-specific extras at the same level, so the persisted form is
// {action, timestamp, user_id, details, ...extras}.
type AuditEntry struct {
	Action    string
	Timestamp time.Time
	UserID    *int64
	Details   string
	Extra     map[string]any
}

// NewAuditEntry builds an entry with a server-side timestamp.
func NewAuditEntry(action string, userID *int64, details string, extra map[string]any) AuditEntry {
	return AuditEntry{
		Action:    action,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Details:   details,
		Extra:     extra,
	}
}

func (e AuditEntry) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, 4+len(e.Extra))
	for k, v := range e.Extra {
		obj[k] = v
	}
	obj["action"] = e.Action
	obj["timestamp"] = e.Timestamp
	obj["user_id"] = e.UserID
	obj["details"] = e.Details
	return json.Marshal(obj)
}

func (e *AuditEntry) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if raw, ok := obj["action"]; ok {
		if err := json.Unmarshal(raw, &e.Action); err != nil {
			return err
		}
	}
	if raw, ok := obj["timestamp"]; ok {
		if err := json.Unmarshal(raw, &e.Timestamp); err != nil {
			return err
		}
	}
	if raw, ok := obj["user_id"]; ok {
		if err := json.Unmarshal(raw, &e.UserID); err != nil {
			return err
		}
	}
	if raw, ok := obj["details"]; ok {
		if err := json.Unmarshal(raw, &e.Details); err != nil {
			return err
		}
	}
	delete(obj, "action")
	delete(obj, "timestamp")
	delete(obj, "user_id")
	delete(obj, "details")
	if len(obj) == 0 {
		e.Extra = nil
		return nil
	}
	e.Extra = make(map[string]any, len(obj))
	for k, raw := range obj {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		e.Extra[k] = v
	}
	return nil
}

// AppendAudit returns a new slice with entry appended. The input slice is
// never mutated, so trails read from a shared row cannot alias across
// concurrent requests.
func AppendAudit(trail []AuditEntry, entry AuditEntry) []AuditEntry {
	next := make([]AuditEntry, 0, len(trail)+1)
	next = append(next, trail...)
	next = append(next, entry)
	return next
}
