package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditEntryMarshalFlattensExtra(t *testing.T) {
	userID := int64(5)
	entry := AuditEntry{
		Action:    AuditActionAIAssigned,
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		UserID:    &userID,
		Details:   "AI assigned technician",
		Extra: map[string]any{
			"technician_id": 9,
			"justification": "closest skill match",
		},
	}

	raw, err := json.Marshal(entry)
	require.NoError(t, err)

	var obj map[string]any
	require.NoError(t, json.Unmarshal(raw, &obj))

	// Fixed fields and extras live at the same level.
	assert.Equal(t, "ai_assigned", obj["action"])
	assert.Equal(t, "AI assigned technician", obj["details"])
	assert.EqualValues(t, 5, obj["user_id"])
	assert.EqualValues(t, 9, obj["technician_id"])
	assert.Equal(t, "closest skill match", obj["justification"])
	assert.NotContains(t, obj, "extra")
}

func TestAuditEntryMarshalNullUser(t *testing.T) {
	entry := NewAuditEntry(AuditActionAINoAssignment, nil, "AI could not determine an assignment", nil)

	raw, err := json.Marshal(entry)
	require.NoError(t, err)

	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &obj))
	assert.Equal(t, "null", string(obj["user_id"]))
}

func TestAuditEntryRoundTrip(t *testing.T) {
	userID := int64(3)
	original := AuditEntry{
		Action:    AuditActionUpdated,
		Timestamp: time.Date(2025, 6, 2, 8, 30, 15, 0, time.UTC),
		UserID:    &userID,
		Details:   "Ticket updated",
		Extra: map[string]any{
			"changes": []any{"priority", "tags"},
		},
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded AuditEntry
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, original.Action, decoded.Action)
	assert.True(t, original.Timestamp.Equal(decoded.Timestamp))
	require.NotNil(t, decoded.UserID)
	assert.Equal(t, userID, *decoded.UserID)
	assert.Equal(t, original.Details, decoded.Details)
	assert.Equal(t, original.Extra, decoded.Extra)

	// A second pass produces identical bytes.
	again, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
}

func TestAuditEntryUnmarshalUnknownKeysGoToExtra(t *testing.T) {
	raw := []byte(`{"action":"ai_assignment_failed","timestamp":"2025-01-15T10:00:00Z","user_id":null,"details":"AI assignment failed","error":"timeout","response":{"success":false}}`)

	var entry AuditEntry
	require.NoError(t, json.Unmarshal(raw, &entry))

	assert.Equal(t, AuditActionAIAssignmentFailed, entry.Action)
	assert.Nil(t, entry.UserID)
	assert.Equal(t, "timeout", entry.Extra["error"])
	assert.Equal(t, map[string]any{"success": false}, entry.Extra["response"])
}

func TestAppendAuditDoesNotMutateInput(t *testing.T) {
	seed := NewAuditEntry(AuditActionCreated, nil, "Ticket created", nil)
	trail := []AuditEntry{seed}

	next := AppendAudit(trail, NewAuditEntry(AuditActionCancelled, nil, "Ticket cancelled", nil))
	final := AppendAudit(next, NewAuditEntry(AuditActionReactivated, nil, "Ticket reactivated", nil))

	assert.Len(t, trail, 1)
	assert.Len(t, next, 2)
	require.Len(t, final, 3)
	assert.Equal(t, AuditActionCreated, final[0].Action)
	assert.Equal(t, AuditActionCancelled, final[1].Action)
	assert.Equal(t, AuditActionReactivated, final[2].Action)
}

func TestAppendAuditBranchesDoNotAlias(t *testing.T) {
	trail := []AuditEntry{NewAuditEntry(AuditActionCreated, nil, "Ticket created", nil)}

	left := AppendAudit(trail, NewAuditEntry(AuditActionCancelled, nil, "left", nil))
	right := AppendAudit(trail, NewAuditEntry(AuditActionUpdated, nil, "right", nil))

	assert.Equal(t, "left", left[1].Details)
	assert.Equal(t, "right", right[1].Details)
}
