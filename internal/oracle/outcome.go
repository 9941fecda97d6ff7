package oracle

import (
	"encoding/json"
	"strconv"
)

// OutcomeKind discriminates what the oracle's response amounted to.
type OutcomeKind int

const (
	// OutcomeAssigned means the response named a technician id.
	OutcomeAssigned OutcomeKind = iota
	// OutcomeExplicitFailure means the response carried an explicit
	// negative success indicator. A technician id present alongside it is
	// ignored.
	OutcomeExplicitFailure
	// OutcomeNoUsableID means the response had no recognizable technician
	// id under any accepted field name.
	OutcomeNoUsableID
)

// Outcome is the decoded result of a successful oracle round trip. Raw
// always holds the response body for audit diagnostics.
type Outcome struct {
	Kind          OutcomeKind
	TechnicianID  int64
	Justification string
	Raw           json.RawMessage
}

// The wire contract is loosely specified: the success indicator and the
// technician id each appear under one of two field names depending on the
// oracle version. Alternatives are tried in fixed priority order.
var (
	successFields      = []string{"success", "assigned"}
	technicianIDFields = []string{"selected_technician_id", "technician_id"}
)

// DecodeOutcome interprets an oracle response body defensively. Unrecognized
// shapes fall back to OutcomeNoUsableID rather than returning an error; only
// a body that is not a JSON object at all is an error.
func DecodeOutcome(body []byte) (Outcome, error) {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return Outcome{}, err
	}

	out := Outcome{Raw: append(json.RawMessage(nil), body...)}

	if ok, present := decodeSuccess(obj); present && !ok {
		out.Kind = OutcomeExplicitFailure
		return out, nil
	}

	id, found := decodeTechnicianID(obj)
	if !found {
		out.Kind = OutcomeNoUsableID
		return out, nil
	}

	out.Kind = OutcomeAssigned
	out.TechnicianID = id
	if j, ok := obj["justification"].(string); ok {
		out.Justification = j
	}
	return out, nil
}

func decodeSuccess(obj map[string]any) (value, present bool) {
	for _, field := range successFields {
		if raw, ok := obj[field]; ok {
			if b, ok := raw.(bool); ok {
				return b, true
			}
		}
	}
	return false, false
}

func decodeTechnicianID(obj map[string]any) (int64, bool) {
	for _, field := range technicianIDFields {
		raw, ok := obj[field]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case float64:
			if v == float64(int64(v)) && int64(v) > 0 {
				return int64(v), true
			}
		case string:
			if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
				return id, true
			}
		}
	}
	return 0, false
}
