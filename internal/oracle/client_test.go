package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neurodesk/helpdesk-service/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(config.AIConfig{
		AssignmentURL:         url,
		EvaluationURL:         url,
		RequestTimeoutSeconds: 1,
	}, zap.NewNop())
}

func sampleRequest() AssignmentRequest {
	return AssignmentRequest{Ticket: TicketPayload{
		Subject:     "VPN drops every hour",
		Description: "Connection resets on the dot, every hour.",
		RequesterID: 1,
		Priority:    "high",
		Impact:      "high",
		Urgency:     "high",
	}}
}

func TestAssignTechnicianSuccess(t *testing.T) {
	var received AssignmentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"selected_technician_id":8,"justification":"network specialist"}`))
	}))
	defer srv.Close()

	outcome, err := newTestClient(srv.URL).AssignTechnician(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, OutcomeAssigned, outcome.Kind)
	assert.Equal(t, int64(8), outcome.TechnicianID)
	assert.Equal(t, "network specialist", outcome.Justification)
	assert.Equal(t, "VPN drops every hour", received.Ticket.Subject)
}

func TestAssignTechnicianServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).AssignTechnician(context.Background(), sampleRequest())
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
}

func TestAssignTechnicianTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).AssignTechnician(context.Background(), sampleRequest())
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestAssignTechnicianUnreachable(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1/assign")

	_, err := client.AssignTechnician(context.Background(), sampleRequest())
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestAssignTechnicianMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`garbage response`))
	}))
	defer srv.Close()

	outcome, err := newTestClient(srv.URL).AssignTechnician(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoUsableID, outcome.Kind)
}

func TestEvaluateResolution(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quality":"adequate"}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).EvaluateResolution(context.Background(), EvaluationRequest{
		Ticket: map[string]any{"id": 1},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"quality":"adequate"}`, string(result))
}

func TestEvaluateResolutionDisabled(t *testing.T) {
	client := NewClient(config.AIConfig{RequestTimeoutSeconds: 1}, zap.NewNop())

	result, err := client.EvaluateResolution(context.Background(), EvaluationRequest{})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewClient(config.AIConfig{}, zap.NewNop()).Enabled())
	assert.True(t, NewClient(config.AIConfig{AssignmentURL: "http://localhost/assign"}, zap.NewNop()).Enabled())
}
