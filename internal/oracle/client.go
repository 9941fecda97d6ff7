package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/neurodesk/helpdesk-service/internal/config"
)

// TicketPayload is the ticket snapshot sent to the assignment oracle.
type TicketPayload struct {
	Subject         string   `json:"subject"`
	Description     string   `json:"description"`
	RequesterID     int64    `json:"requester_id"`
	Priority        string   `json:"priority"`
	Impact          string   `json:"impact"`
	Urgency         string   `json:"urgency"`
	ComplexityLevel string   `json:"complexity_level"`
	Tags            []string `json:"tags"`
}

// AssignmentRequest is the request envelope the oracle expects.
type AssignmentRequest struct {
	Ticket TicketPayload `json:"ticket"`
}

// EvaluationRequest carries a closed ticket to the evaluation engine.
type EvaluationRequest struct {
	Ticket map[string]any `json:"ticket"`
}

// TransportError marks a failed round trip (network error, timeout or
// non-2xx status). Callers must treat it as a resolver fallback signal,
// never surface it to the HTTP caller.
type TransportError struct {
	StatusCode int
	Err        error
	Body       string
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oracle transport error: %v", e.Err)
	}
	return fmt.Sprintf("oracle returned status %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client talks to the external AI assignment and evaluation services.
type Client struct {
	http          *resty.Client
	assignmentURL string
	evaluationURL string
	logger        *zap.Logger
}

// NewClient builds the client. The request timeout bounds how long ticket
// creation may block on the oracle before the resolver falls through to its
// fallback outcome.
func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	http := resty.New().
		SetTimeout(cfg.RequestTimeout()).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Content-Type", "application/json")
	return &Client{
		http:          http,
		assignmentURL: cfg.AssignmentURL,
		evaluationURL: cfg.EvaluationURL,
		logger:        logger,
	}
}

// Enabled reports whether an assignment endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.assignmentURL != ""
}

// AssignTechnician asks the oracle to pick a technician for the ticket.
// A *TransportError return covers network failures, timeouts and non-2xx
// statuses; a nil error means the body was decoded into an Outcome.
func (c *Client) AssignTechnician(ctx context.Context, req AssignmentRequest) (Outcome, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.assignmentURL)
	if err != nil {
		return Outcome{}, &TransportError{Err: err}
	}
	if resp.IsError() {
		return Outcome{}, &TransportError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	outcome, err := DecodeOutcome(resp.Body())
	if err != nil {
		c.logger.Warn("oracle response was not a JSON object", zap.Error(err))
		return Outcome{Kind: OutcomeNoUsableID, Raw: resp.Body()}, nil
	}
	return outcome, nil
}

// EvaluateResolution sends a closed ticket to the evaluation engine and
// returns the raw result for embedding in the close response. Returns nil
// when no evaluation endpoint is configured.
func (c *Client) EvaluateResolution(ctx context.Context, req EvaluationRequest) (json.RawMessage, error) {
	if c.evaluationURL == "" {
		return nil, nil
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.evaluationURL)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.IsError() {
		return nil, &TransportError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	return append(json.RawMessage(nil), resp.Body()...), nil
}
