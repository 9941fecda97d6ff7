package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neurodesk/helpdesk-service/internal/config"
	"github.com/neurodesk/helpdesk-service/internal/domain"
	"github.com/neurodesk/helpdesk-service/internal/events"
	"github.com/neurodesk/helpdesk-service/internal/observability"
	"github.com/neurodesk/helpdesk-service/internal/oracle"
	"github.com/neurodesk/helpdesk-service/pkg/util"
)

type ticketEnv struct {
	svc         *TicketService
	tickets     *fakeTicketRepo
	users       *fakeUserRepo
	technicians *fakeTechnicianRepo
	oracle      *scriptedOracle
	evaluator   *scriptedEvaluator
	requesterID int64
}

func newTicketEnv(t *testing.T, cfg config.TicketConfig) *ticketEnv {
	t.Helper()
	logger := zap.NewNop()
	tickets := newFakeTicketRepo()
	users := newFakeUserRepo()
	technicians := newFakeTechnicianRepo()
	scripted := &scriptedOracle{}
	evaluator := &scriptedEvaluator{}

	directory := NewDirectoryService(users, technicians, nil, logger)
	assignment := NewAssignmentService(scripted, directory, observability.NewMetrics(), logger)
	svc := NewTicketService(tickets, directory, assignment, evaluator, events.NewInMemoryDispatcher(), cfg, logger)

	return &ticketEnv{
		svc:         svc,
		tickets:     tickets,
		users:       users,
		technicians: technicians,
		oracle:      scripted,
		evaluator:   evaluator,
		requesterID: users.add("Rita Requester", "rita@example.com"),
	}
}

func validCreateInput(requesterID int64) CreateTicketInput {
	return CreateTicketInput{
		Subject:     "Printer on floor 3 is jammed",
		Description: "Paper jam error persists after clearing trays.",
		Priority:    "normal",
		Impact:      "medium",
		Urgency:     "normal",
		RequesterID: requesterID,
	}
}

func auditActions(ticket domain.Ticket) []string {
	actions := make([]string, 0, len(ticket.AuditTrail))
	for _, entry := range ticket.AuditTrail {
		actions = append(actions, entry.Action)
	}
	return actions
}

func TestCreateSeedsAuditTrail(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	env.oracle.enabled = true
	techUser := env.users.add("Tom Tech", "tom@example.com")
	techID := env.technicians.add("Tom Tech", techUser)

	input := validCreateInput(env.requesterID)
	input.AssignedTechnicianID = &techID

	ticket, err := env.svc.Create(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusAssigned, ticket.Status)
	require.Len(t, ticket.AuditTrail, 1)
	seed := ticket.AuditTrail[0]
	assert.Equal(t, domain.AuditActionCreated, seed.Action)
	require.NotNil(t, seed.UserID)
	assert.Equal(t, env.requesterID, *seed.UserID)
	assert.False(t, seed.Timestamp.IsZero())

	// A supplied technician bypasses the oracle entirely.
	assert.Equal(t, 0, env.oracle.called)
	require.NotNil(t, ticket.Justification)
	assert.Equal(t, "Severity: Medium", *ticket.Justification)
}

func TestCreateConsultsOracleWhenUnassigned(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	techUser := env.users.add("Tom Tech", "tom@example.com")
	techID := env.technicians.add("Tom Tech", techUser)

	env.oracle.enabled = true
	env.oracle.outcome = oracle.Outcome{
		Kind:          oracle.OutcomeAssigned,
		TechnicianID:  techID,
		Justification: "Best skill match for printer issues",
		Raw:           json.RawMessage(`{"success":true,"selected_technician_id":1}`),
	}

	ticket, err := env.svc.Create(context.Background(), validCreateInput(env.requesterID))
	require.NoError(t, err)

	assert.Equal(t, 1, env.oracle.called)
	assert.Equal(t, domain.TicketStatusAssigned, ticket.Status)
	require.NotNil(t, ticket.AssignedTechnicianID)
	assert.Equal(t, techID, *ticket.AssignedTechnicianID)
	require.NotNil(t, ticket.Justification)
	assert.Equal(t, "Best skill match for printer issues", *ticket.Justification)

	stored := env.tickets.stored(ticket.ID)
	assert.Equal(t, []string{domain.AuditActionCreated, domain.AuditActionAIAssigned}, auditActions(stored))

	aiEntry := stored.AuditTrail[1]
	assert.Nil(t, aiEntry.UserID)
	assert.EqualValues(t, techID, aiEntry.Extra["technician_id"])
}

func TestCreateOracleExplicitFailure(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	env.oracle.enabled = true
	env.oracle.outcome = oracle.Outcome{
		Kind: oracle.OutcomeExplicitFailure,
		Raw:  json.RawMessage(`{"success":false,"selected_technician_id":4}`),
	}

	ticket, err := env.svc.Create(context.Background(), validCreateInput(env.requesterID))
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Nil(t, ticket.AssignedTechnicianID)

	stored := env.tickets.stored(ticket.ID)
	assert.Equal(t, []string{domain.AuditActionCreated, domain.AuditActionAINoAssignment}, auditActions(stored))
	assert.NotNil(t, stored.AuditTrail[1].Extra["response"])
}

func TestCreateOracleTransportErrorFailsOpen(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	env.oracle.enabled = true
	env.oracle.err = &oracle.TransportError{Err: errors.New("connection refused")}

	ticket, err := env.svc.Create(context.Background(), validCreateInput(env.requesterID))
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	stored := env.tickets.stored(ticket.ID)
	assert.Equal(t, []string{domain.AuditActionCreated, domain.AuditActionAIAssignmentFailed}, auditActions(stored))
	assert.Contains(t, stored.AuditTrail[1].Extra["error"], "connection refused")
}

func TestCreateOracleUnknownTechnician(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	env.oracle.enabled = true
	env.oracle.outcome = oracle.Outcome{
		Kind:         oracle.OutcomeAssigned,
		TechnicianID: 424242,
		Raw:          json.RawMessage(`{"success":true,"selected_technician_id":424242}`),
	}

	ticket, err := env.svc.Create(context.Background(), validCreateInput(env.requesterID))
	require.NoError(t, err)

	assert.Nil(t, ticket.AssignedTechnicianID)
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	stored := env.tickets.stored(ticket.ID)
	assert.Equal(t, []string{domain.AuditActionCreated, domain.AuditActionAIAssignmentFailed}, auditActions(stored))
	assert.EqualValues(t, 424242, stored.AuditTrail[1].Extra["technician_id"])
}

func TestCreateOracleDisabled(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	env.oracle.enabled = false

	ticket, err := env.svc.Create(context.Background(), validCreateInput(env.requesterID))
	require.NoError(t, err)

	assert.Equal(t, 0, env.oracle.called)
	assert.Len(t, ticket.AuditTrail, 1)
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
}

func TestCreateUnknownRequester(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})

	_, err := env.svc.Create(context.Background(), validCreateInput(999))
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
	assert.Empty(t, env.tickets.tickets)
}

func TestCreateValidation(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})

	input := validCreateInput(env.requesterID)
	input.Subject = "hi"
	_, err := env.svc.Create(context.Background(), input)
	require.Error(t, err)

	domainErr := util.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Contains(t, domainErr.Details, "subject")
}

func TestUpdateAppendsChangedFields(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	ticket, err := env.svc.Create(context.Background(), validCreateInput(env.requesterID))
	require.NoError(t, err)

	actor := env.requesterID
	priority := "high"
	description := "Paper jam error persists, now smells like burning."
	updated, err := env.svc.Update(context.Background(), ticket.ID, &actor, UpdateTicketInput{
		Priority:    &priority,
		Description: &description,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketPriorityHigh, updated.Priority)
	require.Len(t, updated.AuditTrail, 2)
	entry := updated.AuditTrail[1]
	assert.Equal(t, domain.AuditActionUpdated, entry.Action)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, actor, *entry.UserID)
	assert.ElementsMatch(t, []any{"description", "priority"}, entry.Extra["changes"])
}

func TestUpdateResolvedTimestampIdempotent(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	ticket, err := env.svc.Create(context.Background(), validCreateInput(env.requesterID))
	require.NoError(t, err)

	resolved := string(domain.TicketStatusResolved)
	first, err := env.svc.Update(context.Background(), ticket.ID, nil, UpdateTicketInput{Status: &resolved})
	require.NoError(t, err)
	require.NotNil(t, first.ResolvedAt)
	firstResolvedAt := *first.ResolvedAt

	second, err := env.svc.Update(context.Background(), ticket.ID, nil, UpdateTicketInput{Status: &resolved})
	require.NoError(t, err)
	require.NotNil(t, second.ResolvedAt)
	assert.Equal(t, firstResolvedAt, *second.ResolvedAt)
}

func TestUpdateUnknownTechnician(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	ticket, err := env.svc.Create(context.Background(), validCreateInput(env.requesterID))
	require.NoError(t, err)

	missing := int64(77)
	_, err = env.svc.Update(context.Background(), ticket.ID, nil, UpdateTicketInput{AssignedTechnicianID: &missing})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)

	stored := env.tickets.stored(ticket.ID)
	assert.Len(t, stored.AuditTrail, 1)
}

func TestUpdateMissingTicket(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})

	subject := "A perfectly fine subject"
	_, err := env.svc.Update(context.Background(), 404, nil, UpdateTicketInput{Subject: &subject})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
}

func TestCloseSetsClosedAtOnceAndEvaluates(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	env.evaluator.result = json.RawMessage(`{"quality":"good","score":8.5}`)

	ticket, err := env.svc.Create(context.Background(), validCreateInput(env.requesterID))
	require.NoError(t, err)

	rating := 4
	feedback := "Fixed quickly, thanks."
	result, err := env.svc.Close(context.Background(), ticket.ID, nil, CloseTicketInput{
		Feedback:           &feedback,
		SatisfactionRating: &rating,
	})
	require.NoError(t, err)

	closed := result.Ticket
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)
	firstClosedAt := *closed.ClosedAt
	assert.Equal(t, &rating, closed.SatisfactionRating)
	assert.JSONEq(t, `{"quality":"good","score":8.5}`, string(result.Evaluation))
	assert.Equal(t, 1, env.evaluator.called)

	again, err := env.svc.Close(context.Background(), ticket.ID, nil, CloseTicketInput{})
	require.NoError(t, err)
	require.NotNil(t, again.Ticket.ClosedAt)
	assert.Equal(t, firstClosedAt, *again.Ticket.ClosedAt)

	stored := env.tickets.stored(ticket.ID)
	assert.Equal(t, []string{
		domain.AuditActionCreated,
		domain.AuditActionUpdated,
		domain.AuditActionUpdated,
	}, auditActions(stored))
}

func TestCloseEvaluationFailureIsNonFatal(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	env.evaluator.err = errors.New("evaluation engine down")

	ticket, err := env.svc.Create(context.Background(), validCreateInput(env.requesterID))
	require.NoError(t, err)

	result, err := env.svc.Close(context.Background(), ticket.ID, nil, CloseTicketInput{})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, result.Ticket.Status)
	assert.Nil(t, result.Evaluation)
}

func TestCloseAppendsResolutionNotes(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	ticket, err := env.svc.Create(context.Background(), validCreateInput(env.requesterID))
	require.NoError(t, err)

	notes := "Replaced the fuser unit."
	result, err := env.svc.Close(context.Background(), ticket.ID, nil, CloseTicketInput{ResolutionNotes: &notes})
	require.NoError(t, err)

	require.Len(t, result.Ticket.WorkLogs, 1)
	assert.Equal(t, notes, result.Ticket.WorkLogs[0].Notes)
}

func TestCancelAndReactivate(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	ticket, err := env.svc.Create(context.Background(), validCreateInput(env.requesterID))
	require.NoError(t, err)

	cancelled, err := env.svc.Cancel(context.Background(), ticket.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCancelled, cancelled.Status)

	reactivated, err := env.svc.Reactivate(context.Background(), ticket.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, reactivated.Status)

	stored := env.tickets.stored(ticket.ID)
	assert.Equal(t, []string{
		domain.AuditActionCreated,
		domain.AuditActionCancelled,
		domain.AuditActionReactivated,
	}, auditActions(stored))
}

func TestReactivatePolicyRestricted(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: false})
	ticket, err := env.svc.Create(context.Background(), validCreateInput(env.requesterID))
	require.NoError(t, err)

	inProgress := string(domain.TicketStatusInProgress)
	_, err = env.svc.Update(context.Background(), ticket.ID, nil, UpdateTicketInput{Status: &inProgress})
	require.NoError(t, err)

	_, err = env.svc.Reactivate(context.Background(), ticket.ID, nil)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", util.ToDomainError(err).Code)

	_, err = env.svc.Cancel(context.Background(), ticket.ID, nil)
	require.NoError(t, err)
	reactivated, err := env.svc.Reactivate(context.Background(), ticket.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, reactivated.Status)
}

func TestCancelMissingTicket(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})

	_, err := env.svc.Cancel(context.Background(), 404, nil)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
}

func TestPermanentDeleteRemovesRow(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	ticket, err := env.svc.Create(context.Background(), validCreateInput(env.requesterID))
	require.NoError(t, err)

	require.NoError(t, env.svc.PermanentDelete(context.Background(), ticket.ID))
	_, err = env.svc.Get(context.Background(), ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
}

func TestConcurrentUpdatesPreserveAuditEntries(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	ticket, err := env.svc.Create(context.Background(), validCreateInput(env.requesterID))
	require.NoError(t, err)

	const writers = 16
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			tag := "race-check"
			tags := []string{tag}
			_, err := env.svc.Update(context.Background(), ticket.ID, nil, UpdateTicketInput{Tags: &tags})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored := env.tickets.stored(ticket.ID)
	assert.Len(t, stored.AuditTrail, 1+writers)
}

func TestHydrateJoinsSummaries(t *testing.T) {
	env := newTicketEnv(t, config.TicketConfig{ReactivateAnyStatus: true})
	techUser := env.users.add("Tom Tech", "tom@example.com")
	techID := env.technicians.add("Tom Tech", techUser)

	input := validCreateInput(env.requesterID)
	input.AssignedTechnicianID = &techID
	ticket, err := env.svc.Create(context.Background(), input)
	require.NoError(t, err)

	require.NotNil(t, ticket.Requester)
	assert.Equal(t, "Rita Requester", ticket.Requester.Name)
	require.NotNil(t, ticket.AssignedTechnician)
	assert.Equal(t, "Tom Tech", ticket.AssignedTechnician.Name)
	require.NotNil(t, ticket.AssignedTechnician.User)
	assert.Equal(t, "tom@example.com", ticket.AssignedTechnician.User.Email)
}
