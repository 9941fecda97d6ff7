package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurodesk/helpdesk-service/pkg/util"
)

func TestValidateCreateTicketRequest(t *testing.T) {
	valid := CreateTicketRequest{
		Subject:     "Monitor flickers on boot",
		Description: "Screen flickers for about a minute after startup.",
		RequesterID: 1,
	}
	assert.NoError(t, Validate(valid))

	invalid := CreateTicketRequest{
		Subject:     "hey",
		Description: "short",
		Priority:    "urgent-ish",
	}
	err := Validate(invalid)
	require.Error(t, err)

	domainErr := util.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Contains(t, domainErr.Details, "subject")
	assert.Contains(t, domainErr.Details, "description")
	assert.Contains(t, domainErr.Details, "priority")
	assert.Contains(t, domainErr.Details, "requesterid")
}

func TestValidateScoreBounds(t *testing.T) {
	score := 10.5
	req := CreateTicketRequest{
		Subject:     "Monitor flickers on boot",
		Description: "Screen flickers for about a minute after startup.",
		RequesterID: 1,
		Score:       &score,
	}
	err := Validate(req)
	require.Error(t, err)
	assert.Contains(t, util.ToDomainError(err).Details, "score")

	score = 10.0
	assert.NoError(t, Validate(req))
}

func TestPagination(t *testing.T) {
	p := NewPagination(2, 20, 45)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.EqualValues(t, 45, p.Total)
	assert.Equal(t, 3, p.TotalPages)

	empty := NewPagination(1, 20, 0)
	assert.Equal(t, 0, empty.TotalPages)
}
