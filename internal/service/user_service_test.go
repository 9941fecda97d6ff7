package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurodesk/helpdesk-service/pkg/util"
)

func TestUserDeleteDeactivates(t *testing.T) {
	repo := newFakeUserRepo()
	id := repo.add("Dana", "dana@example.com")
	svc := NewUserService(repo, 4)

	require.NoError(t, svc.Delete(context.Background(), id))

	user, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, user.IsActive, "delete keeps the row but deactivates it")

	restored, err := svc.Reactivate(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)
}

func TestUserPermanentDeleteRemovesRow(t *testing.T) {
	repo := newFakeUserRepo()
	id := repo.add("Dana", "dana@example.com")
	svc := NewUserService(repo, 4)

	require.NoError(t, svc.PermanentDelete(context.Background(), id))

	_, err := svc.Get(context.Background(), id)
	assert.True(t, util.IsNotFound(err))
}

func TestUserDeleteMissing(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), 4)
	err := svc.Delete(context.Background(), 99)
	assert.True(t, util.IsNotFound(err))
}

func TestUserUpdateRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add("Dana", "dana@example.com")
	other := repo.add("Eli", "eli@example.com")
	svc := NewUserService(repo, 4)

	email := "dana@example.com"
	_, err := svc.Update(context.Background(), other, UpdateUserInput{Email: &email})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", util.ToDomainError(err).Code)
}
