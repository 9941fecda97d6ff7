package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neurodesk/helpdesk-service/internal/auth"
	"github.com/neurodesk/helpdesk-service/internal/domain"
	"github.com/neurodesk/helpdesk-service/pkg/util"
)

func newAuthEnv() (*AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	tokens := auth.NewTokenManager("test-secret", 15)
	return NewAuthService(users, tokens, 4, zap.NewNop()), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthEnv()

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ada",
		Email:    "Ada@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, domain.UserRoleUser, user.Role)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	session, err := svc.Login(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthEnv()

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "pw-one-two"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "Ada Again", Email: "ada@example.com", Password: "pw-one-two"})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", util.ToDomainError(err).Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, users := newAuthEnv()

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "ada@example.com", "wrong horse")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", util.ToDomainError(err).Code)

	_, err = svc.Login(context.Background(), "nobody@example.com", "whatever pw")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", util.ToDomainError(err).Code)

	// Deactivated accounts cannot log in.
	for id, u := range users.users {
		u.IsActive = false
		users.users[id] = u
	}
	_, err = svc.Login(context.Background(), "ada@example.com", "correct horse")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", util.ToDomainError(err).Code)
}
