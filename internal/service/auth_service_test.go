package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-events-admin/internal/models"
	appErrors "github.com/noah-isme/sma-events-admin/pkg/errors"
)

func newAuthService(repo *memOrganizers) *AuthService {
	return NewAuthService(repo, fastCredentials(), nil, nil, nil)
}

func TestSignupThenLogin(t *testing.T) {
	repo := newMemOrganizers()
	svc := newAuthService(repo)
	ctx := context.Background()

	organizer, err := svc.Signup(ctx, models.SignupRequest{Username: "alice", Email: "alice@school.io", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", organizer.Username)
	assert.Nil(t, organizer.Organization)
	assert.NotEqual(t, "pw123", repo.byName["alice"].PasswordHash)

	logged, err := svc.Login(ctx, models.LoginRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, organizer.ID, logged.ID)
}

func TestSignupKeepsOrganization(t *testing.T) {
	svc := newAuthService(newMemOrganizers())
	organizer, err := svc.Signup(context.Background(), models.SignupRequest{Username: "bob", Organization: " Springfield ", Email: "bob@school.io", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, organizer.Organization)
	assert.Equal(t, "Springfield", *organizer.Organization)
}

func TestSignupDuplicateUsername(t *testing.T) {
	svc := newAuthService(newMemOrganizers())
	ctx := context.Background()
	_, err := svc.Signup(ctx, models.SignupRequest{Username: "alice", Email: "a@school.io", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, models.SignupRequest{Username: "alice", Email: "other@school.io", Password: "pw"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestSignupValidation(t *testing.T) {
	svc := newAuthService(newMemOrganizers())
	_, err := svc.Signup(context.Background(), models.SignupRequest{Username: "alice", Email: "not-an-email", Password: "pw"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "email must be a valid email address", appErr.Message)

	_, err = svc.Signup(context.Background(), models.SignupRequest{Username: "this-username-is-way-too-long-for-us", Email: "a@b.io", Password: "pw"})
	assert.Equal(t, "username must be at most 30 characters", appErrors.FromError(err).Message)
}

func TestLoginDistinguishesFailures(t *testing.T) {
	repo := newMemOrganizers()
	svc := newAuthService(repo)
	ctx := context.Background()
	_, err := svc.Signup(ctx, models.SignupRequest{Username: "alice", Email: "a@school.io", Password: "pw123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "ghost", Password: "pw123"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Equal(t, "User does not exist.", appErr.Message)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "alice", Password: "wrong"})
	appErr = appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Equal(t, "Invalid Password!", appErr.Message)
}

func TestLoginRepositoryFailure(t *testing.T) {
	repo := newMemOrganizers()
	repo.err = errors.New("db down")
	_, err := newAuthService(repo).Login(context.Background(), models.LoginRequest{Username: "alice", Password: "pw"})
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
