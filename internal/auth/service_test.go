package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

type serviceFixture struct {
	service     *auth.Service
	repo        *auth.MemoryRepository
	issuer      *auth.TokenIssuer
	recorder    *stubRecorder
	publisher   *stubPublisher
	revocations *memoryRevocations
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	f := serviceFixture{
		repo:        auth.NewMemoryRepository(),
		issuer:      newTestIssuer(t),
		recorder:    &stubRecorder{},
		publisher:   &stubPublisher{},
		revocations: &memoryRevocations{},
	}
	f.service = auth.NewService(f.repo, newTestHasher(t), f.issuer, auth.ServiceConfig{
		Events:      f.publisher,
		Recorder:    f.recorder,
		Revocations: f.revocations,
	})
	return f
}

var alice = auth.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "Secret1!"}

func TestRegister(t *testing.T) {
	f := newServiceFixture(t)

	user, err := f.service.Register(context.Background(), alice)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "Secret1!", user.Password)
	assert.Contains(t, user.Password, ".")

	stored, err := f.repo.FindByEmail(context.Background(), alice.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
	assert.Equal(t, []string{user.ID}, f.publisher.users)
	assert.Equal(t, 1, f.recorder.count("register:success"))
	assert.Equal(t, auth.DefaultTokenTTL, f.service.TokenTTL())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.Register(context.Background(), alice)
	require.NoError(t, err)

	_, err = f.service.Register(context.Background(), auth.RegisterInput{Name: "Other", Email: alice.Email, Password: "Other1!!"})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	assert.Equal(t, 1, f.recorder.count("register:rejected"))
}

func TestRegisterLosesRace(t *testing.T) {
	service := auth.NewService(racingRepo{}, newTestHasher(t), newTestIssuer(t), auth.ServiceConfig{})

	_, err := service.Register(context.Background(), alice)
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegisterStoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	service := auth.NewService(failingRepo{err: boom}, newTestHasher(t), newTestIssuer(t), auth.ServiceConfig{})

	_, err := service.Register(context.Background(), alice)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegisterIgnoresPublishFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.publisher.err = errors.New("queue down")

	user, err := f.service.Register(context.Background(), alice)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
}

func TestLogin(t *testing.T) {
	f := newServiceFixture(t)
	user, err := f.service.Register(context.Background(), alice)
	require.NoError(t, err)

	token, err := f.service.Login(context.Background(), auth.LoginInput{Email: alice.Email, Password: alice.Password})
	require.NoError(t, err)

	claims, err := f.issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, 1, f.recorder.count("login:success"))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.Register(context.Background(), alice)
	require.NoError(t, err)

	_, wrongPassword := f.service.Login(context.Background(), auth.LoginInput{Email: alice.Email, Password: "Wrong1!!"})
	_, unknownEmail := f.service.Login(context.Background(), auth.LoginInput{Email: "nobody@example.com", Password: alice.Password})

	assert.ErrorIs(t, wrongPassword, shared.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, shared.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, 2, f.recorder.count("login:rejected"))
}

func TestLoginStoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	service := auth.NewService(failingRepo{err: boom}, newTestHasher(t), newTestIssuer(t), auth.ServiceConfig{})

	_, err := service.Login(context.Background(), auth.LoginInput{Email: alice.Email, Password: alice.Password})
	assert.ErrorIs(t, err, boom)
}

func TestLoginHashTimeoutIsNotInvalidCredentials(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.Register(context.Background(), alice)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.service.Login(ctx, auth.LoginInput{Email: alice.Email, Password: alice.Password})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestCurrentUser(t *testing.T) {
	f := newServiceFixture(t)
	user, err := f.service.Register(context.Background(), alice)
	require.NoError(t, err)

	got, err := f.service.CurrentUser(context.Background(), &shared.Identity{ID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, alice.Email, got.Email)

	_, err = f.service.CurrentUser(context.Background(), &shared.Identity{ID: "missing"})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = f.service.CurrentUser(context.Background(), nil)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestLogout(t *testing.T) {
	f := newServiceFixture(t)
	id := &shared.Identity{ID: "user-1", TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}

	require.NoError(t, f.service.Logout(context.Background(), id))
	revoked, err := f.revocations.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, 1, f.recorder.count("logout:success"))
}

func TestLogoutWithoutRevocationStore(t *testing.T) {
	service := auth.NewService(auth.NewMemoryRepository(), newTestHasher(t), newTestIssuer(t), auth.ServiceConfig{})

	err := service.Logout(context.Background(), &shared.Identity{ID: "user-1", TokenID: "jti-1"})
	assert.ErrorIs(t, err, auth.ErrRevocationDisabled)
}
