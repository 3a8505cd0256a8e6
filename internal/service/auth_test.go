package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/altarie/internal/apperror"
	"github.com/sakif/altarie/internal/auth"
	"github.com/sakif/altarie/internal/logger"
)

const testSecret = "pepper"

func newTestAuthService(t *testing.T) (*AuthService, *fakeUsers, *fakeSessions) {
	t.Helper()
	users := newFakeUsers()
	sessions := newFakeSessions()

	hasher := auth.NewHasher("sha256", testSecret)
	hash, err := hasher.Hash("admin123")
	require.NoError(t, err)
	_, err = users.CreateWithPassword(context.Background(), "Administrator", "admin@altarie.local", hash)
	require.NoError(t, err)
	_, err = users.Create(context.Background(), "No Password", "nopass@altarie.local")
	require.NoError(t, err)

	svc := NewAuthService(users, sessions, hasher, 2*time.Hour, logger.Discard())
	return svc, users, sessions
}

func TestLogin_Success(t *testing.T) {
	svc, _, sessions := newTestAuthService(t)

	res, err := svc.Login(context.Background(), " admin@altarie.local ", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin@altarie.local", res.User.Email)
	assert.Empty(t, res.User.PasswordHash, "hash must not leave the service")
	assert.Equal(t, res.User.ID, res.Session.UserID)
	assert.Contains(t, sessions.byToken, res.Session.Token)
	assert.Equal(t, 2*time.Hour, sessions.lastTTL)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, sessions := newTestAuthService(t)

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "admin@altarie.local", "nope"},
		{"unknown email", "ghost@altarie.local", "admin123"},
		{"no password set", "nopass@altarie.local", "anything"},
		{"empty email", "", "admin123"},
		{"empty password", "admin@altarie.local", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCredentials))
			assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
			assert.Equal(t, "Invalid credentials", err.Error())
		})
	}
	assert.Empty(t, sessions.byToken)
}

func TestLogin_AcceptsBcryptHashes(t *testing.T) {
	users := newFakeUsers()
	bcryptHash, err := auth.NewBcryptHasherWithCost(4).Hash("s3cret")
	require.NoError(t, err)
	_, err = users.CreateWithPassword(context.Background(), "B", "b@example.com", bcryptHash)
	require.NoError(t, err)

	svc := NewAuthService(users, newFakeSessions(), auth.NewHasher("sha256", ""), 0, logger.Discard())
	_, err = svc.Login(context.Background(), "b@example.com", "s3cret")
	assert.NoError(t, err)
}

func TestLogin_RepositoryErrorsPropagate(t *testing.T) {
	svc, users, sessions := newTestAuthService(t)

	users.findErr = errDatabase
	_, err := svc.Login(context.Background(), "admin@altarie.local", "admin123")
	assert.True(t, errors.Is(err, errDatabase))
	assert.False(t, errors.Is(err, ErrInvalidCredentials))

	users.findErr = nil
	sessions.createErr = errDatabase
	_, err = svc.Login(context.Background(), "admin@altarie.local", "admin123")
	assert.True(t, errors.Is(err, errDatabase))
}

func TestLogout(t *testing.T) {
	svc, _, sessions := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "admin@altarie.local", "admin123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.Session.Token))
	assert.NotContains(t, sessions.byToken, res.Session.Token)

	assert.NoError(t, svc.Logout(ctx, ""))
	assert.NoError(t, svc.Logout(ctx, "unknown"))
}

func TestSessionTTL(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	assert.Equal(t, 2*time.Hour, svc.SessionTTL())

	def := NewAuthService(nil, nil, nil, 0, logger.Discard())
	assert.Equal(t, 24*time.Hour, def.SessionTTL())
}
