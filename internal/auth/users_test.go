package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/canvasstrack/voterroll/internal/appconf"
	"github.com/canvasstrack/voterroll/internal/clock"
	"github.com/canvasstrack/voterroll/rolldb"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := rolldb.NewClient(rolldb.Config{Driver: "sqlite", DSN: ":memory:", Env: appconf.Test})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mc := clock.NewMockClock(time.Date(2024, 11, 1, 8, 0, 0, 0, time.UTC))
	svc, err := NewService(db, NewTokenIssuer(testSecret, appconf.DefaultTokenTTL, mc), bcrypt.MinCost, mc, nil)
	require.NoError(t, err)
	return svc
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, NewUser{Username: " worker ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "worker", created.Username)
	assert.Equal(t, "worker", created.DisplayName, "display name defaults to the username")
	assert.NotEqual(t, "secret1", created.PasswordHash)
	assert.Len(t, created.ID, 36)

	res, err := svc.Login(ctx, "worker", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	id, err := svc.Tokens().Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, id.UserID)
	assert.False(t, id.IsAdmin)

	_, err = svc.Login(ctx, "worker", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUser_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, NewUser{Username: "", Password: "secret1"})
	assert.ErrorIs(t, err, ErrMissingUsername)

	_, err = svc.CreateUser(ctx, NewUser{Username: "a", Password: "123"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.CreateUser(ctx, NewUser{Username: "admin", DisplayName: "Admin", Password: "secret1", IsAdmin: true})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, NewUser{Username: "admin", Password: "secret2"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestManageUsers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, NewUser{Username: "worker", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, svc.SetPassword(ctx, u.ID, "changed1"))
	_, err = svc.Login(ctx, "worker", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "worker", "changed1")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.SetPassword(ctx, u.ID, "x"), ErrWeakPassword)
	assert.ErrorIs(t, svc.SetPassword(ctx, "missing", "changed2"), ErrUserNotFound)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, svc.DeleteUser(ctx, u.ID))
	assert.ErrorIs(t, svc.DeleteUser(ctx, u.ID), ErrUserNotFound)
}
