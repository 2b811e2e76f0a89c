package service

import (
	"testing"
	"time"

	"sst_backend/internal/config"
	"sst_backend/internal/model"
	"sst_backend/internal/repository"
	"sst_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(env *testEnv) *AuthService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(
		repository.NewUserRepository(env.db),
		repository.NewWorkerRepository(env.db),
		cfg,
	)
}

func TestRegisterHashesPasswordAndDefaultsRole(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	user := &model.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
		IsActive: true,
	}
	require.NoError(t, auth.Register(user))
	assert.NotEqual(t, "secret123", user.Password)
	assert.Equal(t, model.Employee, user.Role)

	dup := &model.User{Username: "alice2", Email: "alice@example.com", Password: "x"}
	assert.ErrorIs(t, auth.Register(dup), util.ErrEmailRegistered)
}

func TestLoginIssuesParsableToken(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	user := &model.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
		Role:     model.Trainer,
		IsActive: true,
	}
	require.NoError(t, auth.Register(user))

	token, err := auth.Login("alice@example.com", "secret123")
	require.NoError(t, err)

	claims, err := util.ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Trainer, claims.Role)
	assert.Equal(t, "alice@example.com", claims.Email)

	// Login refreshes the activity timestamp.
	var reloaded model.User
	require.NoError(t, env.db.First(&reloaded, user.ID).Error)
	assert.NotNil(t, reloaded.LastSeenAt)
}

func TestLoginRejectsBadCredentialsAndDisabledAccounts(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	user := &model.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
		IsActive: true,
	}
	require.NoError(t, auth.Register(user))

	_, err := auth.Login("alice@example.com", "wrong")
	assert.EqualError(t, err, "invalid credentials")

	_, err = auth.Login("nobody@example.com", "secret123")
	assert.EqualError(t, err, "invalid credentials")

	require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = auth.Login("alice@example.com", "secret123")
	assert.EqualError(t, err, "account is disabled")
}
