package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-timesheet-api/internal/dto"
	apierrors "github.com/yukikurage/crm-timesheet-api/internal/errors"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
)

func TestAuthHandler_Register(t *testing.T) {
	env := setupHandlerTestEnv(t)

	c, w := newContext(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "NewUser",
		"email":    "New@Example.com",
		"password": "supersecret",
	}, nil)
	env.auth.Register(c)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode[struct {
		Message string      `json:"message"`
		User    dto.UserDTO `json:"user"`
	}](t, w)
	assert.Equal(t, "User registered", body.Message)
	assert.Equal(t, "newuser", body.User.Username)
	assert.Equal(t, "new@example.com", body.User.Email)
	assert.Equal(t, models.RoleUser, body.User.Role)

	c, w = newContext(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "newuser",
		"email":    "other@example.com",
		"password": "supersecret",
	}, nil)
	env.auth.Register(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	env := setupHandlerTestEnv(t)

	tests := []struct {
		name    string
		payload map[string]string
		message string
	}{
		{
			name:    "missing fields",
			payload: map[string]string{"username": "x"},
			message: "username, email and password are required",
		},
		{
			name:    "short password",
			payload: map[string]string{"username": "x", "email": "x@example.com", "password": "123"},
			message: "password must be at least 6 characters",
		},
		{
			name:    "unknown role",
			payload: map[string]string{"username": "x", "email": "x@example.com", "password": "123456", "role": "Boss"},
			message: "role must be one of Admin, HR, User",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext(http.MethodPost, "/api/auth/register", tt.payload, nil)
			env.auth.Register(c)

			require.Equal(t, http.StatusBadRequest, w.Code)
			body := decode[apierrors.APIError](t, w)
			assert.Equal(t, apierrors.ErrCodeInvalidInput, body.Code)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := env.createUser(t, "alice", models.RoleHR)

	c, w := newContext(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ALICE@example.com",
		"password": testPassword,
	}, nil)
	env.auth.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[dto.LoginResponse](t, w)
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Equal(t, int64(7200), body.ExpiresIn)
	assert.Equal(t, alice.ID, body.User.ID)
	assert.Equal(t, models.RoleHR, body.User.Role)

	claims, err := env.tokens.Verify(body.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, claims.ID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "HR", claims.Role)
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	env := setupHandlerTestEnv(t)
	bob := env.createUser(t, "bob", models.RoleUser)
	require.NoError(t, env.db.Model(bob).Update("is_active", false).Error)
	env.createUser(t, "carol", models.RoleUser)

	c, w := newContext(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "carol@example.com",
		"password": "wrong-password",
	}, nil)
	env.auth.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apierrors.ErrCodeInvalidCredentials, decode[apierrors.APIError](t, w).Code)

	c, w = newContext(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": testPassword,
	}, nil)
	env.auth.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newContext(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "bob@example.com",
		"password": testPassword,
	}, nil)
	env.auth.Login(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = newContext(http.MethodPost, "/api/auth/login", map[string]string{"email": "bob@example.com"}, nil)
	env.auth.Login(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := env.createUser(t, "alice", models.RoleAdmin)

	c, w := newContext(http.MethodGet, "/api/auth/me", nil, alice)
	env.auth.Me(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		User dto.ClaimDTO `json:"user"`
	}](t, w)
	assert.Equal(t, alice.ID, body.User.ID)
	assert.Equal(t, "Admin", body.User.Role)

	c, w = newContext(http.MethodGet, "/api/auth/me", nil, nil)
	env.auth.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := env.createUser(t, "alice", models.RoleUser)
	require.NoError(t, env.db.Model(alice).Update("is_temp_password", true).Error)

	c, w := newContext(http.MethodPost, "/api/auth/change-password", map[string]string{
		"old_password": "not-it",
		"new_password": "brand-new-pass",
	}, alice)
	env.auth.ChangePassword(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newContext(http.MethodPost, "/api/auth/change-password", map[string]string{
		"old_password": testPassword,
		"new_password": "brand-new-pass",
	}, alice)
	env.auth.ChangePassword(c)
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.User
	require.NoError(t, env.db.First(&stored, alice.ID).Error)
	assert.False(t, stored.IsTempPassword)
	assert.NotNil(t, stored.CredentialsValidSince)

	c, w = newContext(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "brand-new-pass",
	}, nil)
	env.auth.Login(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
