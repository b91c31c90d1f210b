package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-timesheet-api/internal/constants"
	"github.com/yukikurage/crm-timesheet-api/internal/dto"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func TestUserHandler_CreateAndList(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.createUser(t, "admin", models.RoleAdmin)

	c, w := newContext(http.MethodPost, "/api/users", map[string]string{
		"username": "dave",
		"email":    "dave@example.com",
		"role":     "hr",
	}, admin)
	env.users.CreateUser(c)

	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[dto.CreatedUserResponse](t, w)
	assert.Equal(t, "User created", created.Message)
	assert.Equal(t, models.RoleHR, created.User.Role)
	assert.True(t, created.User.IsTempPassword)
	assert.Len(t, created.TempPassword, constants.TempPasswordLength)

	var stored models.User
	require.NoError(t, env.db.First(&stored, created.User.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(created.TempPassword)))

	c, w = newContext(http.MethodPost, "/api/users", map[string]string{
		"username": "dave",
		"email":    "dave2@example.com",
	}, admin)
	env.users.CreateUser(c)
	assert.Equal(t, http.StatusConflict, w.Code)

	c, w = newContext(http.MethodGet, "/api/users", nil, admin)
	env.users.ListUsers(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.UserDTO](t, w), 2)
}

func TestUserHandler_ResetDisableEnable(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.createUser(t, "admin", models.RoleAdmin)
	erin := env.createUser(t, "erin", models.RoleUser)

	c, w := newContext(http.MethodPost, "/api/users/1/reset", nil, admin)
	withIDParam(c, erin.ID)
	env.users.ResetPassword(c)
	require.Equal(t, http.StatusOK, w.Code)
	reset := decode[map[string]string](t, w)
	assert.Len(t, reset["new_password"], constants.TempPasswordLength)

	c, w = newContext(http.MethodPost, "/api/users/1/disable", nil, admin)
	withIDParam(c, erin.ID)
	env.users.DisableUser(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = newContext(http.MethodGet, "/api/users/assignable", nil, erin)
	env.users.ListAssignable(c)
	require.Equal(t, http.StatusOK, w.Code)
	assignable := decode[[]dto.AssignableUserDTO](t, w)
	require.Len(t, assignable, 1)
	assert.Equal(t, "admin", assignable[0].Username)

	c, w = newContext(http.MethodPatch, "/api/users/1/enable", nil, admin)
	withIDParam(c, erin.ID)
	env.users.EnableUser(c)
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.User
	require.NoError(t, env.db.First(&stored, erin.ID).Error)
	assert.True(t, stored.IsActive)
	assert.True(t, stored.IsTempPassword)

	c, w = newContext(http.MethodPost, "/api/users/999/disable", nil, admin)
	withIDParam(c, 999)
	env.users.DisableUser(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_Delete(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.createUser(t, "admin", models.RoleAdmin)
	busy := env.createUser(t, "busy", models.RoleUser)
	idle := env.createUser(t, "idle", models.RoleUser)
	env.createTask(t, "Keep going", busy.ID, models.TaskStatusOpen)

	c, w := newContext(http.MethodDelete, "/api/users/1", nil, admin)
	withIDParam(c, busy.ID)
	env.users.DeleteUser(c)
	assert.Equal(t, http.StatusConflict, w.Code)

	c, w = newContext(http.MethodDelete, "/api/users/1", nil, admin)
	withIDParam(c, idle.ID)
	env.users.DeleteUser(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newContext(http.MethodDelete, "/api/users/1", nil, admin)
	withIDParam(c, idle.ID)
	env.users.DeleteUser(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
