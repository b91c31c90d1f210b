package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-timesheet-api/internal/constants"
	"github.com/yukikurage/crm-timesheet-api/internal/database"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"github.com/yukikurage/crm-timesheet-api/internal/repository"
	"github.com/yukikurage/crm-timesheet-api/internal/services"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "password123"

type handlerTestEnv struct {
	db        *gorm.DB
	tokens    *services.TokenService
	auth      *AuthHandler
	users     *UserHandler
	tasks     *TaskHandler
	timesheet *TimesheetHandler
	dashboard *DashboardHandler
}

func setupHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	log := zap.NewNop()
	require.NoError(t, database.Migrate(db, log))

	userRepo := repository.NewUserRepository(db)
	tokens := services.NewTokenService("test-secret", "crm-timesheet", 2*time.Hour)
	taskService := services.NewTaskService(repository.NewTaskRepository(db), userRepo, nil)

	return &handlerTestEnv{
		db:        db,
		tokens:    tokens,
		auth:      NewAuthHandler(services.NewAuthService(userRepo, tokens), tokens.TTL(), log),
		users:     NewUserHandler(services.NewUserService(userRepo), log),
		tasks:     NewTaskHandler(taskService, log),
		timesheet: NewTimesheetHandler(services.NewTimesheetService(repository.NewTimesheetRepository(db), taskService), log),
		dashboard: NewDashboardHandler(services.NewReportService(repository.NewReportRepository(db)), log),
	}
}

func (e *handlerTestEnv) createUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *handlerTestEnv) createTask(t *testing.T, title string, assignee uint64, status models.TaskStatus) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:      title,
		AssigneeID: assignee,
		Priority:   constants.DefaultTaskPriority,
		Status:     status,
	}
	require.NoError(t, e.db.Create(task).Error)
	return task
}

func (e *handlerTestEnv) taskStatus(t *testing.T, id uint64) models.TaskStatus {
	t.Helper()

	var task models.Task
	require.NoError(t, e.db.First(&task, id).Error)
	return task.Status
}

// newContext builds a gin context; a non-nil user is attached as verified claims.
func newContext(method, url string, body any, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		payload, _ := json.Marshal(body)
		req = httptest.NewRequest(method, url, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if user != nil {
		c.Set(constants.ContextKeyClaims, &services.Claims{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     string(user.Role),
		})
	}

	return c, w
}

func withIDParam(c *gin.Context, id uint64) {
	c.Params = gin.Params{{Key: "id", Value: formatID(id)}}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
