package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-timesheet-api/internal/database"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"github.com/yukikurage/crm-timesheet-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	tokens     *TokenService
	auth       *AuthService
	users      *UserService
	tasks      *TaskService
	timesheets *TimesheetService
	reports    *ReportService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db, zap.NewNop()))

	userRepo := repository.NewUserRepository(db)
	tokens := NewTokenService("test-secret", "crm-timesheet", defaultTestTTL)
	tasks := NewTaskService(repository.NewTaskRepository(db), userRepo, nil)

	return &testEnv{
		db:         db,
		tokens:     tokens,
		auth:       NewAuthService(userRepo, tokens),
		users:      NewUserService(userRepo),
		tasks:      tasks,
		timesheets: NewTimesheetService(repository.NewTimesheetRepository(db), tasks),
		reports:    NewReportService(repository.NewReportRepository(db)),
	}
}

func (e *testEnv) createUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
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

func (e *testEnv) createTask(t *testing.T, assignee uint64, status models.TaskStatus) *models.Task {
	t.Helper()

	task, err := e.tasks.CreateTask(CreateTaskInput{
		Title:      "Task",
		AssigneeID: assignee,
		Status:     string(status),
	})
	require.NoError(t, err)
	return task
}

func (e *testEnv) taskStatus(t *testing.T, id uint64) models.TaskStatus {
	t.Helper()

	var task models.Task
	require.NoError(t, e.db.First(&task, id).Error)
	return task.Status
}

func actorOf(user *models.User) Actor {
	return Actor{UserID: user.ID, Username: user.Username, Role: user.Role}
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}
