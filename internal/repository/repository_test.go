package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-timesheet-api/internal/database"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "hashed",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTask(t *testing.T, db *gorm.DB, title string, assignee uint64, status models.TaskStatus) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:      title,
		AssigneeID: assignee,
		Priority:   "Medium",
		Status:     status,
	}
	require.NoError(t, NewTaskRepository(db).Create(task))
	return task
}

func taskStatus(t *testing.T, db *gorm.DB, id uint64) models.TaskStatus {
	t.Helper()

	var task models.Task
	require.NoError(t, db.First(&task, id).Error)
	return task.Status
}

func strPtr(s string) *string {
	return &s
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}
