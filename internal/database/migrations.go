package database

import (
	"fmt"

	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema and the composite indexes.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TimesheetEntry{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db, log); err != nil {
		return err
	}

	log.Info("database migrations completed")
	return nil
}

// AddIndexes adds the composite indexes the list and report queries rely on.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// ledger listing: scoped by user, ordered by work date
		{"timesheets", "idx_timesheets_user_work_date", "user_id, work_date"},
		{"timesheets", "idx_timesheets_task_id_user", "task_id, user_id"},

		// dashboard summary: counts by assignee and status
		{"tasks", "idx_tasks_assignee_status", "assignee_id, status"},
		{"tasks", "idx_tasks_created_at", "created_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", zap.String("index", idx.name), zap.String("table", idx.table))
	}

	return nil
}
