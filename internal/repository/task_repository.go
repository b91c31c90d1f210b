package repository

import (
	"fmt"
	"strings"

	"github.com/yukikurage/crm-timesheet-api/internal/constants"
	"github.com/yukikurage/crm-timesheet-api/internal/database"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"github.com/yukikurage/crm-timesheet-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortableTaskColumns maps the public sort keys onto task columns
var sortableTaskColumns = map[string]string{
	"id":          "tasks.id",
	"task_code":   "tasks.task_code",
	"title":       "tasks.title",
	"assignee_id": "tasks.assignee_id",
	"due_date":    "tasks.due_date",
	"priority":    "tasks.priority",
	"status":      "tasks.status",
	"details":     "tasks.details",
	"created_by":  "tasks.created_by",
	"created_at":  "tasks.created_at",
	"updated_at":  "tasks.updated_at",
}

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts the task. Without a code, the code is derived from the
// new row's id inside the same transaction. A supplied code may already hold
// that value, in which case a numbered suffix is appended until one is free.
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}
		if task.TaskCode != nil {
			return nil
		}

		code, err := freeTaskCode(tx, task.ID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).Update("task_code", code).Error; err != nil {
			return err
		}
		task.TaskCode = &code
		return nil
	})
}

// freeTaskCode checks before writing; a failed UPDATE would abort the
// surrounding transaction on postgres.
func freeTaskCode(tx *gorm.DB, id uint64) (string, error) {
	base := fmt.Sprintf(constants.TaskCodeFormat, id)
	code := base
	for n := 1; ; n++ {
		var count int64
		if err := tx.Model(&models.Task{}).Where("task_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
		code = fmt.Sprintf("%s-%d", base, n)
	}
}

// FindByID finds a task by ID with its assignee
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.Preload("Assignee").First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByCode finds a task by its human-readable code
func (r *GormTaskRepository) FindByCode(code string) (*models.Task, error) {
	var task models.Task
	if err := r.db.Where("task_code = ?", code).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering, sorting and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Joins("JOIN users ON users.id = tasks.assignee_id")

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"(LOWER(tasks.title) LIKE ? OR LOWER(tasks.details) LIKE ? OR LOWER(tasks.task_code) LIKE ? OR LOWER(users.username) LIKE ?)",
			like, like, like, like,
		)
	}
	if filter.Priority != "" {
		query = query.Where("tasks.priority = ?", filter.Priority)
	}
	if filter.Status != "" {
		query = query.Where("tasks.status = ?", filter.Status)
	}

	base := query.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := base.Select("tasks.*").Order(taskOrder(filter.Sort))
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	if err := listQuery.Preload("Assignee").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// taskOrder turns "field" or "-field" into an ORDER BY clause. Unknown fields sort newest first.
func taskOrder(sort string) string {
	desc := strings.HasPrefix(sort, "-")
	column, ok := sortableTaskColumns[strings.TrimLeft(sort, "-")]
	if !ok {
		return "tasks.created_at DESC, tasks.id DESC"
	}
	if desc {
		return column + " DESC, tasks.id DESC"
	}
	return column + " ASC, tasks.id ASC"
}

// Update saves every field of the task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// Delete removes a task and unlinks its timesheet entries in a transaction
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TimesheetEntry{}).
			Where("task_id = ?", id).
			Update("task_id", nil).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Task{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SetStatus writes status unconditionally
func (r *GormTaskRepository) SetStatus(id uint64, status models.TaskStatus) error {
	res := r.db.Model(&models.Task{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// some drivers report zero rows when the value did not change
	var count int64
	if err := r.db.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// StartOpenTasks moves the given tasks from Open to In Progress
func (r *GormTaskRepository) StartOpenTasks(ids []uint64) (int64, error) {
	return startOpenTasks(r.db, ids)
}

// startOpenTasks only touches rows still Open, so a concurrent direct status
// update is never overwritten.
func startOpenTasks(tx *gorm.DB, ids []uint64) (int64, error) {
	ids = uniqueUint64(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	res := tx.Model(&models.Task{}).
		Where("id IN ? AND status = ?", ids, models.TaskStatusOpen).
		Update("status", models.TaskStatusInProgress)
	return res.RowsAffected, res.Error
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
