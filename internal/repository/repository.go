package repository

import (
	"github.com/yukikurage/crm-timesheet-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email, ignoring case
	FindByEmail(email string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// List returns all users ordered by id
	List() ([]models.User, error)

	// ListActive returns active users ordered by username
	ListActive() ([]models.User, error)

	// Update saves every field of the user
	Update(user *models.User) error

	// Delete removes the user and their timesheet entries.
	// It fails with ErrUserHasTasks while tasks are still assigned to the user.
	Delete(id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task, deriving its code from the new id when none is set
	Create(task *models.Task) error

	// FindByID finds a task by ID with its assignee
	FindByID(id uint64) (*models.Task, error)

	// FindByCode finds a task by its human-readable code
	FindByCode(code string) (*models.Task, error)

	// List retrieves tasks with filtering, sorting and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update saves every field of the task
	Update(task *models.Task) error

	// Delete removes a task and unlinks its timesheet entries
	Delete(id uint64) error

	// SetStatus writes status unconditionally. It returns ErrNotFound when the task does not exist.
	SetStatus(id uint64, status models.TaskStatus) error

	// StartOpenTasks moves the given tasks from Open to In Progress and leaves others untouched
	StartOpenTasks(ids []uint64) (int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Search   string
	Priority string
	Status   string
	Sort     string
	Page     int
	PageSize int
}

// TimesheetRepository defines the interface for timesheet entry data access
type TimesheetRepository interface {
	// Create stores the entry and starts its Open task in one transaction
	Create(entry *models.TimesheetEntry) error

	// CreateBatch stores all entries and starts their Open tasks in one transaction
	CreateBatch(entries []*models.TimesheetEntry) error

	// FindByID finds an entry by ID
	FindByID(id uint64) (*models.TimesheetEntry, error)

	// List retrieves entries with filtering and pagination
	List(filter TimesheetFilter) ([]models.TimesheetEntry, int64, error)

	// Update saves the entry; when startTask is set its Open task moves to In Progress in the same transaction
	Update(entry *models.TimesheetEntry, startTask bool) error

	// Delete removes an entry
	Delete(id uint64) error
}

// TimesheetFilter holds filtering options for listing entries
type TimesheetFilter struct {
	UserID   *uint64
	TaskID   *uint64
	From     string
	To       string
	Page     int
	PageSize int
}

// ReportRepository defines read-only aggregate queries
type ReportRepository interface {
	// TaskStatusCounts counts in-progress and complete tasks, optionally for one assignee
	TaskStatusCounts(assigneeID *uint64) (TaskStatusCounts, error)
}

// TaskStatusCounts holds aggregate task counts
type TaskStatusCounts struct {
	InProgress int64
	Done       int64
}
