package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/crm-timesheet-api/internal/constants"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"github.com/yukikurage/crm-timesheet-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrAssigneeNotFound       = errors.New("assignee not found")
	ErrTaskCodeTaken          = errors.New("task_code already exists")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")

	ErrTaskFieldsRequired = newValidationError("title and assignee_id are required")
	ErrTitleEmpty         = newValidationError("title cannot be empty")
	ErrAssigneeRequired   = newValidationError("assignee_id is required")
	ErrInvalidStatus      = newValidationError("status must be one of %s", models.TaskStatusNames())
	ErrInvalidDueDate     = newValidationError("due_date must be YYYY-MM-DD")
	ErrDraftTextRequired  = newValidationError("text is required")
	ErrAssigneeInvalid    = newValidationError("assignee_id must be a positive integer")
)

// TaskDrafter turns free text into task suggestions.
type TaskDrafter interface {
	DraftTasks(ctx context.Context, text string) ([]TaskDraft, error)
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	drafter  TaskDrafter
	now      func() time.Time
}

// NewTaskService creates a new TaskService. drafter may be nil.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, drafter TaskDrafter) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		drafter:  drafter,
		now:      time.Now,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Search   string
	Priority string
	Status   string
	Sort     string
	Page     int
	PageSize int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title      string
	AssigneeID uint64
	TaskCode   string
	DueDate    string
	Priority   string
	Status     string
	Details    string
	CreatedBy  string
}

// UpdateTaskInput represents a partial task update. Nil fields are left untouched.
type UpdateTaskInput struct {
	Title        *string
	Priority     *string
	Status       *string
	Details      *string
	DueDate      *string
	ClearDueDate bool
	AssigneeID   *uint64
}

// ParseTaskUpdate decodes a partial update payload. Keys that are absent stay untouched;
// a null or empty due_date clears it.
func ParseTaskUpdate(raw map[string]any) (UpdateTaskInput, error) {
	var input UpdateTaskInput

	fields := []struct {
		key string
		dst **string
	}{
		{"title", &input.Title},
		{"priority", &input.Priority},
		{"status", &input.Status},
		{"details", &input.Details},
	}
	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			continue
		}
		s, ok := stringValue(v)
		if !ok {
			return input, newValidationError("%s must be a string", f.key)
		}
		*f.dst = &s
	}

	if v, ok := raw["due_date"]; ok {
		s, isString := stringValue(v)
		if !isString {
			return input, ErrInvalidDueDate
		}
		if strings.TrimSpace(s) == "" {
			input.ClearDueDate = true
		} else {
			input.DueDate = &s
		}
	}

	if v, ok := raw["assignee_id"]; ok {
		if v == nil {
			return input, ErrAssigneeRequired
		}
		id, ok := idValue(v)
		if !ok {
			return input, ErrAssigneeInvalid
		}
		input.AssigneeID = &id
	}

	return input, nil
}

// ListTasks returns a page of tasks matching the filters
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		Search:   input.Search,
		Priority: strings.TrimSpace(input.Priority),
		Status:   strings.TrimSpace(input.Status),
		Sort:     strings.TrimSpace(input.Sort),
		Page:     input.Page,
		PageSize: input.PageSize,
	}
	if status, ok := models.ParseTaskStatus(filter.Status); ok {
		filter.Status = string(status)
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with its assignee
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask validates and stores a new task
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.AssigneeID == 0 {
		return nil, ErrTaskFieldsRequired
	}

	status := models.TaskStatusOpen
	if input.Status != "" {
		parsed, ok := models.ParseTaskStatus(input.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		status = parsed
	}

	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	if err := s.ensureAssignee(input.AssigneeID); err != nil {
		return nil, err
	}

	priority := strings.TrimSpace(input.Priority)
	if priority == "" {
		priority = constants.DefaultTaskPriority
	}

	task := &models.Task{
		Title:      title,
		AssigneeID: input.AssigneeID,
		DueDate:    dueDate,
		Priority:   priority,
		Status:     status,
		Details:    input.Details,
		CreatedBy:  input.CreatedBy,
	}
	if code := strings.TrimSpace(input.TaskCode); code != "" {
		task.TaskCode = &code
	}

	if err := s.taskRepo.Create(task); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTaskCodeTaken
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.GetTask(task.ID)
}

// UpdateTask applies only the supplied fields
func (s *TaskService) UpdateTask(taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if input.Priority != nil {
		task.Priority = strings.TrimSpace(*input.Priority)
	}
	if input.Status != nil {
		status, ok := models.ParseTaskStatus(*input.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		task.Status = status
	}
	if input.Details != nil {
		task.Details = *input.Details
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		dueDate, err := parseDueDate(*input.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = dueDate
	}
	if input.AssigneeID != nil {
		if err := s.ensureAssignee(*input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = *input.AssigneeID
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.GetTask(task.ID)
}

// AssignTask changes the assignee of a task
func (s *TaskService) AssignTask(taskID, assigneeID uint64) (*models.Task, error) {
	if assigneeID == 0 {
		return nil, ErrAssigneeRequired
	}
	return s.UpdateTask(taskID, UpdateTaskInput{AssigneeID: &assigneeID})
}

// DeleteTask deletes a task and unlinks its timesheet entries
func (s *TaskService) DeleteTask(taskID uint64) error {
	if err := s.taskRepo.Delete(taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// SetStatus writes a status without the partial-update path. Used by the timesheet ledger.
func (s *TaskService) SetStatus(taskID uint64, status string) error {
	parsed, ok := models.ParseTaskStatus(status)
	if !ok {
		return ErrInvalidStatus
	}

	if err := s.taskRepo.SetStatus(taskID, parsed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to set task status: %w", err)
	}
	return nil
}

// DraftTasks asks the drafter for task suggestions. Nothing is persisted.
func (s *TaskService) DraftTasks(ctx context.Context, text string) ([]TaskDraft, error) {
	if s.drafter == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrDraftTextRequired
	}

	drafts, err := s.drafter.DraftTasks(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	today := s.now().Format(constants.DateLayout)
	valid := make([]TaskDraft, 0, len(drafts))
	for _, draft := range drafts {
		draft.Title = strings.TrimSpace(draft.Title)
		if draft.Title == "" {
			continue
		}

		if draft.DueDate != nil {
			// dates compare lexically in YYYY-MM-DD form
			if _, err := time.Parse(constants.DateLayout, *draft.DueDate); err != nil || *draft.DueDate < today {
				draft.DueDate = nil
			}
		}
		if draft.Priority == "" {
			draft.Priority = constants.DefaultTaskPriority
		}

		valid = append(valid, draft)
		if len(valid) == constants.MaxAIGeneratedTasks {
			break
		}
	}

	if len(valid) == 0 {
		return nil, ErrAINoTasksGenerated
	}

	return valid, nil
}

func (s *TaskService) ensureAssignee(id uint64) error {
	if _, err := s.userRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}
	return nil
}

// parseDueDate accepts YYYY-MM-DD or RFC3339. Empty means no due date.
func parseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(constants.DateLayout, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &day, nil
	}
	return nil, ErrInvalidDueDate
}
