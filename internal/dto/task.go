package dto

import (
	"time"

	"github.com/yukikurage/crm-timesheet-api/internal/constants"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"github.com/yukikurage/crm-timesheet-api/internal/services"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64            `json:"id"`
	TaskCode     *string           `json:"task_code"`
	Title        string            `json:"title"`
	AssigneeID   uint64            `json:"assignee_id"`
	AssigneeName *string           `json:"assignee_name"`
	DueDate      *string           `json:"due_date"`
	Priority     string            `json:"priority"`
	Status       models.TaskStatus `json:"status"`
	Details      string            `json:"details"`
	CreatedBy    string            `json:"created_by"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Data       []TaskDTO `json:"data"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	Total      int64     `json:"total"`
	TotalPages int       `json:"total_pages"`
}

// AssignResponse acknowledges a reassignment
type AssignResponse struct {
	Message      string  `json:"message"`
	AssigneeName string  `json:"assignee_name"`
	Task         TaskDTO `json:"task"`
}

// TaskDraftsResponse carries AI suggestions that were not persisted
type TaskDraftsResponse struct {
	Tasks []services.TaskDraft `json:"tasks"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:         task.ID,
		TaskCode:   task.TaskCode,
		Title:      task.Title,
		AssigneeID: task.AssigneeID,
		Priority:   task.Priority,
		Status:     task.Status,
		Details:    task.Details,
		CreatedBy:  task.CreatedBy,
		CreatedAt:  task.CreatedAt,
		UpdatedAt:  task.UpdatedAt,
	}

	// Include assignee name if preloaded
	if task.Assignee.ID != 0 {
		name := task.Assignee.Username
		dto.AssigneeName = &name
	}

	if task.DueDate != nil {
		due := task.DueDate.Format(constants.DateLayout)
		dto.DueDate = &due
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, total int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Data:       items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}
