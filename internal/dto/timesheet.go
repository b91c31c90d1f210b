package dto

import (
	"time"

	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"github.com/yukikurage/crm-timesheet-api/internal/services"
)

// TimesheetEntryDTO represents a timesheet entry in API responses
type TimesheetEntryDTO struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Username  *string   `json:"username,omitempty"`
	TaskID    *uint64   `json:"task_id"`
	WorkDate  *string   `json:"work_date"`
	StartTime *string   `json:"start_time"`
	EndTime   *string   `json:"end_time"`
	Hours     float64   `json:"hours"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// TimesheetListResponse represents a paginated list of entries
type TimesheetListResponse struct {
	Items      []TimesheetEntryDTO `json:"items"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	Total      int64               `json:"total"`
	TotalPages int                 `json:"total_pages"`
}

// BulkResponse reports a partially successful batch
type BulkResponse struct {
	Saved  int      `json:"saved"`
	Errors []string `json:"errors"`
}

// TaskStatusResponse acknowledges a ledger-driven status change
type TaskStatusResponse struct {
	OK     bool              `json:"ok"`
	TaskID uint64            `json:"task_id"`
	Status models.TaskStatus `json:"status"`
}

// SummaryResponse wraps the dashboard counters
type SummaryResponse struct {
	Data *services.Summary `json:"data"`
}

// ToTimesheetEntryDTO converts a TimesheetEntry model to its DTO
func ToTimesheetEntryDTO(entry models.TimesheetEntry) TimesheetEntryDTO {
	dto := TimesheetEntryDTO{
		ID:        entry.ID,
		UserID:    entry.UserID,
		TaskID:    entry.TaskID,
		WorkDate:  entry.WorkDate,
		StartTime: entry.StartTime,
		EndTime:   entry.EndTime,
		Hours:     entry.Hours,
		Notes:     entry.Notes,
		CreatedAt: entry.CreatedAt,
	}

	if entry.User.ID != 0 {
		name := entry.User.Username
		dto.Username = &name
	}

	return dto
}

// ToTimesheetListResponse converts entries to TimesheetListResponse
func ToTimesheetListResponse(entries []models.TimesheetEntry, page, pageSize int, total int64) TimesheetListResponse {
	items := make([]TimesheetEntryDTO, len(entries))
	for i, entry := range entries {
		items[i] = ToTimesheetEntryDTO(entry)
	}

	return TimesheetListResponse{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}

// ToBulkResponse converts a bulk result; errors is never null
func ToBulkResponse(result *services.BulkResult) BulkResponse {
	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	return BulkResponse{Saved: result.Saved, Errors: errs}
}
