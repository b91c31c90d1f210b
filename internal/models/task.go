package models

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "Open"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusComplete   TaskStatus = "Complete"
	TaskStatusCancelled  TaskStatus = "Cancelled"

	// legacyStatusClosed was written by older ledger code; it means Complete.
	legacyStatusClosed = "Closed"
)

var taskStatuses = []TaskStatus{
	TaskStatusOpen,
	TaskStatusInProgress,
	TaskStatusComplete,
	TaskStatusCancelled,
}

// ParseTaskStatus validates s against the canonical statuses. "Closed" maps to Complete.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	if s == legacyStatusClosed {
		return TaskStatusComplete, true
	}
	for _, st := range taskStatuses {
		if s == string(st) {
			return st, true
		}
	}
	return "", false
}

// TaskStatusNames returns the canonical statuses as a comma separated list.
func TaskStatusNames() string {
	names := make([]string, len(taskStatuses))
	for i, st := range taskStatuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

type Task struct {
	ID         uint64     `gorm:"primarykey" json:"id"`
	TaskCode   *string    `gorm:"type:varchar(32);uniqueIndex" json:"task_code"`
	Title      string     `gorm:"type:varchar(200);not null" json:"title"`
	AssigneeID uint64     `gorm:"not null;index" json:"assignee_id"`
	DueDate    *time.Time `json:"due_date"`
	Priority   string     `gorm:"type:varchar(20);not null;default:'Medium'" json:"priority"`
	Status     TaskStatus `gorm:"type:varchar(20);not null;default:'Open';index" json:"status"`
	Details    string     `gorm:"type:text" json:"details"`
	CreatedBy  string     `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Relations
	Assignee User `gorm:"foreignKey:AssigneeID" json:"-"`
}
