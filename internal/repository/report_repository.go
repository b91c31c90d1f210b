package repository

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"gorm.io/gorm"
)

// GormReportRepository runs aggregate queries built with squirrel through GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &GormReportRepository{db: db}
}

// taskStatusCountsQuery builds the summary query. GORM rebinds the ? placeholders per dialect.
func taskStatusCountsQuery(assigneeID *uint64) (string, []interface{}, error) {
	q := sq.Select().
		Column(sq.Expr("SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS in_progress", string(models.TaskStatusInProgress))).
		Column(sq.Expr("SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS done", string(models.TaskStatusComplete))).
		From("tasks")
	if assigneeID != nil {
		q = q.Where(sq.Eq{"assignee_id": *assigneeID})
	}
	return q.ToSql()
}

// TaskStatusCounts counts in-progress and complete tasks. SUM over no rows is NULL, reported as zero.
func (r *GormReportRepository) TaskStatusCounts(assigneeID *uint64) (TaskStatusCounts, error) {
	query, args, err := taskStatusCountsQuery(assigneeID)
	if err != nil {
		return TaskStatusCounts{}, fmt.Errorf("build summary query: %w", err)
	}

	var row struct {
		InProgress *int64
		Done       *int64
	}
	if err := r.db.Raw(query, args...).Scan(&row).Error; err != nil {
		return TaskStatusCounts{}, err
	}

	var counts TaskStatusCounts
	if row.InProgress != nil {
		counts.InProgress = *row.InProgress
	}
	if row.Done != nil {
		counts.Done = *row.Done
	}
	return counts, nil
}
