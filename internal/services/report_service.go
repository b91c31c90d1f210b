package services

import (
	"fmt"
	"strings"

	"github.com/yukikurage/crm-timesheet-api/internal/repository"
)

const (
	ScopeMine = "mine"
	ScopeAll  = "all"
)

// Summary holds task counts for the dashboard.
type Summary struct {
	Scope           string `json:"scope"`
	InProgressCount int64  `json:"in_progress_count"`
	DoneCount       int64  `json:"done_count"`
}

// ReportService serves read-only aggregates
type ReportService struct {
	reportRepo repository.ReportRepository
}

// NewReportService creates a new ReportService
func NewReportService(reportRepo repository.ReportRepository) *ReportService {
	return &ReportService{reportRepo: reportRepo}
}

// Summary counts in-progress and complete tasks. Callers without Admin or HR
// always get their own counts whatever scope they ask for.
func (s *ReportService) Summary(actor Actor, scope string) (*Summary, error) {
	// anything other than "all" means mine
	if !strings.EqualFold(strings.TrimSpace(scope), ScopeAll) || !actor.Privileged() {
		scope = ScopeMine
	} else {
		scope = ScopeAll
	}

	var assigneeID *uint64
	if scope == ScopeMine {
		id := actor.UserID
		assigneeID = &id
	}

	counts, err := s.reportRepo.TaskStatusCounts(assigneeID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	return &Summary{
		Scope:           scope,
		InProgressCount: counts.InProgress,
		DoneCount:       counts.Done,
	}, nil
}
