package services

import (
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
	ErrEntryNotFound   = errors.New("timesheet entry not found")
	ErrEntryForbidden  = errors.New("you can only modify your own timesheet entries")
	ErrReopenForbidden = errors.New("only Admin or HR can reopen tasks")

	ErrTaskIDRequired  = newValidationError("task_id is required")
	ErrTaskIDInvalid   = newValidationError("task_id must be a positive integer")
	ErrEntriesRequired = newValidationError("entries (list) is required")
	ErrRowNotObject    = newValidationError("entry must be an object")
	ErrRowModeRequired = newValidationError("missing hours or (work_date,start_time,end_time)")
	ErrRangeNotStrings = newValidationError("work_date, start_time and end_time must be strings")
	ErrNotesNotString  = newValidationError("notes must be a string")
	ErrFromFormat      = newValidationError("from must be YYYY-MM-DD")
	ErrToFormat        = newValidationError("to must be YYYY-MM-DD")
)

var rangeKeys = []string{"work_date", "start_time", "end_time"}

// TimesheetService handles the timesheet ledger
type TimesheetService struct {
	entryRepo repository.TimesheetRepository
	tasks     *TaskService
}

// NewTimesheetService creates a new TimesheetService
func NewTimesheetService(entryRepo repository.TimesheetRepository, tasks *TaskService) *TimesheetService {
	return &TimesheetService{
		entryRepo: entryRepo,
		tasks:     tasks,
	}
}

// EntryInput is a new entry in either range mode (work date, start and end
// time) or direct mode (hours).
type EntryInput struct {
	TaskID    *uint64
	WorkDate  string
	StartTime string
	EndTime   string
	Hours     any
	HasHours  bool
	Notes     string
}

// EntryRange is a complete work interval in HH:MM form.
type EntryRange struct {
	WorkDate  string
	StartTime string
	EndTime   string
}

// EntryUpdate is a partial entry update. Range wins over Hours when both are set.
type EntryUpdate struct {
	TaskID    *uint64
	ClearTask bool
	Notes     *string
	Range     *EntryRange
	Hours     any
	HasHours  bool
}

// ListEntriesInput represents filters for listing entries
type ListEntriesInput struct {
	UserID   *uint64
	TaskID   *uint64
	From     string
	To       string
	Page     int
	PageSize int
}

// BulkResult reports how many rows were stored and why the others were not.
type BulkResult struct {
	Saved  int
	Errors []string
}

// ParseEntryInput decodes a create payload.
func ParseEntryInput(raw map[string]any) (EntryInput, error) {
	var input EntryInput

	if v, ok := raw["task_id"]; ok && v != nil {
		id, ok := idValue(v)
		if !ok {
			return input, ErrTaskIDInvalid
		}
		input.TaskID = &id
	}

	fields := []*string{&input.WorkDate, &input.StartTime, &input.EndTime}
	for i, key := range rangeKeys {
		s, ok := stringValue(raw[key])
		if !ok {
			return input, ErrRangeNotStrings
		}
		*fields[i] = strings.TrimSpace(s)
	}

	input.Hours, input.HasHours = raw["hours"]

	notes, err := notesValue(raw)
	if err != nil {
		return input, err
	}
	input.Notes = notes

	return input, nil
}

// ParseEntryUpdate decodes an update payload; only keys present are applied.
func ParseEntryUpdate(raw map[string]any) (EntryUpdate, error) {
	var update EntryUpdate

	if v, ok := raw["task_id"]; ok {
		if v == nil {
			update.ClearTask = true
		} else {
			id, ok := idValue(v)
			if !ok {
				return update, ErrTaskIDInvalid
			}
			update.TaskID = &id
		}
	}

	_, hasNotes := raw["notes"]
	_, hasNote := raw["note"]
	if hasNotes || hasNote {
		notes, err := notesValue(raw)
		if err != nil {
			return update, err
		}
		update.Notes = &notes
	}

	if hasKeys(raw, rangeKeys...) {
		values := make([]string, len(rangeKeys))
		for i, key := range rangeKeys {
			s, ok := stringValue(raw[key])
			if !ok {
				return update, ErrRangeNotStrings
			}
			values[i] = s
		}
		update.Range = &EntryRange{WorkDate: values[0], StartTime: values[1], EndTime: values[2]}
	}

	update.Hours, update.HasHours = raw["hours"]

	return update, nil
}

// ListEntries returns a page of entries. Callers without Admin or HR only ever see their own entries.
func (s *TimesheetService) ListEntries(actor Actor, input ListEntriesInput) ([]models.TimesheetEntry, int64, error) {
	userID := actor.UserID
	if actor.Privileged() && input.UserID != nil {
		userID = *input.UserID
	}

	from := strings.TrimSpace(input.From)
	if from != "" && !isDate(from) {
		return nil, 0, ErrFromFormat
	}
	to := strings.TrimSpace(input.To)
	if to != "" && !isDate(to) {
		return nil, 0, ErrToFormat
	}

	entries, total, err := s.entryRepo.List(repository.TimesheetFilter{
		UserID:   &userID,
		TaskID:   input.TaskID,
		From:     from,
		To:       to,
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list timesheet entries: %w", err)
	}

	return entries, total, nil
}

// CreateEntry stores an entry for the actor. A linked Open task moves to In Progress.
func (s *TimesheetService) CreateEntry(actor Actor, input EntryInput) (*models.TimesheetEntry, error) {
	entry := &models.TimesheetEntry{
		UserID: actor.UserID,
		TaskID: input.TaskID,
		Notes:  strings.TrimSpace(input.Notes),
	}

	switch {
	case input.WorkDate != "" && input.StartTime != "" && input.EndTime != "":
		r, err := strictRange(input.WorkDate, input.StartTime, input.EndTime)
		if err != nil {
			return nil, err
		}
		applyRange(entry, r)
	case input.HasHours:
		hours, err := directHours(input.Hours)
		if err != nil {
			return nil, err
		}
		workDate, err := optionalWorkDate(input.WorkDate)
		if err != nil {
			return nil, err
		}
		entry.Hours = hours
		entry.WorkDate = workDate
	default:
		return nil, ErrHoursModeRequired
	}

	if err := s.entryRepo.Create(entry); err != nil {
		return nil, fmt.Errorf("failed to create timesheet entry: %w", err)
	}
	return entry, nil
}

// BulkCreate validates every row on its own. Valid rows are stored together;
// invalid rows are reported as "row N: reason". It fails only when no row is valid.
func (s *TimesheetService) BulkCreate(actor Actor, rows []any) (*BulkResult, error) {
	if len(rows) == 0 {
		return nil, ErrEntriesRequired
	}

	entries := make([]*models.TimesheetEntry, 0, len(rows))
	rowErrors := []string{}
	for i, raw := range rows {
		entry, err := bulkEntry(actor, raw)
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: %s", i+1, err.Error()))
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, &ValidationError{Message: strings.Join(rowErrors, "; "), Details: rowErrors}
	}

	if err := s.entryRepo.CreateBatch(entries); err != nil {
		return nil, fmt.Errorf("failed to save timesheet entries: %w", err)
	}

	return &BulkResult{Saved: len(entries), Errors: rowErrors}, nil
}

// UpdateEntry applies a partial update to an entry the actor may modify.
// Linking the entry to a different task moves that task from Open to In Progress.
func (s *TimesheetService) UpdateEntry(actor Actor, id uint64, update EntryUpdate) (*models.TimesheetEntry, error) {
	entry, err := s.findModifiableEntry(actor, id)
	if err != nil {
		return nil, err
	}

	startTask := false
	if update.ClearTask {
		entry.TaskID = nil
	} else if update.TaskID != nil {
		startTask = entry.TaskID == nil || *entry.TaskID != *update.TaskID
		entry.TaskID = update.TaskID
	}

	if update.Notes != nil {
		entry.Notes = strings.TrimSpace(*update.Notes)
	}

	if update.Range != nil {
		r, err := strictRange(update.Range.WorkDate, update.Range.StartTime, update.Range.EndTime)
		if err != nil {
			return nil, err
		}
		applyRange(entry, r)
	} else if update.HasHours {
		hours, err := directHours(update.Hours)
		if err != nil {
			return nil, err
		}
		entry.Hours = hours
	}

	if err := s.entryRepo.Update(entry, startTask); err != nil {
		return nil, fmt.Errorf("failed to update timesheet entry: %w", err)
	}
	return entry, nil
}

// DeleteEntry removes an entry the actor may modify.
func (s *TimesheetService) DeleteEntry(actor Actor, id uint64) error {
	if _, err := s.findModifiableEntry(actor, id); err != nil {
		return err
	}

	if err := s.entryRepo.Delete(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("failed to delete timesheet entry: %w", err)
	}
	return nil
}

// MarkComplete closes a task from the timesheet screen.
func (s *TimesheetService) MarkComplete(taskID uint64) error {
	return s.tasks.SetStatus(taskID, string(models.TaskStatusComplete))
}

// Reopen sets a task back to Open. Only Admin and HR may do this.
func (s *TimesheetService) Reopen(actor Actor, taskID uint64) error {
	if !actor.Privileged() {
		return ErrReopenForbidden
	}
	return s.tasks.SetStatus(taskID, string(models.TaskStatusOpen))
}

func (s *TimesheetService) findModifiableEntry(actor Actor, id uint64) (*models.TimesheetEntry, error) {
	entry, err := s.entryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to find timesheet entry: %w", err)
	}

	if !actor.Privileged() && entry.UserID != actor.UserID {
		return nil, ErrEntryForbidden
	}
	return entry, nil
}

// bulkEntry turns one decoded bulk row into an entry. Rows must reference a task.
func bulkEntry(actor Actor, raw any) (*models.TimesheetEntry, error) {
	row, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrRowNotObject
	}

	v, ok := row["task_id"]
	if !ok || v == nil {
		return nil, ErrTaskIDRequired
	}
	taskID, ok := idValue(v)
	if !ok {
		return nil, ErrTaskIDInvalid
	}

	entry := &models.TimesheetEntry{
		UserID: actor.UserID,
		TaskID: &taskID,
	}

	if hasValue(row, "work_date") && hasValue(row, "start_time") && hasValue(row, "end_time") {
		workDate, ok1 := row["work_date"].(string)
		start, ok2 := row["start_time"].(string)
		end, ok3 := row["end_time"].(string)
		if !ok1 || !ok2 || !ok3 {
			return nil, ErrRangeNotStrings
		}
		r, err := flexibleRange(workDate, start, end)
		if err != nil {
			return nil, err
		}
		applyRange(entry, r)
	} else if hours, ok := row["hours"]; ok {
		h, err := directHours(hours)
		if err != nil {
			return nil, err
		}
		entry.Hours = h
	} else {
		return nil, ErrRowModeRequired
	}

	notes, err := notesValue(row)
	if err != nil {
		return nil, err
	}
	entry.Notes = strings.TrimSpace(notes)

	return entry, nil
}

func applyRange(entry *models.TimesheetEntry, r workRange) {
	entry.WorkDate = &r.WorkDate
	entry.StartTime = &r.StartTime
	entry.EndTime = &r.EndTime
	entry.Hours = r.Hours
}

// notesValue prefers "note" over "notes", as older clients send the singular key.
func notesValue(raw map[string]any) (string, error) {
	for _, key := range []string{"note", "notes"} {
		s, ok := stringValue(raw[key])
		if !ok {
			return "", ErrNotesNotString
		}
		if strings.TrimSpace(s) != "" {
			return s, nil
		}
	}
	return "", nil
}

func optionalWorkDate(value string) (*string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if !isDate(value) {
		return nil, ErrWorkDateFormat
	}
	return &value, nil
}

func isDate(value string) bool {
	_, err := time.Parse(constants.DateLayout, value)
	return err == nil
}

func hasKeys(raw map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := raw[key]; !ok {
			return false
		}
	}
	return true
}
