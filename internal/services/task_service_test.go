package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
)

type stubDrafter struct {
	drafts []TaskDraft
	err    error
}

func (s *stubDrafter) DraftTasks(ctx context.Context, text string) ([]TaskDraft, error) {
	return s.drafts, s.err
}

func strPtr(s string) *string {
	return &s
}

func TestTaskService_CreateTask(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice", models.RoleUser)

	task, err := env.tasks.CreateTask(CreateTaskInput{
		Title:      "  Prepare quote ",
		AssigneeID: alice.ID,
		DueDate:    "2030-05-01",
		CreatedBy:  "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "Prepare quote", task.Title)
	assert.Equal(t, models.TaskStatusOpen, task.Status)
	assert.Equal(t, "Medium", task.Priority)
	assert.Equal(t, "TS-0001", *task.TaskCode)
	assert.Equal(t, "alice", task.Assignee.Username)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2030-05-01", task.DueDate.Format("2006-01-02"))
}

func TestTaskService_GeneratedCodeAvoidsSuppliedCode(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice", models.RoleUser)

	_, err := env.tasks.CreateTask(CreateTaskInput{Title: "Manual", AssigneeID: alice.ID, TaskCode: "TS-0002"})
	require.NoError(t, err)

	task, err := env.tasks.CreateTask(CreateTaskInput{Title: "Generated", AssigneeID: alice.ID})
	require.NoError(t, err)
	assert.Equal(t, "TS-0002-1", *task.TaskCode)

	_, err = env.tasks.CreateTask(CreateTaskInput{Title: "Clash", AssigneeID: alice.ID, TaskCode: "TS-0002"})
	assert.ErrorIs(t, err, ErrTaskCodeTaken)
}

func TestTaskService_CreateTaskValidation(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice", models.RoleUser)

	_, err := env.tasks.CreateTask(CreateTaskInput{AssigneeID: alice.ID})
	assert.ErrorIs(t, err, ErrTaskFieldsRequired)

	_, err = env.tasks.CreateTask(CreateTaskInput{Title: "x"})
	assert.ErrorIs(t, err, ErrTaskFieldsRequired)

	_, err = env.tasks.CreateTask(CreateTaskInput{Title: "x", AssigneeID: alice.ID, Status: "Done"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = env.tasks.CreateTask(CreateTaskInput{Title: "x", AssigneeID: alice.ID, DueDate: "tomorrow"})
	assert.ErrorIs(t, err, ErrInvalidDueDate)

	_, err = env.tasks.CreateTask(CreateTaskInput{Title: "x", AssigneeID: 999})
	assert.ErrorIs(t, err, ErrAssigneeNotFound)

	_, err = env.tasks.CreateTask(CreateTaskInput{Title: "x", AssigneeID: alice.ID, TaskCode: "CRM-1"})
	require.NoError(t, err)
	_, err = env.tasks.CreateTask(CreateTaskInput{Title: "y", AssigneeID: alice.ID, TaskCode: "CRM-1"})
	assert.ErrorIs(t, err, ErrTaskCodeTaken)
}

func TestTaskService_ClosedIsComplete(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice", models.RoleUser)

	task, err := env.tasks.CreateTask(CreateTaskInput{Title: "x", AssigneeID: alice.ID, Status: "Closed"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusComplete, task.Status)

	tasks, total, err := env.tasks.ListTasks(ListTasksInput{Status: "Closed", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, tasks, 1)
}

func TestTaskService_UpdateTaskPartial(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice", models.RoleUser)
	bob := env.createUser(t, "bob", models.RoleUser)

	task, err := env.tasks.CreateTask(CreateTaskInput{
		Title:      "Original",
		AssigneeID: alice.ID,
		Details:    "keep me",
		DueDate:    "2030-01-01",
	})
	require.NoError(t, err)

	updated, err := env.tasks.UpdateTask(task.ID, UpdateTaskInput{
		Status:     strPtr("In Progress"),
		AssigneeID: uint64Ptr(bob.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, "Original", updated.Title)
	assert.Equal(t, "keep me", updated.Details)
	assert.Equal(t, models.TaskStatusInProgress, updated.Status)
	assert.Equal(t, bob.ID, updated.AssigneeID)
	assert.Equal(t, "bob", updated.Assignee.Username)
	assert.NotNil(t, updated.DueDate)

	updated, err = env.tasks.UpdateTask(task.ID, UpdateTaskInput{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)

	_, err = env.tasks.UpdateTask(task.ID, UpdateTaskInput{Status: strPtr("Paused")})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = env.tasks.UpdateTask(task.ID, UpdateTaskInput{Title: strPtr("   ")})
	assert.ErrorIs(t, err, ErrTitleEmpty)

	_, err = env.tasks.UpdateTask(task.ID, UpdateTaskInput{AssigneeID: uint64Ptr(999)})
	assert.ErrorIs(t, err, ErrAssigneeNotFound)

	_, err = env.tasks.UpdateTask(999, UpdateTaskInput{})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestParseTaskUpdate(t *testing.T) {
	input, err := ParseTaskUpdate(map[string]any{
		"status":      "Complete",
		"assignee_id": float64(7),
		"due_date":    nil,
	})
	require.NoError(t, err)
	assert.Nil(t, input.Title)
	assert.Nil(t, input.Details)
	require.NotNil(t, input.Status)
	assert.Equal(t, "Complete", *input.Status)
	require.NotNil(t, input.AssigneeID)
	assert.Equal(t, uint64(7), *input.AssigneeID)
	assert.True(t, input.ClearDueDate)

	input, err = ParseTaskUpdate(map[string]any{"due_date": "2030-05-01", "assignee_id": "3"})
	require.NoError(t, err)
	require.NotNil(t, input.DueDate)
	assert.Equal(t, "2030-05-01", *input.DueDate)
	assert.False(t, input.ClearDueDate)
	assert.Equal(t, uint64(3), *input.AssigneeID)

	_, err = ParseTaskUpdate(map[string]any{"title": 12.0})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "title must be a string", verr.Message)

	_, err = ParseTaskUpdate(map[string]any{"assignee_id": -1.0})
	assert.ErrorIs(t, err, ErrAssigneeInvalid)

	_, err = ParseTaskUpdate(map[string]any{"assignee_id": nil})
	assert.ErrorIs(t, err, ErrAssigneeRequired)
}

func TestTaskService_AssignAndDelete(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice", models.RoleUser)
	bob := env.createUser(t, "bob", models.RoleUser)
	task := env.createTask(t, alice.ID, models.TaskStatusOpen)

	assigned, err := env.tasks.AssignTask(task.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", assigned.Assignee.Username)

	_, err = env.tasks.AssignTask(task.ID, 0)
	assert.ErrorIs(t, err, ErrAssigneeRequired)

	require.NoError(t, env.tasks.DeleteTask(task.ID))
	assert.ErrorIs(t, env.tasks.DeleteTask(task.ID), ErrTaskNotFound)

	_, err = env.tasks.GetTask(task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_DraftTasks(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.tasks.DraftTasks(context.Background(), "call the client")
	assert.ErrorIs(t, err, ErrAIServiceNotConfigured)

	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	drafts := []TaskDraft{
		{Title: "Call client", DueDate: strPtr("2024-06-11")},
		{Title: "   "},
		{Title: "Send invoice", Priority: "High", DueDate: strPtr("2024-06-01")},
	}
	for i := 0; i < 25; i++ {
		drafts = append(drafts, TaskDraft{Title: "filler"})
	}

	env.tasks.drafter = &stubDrafter{drafts: drafts}
	env.tasks.now = func() time.Time { return now }

	got, err := env.tasks.DraftTasks(context.Background(), "call the client")
	require.NoError(t, err)
	require.Len(t, got, 20)
	assert.Equal(t, "2024-06-11", *got[0].DueDate)
	assert.Equal(t, "Medium", got[0].Priority)
	assert.Equal(t, "Send invoice", got[1].Title)
	assert.Nil(t, got[1].DueDate)
	assert.Equal(t, "High", got[1].Priority)

	_, err = env.tasks.DraftTasks(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrDraftTextRequired)

	env.tasks.drafter = &stubDrafter{drafts: []TaskDraft{{Title: ""}}}
	_, err = env.tasks.DraftTasks(context.Background(), "nothing")
	assert.ErrorIs(t, err, ErrAINoTasksGenerated)

	env.tasks.drafter = &stubDrafter{err: errors.New("boom")}
	_, err = env.tasks.DraftTasks(context.Background(), "nothing")
	assert.Error(t, err)
}

func TestParseTaskDrafts(t *testing.T) {
	drafts, err := parseTaskDrafts("```json\n[{\"title\":\"A\",\"due_date\":null}]\n```")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "A", drafts[0].Title)
	assert.Nil(t, drafts[0].DueDate)

	_, err = parseTaskDrafts("sorry, no tasks")
	assert.Error(t, err)
}
