package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-timesheet-api/internal/dto"
	apierrors "github.com/yukikurage/crm-timesheet-api/internal/errors"
	"github.com/yukikurage/crm-timesheet-api/internal/services"
	"github.com/yukikurage/crm-timesheet-api/internal/utils"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService *services.TaskService
	log         *zap.Logger
}

func NewTaskHandler(taskService *services.TaskService, log *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		log:         log,
	}
}

// ListTasks returns a page of tasks
// Supports search, priority, status and sort (prefix "-" for descending)
func (h *TaskHandler) ListTasks(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(services.ListTasksInput{
		Search:   c.Query("search"),
		Priority: c.Query("priority"),
		Status:   c.Query("status"),
		Sort:     c.Query("sort"),
		Page:     params.Page,
		PageSize: params.PageSize,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.PageSize, total))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title      string `json:"title"`
		AssigneeID uint64 `json:"assignee_id"`
		TaskCode   string `json:"task_code"`
		DueDate    string `json:"due_date"`
		Priority   string `json:"priority"`
		Status     string `json:"status"`
		Details    string `json:"details"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:      req.Title,
		AssigneeID: req.AssigneeID,
		TaskCode:   req.TaskCode,
		DueDate:    req.DueDate,
		Priority:   req.Priority,
		Status:     req.Status,
		Details:    req.Details,
		CreatedBy:  actor.Username,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask patches only the fields present in the body
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	raw, ok := bindObject(c)
	if !ok {
		return
	}

	input, err := services.ParseTaskUpdate(raw)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	task, err := h.taskService.UpdateTask(taskID, input)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// AssignTask moves a task to another user
func (h *TaskHandler) AssignTask(c *gin.Context) {
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	type AssignTaskRequest struct {
		AssigneeID uint64 `json:"assignee_id"`
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.AssignTask(taskID, req.AssigneeID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AssignResponse{
		Message:      "assigned",
		AssigneeName: task.Assignee.Username,
		Task:         dto.ToTaskDTO(*task),
	})
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(taskID); err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GenerateTasks drafts task suggestions from free text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	type GenerateTasksRequest struct {
		Text string `json:"text"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.DraftTasks(c.Request.Context(), req.Text)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskDraftsResponse{Tasks: drafts})
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrAssigneeNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTaskCodeTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAINoTasksGenerated):
		apierrors.RespondWithError(c, http.StatusBadGateway, apierrors.NewAPIError(apierrors.ErrCodeServiceUnavailable, err.Error()))
	default:
		respondInternal(c, h.log, err)
	}
}
