package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-timesheet-api/internal/dto"
	apierrors "github.com/yukikurage/crm-timesheet-api/internal/errors"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"github.com/yukikurage/crm-timesheet-api/internal/services"
	"github.com/yukikurage/crm-timesheet-api/internal/utils"
	"go.uber.org/zap"
)

// bulkRowKeys are the accepted body keys for a bulk submission, in order of preference.
var bulkRowKeys = []string{"entries", "data", "rows"}

// TimesheetHandler serves the timesheet ledger.
type TimesheetHandler struct {
	timesheetService *services.TimesheetService
	log              *zap.Logger
}

// NewTimesheetHandler creates a new TimesheetHandler.
func NewTimesheetHandler(timesheetService *services.TimesheetService, log *zap.Logger) *TimesheetHandler {
	return &TimesheetHandler{
		timesheetService: timesheetService,
		log:              log,
	}
}

// ListEntries returns a page of entries. user_id is honored for Admin and HR only.
func (h *TimesheetHandler) ListEntries(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	userID, ok := queryID(c, "user_id")
	if !ok {
		return
	}
	taskID, ok := queryID(c, "task_id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	entries, total, err := h.timesheetService.ListEntries(actor, services.ListEntriesInput{
		UserID:   userID,
		TaskID:   taskID,
		From:     c.Query("from"),
		To:       c.Query("to"),
		Page:     params.Page,
		PageSize: params.PageSize,
	})
	if err != nil {
		h.respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetListResponse(entries, params.Page, params.PageSize, total))
}

// CreateEntry logs one entry for the caller.
func (h *TimesheetHandler) CreateEntry(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	raw, ok := bindObject(c)
	if !ok {
		return
	}

	input, err := services.ParseEntryInput(raw)
	if err != nil {
		h.respondTimesheetError(c, err)
		return
	}

	entry, err := h.timesheetService.CreateEntry(actor, input)
	if err != nil {
		h.respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimesheetEntryDTO(*entry))
}

// BulkCreate stores the valid rows of a batch and reports the rest.
func (h *TimesheetHandler) BulkCreate(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	raw, ok := bindObject(c)
	if !ok {
		return
	}

	var rows []any
	for _, key := range bulkRowKeys {
		if list, isList := raw[key].([]any); isList && len(list) > 0 {
			rows = list
			break
		}
	}

	result, err := h.timesheetService.BulkCreate(actor, rows)
	if err != nil {
		h.respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBulkResponse(result))
}

// UpdateEntry patches an entry owned by the caller, or any entry for Admin and HR.
func (h *TimesheetHandler) UpdateEntry(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	raw, ok := bindObject(c)
	if !ok {
		return
	}

	update, err := services.ParseEntryUpdate(raw)
	if err != nil {
		h.respondTimesheetError(c, err)
		return
	}

	entry, err := h.timesheetService.UpdateEntry(actor, id, update)
	if err != nil {
		h.respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetEntryDTO(*entry))
}

// DeleteEntry removes an entry under the same ownership rule as UpdateEntry.
func (h *TimesheetHandler) DeleteEntry(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.timesheetService.DeleteEntry(actor, id); err != nil {
		h.respondTimesheetError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CompleteTask marks a task Complete.
func (h *TimesheetHandler) CompleteTask(c *gin.Context) {
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.timesheetService.MarkComplete(taskID); err != nil {
		h.respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskStatusResponse{OK: true, TaskID: taskID, Status: models.TaskStatusComplete})
}

// ReopenTask sets a task back to Open.
func (h *TimesheetHandler) ReopenTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	taskID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.timesheetService.Reopen(actor, taskID); err != nil {
		h.respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskStatusResponse{OK: true, TaskID: taskID, Status: models.TaskStatusOpen})
}

func (h *TimesheetHandler) respondTimesheetError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrEntryNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrEntryForbidden),
		errors.Is(err, services.ErrReopenForbidden):
		apierrors.Forbidden(c, err.Error())
	default:
		respondInternal(c, h.log, err)
	}
}
