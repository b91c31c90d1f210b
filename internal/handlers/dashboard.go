package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-timesheet-api/internal/dto"
	"github.com/yukikurage/crm-timesheet-api/internal/services"
	"go.uber.org/zap"
)

// DashboardHandler serves aggregate counters.
type DashboardHandler struct {
	reportService *services.ReportService
	log           *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reportService *services.ReportService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		reportService: reportService,
		log:           log,
	}
}

// Summary counts in-progress and done tasks. scope=all is honored for Admin and HR only.
func (h *DashboardHandler) Summary(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	summary, err := h.reportService.Summary(actor, c.DefaultQuery("scope", services.ScopeMine))
	if err != nil {
		respondInternal(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.SummaryResponse{Data: summary})
}
