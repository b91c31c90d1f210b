package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/crm-timesheet-api/internal/errors"
	"github.com/yukikurage/crm-timesheet-api/internal/middleware"
	"github.com/yukikurage/crm-timesheet-api/internal/services"
	"go.uber.org/zap"
)

// respondValidation sends a 400 when err is an input validation failure.
func respondValidation(c *gin.Context, err error) bool {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		if len(verr.Details) > 0 {
			apierrors.BadRequestWithDetails(c, verr.Message, verr.Details)
			return true
		}
		apierrors.BadRequest(c, verr.Message)
		return true
	}
	return false
}

func respondInternal(c *gin.Context, log *zap.Logger, err error) {
	log.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
	apierrors.InternalError(c, "")
}

func currentActor(c *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return actor, ok
}

// pathID reads the :id parameter, preferring the value parsed by RequireIDParam.
func pathID(c *gin.Context) (uint64, bool) {
	if id, ok := middleware.GetIDParam(c); ok {
		return id, true
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid ID")
		return 0, false
	}
	return id, true
}

// queryID parses an optional positive integer query parameter.
func queryID(c *gin.Context, key string) (*uint64, bool) {
	value := c.Query(key)
	if value == "" {
		return nil, true
	}

	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, key+" must be a positive integer")
		return nil, false
	}
	return &id, true
}

func bindObject(c *gin.Context) (map[string]any, bool) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil || raw == nil {
		apierrors.BadRequest(c, "Invalid JSON body")
		return nil, false
	}
	return raw, true
}
