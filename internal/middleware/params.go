package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/crm-timesheet-api/internal/errors"
)

const idParamKey = "id_param"

// RequireIDParam parses the :id path parameter once for the handlers behind it
func RequireIDParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			apierrors.BadRequest(c, "Invalid ID")
			return
		}

		c.Set(idParamKey, id)
		c.Next()
	}
}

// GetIDParam returns the :id parsed by RequireIDParam
func GetIDParam(c *gin.Context) (uint64, bool) {
	value, exists := c.Get(idParamKey)
	if !exists {
		return 0, false
	}

	id, ok := value.(uint64)
	return id, ok
}
