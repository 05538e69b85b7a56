package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/riskboard/internal/application/dto"
	"github.com/turtacn/riskboard/pkg/constants"
	"github.com/turtacn/riskboard/pkg/errors"
)

func traceID(c *gin.Context) string {
	return c.GetString(string(constants.ContextKeyTraceID))
}

func sendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.SuccessResponse(data, traceID(c)))
}

// sendError renders err with its mapped status and records it on the context for the access log.
func sendError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(errors.HTTPStatusOf(err), dto.ErrorResponse(err, traceID(c)))
}

func sendFile(c *gin.Context, file *dto.ExportFile) {
	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	if file.Cached {
		c.Header("X-Cache", "HIT")
	}
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// bindStartupQuery reads the explorer query. Multi-valued filters accept repeated
// parameters and comma-separated lists.
func bindStartupQuery(c *gin.Context) (dto.StartupQuery, error) {
	var q dto.StartupQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return q, errors.ErrInvalidRequest("invalid query: " + err.Error())
	}
	q.Sectors = splitList(q.Sectors)
	q.Stages = splitList(q.Stages)
	q.Countries = splitList(q.Countries)
	if q.Limit < 0 {
		return q, errors.ErrInvalidRequest("limit must not be negative")
	}
	return q, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
