package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/riskboard/internal/application/service"
	"github.com/turtacn/riskboard/pkg/errors"
	"github.com/turtacn/riskboard/pkg/logger"
)

// InsightsHandler serves the geographic, recommendation and chart endpoints.
type InsightsHandler struct {
	insights service.InsightsAppService
	charts   service.ChartAppService
	log      logger.Logger
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(insights service.InsightsAppService, charts service.ChartAppService, log logger.Logger) *InsightsHandler {
	return &InsightsHandler{insights: insights, charts: charts, log: log}
}

// Geographic godoc
// @Summary  State choropleth and county map layer
// @Tags     insights
// @Router   /api/v1/geographic [get]
func (h *InsightsHandler) Geographic(c *gin.Context) {
	resp, err := h.insights.Geographic(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, resp)
}

// Recommendations godoc
// @Summary  Investment candidates, undercap and sector opportunity tables
// @Tags     insights
// @Router   /api/v1/recommendations [get]
func (h *InsightsHandler) Recommendations(c *gin.Context) {
	resp, err := h.insights.Recommendations(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, resp)
}

// Chart godoc
// @Summary  Render a dashboard chart
// @Tags     charts
// @Produce  png
// @Param    chart  path  string  true  "risk-histogram.png, risk-by-sector.png, revenue-vs-risk.png, cluster-sizes.png or pca.png"
// @Router   /api/v1/charts/{chart} [get]
func (h *InsightsHandler) Chart(c *gin.Context) {
	name, ok := strings.CutSuffix(c.Param("chart"), ".png")
	if !ok {
		sendError(c, errors.ErrUnsupportedFormat(c.Param("chart")))
		return
	}
	q, err := bindStartupQuery(c)
	if err != nil {
		sendError(c, err)
		return
	}
	img, err := h.charts.Render(c.Request.Context(), name, q)
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}
