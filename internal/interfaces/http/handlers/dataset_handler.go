package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/riskboard/internal/application/service"
	"github.com/turtacn/riskboard/pkg/logger"
)

// DatasetHandler serves the dataset overview endpoints.
type DatasetHandler struct {
	datasets service.DatasetAppService
	log      logger.Logger
}

// NewDatasetHandler creates a new DatasetHandler.
func NewDatasetHandler(datasets service.DatasetAppService, log logger.Logger) *DatasetHandler {
	return &DatasetHandler{datasets: datasets, log: log}
}

// ListDatasets godoc
// @Summary  List datasets
// @Tags     datasets
// @Produce  json
// @Router   /api/v1/datasets [get]
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	resp, err := h.datasets.ListDatasets(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, resp)
}

// PreviewDataset godoc
// @Summary  Preview a dataset with its numeric summary
// @Tags     datasets
// @Produce  json
// @Param    name  path  string  true  "dataset name"
// @Router   /api/v1/datasets/{name} [get]
func (h *DatasetHandler) PreviewDataset(c *gin.Context) {
	resp, err := h.datasets.PreviewDataset(c.Request.Context(), c.Param("name"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, resp)
}

// ExportDataset godoc
// @Summary  Download a dataset
// @Tags     datasets
// @Param    name    path   string  true   "dataset name"
// @Param    format  query  string  false  "csv or xlsx"
// @Router   /api/v1/datasets/{name}/export [get]
func (h *DatasetHandler) ExportDataset(c *gin.Context) {
	file, err := h.datasets.ExportDataset(c.Request.Context(), c.Param("name"), c.Query("format"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendFile(c, file)
}
