package handlers

import (
	stderrors "errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/riskboard/internal/application/service"
	"github.com/turtacn/riskboard/pkg/errors"
	"github.com/turtacn/riskboard/pkg/logger"
)

const uploadFormField = "file"

// RiskHandler serves the startup explorer and risk profile endpoints.
type RiskHandler struct {
	risk        service.RiskAppService
	uploadLimit int64
	log         logger.Logger
}

// NewRiskHandler creates a new RiskHandler. Uploads larger than uploadLimit bytes are rejected.
func NewRiskHandler(risk service.RiskAppService, uploadLimit int64, log logger.Logger) *RiskHandler {
	return &RiskHandler{risk: risk, uploadLimit: uploadLimit, log: log}
}

// ScoreUpload godoc
// @Summary  Score an uploaded CSV
// @Tags     risk
// @Accept   text/csv,multipart/form-data
// @Produce  json
// @Router   /api/v1/risk/score [post]
func (h *RiskHandler) ScoreUpload(c *gin.Context) {
	q, err := bindStartupQuery(c)
	if err != nil {
		sendError(c, err)
		return
	}
	upload, err := h.readUpload(c)
	if err != nil {
		sendError(c, err)
		return
	}
	resp, err := h.risk.ScoreUpload(c.Request.Context(), upload, q)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, resp)
}

// ExportUpload godoc
// @Summary  Score, filter and download an uploaded CSV
// @Tags     risk
// @Param    format  query  string  false  "csv or xlsx"
// @Router   /api/v1/risk/score/export [post]
func (h *RiskHandler) ExportUpload(c *gin.Context) {
	q, err := bindStartupQuery(c)
	if err != nil {
		sendError(c, err)
		return
	}
	upload, err := h.readUpload(c)
	if err != nil {
		sendError(c, err)
		return
	}
	file, err := h.risk.ExportUpload(c.Request.Context(), upload, q, q.Format)
	if err != nil {
		sendError(c, err)
		return
	}
	sendFile(c, file)
}

// ScoreSample godoc
// @Summary  Score a seeded synthetic startup table
// @Tags     risk
// @Param    n     query  int  false  "rows"
// @Param    seed  query  int  false  "generator seed"
// @Router   /api/v1/risk/sample [get]
func (h *RiskHandler) ScoreSample(c *gin.Context) {
	q, err := bindStartupQuery(c)
	if err != nil {
		sendError(c, err)
		return
	}
	resp, err := h.risk.ScoreSample(c.Request.Context(), q)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, resp)
}

// RiskProfiles godoc
// @Summary  Cluster frequencies and PCA projection
// @Tags     risk
// @Router   /api/v1/risk/profiles [get]
func (h *RiskHandler) RiskProfiles(c *gin.Context) {
	resp, err := h.risk.RiskProfiles(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, resp)
}

// readUpload returns the CSV bytes of a multipart "file" field or of the raw body.
func (h *RiskHandler) readUpload(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadLimit)

	var src io.Reader = c.Request.Body
	if mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type")); mediaType == "multipart/form-data" {
		fh, err := c.FormFile(uploadFormField)
		if err != nil {
			if tooLarge(err) {
				return nil, errors.ErrPayloadTooLarge(h.uploadLimit)
			}
			return nil, errors.ErrInvalidRequest(`multipart upload needs a "file" field`)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, errors.Wrap(err, "open upload")
		}
		defer f.Close()
		src = f
	}

	data, err := io.ReadAll(src)
	if err != nil {
		if tooLarge(err) {
			return nil, errors.ErrPayloadTooLarge(h.uploadLimit)
		}
		return nil, errors.ErrInvalidRequest("could not read upload")
	}
	return data, nil
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return stderrors.As(err, &maxErr)
}
