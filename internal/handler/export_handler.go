package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tiltakhub/participant-api/internal/service"
	appErrors "github.com/tiltakhub/participant-api/pkg/errors"
	"github.com/tiltakhub/participant-api/pkg/response"
)

// ExportHandler serves roster downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Roster godoc
// @Summary Export offering roster
// @Description Renders the visible roster of an offering as CSV or PDF
// @Tags Offerings
// @Produce octet-stream
// @Param id path string true "Offering ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /offerings/{id}/participants/export [get]
func (h *ExportHandler) Roster(c *gin.Context) {
	offeringID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.service.ExportRoster(c.Request.Context(), offeringID, format, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(200, result.ContentType, result.Payload)
}
