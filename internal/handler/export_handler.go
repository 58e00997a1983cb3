package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
	"github.com/noah-isme/uep-attendance-analytics/internal/service"
	appErrors "github.com/noah-isme/uep-attendance-analytics/pkg/errors"
	"github.com/noah-isme/uep-attendance-analytics/pkg/response"
)

type exportService interface {
	Events(ctx context.Context, criteria models.FilterCriteria, format string) (*service.ExportFile, error)
	Attendees(ctx context.Context, eventID, format string) (*service.ExportFile, error)
	Supports(format string) bool
}

// ExportHandler streams CSV and PDF downloads.
type ExportHandler struct {
	exports  exportService
	validate *validator.Validate
}

// NewExportHandler constructs the export handler.
func NewExportHandler(exports exportService, validate *validator.Validate) *ExportHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &ExportHandler{exports: exports, validate: validate}
}

// Events godoc
// @Summary Export filtered events
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param faculty query []string false "Faculties"
// @Param type query []string false "Event types"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /analytics/academic/export [get]
func (h *ExportHandler) Events(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	format, ok := h.format(c)
	if !ok {
		return
	}
	criteria, err := parseCriteria(c, h.validate)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Events(c.Request.Context(), criteria, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Payload)
}

// Attendees godoc
// @Summary Export the attendee list of an event
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Event ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /analytics/events/{id}/attendees/export [get]
func (h *ExportHandler) Attendees(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	format, ok := h.format(c)
	if !ok {
		return
	}
	eventID := strings.TrimSpace(c.Param("id"))
	if eventID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "event id is required"))
		return
	}
	file, err := h.exports.Attendees(c.Request.Context(), eventID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Payload)
}

// format reads the export format, defaulting to csv, and writes a 400 when no
// renderer is registered for it.
func (h *ExportHandler) format(c *gin.Context) (string, bool) {
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	if format == "" {
		format = "csv"
	}
	if !h.exports.Supports(format) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format)))
		return "", false
	}
	return format, true
}
