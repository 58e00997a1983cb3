package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/uep-attendance-analytics/internal/dto"
	"github.com/noah-isme/uep-attendance-analytics/internal/middleware"
	"github.com/noah-isme/uep-attendance-analytics/internal/models"
	appErrors "github.com/noah-isme/uep-attendance-analytics/pkg/errors"
	"github.com/noah-isme/uep-attendance-analytics/pkg/response"
)

type analyticsService interface {
	Academic(ctx context.Context, criteria models.FilterCriteria) (*dto.AcademicReport, bool, error)
	FilterOptions(ctx context.Context) (models.FilterOptions, error)
	DefaultCriteria(ctx context.Context) (models.FilterCriteria, error)
	EventReport(ctx context.Context, eventID string) (*dto.EventReport, bool, error)
	Refresh(ctx context.Context) error
	SystemMetrics() models.AnalyticsSystemMetrics
}

// AnalyticsHandler exposes dashboard-ready analytics endpoints.
type AnalyticsHandler struct {
	analytics analyticsService
	validate  *validator.Validate
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService, validate *validator.Validate) *AnalyticsHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &AnalyticsHandler{analytics: analytics, validate: validate}
}

// @Summary Observed filter options and the default selection
// @Summary Observed filter options
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/filters [get]
func (h *AnalyticsHandler) Filters(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	ctx := c.Request.Context()
	opts, err := h.analytics.FilterOptions(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	defaults, err := h.analytics.DefaultCriteria(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewFilterOptionsResponse(opts, defaults), nil, newMeta(c))
}

// Academic godoc
// @Summary Cross-event attendance analytics
// @Description Missing faculty/type parameters select every observed value; an empty value selects none.
// @Tags Analytics
// @Produce json
// @Param faculty query []string false "Faculties (repeat or comma separated)"
// @Param type query []string false "Event types: talk, workshop, seminar"
// @Param date_from query string false "Start date (YYYY-MM-DD), inclusive"
// @Param date_to query string false "End date (YYYY-MM-DD), inclusive"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /analytics/academic [get]
func (h *AnalyticsHandler) Academic(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	criteria, err := parseCriteria(c, h.validate)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, cacheHit, err := h.analytics.Academic(c.Request.Context(), criteria)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, report, nil, newMeta(c))
}

// Event godoc
// @Summary Single event attendance report
// @Tags Analytics
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /analytics/events/{id} [get]
func (h *AnalyticsHandler) Event(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	eventID := strings.TrimSpace(c.Param("id"))
	if eventID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "event id is required"))
		return
	}
	report, cacheHit, err := h.analytics.EventReport(c.Request.Context(), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, report, nil, newMeta(c))
}

// Refresh godoc
// @Summary Drop cached records and analytics
// @Tags Analytics
// @Success 204
// @Router /analytics/refresh [post]
func (h *AnalyticsHandler) Refresh(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	if err := h.analytics.Refresh(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// System godoc
// @Summary Instrumentation snapshot
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	metrics := h.analytics.SystemMetrics()
	middleware.SetCacheHit(c, false)
	response.JSON(c, http.StatusOK, metrics, nil, newMeta(c))
}
