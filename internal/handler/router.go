package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/uep-attendance-analytics/internal/middleware"
	"github.com/noah-isme/uep-attendance-analytics/internal/models"
	"github.com/noah-isme/uep-attendance-analytics/internal/service"
	"github.com/noah-isme/uep-attendance-analytics/pkg/logger"
	corsmiddleware "github.com/noah-isme/uep-attendance-analytics/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uep-attendance-analytics/pkg/middleware/requestid"
)

// RouterDeps groups what the HTTP surface needs.
type RouterDeps struct {
	APIPrefix      string
	EnableDocs     bool
	AllowedOrigins []string
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Tokens         middleware.TokenValidator
	Auth           *AuthHandler
	Analytics      *AnalyticsHandler
	Exports        *ExportHandler
	Health         *MetricsHandler
}

// NewRouter builds the gin engine with middleware and role gated routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", deps.Health.Health)
	r.GET("/ready", deps.Health.Ready)
	r.GET("/metrics", deps.Health.Prometheus)
	if deps.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	auth := api.Group("/auth")
	auth.POST("/login", deps.Auth.Login)
	auth.GET("/me", middleware.JWT(deps.Tokens), deps.Auth.Me)

	analytics := api.Group("/analytics", middleware.JWT(deps.Tokens))

	admin := analytics.Group("", middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/filters", deps.Analytics.Filters)
	admin.GET("/academic", deps.Analytics.Academic)
	admin.GET("/academic/export", middleware.Audit(deps.Logger, "export_events"), deps.Exports.Events)
	admin.POST("/refresh", middleware.Audit(deps.Logger, "refresh"), deps.Analytics.Refresh)
	admin.GET("/system", deps.Analytics.System)

	events := analytics.Group("/events", middleware.RequireRoles(models.RoleOrganizer, models.RoleAdmin))
	events.GET("/:id", deps.Analytics.Event)
	events.GET("/:id/attendees/export", middleware.Audit(deps.Logger, "export_attendees"), deps.Exports.Attendees)

	return r
}
