package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/uep-attendance-analytics/api/swagger"
	"github.com/noah-isme/uep-attendance-analytics/internal/engine"
	"github.com/noah-isme/uep-attendance-analytics/internal/handler"
	"github.com/noah-isme/uep-attendance-analytics/internal/repository"
	"github.com/noah-isme/uep-attendance-analytics/internal/service"
	"github.com/noah-isme/uep-attendance-analytics/pkg/cache"
	"github.com/noah-isme/uep-attendance-analytics/pkg/config"
	"github.com/noah-isme/uep-attendance-analytics/pkg/database"
	"github.com/noah-isme/uep-attendance-analytics/pkg/export"
	"github.com/noah-isme/uep-attendance-analytics/pkg/logger"
)

// @title UEP Attendance Analytics API
// @version 1.0.0
// @description Attendance analytics over event check-ins: academic KPIs, punctuality, no-show estimates and exports.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Analytics.Location()
	if err != nil {
		logr.Fatal("invalid analytics timezone", zap.String("timezone", cfg.Analytics.Timezone), zap.Error(err))
	}

	eng, err := engine.New(engine.Options{
		LateThresholdMinutes: cfg.Analytics.LateThresholdMinutes,
		HistogramEdges:       cfg.Analytics.HistogramEdges,
		Location:             loc,
	})
	if err != nil {
		logr.Fatal("invalid engine options", zap.Error(err))
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, analytics cache disabled", zap.Error(err))
		redisClient = nil
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, "uep", logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled && redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	snapshots := service.NewSnapshotService(
		repository.NewEventRepository(db, eng.Location()),
		repository.NewCheckInRepository(db),
		userRepo,
		cfg.Analytics.SnapshotTTL,
		metrics,
		logr,
	)
	warmer := service.NewSnapshotWarmer(snapshots, 2*time.Second, logr)
	warmer.Start(ctx)
	defer warmer.Stop()
	analyticsSvc := service.NewAnalyticsService(snapshots, eng, cacheSvc, metrics, logr).WithWarmer(warmer)
	exportSvc := service.NewExportService(analyticsSvc, eng.Location(), logr, export.NewCSVExporter(), export.NewPDFExporter())

	validate := validator.New()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisPing(ctx, redisClient) }
	}

	router := handler.NewRouter(handler.RouterDeps{
		APIPrefix:      cfg.APIPrefix,
		EnableDocs:     cfg.EnableDocs,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logr,
		Metrics:        metrics,
		Tokens:         authSvc,
		Auth:           handler.NewAuthHandler(authSvc),
		Analytics:      handler.NewAnalyticsHandler(analyticsSvc, validate),
		Exports:        handler.NewExportHandler(exportSvc, validate),
		Health:         handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.Float64("late_threshold_minutes", eng.LateThreshold()),
			zap.Float64s("histogram_edges", eng.HistogramEdges()),
			zap.String("timezone", eng.Location().String()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func redisPing(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}
