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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/gw-dashboard-api/api/swagger"
	"github.com/noah-isme/gw-dashboard-api/internal/handler"
	internalmiddleware "github.com/noah-isme/gw-dashboard-api/internal/middleware"
	"github.com/noah-isme/gw-dashboard-api/internal/repository"
	"github.com/noah-isme/gw-dashboard-api/internal/service"
	"github.com/noah-isme/gw-dashboard-api/pkg/cache"
	"github.com/noah-isme/gw-dashboard-api/pkg/config"
	"github.com/noah-isme/gw-dashboard-api/pkg/jobs"
	"github.com/noah-isme/gw-dashboard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gw-dashboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gw-dashboard-api/pkg/middleware/requestid"
	"github.com/noah-isme/gw-dashboard-api/pkg/scenario"
	"github.com/noah-isme/gw-dashboard-api/pkg/storage"
)

// @title GW Dashboard API
// @version 1.0.0
// @description Merged student/teacher issue dashboards and the breakeven calculator.
// @BasePath /api/v1
// @schemes http

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

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, using in-memory parse cache", "error", err)
	}
	var cacheRepo service.CacheRepository
	readiness := map[string]handler.ReadinessCheck{}
	if redisClient != nil {
		redisRepo := repository.NewCacheRepository(redisClient, logr)
		defer redisRepo.Close() //nolint:errcheck
		cacheRepo = redisRepo
		readiness["redis"] = redisRepo.Ping
	} else {
		cacheRepo = repository.NewMemoryCacheRepository()
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, "gw", cfg.Ingest.CacheTTL, logr, true)

	scenarios, err := scenario.NewStore(cfg.Calculator.ScenarioFile, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to load calculator scenario", "error", err)
	}
	if err := scenarios.Watch(ctx); err != nil {
		logr.Sugar().Warnw("scenario hot reload disabled", "error", err)
	}

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	parseCache := service.NewParseCache(cacheSvc, cfg.Ingest.CacheTTL, logr)
	ingestSvc := service.NewIngestService(parseCache, metricsSvc, service.IngestConfig{
		MaxFileSize: cfg.Ingest.MaxFileSizeBytes,
		MaxFiles:    cfg.Ingest.MaxFiles,
	}, logr)
	sessionSvc := service.NewSessionService(repository.NewSessionRepository(cfg.Sessions.TTL), ingestSvc, metricsSvc, validate, logr)
	calculatorSvc := service.NewCalculatorService(scenarios, validate, service.CalculatorConfig{CurveMaxPoints: cfg.Calculator.CurveMaxPoints}, logr)

	mux := jobs.NewMux()
	var exportSvc *service.ExportService
	queue := jobs.NewQueue("background", mux.Dispatch, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
		OnGiveUp: func(j jobs.Job, err error) {
			exportSvc.HandleGiveUp(j, err)
		},
	})
	exportSvc = service.NewExportService(sessionSvc, repository.NewExportJobRepository(), queue, files, signer, metricsSvc, validate, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)
	mux.Handle(service.JobTypeExport, exportSvc.Process)

	janitor := service.NewJanitorService(sessionSvc, exportSvc, cacheSvc, queue, service.JanitorConfig{
		SessionInterval: cfg.Sessions.CleanupInterval,
		ExportInterval:  cfg.Exports.CleanupInterval,
		CacheInterval:   cfg.Ingest.CacheSweepInterval,
	}, logr)
	janitor.Register(mux)

	queue.Start(ctx)
	janitor.Start(ctx)

	r := gin.New()
	r.MaxMultipartMemory = cfg.Ingest.MaxFileSizeBytes
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.WithResponseMeta())
	if cfg.Metrics.Enabled {
		r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))
	}

	metricsHandler := handler.NewMetricsHandler(metricsSvc, readiness)
	sessionHandler := handler.NewSessionHandler(sessionSvc, cfg.Ingest.MaxFileSizeBytes)
	exportHandler := handler.NewExportHandler(exportSvc)
	calculatorHandler := handler.NewCalculatorHandler(calculatorSvc)

	registerRoutes(r, cfg, routeHandlers{
		metrics:    metricsHandler,
		sessions:   sessionHandler,
		exports:    exportHandler,
		calculator: calculatorHandler,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown", zap.Error(err))
	}
	janitor.Wait()
	queue.Stop()
}

type routeHandlers struct {
	metrics    *handler.MetricsHandler
	sessions   *handler.SessionHandler
	exports    *handler.ExportHandler
	calculator *handler.CalculatorHandler
}

// registerRoutes mounts probes, Prometheus and docs at the root and the
// dashboard API under cfg.APIPrefix.
func registerRoutes(r *gin.Engine, cfg *config.Config, h routeHandlers) {
	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", h.metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/screens", h.sessions.Screens)
	api.POST("/screens/:screen/sessions", h.sessions.Create)
	api.GET("/sessions/:id", h.sessions.Get)
	api.POST("/sessions/:id/query", h.sessions.Query)
	api.POST("/sessions/:id/export", h.exports.Download)
	api.POST("/sessions/:id/exports", h.exports.CreateJob)
	api.GET("/exports/download/:token", h.exports.DownloadSigned)
	api.GET("/exports/:jobId", h.exports.Status)
	api.GET("/calculator/defaults", h.calculator.Defaults)
	api.POST("/calculator/compute", h.calculator.Compute)
	api.POST("/calculator/report", h.calculator.Report)
	if cfg.Metrics.Enabled {
		api.GET("/metrics/summary", h.metrics.Summary)
	}
}
