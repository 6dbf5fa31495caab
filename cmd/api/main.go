package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/smsup/results-engine/api/swagger"
	"github.com/smsup/results-engine/internal/handler"
	"github.com/smsup/results-engine/internal/middleware"
	"github.com/smsup/results-engine/internal/repository"
	"github.com/smsup/results-engine/internal/service"
	"github.com/smsup/results-engine/pkg/cache"
	"github.com/smsup/results-engine/pkg/config"
	"github.com/smsup/results-engine/pkg/database"
	"github.com/smsup/results-engine/pkg/export"
	"github.com/smsup/results-engine/pkg/logger"
	corsmiddleware "github.com/smsup/results-engine/pkg/middleware/cors"
	reqidmiddleware "github.com/smsup/results-engine/pkg/middleware/requestid"
)

// @title Academic Results Engine API
// @version 0.1.0
// @description Grade resolution, class ranking and report card generation
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is best effort: reports regenerate from Postgres on a miss.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, report caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	scaleRepo := repository.NewGradeScaleRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	scaleSvc := service.NewScaleService(scaleRepo, cacheRepo, validate, logr)
	scoreSvc := service.NewScoreService(scoreRepo, cacheRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, logr)
	resultSvc := service.NewResultService(studentRepo, scaleSvc, scoreRepo, reportRepo, cacheRepo, metricsSvc, cfg.Results, validate, logr)
	exportSvc := service.NewExportService(resultSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	scaleHandler := handler.NewScaleHandler(scaleSvc)
	scoreHandler := handler.NewScoreHandler(scoreSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	reportHandler := handler.NewReportHandler(resultSvc, exportSvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/grade-scale", scaleHandler.Get)
		api.PUT("/grade-scale", scaleHandler.Update)
		api.GET("/grade-scale/resolve", scaleHandler.Resolve)

		api.GET("/scores", scoreHandler.List)
		api.POST("/scores", scoreHandler.Upsert)
		api.POST("/scores/bulk", scoreHandler.BulkUpsert)

		api.GET("/students", studentHandler.List)
		api.GET("/students/:id", studentHandler.Get)

		api.POST("/reports", reportHandler.Generate)
		api.GET("/reports/:studentId", reportHandler.Get)
		api.GET("/reports/:studentId/export/csv", reportHandler.ExportCSV)
		api.GET("/reports/:studentId/export/pdf", reportHandler.ExportPDF)

		api.GET("/rankings/:classId", reportHandler.Ranking)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
