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

	_ "github.com/staffdeskhq/staffdesk-api/api/swagger"
	"github.com/staffdeskhq/staffdesk-api/internal/handler"
	"github.com/staffdeskhq/staffdesk-api/internal/middleware"
	"github.com/staffdeskhq/staffdesk-api/internal/repository"
	"github.com/staffdeskhq/staffdesk-api/internal/schedule"
	"github.com/staffdeskhq/staffdesk-api/internal/service"
	"github.com/staffdeskhq/staffdesk-api/pkg/cache"
	"github.com/staffdeskhq/staffdesk-api/pkg/config"
	"github.com/staffdeskhq/staffdesk-api/pkg/database"
	"github.com/staffdeskhq/staffdesk-api/pkg/logger"
	corsmiddleware "github.com/staffdeskhq/staffdesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/staffdeskhq/staffdesk-api/pkg/middleware/requestid"
	"github.com/staffdeskhq/staffdesk-api/pkg/storage"
)

// @title StaffDesk API
// @version 1.0.0
// @description School staff scheduling and roster administration backend
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	backupStore, err := storage.NewLocalStorage(cfg.Purge.BackupDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare backup storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Purge.SignedURLSecret, cfg.Purge.SignedURLTTL)

	hours := schedule.Hours{
		Start:    cfg.Hours.Start,
		End:      cfg.Hours.End,
		MinHours: cfg.Hours.MinHours,
		MaxHours: cfg.Hours.MaxHours,
	}
	validate := validator.New()

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Schedule.CacheTTL, logr, cfg.Schedule.CacheEnabled && redisClient != nil)

	employeeRepo := repository.NewEmployeeRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	blockRepo := repository.NewTimeBlockRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	purgeLogRepo := repository.NewPurgeLogRepository(db)

	employeeSvc := service.NewEmployeeService(employeeRepo, availabilityRepo, hours, validate, logr)
	importSvc := service.NewImportService(employeeRepo, availabilityRepo, hours, cfg.Import.MaxRows, metricsSvc, logr)
	scheduleSvc := service.NewScheduleService(employeeRepo, availabilityRepo, blockRepo, cacheSvc, hours, cfg.Schedule, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, employeeRepo, studentRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, assignmentRepo, validate, logr)
	shiftSvc := service.NewShiftService(shiftRepo, employeeRepo, validate, logr)
	exportSvc := service.NewExportService(employeeRepo, scheduleSvc, logr)
	purgeSvc := service.NewPurgeService(
		employeeRepo, availabilityRepo, blockRepo, assignmentRepo, shiftRepo,
		purgeLogRepo, backupStore, signer, cacheSvc,
		cfg.Purge.WorkerConcurrency, cfg.Purge.WorkerRetries,
		validate, logr,
	)
	purgeSvc.Start(ctx)
	defer purgeSvc.Stop()

	go sweepBackups(ctx, backupStore, cfg.Purge.BackupRetention, logr)

	employeeHandler := handler.NewEmployeeHandler(employeeSvc, importSvc, exportSvc, cfg.Import.MaxFileSizeBytes)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, exportSvc)
	paraHandler := handler.NewParaEducatorHandler(employeeSvc, assignmentSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, assignmentSvc)
	shiftHandler := handler.NewShiftHandler(shiftSvc)
	purgeHandler := handler.NewPurgeHandler(purgeSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		checkCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(checkCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		status := gin.H{"status": "ready"}
		if redisClient != nil {
			if err := redisClient.Ping(checkCtx).Err(); err != nil {
				status["cache"] = "degraded"
			}
		}
		c.JSON(http.StatusOK, status)
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		employees := api.Group("/employees")
		{
			employees.GET("", employeeHandler.List)
			employees.POST("", employeeHandler.Create)
			employees.GET("/export", employeeHandler.Export)
			employees.POST("/import", employeeHandler.Import)
			employees.GET("/import/template", employeeHandler.ImportTemplate)
			employees.GET("/:id", employeeHandler.Get)
			employees.PUT("/:id", employeeHandler.Update)
			employees.PATCH("/:id", employeeHandler.Update)
			employees.DELETE("/:id", employeeHandler.Deactivate)
			employees.GET("/:id/availability", employeeHandler.Availability)
			employees.PUT("/:id/availability", employeeHandler.ReplaceAvailability)
		}

		scheduleRoutes := api.Group("/schedule")
		{
			scheduleRoutes.GET("/:date", scheduleHandler.Day)
			scheduleRoutes.POST("/:date/initialize", scheduleHandler.Initialize)
			scheduleRoutes.PATCH("/:date/move", scheduleHandler.MoveBlock)
			scheduleRoutes.PATCH("/:date/blocks", scheduleHandler.BatchUpdate)
			scheduleRoutes.GET("/:date/coverage", scheduleHandler.Coverage)
			scheduleRoutes.GET("/:date/export", scheduleHandler.ExportPDF)
		}
		api.PUT("/time-blocks/:id", scheduleHandler.UpdateBlock)
		api.POST("/time-blocks/initialize", scheduleHandler.InitializeFromBody)

		paras := api.Group("/para-educators")
		{
			paras.GET("", paraHandler.List)
			paras.GET("/:id", paraHandler.Get)
			paras.GET("/:id/assignments", paraHandler.ListAssignments)
			paras.POST("/:id/assignments", paraHandler.CreateAssignment)
			paras.DELETE("/:id/assignments/:assignmentId", paraHandler.DeleteAssignment)
		}

		students := api.Group("/students")
		{
			students.GET("", studentHandler.List)
			students.POST("", studentHandler.Create)
			students.GET("/:id", studentHandler.Get)
			students.PUT("/:id", studentHandler.Update)
			students.DELETE("/:id", studentHandler.Delete)
			students.GET("/:id/schedule", studentHandler.Schedule)
			students.POST("/:id/schedule", studentHandler.CreateScheduleEntry)
		}

		shifts := api.Group("/shifts")
		{
			shifts.GET("", shiftHandler.List)
			shifts.POST("", shiftHandler.Create)
		}

		purge := api.Group("/purge")
		{
			purge.POST("", purgeHandler.Purge)
			purge.GET("/history", purgeHandler.History)
			purge.GET("/backup", purgeHandler.DownloadBackup)
		}

		api.GET("/metrics/summary", metricsHandler.Snapshot)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}

// sweepBackups removes purge backups older than the retention window, once
// at startup and then daily.
func sweepBackups(ctx context.Context, store *storage.LocalStorage, retention time.Duration, logr *zap.Logger) {
	if retention <= 0 {
		return
	}
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		removed, err := store.CleanupOlderThan(retention)
		if err != nil {
			logr.Sugar().Warnw("backup cleanup failed", "error", err)
		} else if len(removed) > 0 {
			logr.Sugar().Infow("expired backups removed", "count", len(removed))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
