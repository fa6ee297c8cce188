package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/lms-admin-api/api/swagger"
	"github.com/noah-isme/lms-admin-api/internal/handler"
	"github.com/noah-isme/lms-admin-api/internal/middleware"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/repository"
	"github.com/noah-isme/lms-admin-api/internal/service"
	"github.com/noah-isme/lms-admin-api/pkg/cache"
	"github.com/noah-isme/lms-admin-api/pkg/config"
	"github.com/noah-isme/lms-admin-api/pkg/database"
	"github.com/noah-isme/lms-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lms-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lms-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/lms-admin-api/pkg/storage"
)

// @title LMS Admin API
// @version 1.0.0
// @description Administrative backend for application, course, user, and payment management
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		cacheSvc = service.NewCacheService(nil, metrics, cfg.Dashboard.CacheTTL, logr, false)
	} else {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, true)
	}

	applicationRepo := repository.NewApplicationRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	planRepo := repository.NewPaymentPlanRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	authSvc := service.NewAuthService(cfg.JWT)
	applicationSvc := service.NewApplicationService(applicationRepo, paymentRepo, userRepo, cacheSvc, metrics, logr)
	courseSvc := service.NewCourseService(courseRepo, userRepo, cacheSvc, metrics, logr)
	userSvc := service.NewUserService(userRepo, cacheSvc, metrics, logr)

	paymentSvc := service.NewPaymentService(paymentRepo, nil, nil, nil, nil, cfg.Exports.MaxRows, logr)
	var exportArchive *storage.Archive
	if cfg.Exports.Enabled {
		exportArchive, err = storage.NewArchive(cfg.Exports.Dir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export archive", "error", err)
		}
		exportSigner := storage.NewURLSigner(cfg.JWT.Secret, cfg.Exports.LinkTTL)
		paymentSvc = service.NewPaymentService(paymentRepo, nil, nil, exportArchive, exportSigner, cfg.Exports.MaxRows, logr)
	}
	planSvc := service.NewPaymentPlanService(planRepo, userRepo, nil, logr)
	reminderSvc := service.NewReminderService(reminderRepo, planRepo, userRepo, nil, logr,
		cfg.Reminders.WorkerConcurrency, cfg.Reminders.WorkerRetries)
	dashboardSvc := service.NewDashboardService(applicationRepo, courseRepo, userRepo, paymentRepo,
		cacheSvc, cfg.Dashboard.CacheTTL, logr)

	if cfg.Reminders.Enabled {
		reminderSvc.Start(ctx)
		defer reminderSvc.Stop()
	}

	if cfg.Sweeper.Enabled {
		sweeper := service.NewOverdueSweeper(planRepo, cacheSvc, nil, cfg.Exports.Retention, cfg.Sweeper.Schedule, logr)
		if exportArchive != nil {
			sweeper = service.NewOverdueSweeper(planRepo, cacheSvc, exportArchive, cfg.Exports.Retention, cfg.Sweeper.Schedule, logr)
		}
		if err := sweeper.Start(ctx); err != nil {
			logr.Sugar().Fatalw("failed to start overdue sweeper", "error", err)
		}
		defer sweeper.Stop()
	}

	applicationHandler := handler.NewApplicationHandler(applicationSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	userHandler := handler.NewUserHandler(userSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	planHandler := handler.NewPaymentPlanHandler(planSvc)
	reminderHandler := handler.NewReminderHandler(reminderSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))

	admin := middleware.RequireRoles(models.RoleAdmin)
	adminOrInstructor := middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor)

	applications := api.Group("/applications")
	{
		applications.GET("", adminOrInstructor, applicationHandler.List)
		applications.GET("/:id", adminOrInstructor, applicationHandler.Get)
		applications.PUT("/:id/review", admin, applicationHandler.Review)
		applications.POST("/bulk-review", admin, applicationHandler.BulkReview)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", adminOrInstructor, courseHandler.List)
		courses.GET("/:id", adminOrInstructor, courseHandler.Get)
		courses.PUT("/:id/review", admin, courseHandler.Review)
		courses.POST("/bulk-review", admin, courseHandler.BulkReview)
	}

	users := api.Group("/users")
	{
		users.GET("", admin, userHandler.List)
		users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Get)
		users.PUT("/:id", admin, userHandler.Update)
		users.POST("/bulk-update", admin, userHandler.BulkUpdate)
		users.GET("/:id/payment-plans", middleware.RBAC(string(models.RoleAdmin), "SELF"), planHandler.ListByUser)
		users.GET("/:id/reminders", middleware.RBAC(string(models.RoleAdmin), "SELF"), reminderHandler.ListByUser)
	}

	payments := api.Group("/payments")
	{
		payments.GET("", admin, paymentHandler.List)
		if cfg.Exports.Enabled {
			payments.GET("/export", admin, paymentHandler.Export)
		}
	}

	if cfg.Exports.Enabled {
		// Download links are authorised by their signed token, not a session.
		r.GET(cfg.APIPrefix+"/payments/export/download", paymentHandler.Download)
	}

	plans := api.Group("/payment-plans")
	{
		plans.POST("", admin, planHandler.Create)
		plans.GET("/:id", admin, planHandler.Get)
	}

	api.POST("/reminders", admin, reminderHandler.Send)

	if cfg.Dashboard.Enabled {
		api.GET("/dashboard/admin", admin, dashboardHandler.Admin)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	if err := server.Shutdown(context.Background()); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
