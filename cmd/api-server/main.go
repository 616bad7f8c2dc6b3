package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/uni-enroll-api/api/swagger"
	"github.com/noah-isme/uni-enroll-api/internal/handler"
	"github.com/noah-isme/uni-enroll-api/internal/middleware"
	"github.com/noah-isme/uni-enroll-api/internal/models"
	"github.com/noah-isme/uni-enroll-api/internal/repository"
	"github.com/noah-isme/uni-enroll-api/internal/service"
	"github.com/noah-isme/uni-enroll-api/pkg/cache"
	"github.com/noah-isme/uni-enroll-api/pkg/config"
	"github.com/noah-isme/uni-enroll-api/pkg/database"
	"github.com/noah-isme/uni-enroll-api/pkg/export"
	"github.com/noah-isme/uni-enroll-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uni-enroll-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-enroll-api/pkg/middleware/requestid"
)

// @title Uni Enroll API
// @version 0.1.0
// @description Course catalog and enrollment service
// @BasePath /
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The catalog degrades to store reads without redis; keep serving.
		logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Catalog.CacheTTL, logr)
	catalogSvc := service.NewCatalogService(courseRepo, enrollmentRepo, cacheSvc, cfg.Catalog.CacheTTL, logr)
	courseSvc := service.NewCourseService(courseRepo, catalogSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, logr, nil)
	exportSvc := service.NewExportService(courseRepo, enrollmentRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "uni-enroll-api",
	})

	authHandler := handler.NewAuthHandler(authSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
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

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)

		api.GET("/catalog", catalogHandler.List)
		api.GET("/courses/:id", middleware.OptionalJWT(authSvc), catalogHandler.Get)

		// The admission engine evaluates identity after course availability,
		// so the route attaches claims without requiring them.
		api.POST("/enrollments", middleware.OptionalJWT(authSvc), enrollmentHandler.Create)

		coordinator := api.Group("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleCoordinator))
		{
			coordinator.GET("/courses", courseHandler.List)
			coordinator.POST("/courses", courseHandler.Create)
			coordinator.PUT("/courses/:id", courseHandler.Edit)
			coordinator.PATCH("/courses/:id/active", courseHandler.ToggleActive)
			coordinator.GET("/coordinator/summary", courseHandler.Summary)
			coordinator.GET("/enrollments", enrollmentHandler.List)
			coordinator.PUT("/enrollments/:id/status", enrollmentHandler.SetStatus)
			if cfg.Exports.Enabled {
				coordinator.GET("/courses/:id/roster/export", exportHandler.Roster)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
