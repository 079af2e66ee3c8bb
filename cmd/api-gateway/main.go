package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/tiltakhub/participant-api/api/swagger"
	"github.com/tiltakhub/participant-api/internal/consumer"
	"github.com/tiltakhub/participant-api/internal/handler"
	"github.com/tiltakhub/participant-api/internal/middleware"
	"github.com/tiltakhub/participant-api/internal/models"
	"github.com/tiltakhub/participant-api/internal/repository"
	"github.com/tiltakhub/participant-api/internal/service"
	"github.com/tiltakhub/participant-api/pkg/cache"
	"github.com/tiltakhub/participant-api/pkg/config"
	"github.com/tiltakhub/participant-api/pkg/database"
	"github.com/tiltakhub/participant-api/pkg/kafka"
	"github.com/tiltakhub/participant-api/pkg/logger"
	corsmiddleware "github.com/tiltakhub/participant-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tiltakhub/participant-api/pkg/middleware/requestid"
)

// @title Participant API
// @version 1.0.0
// @description Arranger-facing participant roster and reconciliation service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close()
		}
	}

	validate := validator.New()

	participantRepo := repository.NewParticipantRepository(db)
	arrangerRepo := repository.NewArrangerRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.RosterTTL, logr, cfg.Cache.Enabled && redisClient != nil)
	authSvc := service.NewAuthService(staffRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	participantSvc := service.NewParticipantService(participantRepo, arrangerRepo, staffRepo, cacheSvc, validate, logr, cfg.Cache.RosterTTL, cfg.Cache.HistoryTTL)
	updateSvc := service.NewUpdateService(participantRepo, cacheSvc, metricsSvc, logr)
	exportSvc := service.NewExportService(participantRepo, staffRepo, logr, nil, nil)

	if cfg.Kafka.Enabled {
		kafkaClient, err := kafka.NewClient(cfg.Kafka)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to kafka", "error", err)
		}
		cons := consumer.New(kafkaClient, updateSvc, logr)
		defer cons.Close()
		go consumer.RunWithRetry(context.Background(), cons, 5*time.Second)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	participantHandler := handler.NewParticipantHandler(participantSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db.Ping)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/status", metricsHandler.Status)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg, authHandler, participantHandler, exportHandler, authSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func registerRoutes(
	r *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	participantHandler *handler.ParticipantHandler,
	exportHandler *handler.ExportHandler,
	authSvc *service.AuthService,
) {
	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/me/roles", authHandler.MyRoles)

	staff := authed.Group("")
	staff.Use(middleware.RequireRoles(models.RoleCoordinator, models.RoleMentor))

	staff.GET("/participants/:id", participantHandler.Get)
	staff.GET("/participants/:id/history", participantHandler.History)
	staff.POST("/participants/:id/assessments", participantHandler.RegisterAssessment)
	staff.GET("/offerings/:id/participants", participantHandler.Roster)

	if cfg.Exports.Enabled {
		staff.GET("/offerings/:id/participants/export", exportHandler.Roster)
	}

	coordinators := authed.Group("")
	coordinators.Use(middleware.RequireRoles(models.RoleCoordinator))

	coordinators.DELETE("/participants/:id", participantHandler.Hide)
	coordinators.POST("/participants/:id/unhide", participantHandler.Unhide)
}
