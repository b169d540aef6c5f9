package router

import (
	"time"

	"buzz-service/internal/client"
	"buzz-service/internal/config"
	"buzz-service/internal/handler"
	"buzz-service/internal/middleware"
	"buzz-service/internal/repository"
	"buzz-service/internal/service"
	"buzz-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS))
	r.Use(middleware.Metrics())

	// Repositories
	buzzRepo := repository.NewBuzzRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	ignoreRepo := repository.NewIgnoreRepository(db)

	// Auth
	var authClient client.AuthClient
	if cfg.Auth.ServiceURL != "" {
		authClient = client.NewAuthClient(cfg.Auth.ServiceURL, 5*time.Second)
	}
	validator := middleware.NewAuthValidator(authClient, cfg.Auth.SecretKey, logger)

	// Delivery hub
	hub := websocket.NewHub(validator, redisClient, logger)

	// Services
	ignoreService := service.NewIgnoreService(ignoreRepo, logger)
	presenceService := service.NewPresenceService(ignoreService, cfg.Presence.TTL, logger)
	radarService := service.NewRadarService(
		presenceService, ignoreService, matchRepo,
		cfg.Radar.DefaultRadiusMeters, cfg.Radar.MaxRadiusMeters, logger)
	buzzService := service.NewBuzzService(
		presenceService, ignoreService, buzzRepo, matchRepo, hub, logger)

	// Handlers
	presenceHandler := handler.NewPresenceHandler(presenceService, logger)
	radarHandler := handler.NewRadarHandler(radarService, logger)
	buzzHandler := handler.NewBuzzHandler(buzzService, ignoreService, logger)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Health endpoints (no auth)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", middleware.MetricsHandler())

	// API routes with base path
	api := r.Group(cfg.Server.BasePath)
	{
		api.GET("/health", healthHandler.Health)
		api.GET("/ready", healthHandler.Ready)

		// Push channel (token in query, not header)
		api.GET("/ws", hub.HandleWS)

		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(validator))
		{
			authenticated.POST("/presence/activate", presenceHandler.Activate)
			authenticated.POST("/presence/refresh", presenceHandler.Refresh)
			authenticated.POST("/presence/deactivate", presenceHandler.Deactivate)

			authenticated.GET("/radar", radarHandler.Query)

			authenticated.POST("/buzz", buzzHandler.Submit)
			authenticated.POST("/buzz/decline", buzzHandler.Decline)
			authenticated.GET("/buzz/pending", buzzHandler.Pending)

			authenticated.POST("/ignore", buzzHandler.Ignore)
			authenticated.GET("/matches", buzzHandler.Matches)
		}
	}

	return r
}
