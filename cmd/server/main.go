// @title           MicroBuzz Service API
// @version         1.0
// @description     Ephemeral same-room presence and mutual-interest matching

// @host      localhost:8002
// @BasePath  /api/buzz

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"fmt"
	"log"
	"os"

	"buzz-service/internal/config"
	"buzz-service/internal/database"
	"buzz-service/internal/router"

	"go.uber.org/zap"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting Buzz Service",
		zap.Int("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Env),
		zap.String("basePath", cfg.Server.BasePath),
		zap.String("dbDriver", cfg.Database.Driver),
		zap.Duration("presenceTTL", cfg.Presence.TTL))

	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Database connected and migrated")

	redisClient, err := database.NewRedis(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	if redisClient != nil {
		logger.Info("Redis connected")
	} else {
		logger.Warn("Redis not configured, push delivery is local to this instance")
	}

	r := router.Setup(cfg, db, redisClient, logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Buzz Service started", zap.String("address", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Server.Env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
