package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-search/backend/config"
	"github.com/pageza/recipe-search/backend/internal/database"
	"github.com/pageza/recipe-search/backend/internal/logging"
	"github.com/pageza/recipe-search/backend/internal/middleware"
	"github.com/pageza/recipe-search/backend/internal/router"
	"github.com/pageza/recipe-search/backend/internal/server"
	"github.com/pageza/recipe-search/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	var (
		recipes service.IRecipeService = service.NewRecipeService(db.DB, logger)
		limiter middleware.Limiter
	)
	limits := middleware.RateLimitConfig{
		Window: cfg.RateLimitWindow,
		Limit:  cfg.RateLimitRequests,
	}

	if cfg.RedisEnabled() {
		redisClient, err := database.NewRedisClient(ctx, cfg, logger)
		if err != nil {
			// Redis only backs optional features.
			logger.Warn("continuing without redis", "error", err)
		} else {
			defer redisClient.Close()
			if cfg.CacheTTL > 0 {
				recipes = service.NewCachedRecipeService(recipes, redisClient, cfg.CacheTTL, logger)
			}
			if cfg.RateLimitRequests > 0 {
				limiter = middleware.NewRedisLimiter(redisClient, limits)
			}
		}
	}
	if limiter == nil && cfg.RateLimitRequests > 0 {
		limiter = middleware.NewLocalLimiter(limits)
	}

	gin.SetMode(gin.ReleaseMode)
	handler := router.SetupRouter(router.Dependencies{
		Recipes:     recipes,
		Health:      db,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     limiter,
	})

	return server.New(cfg, handler, logger).Run(ctx)
}
