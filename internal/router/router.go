package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/recipe-search/backend/internal/api"
	"github.com/pageza/recipe-search/backend/internal/middleware"
	"github.com/pageza/recipe-search/backend/internal/service"
)

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	Recipes     service.IRecipeService
	Health      api.HealthChecker
	Logger      *slog.Logger
	CORSOrigins []string
	// Limiter throttles /api routes per client IP. Nil disables rate limiting.
	Limiter middleware.Limiter
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(deps.Logger),
		middleware.Metrics(),
		middleware.CORS(deps.CORSOrigins),
		middleware.ErrorHandler(deps.Logger),
		middleware.Recovery(),
	)

	router.GET("/", api.Index)
	router.GET("/health", api.NewHealthHandler(deps.Health, deps.Logger).Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	if deps.Limiter != nil {
		apiGroup.Use(middleware.RateLimit(deps.Limiter, deps.Logger))
	}
	api.NewRecipeHandler(deps.Recipes).RegisterRoutes(apiGroup)

	return router
}
