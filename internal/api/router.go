package api

import (
	v1 "github.com/flexprice/proratemate/internal/api/v1"
	"github.com/flexprice/proratemate/internal/config"
	ierr "github.com/flexprice/proratemate/internal/errors"
	"github.com/flexprice/proratemate/internal/logger"
	"github.com/flexprice/proratemate/internal/rest/middleware"
	"github.com/flexprice/proratemate/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health    *v1.HealthHandler
	Proration *v1.ProrationHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add middleware to set request ID first so every later log line carries it
	router.Use(
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.LoggingMiddleware(logger),
		middleware.RateLimitMiddleware(cfg),
		middleware.ErrorHandler(logger),
	)

	// Health check
	router.GET("/health", handlers.Health.Health)

	router.NoRoute(func(c *gin.Context) {
		c.Error(ierr.NewErrorf("no route for %s %s", c.Request.Method, c.Request.URL.Path).
			WithHint("The requested endpoint does not exist").
			Mark(ierr.ErrNotFound))
	})

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	proration := router.Group("/proration")
	{
		proration.POST("/periods", handlers.Proration.ListBillingPeriods)
		proration.POST("/service-end/preview", handlers.Proration.PreviewServiceEnd)
		proration.POST("/service-start/preview", handlers.Proration.PreviewServiceStart)
		proration.POST("/plan-change/preview", handlers.Proration.PreviewPlanChange)
	}
}
