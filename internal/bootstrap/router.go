package bootstrap

import (
	"github.com/go-authgate/accountgate/internal/config"
	"github.com/go-authgate/accountgate/internal/handlers"
	"github.com/go-authgate/accountgate/internal/metrics"
	"github.com/go-authgate/accountgate/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	h *handlers.AccountHandler,
	recorder metrics.Recorder,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()

	if cfg.MetricsEnabled {
		r.Use(metrics.HTTPMetricsMiddleware(recorder))
	}
	r.Use(middleware.RequestLogger(logger), gin.Recovery())

	r.GET("/health", handlers.Health)
	setupMetricsEndpoint(r, cfg, logger)
	setupAccountRoutes(r, h)

	return r
}

// setupMetricsEndpoint exposes Prometheus metrics when enabled
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config, logger *zap.Logger) {
	switch {
	case !cfg.MetricsEnabled:
		logger.Info("prometheus metrics disabled")
	case cfg.MetricsToken != "":
		logger.Info("prometheus metrics enabled at /metrics with bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		logger.Info("prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAccountRoutes registers the account API
func setupAccountRoutes(r *gin.Engine, h *handlers.AccountHandler) {
	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", h.Login)
		api.DELETE("/account", middleware.RequireIDToken(), h.DeleteAccount)
		api.POST("/account/delete", h.DeleteAccountWithCredentials)
	}
}
