package api

import (
	"fmt"
	"time"

	"shopping-assistant/internal/api/handlers/health"
	"shopping-assistant/internal/api/handlers/shopping"
	"shopping-assistant/internal/api/middleware"
	"shopping-assistant/internal/core/catalog"
	"shopping-assistant/internal/infrastructure/config"
	"shopping-assistant/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Checker      shopping.Checker
	Recommender  shopping.Recommender
	Alternatives shopping.AlternativesFinder
	Catalog      catalog.Lookup
	Probes       []health.Probe
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Checker == nil || deps.Recommender == nil || deps.Alternatives == nil || deps.Catalog == nil {
		return nil, fmt.Errorf("router dependencies are incomplete")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck(deps.Probes...))
	router.GET("/live", health.LivenessCheck)

	handler := shopping.NewHandler(
		deps.Checker,
		deps.Recommender,
		deps.Alternatives,
		deps.Catalog,
		cfg.Batch.MaxDishes,
		cfg.Recommend.Limit,
		cfg.App.Debug,
	)

	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window), cfg.RateLimit.Window))
	}
	api.Use(middleware.NewDeduplicator(cfg.DedupWindow).Middleware())
	{
		shoppingGroup := api.Group("/shopping")
		{
			shoppingGroup.POST("/check", handler.HandleCheck)
			shoppingGroup.POST("/batch", handler.HandleBatch)
		}

		api.POST("/recommendations", handler.HandleRecommendations)
		api.GET("/alternatives", handler.HandleAlternatives)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
		zap.Int("max_dishes", cfg.Batch.MaxDishes),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Int("readiness_probes", len(deps.Probes)),
	)

	return router, nil
}
