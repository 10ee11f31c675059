// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"sitestock/internal/domain/catalogs/item"
	"sitestock/internal/domain/catalogs/project"
	"sitestock/internal/domain/stock"
	"sitestock/internal/infrastructure/http/v1/handlers"
	"sitestock/internal/infrastructure/http/v1/middleware"
	"sitestock/internal/infrastructure/storage/postgres"
	"sitestock/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks).
	Pool *postgres.Pool

	// Logger for request logging.
	Logger *logger.Logger

	StockService   *stock.Service
	ItemService    *item.Service
	ProjectService *project.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no company scope required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	stockHandler := handlers.NewStockHandler(base, cfg.StockService)
	itemHandler := handlers.NewItemHandler(base, cfg.ItemService)
	projectHandler := handlers.NewProjectHandler(base, cfg.ProjectService)

	// API v1; every route below is scoped to the company resolved by the
	// Company middleware.
	api := router.Group("/api/v1")
	api.Use(middleware.Company())
	{
		stockGroup := api.Group("/stock")
		{
			stockGroup.POST("/adjust", stockHandler.Adjust)
			stockGroup.GET("/overview", stockHandler.GetOverview)
			stockGroup.GET("/balances", stockHandler.GetBalances)
			stockGroup.GET("/balances/:itemId", stockHandler.GetBalance)
			stockGroup.GET("/movements", stockHandler.GetMovements)
			stockGroup.GET("/reconcile/:itemId", stockHandler.Reconcile)
		}

		items := api.Group("/items")
		{
			items.POST("", itemHandler.Create)
			items.GET("", itemHandler.List)
			items.GET("/:id", itemHandler.GetByID)
			items.PUT("/:id", itemHandler.Update)
			items.DELETE("/:id", itemHandler.Deactivate)
		}

		projects := api.Group("/projects")
		{
			projects.POST("", projectHandler.Create)
			projects.GET("", projectHandler.List)
			projects.GET("/:id", projectHandler.GetByID)
			projects.PUT("/:id", projectHandler.Update)
			projects.DELETE("/:id", projectHandler.Deactivate)
		}
	}

	return router
}
