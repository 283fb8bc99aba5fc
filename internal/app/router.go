package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"valet/internal/handler"
	"valet/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	CheckinHandler   *handler.CheckinHandler
	RetrievalHandler *handler.RetrievalHandler
	DriverHandler    *handler.DriverHandler
	HookHandler      *handler.HookHandler
	CardHandler      *handler.CardHandler
	RedisClient      *redis.Client
	NewRelicApp      *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Check-in and parked vehicle routes.
		v1.POST("/checkin", deps.CheckinHandler.CheckIn)

		vehicles := v1.Group("/vehicles")
		{
			vehicles.GET("", deps.CheckinHandler.ListVehicles)
			vehicles.GET("/:cardId", deps.CheckinHandler.GetVehicleByCard)
		}

		// Retrieval routes.
		retrievals := v1.Group("/retrievals")
		{
			retrievals.POST("", deps.RetrievalHandler.Enqueue)
			retrievals.GET("/queue", deps.RetrievalHandler.GetQueue)
			retrievals.GET("/handovers", deps.RetrievalHandler.GetPendingHandovers)
			retrievals.GET("/:id", deps.RetrievalHandler.GetRequest)
			retrievals.POST("/:id/assign", deps.RetrievalHandler.Assign)
			retrievals.POST("/:id/advance", deps.RetrievalHandler.Advance)
			retrievals.POST("/:id/verify-card", deps.RetrievalHandler.VerifyCard)
			retrievals.POST("/:id/confirm-payment", deps.RetrievalHandler.ConfirmPayment)
			retrievals.POST("/:id/complete", deps.RetrievalHandler.Complete)
			retrievals.POST("/:id/cancel", deps.RetrievalHandler.Cancel)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.List)
			drivers.GET("/:id", deps.DriverHandler.Get)
			drivers.PUT("/:id/status", deps.DriverHandler.SetStatus)
		}

		// Key board routes.
		hooks := v1.Group("/hooks")
		{
			hooks.GET("", deps.HookHandler.GetBoard)
			hooks.GET("/stats", deps.HookHandler.GetStats)
		}

		// Card administration routes.
		cards := v1.Group("/cards")
		{
			cards.GET("/:cardId", deps.CardHandler.Get)
			cards.GET("/:cardId/clear-status", deps.CardHandler.GetClearStatus)
			cards.POST("/:cardId/clear", deps.CardHandler.Clear)
		}
	}

	return router
}
