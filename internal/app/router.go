package app

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"nammauto/internal/handler"
	"nammauto/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler *handler.AuthHandler
	RideHandler *handler.RideHandler
	RedisClient *redis.Client
	NewRelicApp *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(cors.Default())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.RedisClient != nil {
		router.Use(middleware.Idempotency(deps.RedisClient))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", deps.AuthHandler.Login)
			auth.GET("/drivers", deps.AuthHandler.OnlineDrivers)
			auth.PATCH("/:id/status", deps.AuthHandler.UpdateStatus)
		}

		rides := api.Group("/rides")
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("/pending", deps.RideHandler.PendingRides)
			rides.GET("/active/:userId", deps.RideHandler.ActiveRide)
			rides.PATCH("/:id", deps.RideHandler.UpdateRide)
		}
	}

	return router
}
