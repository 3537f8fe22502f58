package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/restoq/foodsupply-backend/internal/config"
	"github.com/restoq/foodsupply-backend/internal/handlers"
	"github.com/restoq/foodsupply-backend/internal/middleware"
)

// HandlerDependencies bundles the handlers the router needs
type HandlerDependencies struct {
	AuthHandler    *handlers.AuthHandler
	AccountHandler *handlers.AccountHandler
	PointsHandler  *handlers.PointsHandler
	WebhookHandler *handlers.WebhookHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Add middleware
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		// Health check
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})

		// Auth routes
		auth := public.Group("/auth")
		{
			auth.POST("/login", deps.AuthHandler.Login)
		}

		// Payment provider callbacks authenticate via HMAC signature,
		// not JWT, so they stay outside the protected group.
		webhooks := public.Group("/webhooks")
		{
			webhooks.POST("/payment", deps.WebhookHandler.HandlePaymentEvent)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		protected.POST("/auth/register", deps.AuthHandler.RegisterAdmin)

		// Account routes
		accounts := protected.Group("/accounts")
		{
			accounts.POST("", deps.AccountHandler.CreateAccount)
			accounts.GET("/:userKey", deps.AccountHandler.GetAccount)
		}

		// Points ledger routes
		points := protected.Group("/points")
		{
			points.POST("/purchase", deps.PointsHandler.PurchasePoints)
			points.POST("/deduct", deps.PointsHandler.DeductPoints)
			points.GET("/:userKey/balance", deps.PointsHandler.GetBalance)
			points.GET("/:userKey/transactions", deps.PointsHandler.GetTransactionHistory)
		}
	}

	return router
}
