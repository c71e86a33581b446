package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"roadlines/internal/handler"
	"roadlines/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler         *handler.AuthHandler
	TripHandler         *handler.TripHandler
	PaymentHandler      *handler.PaymentHandler
	ExpenseHandler      *handler.ExpenseHandler
	MasterHandler       *handler.MasterHandler
	DeviceHandler       *handler.DeviceHandler
	DashboardHandler    *handler.DashboardHandler
	NotificationHandler *handler.NotificationHandler
	TokenParser         middleware.TokenParser
	JobKey              string
	AllowedOrigins      []string
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.TransactionAttributes())
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.POST("/auth/login", deps.AuthHandler.Login)

	// The scheduler calls this with a job key instead of a user session.
	v1.POST("/notifications/run",
		middleware.RequireAuthOrJobKey(deps.TokenParser, deps.JobKey),
		deps.NotificationHandler.Run,
	)

	authed := v1.Group("")
	authed.Use(middleware.RequireAuth(deps.TokenParser))
	authed.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	{
		// Trip routes.
		trips := authed.Group("/trips")
		{
			trips.POST("", deps.TripHandler.CreateTrip)
			trips.GET("", deps.TripHandler.ListTrips)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.PUT("/:id", deps.TripHandler.UpdateTrip)
			trips.DELETE("/:id", deps.TripHandler.DeleteTrip)
			trips.POST("/:id/pod", deps.TripHandler.AttachPOD)
			trips.GET("/:id/payments", deps.TripHandler.ListTripPayments)
		}

		// Payment routes.
		payments := authed.Group("/payments")
		{
			payments.POST("", deps.PaymentHandler.RecordPayment)
			payments.GET("", deps.PaymentHandler.ListPayments)
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
			payments.DELETE("/:id", deps.PaymentHandler.DeletePayment)
		}

		// Expense routes.
		expenses := authed.Group("/expenses")
		{
			expenses.POST("", deps.ExpenseHandler.CreateExpense)
			expenses.GET("", deps.ExpenseHandler.ListExpenses)
			expenses.PUT("/:id", deps.ExpenseHandler.UpdateExpense)
			expenses.DELETE("/:id", deps.ExpenseHandler.DeleteExpense)
		}

		// Master directories.
		masters := authed.Group("/masters")
		{
			masters.GET("/parties", deps.MasterHandler.ListParties)
			masters.GET("/owners", deps.MasterHandler.ListOwners)
		}

		authed.POST("/devices", deps.DeviceHandler.RegisterDevice)

		// Dashboard routes.
		dashboard := authed.Group("/dashboard")
		{
			dashboard.GET("", deps.DashboardHandler.GetDashboard)
			dashboard.GET("/stream", deps.DashboardHandler.Stream)
		}
	}

	return router
}
