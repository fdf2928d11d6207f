package routes

import (
	"time"

	"garageflow-backend/config"
	"garageflow-backend/controllers"
	"garageflow-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Controllers bundles the handlers the router mounts.
type Controllers struct {
	Auth      *controllers.AuthController
	Customer  *controllers.CustomerController
	Vehicle   *controllers.VehicleController
	Invoice   *controllers.InvoiceController
	Dashboard *controllers.DashboardController
	Health    *controllers.HealthController
}

type RouterConfig struct {
	JWTSecret        string
	CORSAllowOrigins []string
	// nil limiters leave the auth endpoints unthrottled
	LoginLimiter    *utils.RateLimiter
	RegisterLimiter *utils.RateLimiter
	Logger          *zap.Logger
}

const (
	loginLimitMessage    = "Too many login attempts. Please try again later."
	registerLimitMessage = "Too many requests. Please try again later."
)

func SetupRouter(cfg RouterConfig, ctrl Controllers) *gin.Engine {
	utils.SetupValidator()

	r := gin.New()
	r.Use(config.RequestID())
	r.Use(config.Recovery(cfg.Logger))
	r.Use(config.PerformanceLogger(cfg.Logger))

	// cors.New panics on an empty origin list
	if len(cfg.CORSAllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", controllers.IdempotencyKeyHeader, config.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", config.RequestIDHeader, "Idempotent-Replayed"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	} else if cfg.Logger != nil {
		cfg.Logger.Warn("no CORS origins configured, cross-origin requests are rejected")
	}

	r.GET("/health", ctrl.Health.Health)

	requireAuth := utils.AuthMiddleware(cfg.JWTSecret)

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", utils.RateLimit(cfg.RegisterLimiter, registerLimitMessage), ctrl.Auth.Register)
		auth.POST("/login", utils.RateLimit(cfg.LoginLimiter, loginLimitMessage), ctrl.Auth.Login)
		auth.GET("/me", requireAuth, ctrl.Auth.Me)
	}

	api := r.Group("/api")
	api.Use(requireAuth)
	{
		api.PATCH("/shops/me/password", ctrl.Auth.ChangePassword)

		// Customer routes
		customers := api.Group("/customers")
		{
			customers.GET("", ctrl.Customer.ListCustomers)
			customers.POST("", ctrl.Customer.CreateCustomer)
			customers.GET("/:id", ctrl.Customer.GetCustomer)
			customers.GET("/:id/vehicles", ctrl.Customer.ListCustomerVehicles)
			customers.GET("/:id/history", ctrl.Customer.GetCustomerHistory)
		}

		api.POST("/vehicles", ctrl.Vehicle.CreateVehicle)

		// Invoice routes
		invoices := api.Group("/invoices")
		{
			invoices.POST("", ctrl.Invoice.CreateInvoice)
			invoices.GET("", ctrl.Invoice.ListInvoices)
			invoices.GET("/:id", ctrl.Invoice.GetInvoice)
			invoices.PATCH("/:id/status", ctrl.Invoice.UpdateStatus)
			invoices.GET("/:id/print", ctrl.Invoice.PrintInvoice)
		}

		api.GET("/dashboard", ctrl.Dashboard.GetDashboard)
	}

	return r
}
