package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"garageflow-backend/cache"
	"garageflow-backend/config"
	"garageflow-backend/controllers"
	"garageflow-backend/models"
	"garageflow-backend/routes"
	"garageflow-backend/services"
	"garageflow-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Example: `  # Start with config.toml and environment overrides
  garageflow serve

  # Start with a specific config file
  garageflow serve --config /etc/garageflow/config.toml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(cfg.Database, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		logger.Info("database schema migrated")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	idempotency := cache.NewIdempotencyStore(ctx, cfg.Redis.Enabled, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	defer idempotency.Close()

	registry := services.NewPartyRegistry(db)
	invoices := services.NewInvoiceService(db, registry, services.NewSequencer(), services.PermissivePolicy{}, logger)
	shops := services.NewShopService(db, cfg.JWT.Secret, cfg.JWT.Expiration, logger)
	dashboard := services.NewDashboardService(db)

	if cfg.Reminder.Enabled {
		reminders := services.NewReminderService(db, newNotifier(cfg, logger), invoices.Policy(), cfg.Reminder.MinDaysOpen, logger)
		if err := reminders.StartScheduler(cfg.Reminder.CronSchedule); err != nil {
			return err
		}
		defer reminders.StopScheduler()
	}

	loginLimiter, registerLimiter := newAuthLimiters(cfg.RateLimit)
	defer closeLimiters(loginLimiter, registerLimiter)

	router := routes.SetupRouter(routes.RouterConfig{
		JWTSecret:        cfg.JWT.Secret,
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
		LoginLimiter:     loginLimiter,
		RegisterLimiter:  registerLimiter,
		Logger:           logger,
	}, routes.Controllers{
		Auth:      controllers.NewAuthController(shops, logger),
		Customer:  controllers.NewCustomerController(registry, logger),
		Vehicle:   controllers.NewVehicleController(registry, logger),
		Invoice:   controllers.NewInvoiceController(invoices, idempotency, cfg.Idempotency.TTL, logger),
		Dashboard: controllers.NewDashboardController(dashboard, logger),
		Health:    controllers.NewHealthController(db, logger),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// newNotifier picks the reminder channel. "auto" uses Twilio when it is
// fully configured and the log otherwise.
func newNotifier(cfg *config.Config, logger *zap.Logger) services.Notifier {
	useSMS := cfg.Reminder.Channel == "sms" || (cfg.Reminder.Channel == "auto" && cfg.TwilioConfigured())
	if useSMS {
		return services.NewTwilioNotifier(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, logger)
	}
	return services.NewLogNotifier(logger)
}

// newAuthLimiters returns nil limiters when rate limiting is disabled.
func newAuthLimiters(cfg config.RateLimitConfig) (login, register *utils.RateLimiter) {
	if !cfg.Enabled {
		return nil, nil
	}
	return utils.NewRateLimiter(cfg.LoginMax, cfg.Window), utils.NewRateLimiter(cfg.RegisterMax, cfg.Window)
}

func closeLimiters(limiters ...*utils.RateLimiter) {
	for _, l := range limiters {
		if l != nil {
			l.Close()
		}
	}
}
