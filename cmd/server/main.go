package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"roadlines/internal/app"
	"roadlines/internal/changefeed"
	"roadlines/internal/config"
	"roadlines/internal/handler"
	internalRedis "roadlines/internal/redis"
	"roadlines/internal/repository/postgres"
	"roadlines/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	nrApp := app.NewNewRelic(cfg.NewRelic)

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()

	// Wire dependencies.
	server, dashboard := wireServer(runCtx, db, redisClient, nrApp, cfg)

	// Serve the cached snapshot until the first recompute lands, then keep
	// the dashboard current from the trips change feed.
	dashboard.WarmStart(ctx)
	feed := changefeed.NewPostgresFeed(cfg.Database.DSN())
	go func() {
		if err := dashboard.Run(runCtx, feed); err != nil {
			log.Printf("dashboard aggregator stopped: %v", err)
		}
	}()

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopRun()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server together with
// the dashboard aggregator, which the caller starts.
func wireServer(
	ctx context.Context,
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	cfg *config.Config,
) (*http.Server, *service.DashboardService) {
	// Initialize Redis stores.
	snapshotStore := internalRedis.NewSnapshotStore(redisClient)

	// Initialize repositories.
	transactor := postgres.NewTransactor(db)
	tripRepo := postgres.NewTripRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	masterRepo := postgres.NewMasterRepository(db)
	expenseRepo := postgres.NewExpenseRepository(db)
	tokenRepo := postgres.NewDeviceTokenRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Initialize services.
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	tripService := service.NewTripService(transactor, tripRepo)
	paymentService := service.NewPaymentService(paymentRepo, tripRepo)
	expenseService := service.NewExpenseService(expenseRepo)
	masterService := service.NewMasterService(masterRepo)
	deviceService := service.NewDeviceService(tokenRepo)
	dashboardService := service.NewDashboardService(tripRepo, snapshotStore, nrApp, config.Location(cfg.Dashboard.TimeZone))
	notifierService := app.NewNotifier(ctx, cfg, db, redisClient, nrApp)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		AuthHandler:         handler.NewAuthHandler(authService),
		TripHandler:         handler.NewTripHandler(tripService, paymentService),
		PaymentHandler:      handler.NewPaymentHandler(paymentService),
		ExpenseHandler:      handler.NewExpenseHandler(expenseService),
		MasterHandler:       handler.NewMasterHandler(masterService),
		DeviceHandler:       handler.NewDeviceHandler(deviceService),
		DashboardHandler:    handler.NewDashboardHandler(dashboardService, cfg.Server.AllowedOrigins),
		NotificationHandler: handler.NewNotificationHandler(notifierService, cfg.Notifier.RunTimeout),
		TokenParser:         authService,
		JobKey:              cfg.Notifier.JobKey,
		AllowedOrigins:      cfg.Server.AllowedOrigins,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
	})

	// Create HTTP server. WriteTimeout does not apply to hijacked websocket
	// connections.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, dashboardService
}
