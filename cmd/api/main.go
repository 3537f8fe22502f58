package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/restoq/foodsupply-backend/api/routes"
	"github.com/restoq/foodsupply-backend/internal/config"
	"github.com/restoq/foodsupply-backend/internal/handlers"
	"github.com/restoq/foodsupply-backend/internal/repositories"
	mongorepo "github.com/restoq/foodsupply-backend/internal/repositories/mongodb"
	"github.com/restoq/foodsupply-backend/internal/services"
	mongodb "github.com/restoq/foodsupply-backend/pkg/mongodb"
	"golang.org/x/exp/slog"
)

func main() {
	// .env is optional; deployments can set variables directly
	_ = godotenv.Load()

	gin.SetMode(config.GetEnv("GIN_MODE", gin.ReleaseMode))

	// Load configuration
	cfg, err := config.LoadConfig(config.GetEnv("CONFIG_PATH", "."))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogger(cfg.LogLevel)

	// Connect to MongoDB using the pkg helper
	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// The ledger depends on its unique indexes for correctness, so index
	// creation failing is fatal, not a warning.
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongorepo.EnsureIndexes(indexCtx, db); err != nil {
		cancelIndex()
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
	cancelIndex()

	// Initialize repositories
	var accountRepo repositories.AccountRepository = mongorepo.NewAccountRepository(db)
	var ledgerRepo repositories.LedgerRepository = mongorepo.NewLedgerRepository(mongoClient.Raw(), db)
	var adminRepo repositories.AdminUserRepository = mongorepo.NewAdminUserRepository(db)

	// Initialize services
	ledgerService := services.NewLedgerService(accountRepo, ledgerRepo)
	accountService := services.NewAccountService(accountRepo)
	authService := services.NewAuthService(adminRepo, cfg)

	// Initialize handlers
	handlerDeps := routes.HandlerDependencies{
		AuthHandler:    handlers.NewAuthHandler(authService),
		AccountHandler: handlers.NewAccountHandler(accountService),
		PointsHandler:  handlers.NewPointsHandler(ledgerService),
		WebhookHandler: handlers.NewWebhookHandler(ledgerService, cfg.Payment.WebhookSecret, cfg.Payment.SignatureHeader),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	slog.Info("Server starting", "port", cfg.Server.Port)

	// Run server in a goroutine so that it doesn't block
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	slog.Info("Server exiting")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}
