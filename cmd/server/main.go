// Package main provides the API server entry point for the tipjar service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tipjar-service/internal/api"
	"github.com/tipjar-service/internal/config"
	"github.com/tipjar-service/internal/contract"
	"github.com/tipjar-service/internal/logging"
	"github.com/tipjar-service/internal/pricefeed"
	"github.com/tipjar-service/internal/service"
	"github.com/tipjar-service/internal/storage"
	"github.com/tipjar-service/internal/wallet"
)

func main() {
	fmt.Println("Tipjar API Server")
	log.Println("Server starting...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLevel(cfg.Logging.Level)
	logFormat := logging.ParseFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Initialize the job-ledger storage backend
	kv, closeStorage, err := newKeyValueStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize storage backend")
	}
	defer closeStorage()

	tokenJobs := storage.NewJobStore(kv, storage.KeyTokenTransferJobs)
	rawJobs := storage.NewJobStore(kv, storage.KeyRawTransactionJobs)

	// Initialize external clients
	walletClient := wallet.NewClient(&cfg.Wallet)
	priceClient := pricefeed.NewClient(&cfg.Price)

	messageStore, err := contract.New(cfg.Tip.ContractAddress)
	if err != nil {
		logger.WithError(err).Fatal("Invalid tip contract address")
	}

	// Initialize services
	logger.Info("Initializing services...")

	authService := service.NewAuthService(walletClient, logger)
	tipService := service.NewTipService(walletClient, tokenJobs, rawJobs, messageStore, cfg.Tip.NetworkID, logger)
	reconcileService := service.NewReconcileService(walletClient, tokenJobs, rawJobs, logger)
	portfolioService := service.NewPortfolioService(walletClient, cfg.Tip.NetworkName, logger)

	logger.Info("Services initialized")

	// Create server configuration
	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RateLimitRPS:    cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst:  cfg.RateLimit.Burst,
	}

	server := api.NewServer(serverConfig, authService, tipService, reconcileService, portfolioService, priceClient)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host":    cfg.Server.Host,
		"port":    cfg.Server.Port,
		"backend": cfg.Storage.Backend,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

// newKeyValueStore builds the configured job-ledger backend and returns it
// with its cleanup function.
func newKeyValueStore(cfg *config.Config, logger *logging.Logger) (storage.KeyValueStore, func(), error) {
	switch cfg.Storage.Backend {
	case "redis":
		store, err := storage.NewRedisStore(&cfg.Storage.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to Redis")
		return store, func() { store.Close() }, nil

	case "postgres":
		db, err := storage.NewPostgresDB(&cfg.Storage.Postgres)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to Postgres")
		return storage.NewPostgresStore(db), db.Close, nil

	case "memory":
		logger.Warn("Using in-memory storage: jobs will not survive a restart")
		return storage.NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}
