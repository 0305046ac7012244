// Package main provides the background reconciler entry point. It refreshes
// both job ledgers against the wallet provider on a poll interval.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tipjar-service/internal/config"
	"github.com/tipjar-service/internal/logging"
	"github.com/tipjar-service/internal/service"
	"github.com/tipjar-service/internal/storage"
	"github.com/tipjar-service/internal/wallet"
	"github.com/tipjar-service/internal/worker"
)

func main() {
	fmt.Println("Tipjar Reconciler")
	log.Println("Reconciler starting...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.InitGlobalLogger(logging.ParseLevel(cfg.Logging.Level), logging.ParseFormat(cfg.Logging.Format))
	logger := logging.GetGlobalLogger()

	kv, closeStorage, err := newKeyValueStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize storage backend")
	}
	defer closeStorage()

	tokenJobs := storage.NewJobStore(kv, storage.KeyTokenTransferJobs)
	rawJobs := storage.NewJobStore(kv, storage.KeyRawTransactionJobs)

	walletClient := wallet.NewClient(&cfg.Wallet)
	reconcileService := service.NewReconcileService(walletClient, tokenJobs, rawJobs, logger)

	w, err := worker.NewReconcileWorker(&worker.ReconcileWorkerConfig{
		Reconciler:   reconcileService,
		PollInterval: cfg.Reconcile.Interval,
		Logger:       logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create reconcile worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start reconcile worker")
	}

	logger.WithField("interval", cfg.Reconcile.Interval.String()).Info("Reconciler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down reconciler...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := w.Stop(stopCtx); err != nil {
		logger.WithError(err).Fatal("Reconciler forced to shutdown")
	}

	logger.Info("Reconciler exited")
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
		logger.Warn("Using in-memory storage: reconciling an empty ledger")
		return storage.NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}
