// Package worker runs background reconciliation of the job ledgers.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tipjar-service/internal/logging"
)

// Reconciler is the slice of the reconcile service the worker drives.
type Reconciler interface {
	RefreshEverything(ctx context.Context) error
}

// ReconcileWorker periodically refreshes both job ledgers against the wallet
// provider's order history. A failed cycle is logged and the next tick tries
// again; the worker never stops on its own.
type ReconcileWorker struct {
	reconciler   Reconciler
	pollInterval time.Duration
	logger       *logging.Logger

	running      bool
	mu           sync.RWMutex
	stopCh       chan struct{}
	doneCh       chan struct{}
	lastPollTime time.Time
}

// ReconcileWorkerConfig holds configuration for a reconcile worker.
type ReconcileWorkerConfig struct {
	Reconciler   Reconciler
	PollInterval time.Duration // default: 30 seconds
	Logger       *logging.Logger
}

// NewReconcileWorker creates a new reconcile worker.
func NewReconcileWorker(cfg *ReconcileWorkerConfig) (*ReconcileWorker, error) {
	if cfg.Reconciler == nil {
		return nil, fmt.Errorf("reconciler cannot be nil")
	}

	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = 30 * time.Second
	}
	if pollInterval < time.Second {
		return nil, fmt.Errorf("poll interval must be at least one second, got %v", pollInterval)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &ReconcileWorker{
		reconciler:   cfg.Reconciler,
		pollInterval: pollInterval,
		logger:       logger.WithField("component", "reconcile_worker"),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}, nil
}

// Start begins the reconcile loop.
func (w *ReconcileWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("reconcile worker is already running")
	}
	w.running = true
	w.mu.Unlock()

	w.logger.WithField("pollInterval", w.pollInterval.String()).Info("Starting reconcile worker")

	go w.pollLoop(ctx)

	return nil
}

// Stop gracefully stops the worker.
func (w *ReconcileWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("reconcile worker is not running")
	}
	w.mu.Unlock()

	w.logger.Info("Stopping reconcile worker")

	close(w.stopCh)

	select {
	case <-w.doneCh:
		w.logger.Info("Reconcile worker stopped gracefully")
	case <-ctx.Done():
		w.logger.Warn("Reconcile worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

// pollLoop is the main polling loop that runs in a goroutine.
func (w *ReconcileWorker) pollLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Context cancelled")
			return
		case <-w.stopCh:
			w.logger.Info("Stop signal received")
			return
		case <-ticker.C:
			w.mu.Lock()
			w.lastPollTime = time.Now()
			w.mu.Unlock()

			if err := w.reconciler.RefreshEverything(ctx); err != nil {
				// Continue polling despite errors
				w.logger.WithError(err).Warn("Reconcile cycle failed")
				continue
			}
			w.logger.Debug("Reconcile cycle completed")
		}
	}
}

// Status represents the current status of the worker.
type Status struct {
	Running             bool
	LastPollTime        time.Time
	PollIntervalSeconds int
}

// GetStatus returns the current worker status.
func (w *ReconcileWorker) GetStatus() *Status {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return &Status{
		Running:             w.running,
		LastPollTime:        w.lastPollTime,
		PollIntervalSeconds: int(w.pollInterval.Seconds()),
	}
}
