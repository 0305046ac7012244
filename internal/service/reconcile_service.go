package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tipjar-service/internal/logging"
	"github.com/tipjar-service/internal/models"
	"github.com/tipjar-service/internal/storage"
	"github.com/tipjar-service/internal/types"
)

// OrderHistoryLookup is the slice of the wallet client the reconciler reads
// statuses through.
type OrderHistoryLookup interface {
	GetOrdersHistory(ctx context.Context, intentID string, intentType types.IntentType) ([]types.OrderHistoryEntry, error)
}

// ReconcileService refreshes recorded job statuses against the wallet
// provider's order history. The first history entry is authoritative; an
// empty history maps to StatusUnknown.
type ReconcileService struct {
	lookup OrderHistoryLookup
	stores map[types.IntentType]*storage.JobStore
	logger *logging.Logger
}

// NewReconcileService creates a reconciler over the two job ledgers.
func NewReconcileService(
	lookup OrderHistoryLookup,
	tokenJobs *storage.JobStore,
	rawJobs *storage.JobStore,
	logger *logging.Logger,
) *ReconcileService {
	return &ReconcileService{
		lookup: lookup,
		stores: map[types.IntentType]*storage.JobStore{
			types.IntentTokenTransfer:  tokenJobs,
			types.IntentRawTransaction: rawJobs,
		},
		logger: logger,
	}
}

func (s *ReconcileService) store(intentType types.IntentType) (*storage.JobStore, error) {
	st, ok := s.stores[intentType]
	if !ok {
		return nil, &types.ServiceError{
			Code:    "INVALID_INTENT_TYPE",
			Message: fmt.Sprintf("unsupported intent type: %s", intentType),
		}
	}
	return st, nil
}

// ListJobs returns all recorded jobs of one intent type.
func (s *ReconcileService) ListJobs(ctx context.Context, intentType types.IntentType) ([]models.Job, error) {
	st, err := s.store(intentType)
	if err != nil {
		return nil, err
	}
	return st.LoadAll(ctx)
}

// RefreshOne looks up one job's order history and persists the new status.
// An unknown job id is a no-op reported through the bool return. Lookup
// failures leave the stored record unchanged.
func (s *ReconcileService) RefreshOne(ctx context.Context, intentType types.IntentType, jobID string) (models.Job, bool, error) {
	st, err := s.store(intentType)
	if err != nil {
		return models.Job{}, false, err
	}

	job, found, err := st.Find(ctx, jobID)
	if err != nil {
		return models.Job{}, false, err
	}
	if !found {
		return models.Job{}, false, nil
	}

	status, err := s.lookupStatus(ctx, jobID, intentType)
	if err != nil {
		s.logger.WithError(err).WithField("intentId", jobID).Error("Status lookup failed")
		return models.Job{}, true, err
	}

	job.Status = status
	if err := st.Upsert(ctx, job); err != nil {
		return models.Job{}, true, err
	}
	return job, true, nil
}

// RefreshAll refreshes every job of one intent type in a single batch.
// Entries without an id are dropped from the batch. Lookups fan out
// concurrently; any failure aborts the batch and nothing is persisted.
func (s *ReconcileService) RefreshAll(ctx context.Context, intentType types.IntentType) ([]models.Job, error) {
	st, err := s.store(intentType)
	if err != nil {
		return nil, err
	}

	jobs, err := st.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	tracked := jobs[:0]
	for _, job := range jobs {
		if job.ID != "" {
			tracked = append(tracked, job)
		}
	}

	refreshed := make([]models.Job, len(tracked))
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range tracked {
		i, job := i, job
		g.Go(func() error {
			status, err := s.lookupStatus(gctx, job.ID, intentType)
			if err != nil {
				return fmt.Errorf("refresh %s: %w", job.ID, err)
			}
			job.Status = status
			refreshed[i] = job
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).WithField("intentType", string(intentType)).Error("Batch refresh aborted")
		return nil, err
	}

	if err := st.SaveAll(ctx, refreshed); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"intentType": string(intentType),
		"count":      len(refreshed),
	}).Info("Jobs refreshed")

	return refreshed, nil
}

// RefreshEverything refreshes both ledgers. Each ledger is its own batch; a
// failure in one does not stop the other.
func (s *ReconcileService) RefreshEverything(ctx context.Context) error {
	var firstErr error
	for _, intentType := range []types.IntentType{types.IntentTokenTransfer, types.IntentRawTransaction} {
		if _, err := s.RefreshAll(ctx, intentType); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *ReconcileService) lookupStatus(ctx context.Context, intentID string, intentType types.IntentType) (string, error) {
	entries, err := s.lookup.GetOrdersHistory(ctx, intentID, intentType)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return types.StatusUnknown, nil
	}
	return entries[0].Status, nil
}
