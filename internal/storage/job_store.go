package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tipjar-service/internal/models"
)

// Slot keys for the two independent job ledgers. Token transfers and raw
// transactions are tracked separately, mirroring the two persisted lists the
// client app keeps.
const (
	KeyTokenTransferJobs  = "jobs"
	KeyRawTransactionJobs = "jobsRaw"
)

// JobStore persists one list of jobs as a single JSON array under a fixed
// key. There is no index: lookup by id is a linear scan, and every write
// rewrites the whole collection (last write wins).
type JobStore struct {
	kv  KeyValueStore
	key string
}

// NewJobStore creates a job store bound to one slot key.
func NewJobStore(kv KeyValueStore, key string) *JobStore {
	return &JobStore{kv: kv, key: key}
}

// Key returns the slot key this store writes to.
func (s *JobStore) Key() string {
	return s.key
}

// LoadAll reads and deserializes the full collection. A slot that has never
// been written yields an empty collection.
func (s *JobStore) LoadAll(ctx context.Context) ([]models.Job, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []models.Job{}, nil
		}
		return nil, fmt.Errorf("load jobs from %s: %w", s.key, err)
	}

	var jobs []models.Job
	if err := json.Unmarshal([]byte(raw), &jobs); err != nil {
		return nil, fmt.Errorf("decode jobs in %s: %w", s.key, err)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

// SaveAll serializes and writes the full collection atomically.
func (s *JobStore) SaveAll(ctx context.Context, jobs []models.Job) error {
	raw, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("encode jobs for %s: %w", s.key, err)
	}
	if err := s.kv.Set(ctx, s.key, string(raw)); err != nil {
		return fmt.Errorf("save jobs to %s: %w", s.key, err)
	}
	return nil
}

// Upsert merges the job's non-empty fields into the existing record with the
// same id, or appends a new record if none exists, then persists the whole
// collection.
func (s *JobStore) Upsert(ctx context.Context, job models.Job) error {
	if job.ID == "" {
		return fmt.Errorf("upsert into %s: job id must not be empty", s.key)
	}

	jobs, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}

	updated := false
	for i := range jobs {
		if jobs[i].ID == job.ID {
			jobs[i] = jobs[i].Merge(job)
			updated = true
			break
		}
	}
	if !updated {
		jobs = append(jobs, job)
	}

	return s.SaveAll(ctx, jobs)
}

// Find returns the job with the given id, or false if absent.
func (s *JobStore) Find(ctx context.Context, id string) (models.Job, bool, error) {
	jobs, err := s.LoadAll(ctx)
	if err != nil {
		return models.Job{}, false, err
	}
	for _, j := range jobs {
		if j.ID == id {
			return j, true, nil
		}
	}
	return models.Job{}, false, nil
}
