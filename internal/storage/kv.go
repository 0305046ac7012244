// Package storage provides the persisted key-value slots backing the job
// ledger, with Redis, Postgres and in-memory implementations.
package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the slot has never been written.
var ErrKeyNotFound = errors.New("storage: key not found")

// KeyValueStore is the minimal persistence contract the job ledger needs:
// one opaque string value per fixed key, written whole.
type KeyValueStore interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set overwrites the value stored under key.
	Set(ctx context.Context, key, value string) error
}
