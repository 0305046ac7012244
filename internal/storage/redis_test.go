package storage

import (
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipjar-service/internal/models"
	"github.com/tipjar-service/internal/types"
)

// setupTestRedisStore starts a miniredis instance and wraps it in a RedisStore.
func setupTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return NewRedisStoreFromClient(client)
}

func TestRedisStore_GetMissingKey(t *testing.T) {
	store := setupTestRedisStore(t)

	_, err := store.Get(testContext(t), "never-written")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrKeyNotFound))
}

func TestRedisStore_SetGet(t *testing.T) {
	ctx := testContext(t)
	store := setupTestRedisStore(t)

	require.NoError(t, store.Set(ctx, "jobs", `[]`))

	got, err := store.Get(ctx, "jobs")
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)

	// Overwrite replaces the value whole.
	require.NoError(t, store.Set(ctx, "jobs", `[{"id":"a"}]`))
	got, err = store.Get(ctx, "jobs")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, got)
}

func TestJobStore_OnRedis(t *testing.T) {
	ctx := testContext(t)
	store := NewJobStore(setupTestRedisStore(t), KeyTokenTransferJobs)

	job := models.Job{
		ID:         "0xabc",
		Amount:     "1.5",
		IntentType: types.IntentTokenTransfer,
		Status:     types.StatusPending,
	}
	require.NoError(t, store.Upsert(ctx, job))
	require.NoError(t, store.Upsert(ctx, models.Job{ID: "0xabc", Status: "SUCCESSFUL"}))

	jobs, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "SUCCESSFUL", jobs[0].Status)
	assert.Equal(t, "1.5", jobs[0].Amount)
}
