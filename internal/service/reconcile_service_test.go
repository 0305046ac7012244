package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/tipjar-service/internal/contract"
	"github.com/tipjar-service/internal/models"
	"github.com/tipjar-service/internal/storage"
	"github.com/tipjar-service/internal/types"
)

func newTestReconcileService(t *testing.T, w *mockWallet) (*ReconcileService, *storage.JobStore, *storage.JobStore) {
	t.Helper()

	kv := storage.NewMemoryStore()
	tokenJobs := storage.NewJobStore(kv, storage.KeyTokenTransferJobs)
	rawJobs := storage.NewJobStore(kv, storage.KeyRawTransactionJobs)

	return NewReconcileService(w, tokenJobs, rawJobs, testLogger()), tokenJobs, rawJobs
}

func seedJobs(t *testing.T, store *storage.JobStore, jobs []models.Job) {
	t.Helper()
	if err := store.SaveAll(context.Background(), jobs); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}
}

func TestRefreshOne(t *testing.T) {
	w := &mockWallet{
		history: map[string][]types.OrderHistoryEntry{
			"intent-1": {
				{IntentID: "intent-1", Status: "SUCCESSFUL"},
				{IntentID: "intent-1", Status: "IN_PROGRESS"},
			},
		},
	}
	svc, tokenJobs, _ := newTestReconcileService(t, w)
	seedJobs(t, tokenJobs, []models.Job{
		{ID: "intent-1", Amount: "1.5", RecipientAddress: testRecipient, Status: types.StatusPending},
	})

	job, found, err := svc.RefreshOne(context.Background(), types.IntentTokenTransfer, "intent-1")
	if err != nil {
		t.Fatalf("RefreshOne() error = %v", err)
	}
	if !found {
		t.Fatal("RefreshOne() found = false, want true")
	}
	// First entry wins even when older entries follow it.
	if job.Status != "SUCCESSFUL" {
		t.Errorf("job.Status = %s, want SUCCESSFUL", job.Status)
	}
	if job.Amount != "1.5" {
		t.Errorf("job.Amount = %s, refresh must not clobber other fields", job.Amount)
	}

	stored, _, err := tokenJobs.Find(context.Background(), "intent-1")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if stored.Status != "SUCCESSFUL" {
		t.Errorf("stored status = %s, want SUCCESSFUL", stored.Status)
	}
}

func TestRefreshOne_UnknownID(t *testing.T) {
	svc, tokenJobs, _ := newTestReconcileService(t, &mockWallet{})
	seedJobs(t, tokenJobs, []models.Job{{ID: "intent-1", Status: types.StatusPending}})

	_, found, err := svc.RefreshOne(context.Background(), types.IntentTokenTransfer, "no-such-intent")
	if err != nil {
		t.Fatalf("RefreshOne() error = %v", err)
	}
	if found {
		t.Error("RefreshOne() found = true for unknown id, want false")
	}
}

func TestRefreshOne_EmptyHistory(t *testing.T) {
	svc, tokenJobs, _ := newTestReconcileService(t, &mockWallet{})
	seedJobs(t, tokenJobs, []models.Job{{ID: "intent-1", Status: types.StatusPending}})

	job, found, err := svc.RefreshOne(context.Background(), types.IntentTokenTransfer, "intent-1")
	if err != nil || !found {
		t.Fatalf("RefreshOne() = %v, %v; want found job", found, err)
	}
	if job.Status != types.StatusUnknown {
		t.Errorf("job.Status = %s, want %s for empty history", job.Status, types.StatusUnknown)
	}
}

func TestRefreshOne_LookupFailureLeavesStoreUnchanged(t *testing.T) {
	w := &mockWallet{
		lookupErr: map[string]error{"intent-1": fmt.Errorf("provider down")},
	}
	svc, tokenJobs, _ := newTestReconcileService(t, w)
	seedJobs(t, tokenJobs, []models.Job{{ID: "intent-1", Status: types.StatusPending}})

	_, found, err := svc.RefreshOne(context.Background(), types.IntentTokenTransfer, "intent-1")
	if err == nil {
		t.Fatal("RefreshOne() expected error, got nil")
	}
	if !found {
		t.Error("RefreshOne() found = false, the job exists")
	}

	stored, _, err := tokenJobs.Find(context.Background(), "intent-1")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if stored.Status != types.StatusPending {
		t.Errorf("stored status = %s, want unchanged %s", stored.Status, types.StatusPending)
	}
}

func TestRefreshOne_InvalidIntentType(t *testing.T) {
	svc, _, _ := newTestReconcileService(t, &mockWallet{})

	_, _, err := svc.RefreshOne(context.Background(), types.IntentType("NFT_TRANSFER"), "intent-1")
	svcErr, ok := err.(*types.ServiceError)
	if !ok {
		t.Fatalf("RefreshOne() error = %v, want *types.ServiceError", err)
	}
	if svcErr.Code != "INVALID_INTENT_TYPE" {
		t.Errorf("code = %s, want INVALID_INTENT_TYPE", svcErr.Code)
	}
}

func TestRefreshAll(t *testing.T) {
	w := &mockWallet{
		history: map[string][]types.OrderHistoryEntry{
			"intent-1": {{Status: "SUCCESSFUL"}},
			"intent-2": {{Status: "FAILED"}},
		},
	}
	svc, tokenJobs, _ := newTestReconcileService(t, w)
	seedJobs(t, tokenJobs, []models.Job{
		{ID: "intent-1", Status: types.StatusPending},
		{ID: "", Status: types.StatusPending}, // id-less entries are dropped
		{ID: "intent-2", Status: types.StatusPending},
		{ID: "intent-3", Status: types.StatusPending}, // no history yet
	})

	refreshed, err := svc.RefreshAll(context.Background(), types.IntentTokenTransfer)
	if err != nil {
		t.Fatalf("RefreshAll() error = %v", err)
	}

	if len(refreshed) != 3 {
		t.Fatalf("RefreshAll() returned %d jobs, want 3 (id-less entry dropped)", len(refreshed))
	}

	want := map[string]string{
		"intent-1": "SUCCESSFUL",
		"intent-2": "FAILED",
		"intent-3": types.StatusUnknown,
	}
	for _, job := range refreshed {
		if job.Status != want[job.ID] {
			t.Errorf("job %s status = %s, want %s", job.ID, job.Status, want[job.ID])
		}
	}

	// The batch result is what got persisted.
	stored, err := tokenJobs.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(stored) != 3 {
		t.Errorf("stored %d jobs, want 3", len(stored))
	}
}

func TestRefreshAll_PreservesOrder(t *testing.T) {
	w := &mockWallet{
		history: map[string][]types.OrderHistoryEntry{
			"a": {{Status: "SUCCESSFUL"}},
			"b": {{Status: "SUCCESSFUL"}},
			"c": {{Status: "SUCCESSFUL"}},
		},
	}
	svc, tokenJobs, _ := newTestReconcileService(t, w)
	seedJobs(t, tokenJobs, []models.Job{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	refreshed, err := svc.RefreshAll(context.Background(), types.IntentTokenTransfer)
	if err != nil {
		t.Fatalf("RefreshAll() error = %v", err)
	}

	for i, id := range []string{"a", "b", "c"} {
		if refreshed[i].ID != id {
			t.Errorf("refreshed[%d].ID = %s, want %s", i, refreshed[i].ID, id)
		}
	}
}

func TestRefreshAll_AbortsOnLookupFailure(t *testing.T) {
	w := &mockWallet{
		history: map[string][]types.OrderHistoryEntry{
			"intent-1": {{Status: "SUCCESSFUL"}},
		},
		lookupErr: map[string]error{"intent-2": fmt.Errorf("provider down")},
	}
	svc, tokenJobs, _ := newTestReconcileService(t, w)
	seedJobs(t, tokenJobs, []models.Job{
		{ID: "intent-1", Status: types.StatusPending},
		{ID: "intent-2", Status: types.StatusPending},
	})

	if _, err := svc.RefreshAll(context.Background(), types.IntentTokenTransfer); err == nil {
		t.Fatal("RefreshAll() expected error, got nil")
	}

	// Nothing persisted, not even the lookup that succeeded.
	stored, err := tokenJobs.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	for _, job := range stored {
		if job.Status != types.StatusPending {
			t.Errorf("job %s status = %s, want untouched %s", job.ID, job.Status, types.StatusPending)
		}
	}
}

func TestRefreshAll_EmptyLedger(t *testing.T) {
	svc, _, _ := newTestReconcileService(t, &mockWallet{})

	refreshed, err := svc.RefreshAll(context.Background(), types.IntentTokenTransfer)
	if err != nil {
		t.Fatalf("RefreshAll() error = %v", err)
	}
	if len(refreshed) != 0 {
		t.Errorf("RefreshAll() on empty ledger returned %d jobs, want 0", len(refreshed))
	}
}

func TestRefreshEverything(t *testing.T) {
	w := &mockWallet{
		history: map[string][]types.OrderHistoryEntry{
			"t-1": {{Status: "SUCCESSFUL"}},
			"r-1": {{Status: "FAILED"}},
		},
	}
	svc, tokenJobs, rawJobs := newTestReconcileService(t, w)
	seedJobs(t, tokenJobs, []models.Job{{ID: "t-1", Status: types.StatusPending}})
	seedJobs(t, rawJobs, []models.Job{{ID: "r-1", Status: types.StatusPending}})

	if err := svc.RefreshEverything(context.Background()); err != nil {
		t.Fatalf("RefreshEverything() error = %v", err)
	}

	tokenJob, _, _ := tokenJobs.Find(context.Background(), "t-1")
	if tokenJob.Status != "SUCCESSFUL" {
		t.Errorf("token job status = %s, want SUCCESSFUL", tokenJob.Status)
	}
	rawJob, _, _ := rawJobs.Find(context.Background(), "r-1")
	if rawJob.Status != "FAILED" {
		t.Errorf("raw job status = %s, want FAILED", rawJob.Status)
	}
}

func TestRefreshEverything_OneLedgerFailureDoesNotStopTheOther(t *testing.T) {
	w := &mockWallet{
		history: map[string][]types.OrderHistoryEntry{
			"r-1": {{Status: "SUCCESSFUL"}},
		},
		lookupErr: map[string]error{"t-1": fmt.Errorf("provider down")},
	}
	svc, tokenJobs, rawJobs := newTestReconcileService(t, w)
	seedJobs(t, tokenJobs, []models.Job{{ID: "t-1", Status: types.StatusPending}})
	seedJobs(t, rawJobs, []models.Job{{ID: "r-1", Status: types.StatusPending}})

	if err := svc.RefreshEverything(context.Background()); err == nil {
		t.Fatal("RefreshEverything() expected error, got nil")
	}

	rawJob, _, _ := rawJobs.Find(context.Background(), "r-1")
	if rawJob.Status != "SUCCESSFUL" {
		t.Errorf("raw job status = %s, want SUCCESSFUL despite token ledger failure", rawJob.Status)
	}
}

// Submission followed by reconciliation is the full job lifecycle.
func TestSubmitThenRefreshLifecycle(t *testing.T) {
	w := &mockWallet{nextID: "intent-life-1"}
	kv := storage.NewMemoryStore()
	tokenJobs := storage.NewJobStore(kv, storage.KeyTokenTransferJobs)
	rawJobs := storage.NewJobStore(kv, storage.KeyRawTransactionJobs)

	messageStore, err := contract.New(testContract)
	if err != nil {
		t.Fatalf("contract setup error = %v", err)
	}

	tips := NewTipService(w, tokenJobs, rawJobs, messageStore, testNetworkID, testLogger())
	reconciler := NewReconcileService(w, tokenJobs, rawJobs, testLogger())

	job, err := tips.SendToken(context.Background(), &SendTokenInput{
		Recipient: testRecipient,
		Amount:    "1.5",
	})
	if err != nil {
		t.Fatalf("SendToken() error = %v", err)
	}
	if job.Status != types.StatusPending {
		t.Fatalf("fresh job status = %s, want %s", job.Status, types.StatusPending)
	}

	w.history = map[string][]types.OrderHistoryEntry{
		"intent-life-1": {{Status: "SUCCESSFUL"}},
	}

	refreshed, found, err := reconciler.RefreshOne(context.Background(), types.IntentTokenTransfer, job.ID)
	if err != nil || !found {
		t.Fatalf("RefreshOne() = %v, %v; want refreshed job", found, err)
	}
	if refreshed.Status != "SUCCESSFUL" {
		t.Errorf("refreshed status = %s, want SUCCESSFUL", refreshed.Status)
	}
	if refreshed.Amount != "1.5" || refreshed.RecipientAddress != testRecipient {
		t.Error("refresh changed fields it should have preserved")
	}
}
