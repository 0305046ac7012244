package wallet

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tipjar-service/internal/config"
	"github.com/tipjar-service/internal/types"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(&config.WalletConfig{
		BaseURL:        server.URL,
		ClientAPIKey:   "test-key",
		RequestTimeout: 5 * time.Second,
		LookupRPS:      100,
	})
}

func respondSuccess(t *testing.T, w http.ResponseWriter, data interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"data":   data,
	}); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestClient_LoginUsingOAuth(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/authenticate" {
			t.Errorf("path = %s, want /api/v2/authenticate", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["provider"] != "google" {
			t.Errorf("provider = %s, want google", body["provider"])
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing X-Request-Id header")
		}
		respondSuccess(t, w, Session{Token: "sess-token", UserID: "u1", WalletAddress: "0xabc"})
	}))

	session, err := client.LoginUsingOAuth(context.Background(), "id-token", "google")
	if err != nil {
		t.Fatalf("LoginUsingOAuth() error = %v", err)
	}
	if session.Token != "sess-token" {
		t.Errorf("Token = %s, want sess-token", session.Token)
	}
	if client.session() != "sess-token" {
		t.Error("session token not installed on client")
	}
}

func TestClient_GetOrdersHistory_FirstEntryContract(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("intentId"); got != "0xdeadbeef" {
			t.Errorf("intentId = %s, want 0xdeadbeef", got)
		}
		if got := r.URL.Query().Get("intentType"); got != string(types.IntentTokenTransfer) {
			t.Errorf("intentType = %s, want TOKEN_TRANSFER", got)
		}
		respondSuccess(t, w, map[string]interface{}{
			"items": []types.OrderHistoryEntry{
				{IntentID: "0xdeadbeef", Status: "SUCCESSFUL"},
				{IntentID: "0xdeadbeef", Status: "IN_PROGRESS"},
			},
		})
	}))

	entries, err := client.GetOrdersHistory(context.Background(), "0xdeadbeef", types.IntentTokenTransfer)
	if err != nil {
		t.Fatalf("GetOrdersHistory() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Status != "SUCCESSFUL" {
		t.Errorf("first entry status = %s, want SUCCESSFUL", entries[0].Status)
	}
}

func TestClient_TokenTransfer(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["amount"] != "1500000000000000000" {
			t.Errorf("amount = %s, want 1500000000000000000", body["amount"])
		}
		if body["token"] != "" {
			t.Errorf("token = %s, want empty (native asset)", body["token"])
		}
		respondSuccess(t, w, map[string]string{"jobId": "0xdeadbeef"})
	}))

	amount, _ := new(big.Int).SetString("1500000000000000000", 10)
	id, err := client.TokenTransfer(context.Background(), &TokenTransferParams{
		CAIP2ID:   "eip155:84532",
		Recipient: "0x38588E4C064e0DC4CBF4F06895eBD5a682B878F3",
		Token:     "",
		Amount:    amount,
	})
	if err != nil {
		t.Fatalf("TokenTransfer() error = %v", err)
	}
	if id != "0xdeadbeef" {
		t.Errorf("id = %s, want 0xdeadbeef", id)
	}
}

func TestClient_ProviderError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "error",
			"error":  map[string]string{"code": "INSUFFICIENT_FUNDS", "message": "not enough balance"},
		})
	}))

	_, err := client.TokenTransfer(context.Background(), &TokenTransferParams{
		CAIP2ID: "eip155:84532",
		Amount:  big.NewInt(1),
	})
	if err == nil {
		t.Fatal("TokenTransfer() expected error, got nil")
	}
}

func TestClient_EVMRawTransaction(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CAIP2ID     string            `json:"caip2Id"`
			Transaction map[string]string `json:"transaction"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Transaction["value"] != "10000000000000000" {
			t.Errorf("value = %s, want 10000000000000000", body.Transaction["value"])
		}
		if body.Transaction["to"] == "" {
			t.Error("missing transaction target")
		}
		respondSuccess(t, w, map[string]string{"jobId": "0xfeedface"})
	}))

	value, _ := new(big.Int).SetString("10000000000000000", 10)
	id, err := client.EVMRawTransaction(context.Background(), &RawTransactionParams{
		CAIP2ID: "eip155:84532",
		From:    "0x1111111111111111111111111111111111111111",
		To:      "0xf4fAA46a2cb1afE7D50d314A3464556d89a81015",
		Data:    "0xdeadbeef",
		Value:   value,
	})
	if err != nil {
		t.Fatalf("EVMRawTransaction() error = %v", err)
	}
	if id != "0xfeedface" {
		t.Errorf("id = %s, want 0xfeedface", id)
	}
}
