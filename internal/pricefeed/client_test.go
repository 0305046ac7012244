package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/tipjar-service/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(&config.PriceConfig{
		BaseURL:        server.URL,
		RequestTimeout: 5 * time.Second,
	})
}

func TestGetETHUSD(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/simple/price" {
			t.Errorf("path = %s, want /api/v3/simple/price", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ethereum":{"usd":2500.5}}`))
	}))

	rate, err := client.GetETHUSD(context.Background())
	if err != nil {
		t.Fatalf("GetETHUSD() error = %v", err)
	}
	if rate != 2500.5 {
		t.Errorf("rate = %v, want 2500.5", rate)
	}
}

func TestGetETHUSD_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	if _, err := client.GetETHUSD(context.Background()); err == nil {
		t.Fatal("GetETHUSD() expected error, got nil")
	}
}

func TestQuoteETH(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ethereum":{"usd":2000}}`))
	}))

	quote, err := client.QuoteETH(context.Background(), 5)
	if err != nil {
		t.Fatalf("QuoteETH() error = %v", err)
	}

	got, err := strconv.ParseFloat(quote, 64)
	if err != nil {
		t.Fatalf("QuoteETH() returned non-numeric amount %q", quote)
	}
	if got != 0.0025 {
		t.Errorf("QuoteETH(5) = %v, want 0.0025", got)
	}
}

func TestQuoteETH_RejectsNonPositive(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ethereum":{"usd":2000}}`))
	}))

	if _, err := client.QuoteETH(context.Background(), 0); err == nil {
		t.Fatal("QuoteETH(0) expected error, got nil")
	}
}
