// Package pricefeed fetches the USD/ETH rate used to pre-fill tip amounts.
// It is advisory only and plays no part in the transactional core.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/tipjar-service/internal/config"
)

// Client fetches spot prices from the quote endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a price feed client from configuration.
func NewClient(cfg *config.PriceConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// GetETHUSD returns the current USD price of one ETH.
func (c *Client) GetETHUSD(ctx context.Context) (float64, error) {
	url := c.baseURL + "/api/v3/simple/price?ids=ethereum&vs_currencies=usd"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build price request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("price endpoint unreachable: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price endpoint returned HTTP %d", resp.StatusCode)
	}

	var body struct {
		Ethereum struct {
			USD float64 `json:"usd"`
		} `json:"ethereum"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode price response: %w", err)
	}
	if body.Ethereum.USD <= 0 {
		return 0, fmt.Errorf("price endpoint returned non-positive rate")
	}

	return body.Ethereum.USD, nil
}

// QuoteETH converts a USD amount into a decimal ETH amount string at the
// current rate, suitable for the amount field of a tip.
func (c *Client) QuoteETH(ctx context.Context, usd float64) (string, error) {
	if usd <= 0 {
		return "", fmt.Errorf("usd amount must be positive, got %v", usd)
	}

	rate, err := c.GetETHUSD(ctx)
	if err != nil {
		return "", err
	}

	return strconv.FormatFloat(usd/rate, 'f', -1, 64), nil
}
