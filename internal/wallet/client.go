// Package wallet provides the HTTP client for the custodial wallet provider.
// All signing, account, portfolio and order-history operations are delegated
// to the provider; this client treats them as opaque remote calls.
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tipjar-service/internal/config"
	"github.com/tipjar-service/internal/types"
)

// Client talks to the wallet provider's REST API. It is safe for concurrent
// use; order-history lookups share one rate limiter so a bulk refresh cannot
// exhaust the provider's request budget.
type Client struct {
	baseURL      string
	clientAPIKey string
	httpClient   *http.Client
	limiter      *rate.Limiter

	mu           sync.RWMutex
	sessionToken string
}

// Session is the provider-side session established by an OAuth login.
type Session struct {
	Token         string `json:"authToken"`
	UserID        string `json:"userId"`
	WalletAddress string `json:"walletAddress"`
}

// TokenTransferParams describes a token-transfer intent. An empty Token
// address transfers the network's native asset.
type TokenTransferParams struct {
	CAIP2ID   string
	Recipient string
	Token     string
	Amount    *big.Int // base units
}

// RawTransactionParams describes a raw EVM transaction intent.
type RawTransactionParams struct {
	CAIP2ID string
	From    string
	To      string
	Data    string // 0x-prefixed calldata
	Value   *big.Int
}

// envelope is the provider's uniform response wrapper.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *providerError  `json:"error,omitempty"`
}

type providerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewClient creates a wallet provider client from configuration.
func NewClient(cfg *config.WalletConfig) *Client {
	rps := cfg.LookupRPS
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		clientAPIKey: cfg.ClientAPIKey,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		limiter:      rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// SetSessionToken installs the session token used on authenticated calls.
func (c *Client) SetSessionToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionToken = token
}

func (c *Client) session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionToken
}

// LoginUsingOAuth exchanges an OAuth id token for a provider session. The
// session token is installed on the client for subsequent calls.
func (c *Client) LoginUsingOAuth(ctx context.Context, idToken, provider string) (*Session, error) {
	body := map[string]string{
		"idToken":  idToken,
		"provider": provider,
	}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/v2/authenticate", body, &session); err != nil {
		return nil, fmt.Errorf("oauth login failed: %w", err)
	}

	c.SetSessionToken(session.Token)
	return &session, nil
}

// GetAccount returns the wallet accounts across supported networks.
func (c *Client) GetAccount(ctx context.Context) ([]types.Account, error) {
	var data struct {
		Wallets []types.Account `json:"wallets"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v2/wallets", nil, &data); err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return data.Wallets, nil
}

// GetPortfolio returns the aggregated portfolio view.
func (c *Client) GetPortfolio(ctx context.Context) (*types.Portfolio, error) {
	var portfolio types.Portfolio
	if err := c.do(ctx, http.MethodGet, "/api/v2/portfolio", nil, &portfolio); err != nil {
		return nil, fmt.Errorf("get portfolio: %w", err)
	}
	return &portfolio, nil
}

// GetPortfolioActivity returns recent portfolio activity entries.
func (c *Client) GetPortfolioActivity(ctx context.Context) ([]types.ActivityEntry, error) {
	var data struct {
		Activity []types.ActivityEntry `json:"activity"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v2/portfolio/activity", nil, &data); err != nil {
		return nil, fmt.Errorf("get portfolio activity: %w", err)
	}
	return data.Activity, nil
}

// GetOrdersHistory returns the provider's order history for one intent,
// newest entry first. Callers take the status of the first entry.
func (c *Client) GetOrdersHistory(ctx context.Context, intentID string, intentType types.IntentType) ([]types.OrderHistoryEntry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("intentId", intentID)
	q.Set("intentType", string(intentType))

	var data struct {
		Items []types.OrderHistoryEntry `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v2/orders?"+q.Encode(), nil, &data); err != nil {
		return nil, fmt.Errorf("get orders history for %s: %w", intentID, err)
	}
	return data.Items, nil
}

// TokenTransfer submits a token-transfer intent and returns the opaque
// intent identifier. One attempt only; retries are the caller's decision.
func (c *Client) TokenTransfer(ctx context.Context, params *TokenTransferParams) (string, error) {
	body := map[string]string{
		"caip2Id":   params.CAIP2ID,
		"recipient": params.Recipient,
		"token":     params.Token,
		"amount":    params.Amount.String(),
	}

	var data struct {
		JobID string `json:"jobId"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v2/intents/token-transfer", body, &data); err != nil {
		return "", fmt.Errorf("token transfer: %w", err)
	}
	if data.JobID == "" {
		return "", fmt.Errorf("token transfer: provider returned empty intent id")
	}
	return data.JobID, nil
}

// EVMRawTransaction submits a raw-transaction intent and returns the opaque
// intent identifier.
func (c *Client) EVMRawTransaction(ctx context.Context, params *RawTransactionParams) (string, error) {
	body := map[string]interface{}{
		"caip2Id": params.CAIP2ID,
		"transaction": map[string]string{
			"from":  params.From,
			"to":    params.To,
			"data":  params.Data,
			"value": params.Value.String(),
		},
	}

	var data struct {
		JobID string `json:"jobId"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v2/intents/raw-transaction", body, &data); err != nil {
		return "", fmt.Errorf("raw transaction: %w", err)
	}
	if data.JobID == "" {
		return "", fmt.Errorf("raw transaction: provider returned empty intent id")
	}
	return data.JobID, nil
}

// do performs one request and decodes the provider envelope into out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())
	if c.clientAPIKey != "" {
		req.Header.Set("X-Api-Key", c.clientAPIKey)
	}
	if token := c.session(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wallet provider unreachable: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 || env.Status != "success" {
		if env.Error != nil {
			return fmt.Errorf("provider error %s: %s", env.Error.Code, env.Error.Message)
		}
		return fmt.Errorf("provider returned HTTP %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}
