// Package types provides common type definitions for the tipjar service.
package types

// IntentType identifies the kind of on-chain action submitted to the wallet provider.
type IntentType string

const (
	// IntentTokenTransfer represents a token (or native asset) transfer intent
	IntentTokenTransfer IntentType = "TOKEN_TRANSFER"
	// IntentRawTransaction represents a raw EVM contract-call intent
	IntentRawTransaction IntentType = "RAW_TRANSACTION"
)

// Valid reports whether the intent type is one the service tracks.
func (t IntentType) Valid() bool {
	return t == IntentTokenTransfer || t == IntentRawTransaction
}

// Job status sentinels. Any other status value comes verbatim from the
// wallet provider's order history (e.g. "SUCCESSFUL", "FAILED").
const (
	// StatusPending is the initial status of every job, set at creation
	// before any order-history lookup has run.
	StatusPending = "Pending"
	// StatusUnknown is recorded when an order-history lookup returns no
	// entries for the intent.
	StatusUnknown = "Unknown"
)

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Account represents one wallet account on a specific network.
type Account struct {
	CAIPID        string `json:"caipId"`
	NetworkName   string `json:"networkName"`
	Address       string `json:"address"`
	CAIP2ID       string `json:"caip2Id"`
	NetworkSymbol string `json:"networkSymbol"`
}

// PortfolioToken represents aggregated holdings of one token across networks.
type PortfolioToken struct {
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	TokenAddress      string `json:"tokenAddress"` // empty for native asset
	NetworkName       string `json:"networkName"`
	Balance           string `json:"balance"`
	HoldingsPriceUSDT string `json:"holdingsPriceUsdt"`
}

// Portfolio represents the wallet provider's aggregated portfolio view.
type Portfolio struct {
	AggregatedData struct {
		HoldingsCount     int    `json:"holdingsCount"`
		TotalHoldingsUSDT string `json:"totalHoldingPriceUsdt"`
	} `json:"aggregatedData"`
	GroupTokens []PortfolioToken `json:"groupTokens"`
}

// ActivityEntry represents one row of portfolio activity history.
type ActivityEntry struct {
	Symbol          string `json:"symbol"`
	NetworkName     string `json:"networkName"`
	Description     string `json:"description"`
	Quantity        string `json:"quantity"`
	TransactionHash string `json:"transactionHash"`
	Timestamp       int64  `json:"timestamp"`
}

// OrderHistoryEntry represents one entry of the wallet provider's order
// history for an intent. The status of the FIRST entry in a lookup result is
// the authoritative job status; an empty result maps to StatusUnknown.
type OrderHistoryEntry struct {
	IntentID        string     `json:"intentId"`
	IntentType      IntentType `json:"intentType"`
	Status          string     `json:"status"`
	NetworkName     string     `json:"networkName"`
	TransactionHash string     `json:"transactionHash,omitempty"`
	Timestamp       int64      `json:"timestamp,omitempty"`
}
