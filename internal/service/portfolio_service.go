package service

import (
	"context"
	"strconv"

	"github.com/tipjar-service/internal/logging"
	"github.com/tipjar-service/internal/types"
)

// AccountAPI is the slice of the wallet client used for account and
// portfolio reads.
type AccountAPI interface {
	GetAccount(ctx context.Context) ([]types.Account, error)
	GetPortfolio(ctx context.Context) (*types.Portfolio, error)
	GetPortfolioActivity(ctx context.Context) ([]types.ActivityEntry, error)
}

// PortfolioService exposes the wallet provider's account and portfolio views
// and answers balance questions for the tipping network.
type PortfolioService struct {
	wallet      AccountAPI
	networkName string
	logger      *logging.Logger
}

// NewPortfolioService creates a portfolio service. networkName is the
// tipping network (e.g. "BASE_TESTNET") used for account and balance lookups.
func NewPortfolioService(accountAPI AccountAPI, networkName string, logger *logging.Logger) *PortfolioService {
	return &PortfolioService{
		wallet:      accountAPI,
		networkName: networkName,
		logger:      logger,
	}
}

// GetAccounts returns the wallet accounts across all supported networks.
func (s *PortfolioService) GetAccounts(ctx context.Context) ([]types.Account, error) {
	accounts, err := s.wallet.GetAccount(ctx)
	if err != nil {
		return nil, &types.ServiceError{Code: "PROVIDER_ERROR", Message: err.Error()}
	}
	return accounts, nil
}

// GetNetworkAccount returns the account on the tipping network, if any.
func (s *PortfolioService) GetNetworkAccount(ctx context.Context) (*types.Account, error) {
	accounts, err := s.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].NetworkName == s.networkName {
			return &accounts[i], nil
		}
	}
	return nil, &types.ServiceError{
		Code:    "NOT_FOUND",
		Message: "no account on network " + s.networkName,
	}
}

// GetPortfolio returns the aggregated portfolio view.
func (s *PortfolioService) GetPortfolio(ctx context.Context) (*types.Portfolio, error) {
	portfolio, err := s.wallet.GetPortfolio(ctx)
	if err != nil {
		return nil, &types.ServiceError{Code: "PROVIDER_ERROR", Message: err.Error()}
	}
	return portfolio, nil
}

// GetActivity returns recent portfolio activity.
func (s *PortfolioService) GetActivity(ctx context.Context) ([]types.ActivityEntry, error) {
	activity, err := s.wallet.GetPortfolioActivity(ctx)
	if err != nil {
		return nil, &types.ServiceError{Code: "PROVIDER_ERROR", Message: err.Error()}
	}
	return activity, nil
}

// HoldingsUSD sums the USD value of native-asset holdings on the tipping
// network. Used to warn tippers with an empty wallet before they submit.
func (s *PortfolioService) HoldingsUSD(ctx context.Context) (float64, error) {
	portfolio, err := s.GetPortfolio(ctx)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, token := range portfolio.GroupTokens {
		if token.NetworkName != s.networkName || token.TokenAddress != "" {
			continue
		}
		value, err := strconv.ParseFloat(token.HoldingsPriceUSDT, 64)
		if err != nil {
			s.logger.WithField("symbol", token.Symbol).Warn("Unparseable holdings value in portfolio")
			continue
		}
		total += value
	}
	return total, nil
}
