// Package service implements the tipping workflows: submitting intents to
// the wallet provider, recording jobs, and reconciling their statuses.
package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tipjar-service/internal/contract"
	"github.com/tipjar-service/internal/logging"
	"github.com/tipjar-service/internal/models"
	"github.com/tipjar-service/internal/storage"
	"github.com/tipjar-service/internal/types"
	"github.com/tipjar-service/internal/units"
	"github.com/tipjar-service/internal/wallet"
)

// IntentAPI is the slice of the wallet client the tip service submits through.
type IntentAPI interface {
	TokenTransfer(ctx context.Context, params *wallet.TokenTransferParams) (string, error)
	EVMRawTransaction(ctx context.Context, params *wallet.RawTransactionParams) (string, error)
}

// TipService builds transfer and raw-transaction intents, submits them once,
// and records the resulting job. A job record exists only after the provider
// returned an intent id; submission failures leave the ledger untouched.
type TipService struct {
	wallet    IntentAPI
	tokenJobs *storage.JobStore
	rawJobs   *storage.JobStore
	contract  *contract.MessageStore
	networkID string
	logger    *logging.Logger
}

// NewTipService creates a tip service. networkID is the default CAIP-2 id
// used when a request does not name one.
func NewTipService(
	walletAPI IntentAPI,
	tokenJobs *storage.JobStore,
	rawJobs *storage.JobStore,
	messageStore *contract.MessageStore,
	networkID string,
	logger *logging.Logger,
) *TipService {
	return &TipService{
		wallet:    walletAPI,
		tokenJobs: tokenJobs,
		rawJobs:   rawJobs,
		contract:  messageStore,
		networkID: networkID,
		logger:    logger,
	}
}

// SendTokenInput describes a token-transfer tip.
type SendTokenInput struct {
	NetworkID    string // CAIP-2 id; empty = service default
	Recipient    string
	TokenAddress string // empty = native asset
	Amount       string // display units, e.g. "1.5"
}

// SendCoffeeInput describes a raw-transaction tip carrying a message to the
// tip contract.
type SendCoffeeInput struct {
	NetworkID string // CAIP-2 id; empty = service default
	From      string // tipper's wallet address
	Message   string
	Amount    string // display units of the native asset
}

// SendToken submits a token-transfer intent and records the job with status
// Pending. A single attempt is made; the provider error is surfaced as-is.
func (s *TipService) SendToken(ctx context.Context, input *SendTokenInput) (*models.Job, error) {
	if !common.IsHexAddress(input.Recipient) {
		return nil, &types.ServiceError{
			Code:    "INVALID_RECIPIENT",
			Message: "recipient is not a valid address",
			Details: map[string]interface{}{"recipient": input.Recipient},
		}
	}
	if input.TokenAddress != "" && !common.IsHexAddress(input.TokenAddress) {
		return nil, &types.ServiceError{
			Code:    "INVALID_TOKEN",
			Message: "token address is not a valid address",
			Details: map[string]interface{}{"tokenAddress": input.TokenAddress},
		}
	}

	amountWei, err := units.ToWei(input.Amount)
	if err != nil {
		return nil, &types.ServiceError{
			Code:    "INVALID_AMOUNT",
			Message: err.Error(),
		}
	}

	intentID, err := s.wallet.TokenTransfer(ctx, &wallet.TokenTransferParams{
		CAIP2ID:   s.network(input.NetworkID),
		Recipient: input.Recipient,
		Token:     input.TokenAddress,
		Amount:    amountWei,
	})
	if err != nil {
		s.logger.WithError(err).Error("Token transfer submission failed")
		return nil, &types.ServiceError{
			Code:    "SUBMISSION_FAILED",
			Message: err.Error(),
		}
	}

	job := models.Job{
		ID:               intentID,
		RecipientAddress: input.Recipient,
		Amount:           input.Amount,
		TokenAddress:     input.TokenAddress,
		IntentType:       types.IntentTokenTransfer,
		Status:           types.StatusPending,
	}

	if err := s.tokenJobs.Upsert(ctx, job); err != nil {
		// The intent is already on its way; losing the local record is
		// worse than surfacing a storage error with the id attached.
		s.logger.WithError(err).WithField("intentId", intentID).Error("Failed to persist job after submission")
		return nil, &types.ServiceError{
			Code:    "JOB_PERSIST_FAILED",
			Message: "intent submitted but job could not be recorded",
			Details: map[string]interface{}{"intentId": intentID},
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"intentId":  intentID,
		"recipient": input.Recipient,
		"amount":    input.Amount,
	}).Info("Token transfer submitted")

	return &job, nil
}

// SendCoffee encodes pay(message) against the tip contract, submits a raw
// transaction carrying the tipped value, and records the job.
func (s *TipService) SendCoffee(ctx context.Context, input *SendCoffeeInput) (*models.Job, error) {
	if !common.IsHexAddress(input.From) {
		return nil, &types.ServiceError{
			Code:    "INVALID_SENDER",
			Message: "sender is not a valid address",
			Details: map[string]interface{}{"from": input.From},
		}
	}

	amountWei, err := units.ToWei(input.Amount)
	if err != nil {
		return nil, &types.ServiceError{
			Code:    "INVALID_AMOUNT",
			Message: err.Error(),
		}
	}

	calldata, err := s.contract.EncodePay(input.Message)
	if err != nil {
		return nil, &types.ServiceError{
			Code:    "ENCODING_FAILED",
			Message: err.Error(),
		}
	}

	intentID, err := s.wallet.EVMRawTransaction(ctx, &wallet.RawTransactionParams{
		CAIP2ID: s.network(input.NetworkID),
		From:    input.From,
		To:      s.contract.Address(),
		Data:    calldata,
		Value:   amountWei,
	})
	if err != nil {
		s.logger.WithError(err).Error("Raw transaction submission failed")
		return nil, &types.ServiceError{
			Code:    "SUBMISSION_FAILED",
			Message: err.Error(),
		}
	}

	job := models.Job{
		ID:               intentID,
		RecipientAddress: s.contract.Address(),
		Amount:           input.Amount,
		TokenAddress:     "",
		IntentType:       types.IntentRawTransaction,
		Status:           types.StatusPending,
	}

	if err := s.rawJobs.Upsert(ctx, job); err != nil {
		s.logger.WithError(err).WithField("intentId", intentID).Error("Failed to persist job after submission")
		return nil, &types.ServiceError{
			Code:    "JOB_PERSIST_FAILED",
			Message: "intent submitted but job could not be recorded",
			Details: map[string]interface{}{"intentId": intentID},
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"intentId": intentID,
		"amount":   input.Amount,
	}).Info("Coffee tip submitted")

	return &job, nil
}

// RequestMessages submits a zero-value getAllMessages() call as a raw
// transaction intent and returns the intent id. No job is recorded: the call
// moves no funds and there is nothing to reconcile for the tipper.
func (s *TipService) RequestMessages(ctx context.Context, from string) (string, error) {
	if !common.IsHexAddress(from) {
		return "", &types.ServiceError{
			Code:    "INVALID_SENDER",
			Message: "sender is not a valid address",
		}
	}

	calldata, err := s.contract.EncodeGetAllMessages()
	if err != nil {
		return "", &types.ServiceError{Code: "ENCODING_FAILED", Message: err.Error()}
	}

	zero, _ := units.ToWei("0")
	intentID, err := s.wallet.EVMRawTransaction(ctx, &wallet.RawTransactionParams{
		CAIP2ID: s.networkID,
		From:    from,
		To:      s.contract.Address(),
		Data:    calldata,
		Value:   zero,
	})
	if err != nil {
		return "", &types.ServiceError{Code: "SUBMISSION_FAILED", Message: err.Error()}
	}
	return intentID, nil
}

func (s *TipService) network(override string) string {
	if override != "" {
		return override
	}
	return s.networkID
}
