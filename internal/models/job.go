package models

import (
	"github.com/tipjar-service/internal/types"
)

// Job is the local shadow record of a submitted intent, tracking its last
// known status. The ID is the opaque intent identifier returned by the wallet
// provider on submission and is unique within a job slot.
type Job struct {
	ID               string           `json:"id"`
	RecipientAddress string           `json:"recipientAddress"`
	Amount           string           `json:"amount"`       // display units, as entered by the user
	TokenAddress     string           `json:"tokenAddress"` // empty string = native asset
	IntentType       types.IntentType `json:"intentType"`
	Status           string           `json:"status"`
}

// Merge returns a copy of the job with every non-empty field of incoming
// overlaid on top. The ID never changes; upsert callers match on it.
func (j Job) Merge(incoming Job) Job {
	out := j
	if incoming.RecipientAddress != "" {
		out.RecipientAddress = incoming.RecipientAddress
	}
	if incoming.Amount != "" {
		out.Amount = incoming.Amount
	}
	if incoming.TokenAddress != "" {
		out.TokenAddress = incoming.TokenAddress
	}
	if incoming.IntentType != "" {
		out.IntentType = incoming.IntentType
	}
	if incoming.Status != "" {
		out.Status = incoming.Status
	}
	return out
}
