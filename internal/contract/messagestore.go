// Package contract encodes calldata for the tip message contract, which
// accepts a supporter's message alongside the tipped value.
package contract

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// messageStoreABI covers the two functions the service calls: pay(string)
// carries a tip message with the transaction value, getAllMessages() reads
// the stored messages back.
const messageStoreABI = `[
	{
		"type": "function",
		"name": "pay",
		"stateMutability": "payable",
		"inputs": [{"name": "message", "type": "string"}],
		"outputs": []
	},
	{
		"type": "function",
		"name": "getAllMessages",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "string[]"}]
	}
]`

// MessageStore encodes calls against one deployed tip message contract.
type MessageStore struct {
	address common.Address
	abi     abi.ABI
}

// New creates a MessageStore bound to the given contract address.
func New(address string) (*MessageStore, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid contract address: %s", address)
	}

	parsed, err := abi.JSON(strings.NewReader(messageStoreABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract ABI: %w", err)
	}

	return &MessageStore{
		address: common.HexToAddress(address),
		abi:     parsed,
	}, nil
}

// Address returns the contract address in checksummed hex form.
func (m *MessageStore) Address() string {
	return m.address.Hex()
}

// EncodePay returns 0x-prefixed calldata for pay(message).
func (m *MessageStore) EncodePay(message string) (string, error) {
	data, err := m.abi.Pack("pay", message)
	if err != nil {
		return "", fmt.Errorf("encode pay call: %w", err)
	}
	return hexutil.Encode(data), nil
}

// EncodeGetAllMessages returns 0x-prefixed calldata for getAllMessages().
func (m *MessageStore) EncodeGetAllMessages() (string, error) {
	data, err := m.abi.Pack("getAllMessages")
	if err != nil {
		return "", fmt.Errorf("encode getAllMessages call: %w", err)
	}
	return hexutil.Encode(data), nil
}
