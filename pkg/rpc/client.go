package rpc

import (
	"context"
)

// StarknetClient defines the interface for Starknet JSON-RPC operations.
// This abstraction allows for easier testing and alternative implementations.
type StarknetClient interface {
	// Close closes the RPC client connection.
	Close()

	// BlockNumber returns the number of the most recent accepted block.
	BlockNumber(ctx context.Context) (uint64, error)

	// GetEvents retrieves a single page of events matching the given filter.
	// A non-empty ContinuationToken in the returned page means more events remain.
	GetEvents(ctx context.Context, filter EventFilter) (*EventsPage, error)

	// GetTransactionByHash retrieves the transaction with the given hash.
	GetTransactionByHash(ctx context.Context, hash string) (*Transaction, error)
}

// EventFilter selects events in the inclusive block range [FromBlock, ToBlock].
type EventFilter struct {
	FromBlock uint64
	ToBlock   uint64
	// Address restricts events to one emitting contract. Empty means any contract.
	Address string
	// Keys is a per-position list of accepted keys. An empty position matches anything.
	Keys              [][]string
	ChunkSize         int
	ContinuationToken string
}

// Event is an event as returned by starknet_getEvents. Felts keep their wire form.
type Event struct {
	BlockHash       string   `json:"block_hash,omitempty"`
	BlockNumber     uint64   `json:"block_number"`
	FromAddress     string   `json:"from_address"`
	Keys            []string `json:"keys"`
	Data            []string `json:"data"`
	TransactionHash string   `json:"transaction_hash"`
}

// EventsPage is one page of a starknet_getEvents response.
type EventsPage struct {
	Events            []Event `json:"events"`
	ContinuationToken string  `json:"continuation_token,omitempty"`
}

// Transaction is the envelope returned by starknet_getTransactionByHash.
// Only the fields the indexer reads are decoded.
type Transaction struct {
	TransactionHash string   `json:"transaction_hash"`
	Type            string   `json:"type"`
	Version         string   `json:"version"`
	SenderAddress   string   `json:"sender_address,omitempty"`
	Calldata        []string `json:"calldata"`
	Signature       []string `json:"signature,omitempty"`
	Nonce           string   `json:"nonce,omitempty"`
	MaxFee          string   `json:"max_fee,omitempty"`
	// ContractAddress is set instead of SenderAddress on version 0 invoke transactions.
	ContractAddress string `json:"contract_address,omitempty"`
}

// Sender returns the account that submitted the transaction.
func (t *Transaction) Sender() string {
	if t.SenderAddress != "" {
		return t.SenderAddress
	}
	return t.ContractAddress
}
