package indexer

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

var (
	// ErrNotFound is returned by lookups that match no valid record.
	ErrNotFound = errors.New("not found")

	// ErrUnknownIndexer is returned for a chain or "{chain}-{network}" key nobody registered.
	ErrUnknownIndexer = errors.New("unknown indexer")
)

// Announcement is one stealth payment notice.
// The natural key is (StealthAccountAddress, EphemeralPublicKey, StealthAccountPublicKey, ViewTag, Chain, Network).
type Announcement struct {
	Sender                  common.Hash `meddler:"sender,felt" json:"sender"`
	StealthAddress          common.Hash `meddler:"stealth_address,felt" json:"stealth_address"`
	Amount                  string      `meddler:"amount" json:"amount"`
	EphemeralPublicKey      string      `meddler:"ephemeral_public_key" json:"ephemeral_public_key"`
	ViewTag                 string      `meddler:"view_tag" json:"view_tag"`
	StealthAccountPublicKey string      `meddler:"stealth_account_public_key" json:"stealth_account_public_key"`
	StealthAccountAddress   common.Hash `meddler:"stealth_account_address,felt" json:"stealth_account_address"`
	CreatedAt               time.Time   `meddler:"created_at" json:"created_at"`
	BlockNumber             uint64      `meddler:"block_number" json:"block_number"`
	Hash                    common.Hash `meddler:"hash,felt" json:"hash"`
	AllDataIsValid          bool        `meddler:"all_data_is_valid" json:"all_data_is_valid"`
	Chain                   string      `meddler:"chain" json:"chain"`
	Network                 string      `meddler:"network" json:"network"`
}

// MetaAddressEntry maps a meta id to an account and its spending and viewing keys.
type MetaAddressEntry struct {
	MetaID            string      `meddler:"meta_id" json:"meta_id"`
	StarknetAddress   common.Hash `meddler:"starknet_address,felt" json:"starknet_address"`
	SpendingPublicKey string      `meddler:"spending_public_key" json:"spending_public_key"`
	ViewingPublicKey  string      `meddler:"viewing_public_key" json:"viewing_public_key"`
	CreatedAt         time.Time   `meddler:"created_at" json:"created_at"`
	BlockNumber       uint64      `meddler:"block_number" json:"block_number"`
	Hash              common.Hash `meddler:"hash,felt" json:"hash"`
	AllDataIsValid    bool        `meddler:"all_data_is_valid" json:"all_data_is_valid"`
	Chain             string      `meddler:"chain" json:"chain"`
	Network           string      `meddler:"network" json:"network"`
}

// MetaKeys are the public keys registered under a meta id.
type MetaKeys struct {
	SpendingPublicKey string `meddler:"spending_public_key" json:"spending_public_key"`
	ViewingPublicKey  string `meddler:"viewing_public_key" json:"viewing_public_key"`
}

// StealthInfo is an announcement recorded before its on-chain event is indexed.
// The caller is responsible for validating the fields.
type StealthInfo struct {
	EphemeralPublicKey      string      `json:"ephemeral_public_key"`
	ViewTag                 string      `json:"view_tag"`
	StealthAccountPublicKey string      `json:"stealth_account_public_key"`
	StealthAccountAddress   common.Hash `json:"stealth_account_address"`
}

// ContractProgress is the scan position of one watched contract.
type ContractProgress struct {
	Role        string      `json:"role"`
	Address     common.Hash `json:"address"`
	LatestBlock uint64      `json:"latest_block"`
}

// Page selects a window of a block-ordered listing.
type Page struct {
	Offset uint64
	Limit  uint64
}

// NewPage returns a page with the limit clamped to (0, maxLimit].
// A zero maxLimit falls back to the package default.
func NewPage(offset, limit, maxLimit uint64) Page {
	if maxLimit == 0 {
		maxLimit = maxPageLimit
	}
	if limit == 0 {
		limit = min(defaultPageLimit, maxLimit)
	}
	return Page{Offset: offset, Limit: min(limit, maxLimit)}
}
