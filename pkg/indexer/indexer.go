package indexer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// ChainIndexer indexes the stealth contracts of one (chain, network) pair and
// serves reads over what it stored. Every registered chain family implements
// all methods.
type ChainIndexer interface {
	// Key returns the "{chain}-{network}" identifier.
	Key() string

	// Start loads progress and starts polling every watched contract.
	Start(ctx context.Context) error

	// Stop stops polling and waits for in-flight poll cycles to finish.
	Stop() error

	// ResolveMetaID returns the meta id registered by address, or ErrNotFound.
	ResolveMetaID(ctx context.Context, address common.Hash) (string, error)

	// CheckMetaID returns the keys registered under metaID, or ErrNotFound.
	CheckMetaID(ctx context.Context, metaID string) (*MetaKeys, error)

	// SaveAnnouncementInfo records an announcement ahead of its on-chain event.
	// An existing row for the same natural key is left untouched.
	SaveAnnouncementInfo(ctx context.Context, info StealthInfo) error

	// GetInfo returns valid announcements, most recent block first.
	GetInfo(ctx context.Context, page Page) ([]*Announcement, error)

	// GetInfoCount returns the number of valid announcements.
	GetInfoCount(ctx context.Context) (uint64, error)

	// GetTransfers returns valid announcements whose stealth address is one of addresses.
	GetTransfers(ctx context.Context, addresses []common.Hash) ([]*Announcement, error)

	// Progress returns the scan position of every watched contract.
	Progress(ctx context.Context) ([]ContractProgress, error)
}
