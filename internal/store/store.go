// Package store persists announcements and meta address registrations and
// serves the read queries over them. Every query is scoped to one (chain, network).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	icommon "github.com/goran-ethernal/StarkIndexor/internal/common"
	"github.com/goran-ethernal/StarkIndexor/internal/db"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	"github.com/goran-ethernal/StarkIndexor/internal/metrics"
	"github.com/goran-ethernal/StarkIndexor/pkg/indexer"
)

const (
	announcementsTable = "announcements"
	metaRegistryTable  = "meta_addresses_registry"

	// DirectWriteAmount is stored for announcements recorded before their transfer is seen.
	DirectWriteAmount = "0"

	announcementColumns = `sender, stealth_address, amount, ephemeral_public_key, view_tag,
		stealth_account_public_key, stealth_account_address, created_at, block_number, hash,
		all_data_is_valid, chain, network`

	metaColumns = `meta_id, starknet_address, spending_public_key, viewing_public_key,
		created_at, block_number, hash, all_data_is_valid, chain, network`
)

// ErrNotFound is returned by lookups that match no valid record.
var ErrNotFound = indexer.ErrNotFound

// Store reads and writes the stealth tables of one (chain, network) scope.
type Store struct {
	db          *db.DB
	chain       string
	network     string
	maintenance db.Maintenance
	log         *logger.Logger
}

// New creates a store scoped to chain and network.
func New(database *db.DB, chain, network string, maintenance db.Maintenance, log *logger.Logger) *Store {
	if maintenance == nil {
		maintenance = &db.NoOpMaintenance{}
	}

	return &Store{
		db:          database,
		chain:       chain,
		network:     network,
		maintenance: maintenance,
		log:         log.WithComponent(icommon.ComponentStore),
	}
}

// Chain returns the chain the store is scoped to.
func (s *Store) Chain() string { return s.chain }

// Network returns the network the store is scoped to.
func (s *Store) Network() string { return s.network }

// UpsertAnnouncement inserts a, or refreshes the row with the same natural key.
// created_at of an existing row is kept.
func (s *Store) UpsertAnnouncement(ctx context.Context, a *indexer.Announcement) error {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	start := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO announcements (sender, stealth_address, amount, ephemeral_public_key, view_tag,
			stealth_account_public_key, stealth_account_address, block_number, hash,
			all_data_is_valid, chain, network)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (stealth_account_address, ephemeral_public_key, stealth_account_public_key,
			view_tag, chain, network)
		DO UPDATE SET
			sender = excluded.sender,
			stealth_address = excluded.stealth_address,
			amount = excluded.amount,
			block_number = excluded.block_number,
			hash = excluded.hash,
			all_data_is_valid = excluded.all_data_is_valid`,
		a.Sender.Hex(), a.StealthAddress.Hex(), a.Amount, a.EphemeralPublicKey, a.ViewTag,
		a.StealthAccountPublicKey, a.StealthAccountAddress.Hex(), a.BlockNumber, a.Hash.Hex(),
		a.AllDataIsValid, s.chain, s.network)
	metrics.ObserveDBQuery(announcementsTable, "upsert", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert announcement for %s: %w", a.StealthAccountAddress.Hex(), err)
	}

	return nil
}

// InsertStealthInfo records an announcement ahead of its on-chain event.
// Sender, hash and block are zero placeholders, the amount is DirectWriteAmount and
// the row is marked valid. A row with the same natural key is never overwritten.
func (s *Store) InsertStealthInfo(ctx context.Context, info indexer.StealthInfo) error {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	start := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO announcements (sender, stealth_address, amount, ephemeral_public_key, view_tag,
			stealth_account_public_key, stealth_account_address, block_number, hash,
			all_data_is_valid, chain, network)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, TRUE, ?, ?)
		ON CONFLICT (stealth_account_address, ephemeral_public_key, stealth_account_public_key,
			view_tag, chain, network)
		DO NOTHING`,
		common.Hash{}.Hex(), info.StealthAccountAddress.Hex(), DirectWriteAmount, info.EphemeralPublicKey,
		info.ViewTag, info.StealthAccountPublicKey, info.StealthAccountAddress.Hex(), common.Hash{}.Hex(),
		s.chain, s.network)
	metrics.ObserveDBQuery(announcementsTable, "insert", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert stealth info for %s: %w", info.StealthAccountAddress.Hex(), err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.log.Debugf("stealth info for %s already recorded", info.StealthAccountAddress.Hex())
	}

	return nil
}

// UpsertMetaAddress inserts e, or replaces the entry registered under the same
// meta id when e comes from the same or a later block.
func (s *Store) UpsertMetaAddress(ctx context.Context, e *indexer.MetaAddressEntry) error {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	start := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta_addresses_registry (meta_id, starknet_address, spending_public_key,
			viewing_public_key, block_number, hash, all_data_is_valid, chain, network)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (meta_id, chain, network)
		DO UPDATE SET
			starknet_address = excluded.starknet_address,
			spending_public_key = excluded.spending_public_key,
			viewing_public_key = excluded.viewing_public_key,
			block_number = excluded.block_number,
			hash = excluded.hash,
			all_data_is_valid = excluded.all_data_is_valid
		WHERE meta_addresses_registry.block_number <= excluded.block_number`,
		e.MetaID, e.StarknetAddress.Hex(), e.SpendingPublicKey, e.ViewingPublicKey,
		e.BlockNumber, e.Hash.Hex(), e.AllDataIsValid, s.chain, s.network)
	metrics.ObserveDBQuery(metaRegistryTable, "upsert", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert meta address %q: %w", e.MetaID, err)
	}

	return nil
}

// ResolveMetaID returns the meta id most recently registered by address.
func (s *Store) ResolveMetaID(ctx context.Context, address common.Hash) (string, error) {
	start := time.Now()
	var metaID string
	err := s.db.GetContext(ctx, &metaID, `
		SELECT meta_id FROM meta_addresses_registry
		WHERE starknet_address = ? AND chain = ? AND network = ? AND all_data_is_valid = TRUE
		ORDER BY block_number DESC
		LIMIT 1`,
		address.Hex(), s.chain, s.network)
	metrics.ObserveDBQuery(metaRegistryTable, "resolve", start, ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve meta id of %s: %w", address.Hex(), err)
	}

	return metaID, nil
}

// CheckMetaID returns the keys registered under metaID.
func (s *Store) CheckMetaID(ctx context.Context, metaID string) (*indexer.MetaKeys, error) {
	start := time.Now()
	var keys indexer.MetaKeys
	err := s.db.QueryRow(&keys, `
		SELECT spending_public_key, viewing_public_key FROM meta_addresses_registry
		WHERE meta_id = ? AND chain = ? AND network = ? AND all_data_is_valid = TRUE
		ORDER BY block_number DESC
		LIMIT 1`,
		metaID, s.chain, s.network)
	metrics.ObserveDBQuery(metaRegistryTable, "check", start, ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check meta id %q: %w", metaID, err)
	}

	return &keys, nil
}

// GetMetaAddress returns the full registry entry of metaID regardless of validity.
func (s *Store) GetMetaAddress(ctx context.Context, metaID string) (*indexer.MetaAddressEntry, error) {
	start := time.Now()
	var entry indexer.MetaAddressEntry
	err := s.db.QueryRow(&entry, `
		SELECT `+metaColumns+` FROM meta_addresses_registry
		WHERE meta_id = ? AND chain = ? AND network = ?`,
		metaID, s.chain, s.network)
	metrics.ObserveDBQuery(metaRegistryTable, "get", start, ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meta address %q: %w", metaID, err)
	}

	return &entry, nil
}

// GetInfo returns one page of valid announcements, most recent block first.
func (s *Store) GetInfo(ctx context.Context, page indexer.Page) ([]*indexer.Announcement, error) {
	start := time.Now()
	var rows []*indexer.Announcement
	err := s.db.QueryAll(&rows, `
		SELECT `+announcementColumns+` FROM announcements
		WHERE chain = ? AND network = ? AND all_data_is_valid = TRUE
		ORDER BY block_number DESC, created_at DESC
		LIMIT ? OFFSET ?`,
		s.chain, s.network, page.Limit, page.Offset)
	metrics.ObserveDBQuery(announcementsTable, "list", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}

	return rows, nil
}

// GetInfoCount returns the number of valid announcements.
func (s *Store) GetInfoCount(ctx context.Context) (uint64, error) {
	start := time.Now()
	var count uint64
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM announcements
		WHERE chain = ? AND network = ? AND all_data_is_valid = TRUE`,
		s.chain, s.network)
	metrics.ObserveDBQuery(announcementsTable, "count", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to count announcements: %w", err)
	}

	return count, nil
}

// GetTransfers returns valid announcements paying one of addresses, most recent block first.
func (s *Store) GetTransfers(ctx context.Context, addresses []common.Hash) ([]*indexer.Announcement, error) {
	if len(addresses) == 0 {
		return nil, nil
	}

	hexes := make([]string, len(addresses))
	for i, a := range addresses {
		hexes[i] = a.Hex()
	}

	query, args, err := s.db.In(`
		SELECT `+announcementColumns+` FROM announcements
		WHERE chain = ? AND network = ? AND all_data_is_valid = TRUE AND stealth_address IN (?)
		ORDER BY block_number DESC, created_at DESC`,
		s.chain, s.network, hexes)
	if err != nil {
		return nil, fmt.Errorf("failed to build transfers query: %w", err)
	}

	start := time.Now()
	var rows []*indexer.Announcement
	err = s.db.QueryAll(&rows, query, args...)
	metrics.ObserveDBQuery(announcementsTable, "transfers", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfers: %w", err)
	}

	return rows, nil
}

func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
