// Package progress persists, per watched contract, the last block scanned.
package progress

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
)

const table = "indexer_progress"

// Progress is one row of indexer_progress.
type Progress struct {
	ContractAddress common.Hash `meddler:"contract_address,felt"`
	LatestBlock     uint64      `meddler:"latest_block"`
	Chain           string      `meddler:"chain"`
	Network         string      `meddler:"network"`
}

// Store reads and advances scan progress for one (chain, network) scope.
// Progress never moves backwards.
type Store struct {
	db          *db.DB
	chain       string
	network     string
	maintenance db.Maintenance
	log         *logger.Logger
}

// NewStore creates a progress store scoped to chain and network.
func NewStore(database *db.DB, chain, network string, maintenance db.Maintenance, log *logger.Logger) *Store {
	if maintenance == nil {
		maintenance = &db.NoOpMaintenance{}
	}

	return &Store{
		db:          database,
		chain:       chain,
		network:     network,
		maintenance: maintenance,
		log:         log.WithComponent(icommon.ComponentProgressStore),
	}
}

// Get returns the last block scanned for contract. A missing row is created at 0.
func (s *Store) Get(ctx context.Context, contract common.Hash) (uint64, error) {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	start := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO indexer_progress (contract_address, latest_block, chain, network)
		VALUES (?, 0, ?, ?)
		ON CONFLICT (contract_address, chain, network) DO NOTHING`,
		contract.Hex(), s.chain, s.network)
	metrics.ObserveDBQuery(table, "init", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to initialize progress for %s: %w", contract.Hex(), err)
	}

	start = time.Now()
	var latest uint64
	err = s.db.GetContext(ctx, &latest, `
		SELECT latest_block FROM indexer_progress
		WHERE contract_address = ? AND chain = ? AND network = ?`,
		contract.Hex(), s.chain, s.network)
	metrics.ObserveDBQuery(table, "get", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to get progress for %s: %w", contract.Hex(), err)
	}

	return latest, nil
}

// Latest returns the last block scanned for contract without touching the
// table. A contract that has no row yet reports 0.
func (s *Store) Latest(ctx context.Context, contract common.Hash) (uint64, error) {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	start := time.Now()
	var latest uint64
	err := s.db.GetContext(ctx, &latest, `
		SELECT latest_block FROM indexer_progress
		WHERE contract_address = ? AND chain = ? AND network = ?`,
		contract.Hex(), s.chain, s.network)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	metrics.ObserveDBQuery(table, "latest", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to read progress for %s: %w", contract.Hex(), err)
	}

	return latest, nil
}

// Save records block as the last block scanned for contract.
// A block lower than or equal to the stored one leaves the row untouched.
func (s *Store) Save(ctx context.Context, contract common.Hash, block uint64) error {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	start := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO indexer_progress (contract_address, latest_block, chain, network)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (contract_address, chain, network)
		DO UPDATE SET latest_block = excluded.latest_block
		WHERE indexer_progress.latest_block < excluded.latest_block`,
		contract.Hex(), block, s.chain, s.network)
	metrics.ObserveDBQuery(table, "save", start, err)
	if err != nil {
		return fmt.Errorf("failed to save progress for %s: %w", contract.Hex(), err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.log.Debugf("progress for %s not moved back to block %d", contract.Hex(), block)
		return nil
	}

	s.log.Debugf("progress for %s saved at block %d", contract.Hex(), block)
	return nil
}

// All returns the progress rows of the store's scope.
func (s *Store) All(ctx context.Context) ([]*Progress, error) {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	start := time.Now()
	var rows []*Progress
	err := s.db.QueryAll(&rows, `
		SELECT contract_address, latest_block, chain, network FROM indexer_progress
		WHERE chain = ? AND network = ?
		ORDER BY contract_address`,
		s.chain, s.network)
	metrics.ObserveDBQuery(table, "list", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	return rows, nil
}
