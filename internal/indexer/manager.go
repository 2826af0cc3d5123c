package indexer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	icommon "github.com/goran-ethernal/StarkIndexor/internal/common"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	"github.com/goran-ethernal/StarkIndexor/internal/metrics"
	"github.com/goran-ethernal/StarkIndexor/pkg/config"
	"github.com/goran-ethernal/StarkIndexor/pkg/indexer"
	"golang.org/x/sync/errgroup"
)

// Manager owns one ChainIndexer per configured "{chain}-{network}" key.
// The set of indexers is fixed at construction.
type Manager struct {
	mu       sync.RWMutex
	indexers map[string]indexer.ChainIndexer
	keys     []string
	started  bool
	log      *logger.Logger
}

// NewManager creates an indexer for every configuration entry through the
// factory registered for its chain. An unregistered chain or a duplicate key
// fails the whole construction.
func NewManager(ctx context.Context, cfgs []config.IndexerConfig, deps indexer.Dependencies,
	log *logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	m := &Manager{
		indexers: make(map[string]indexer.ChainIndexer, len(cfgs)),
		log:      log.WithComponent(icommon.ComponentIndexerManager),
	}

	for i := range cfgs {
		cfg := cfgs[i]
		key := cfg.Key()
		if _, exists := m.indexers[key]; exists {
			m.closeAll()
			return nil, fmt.Errorf("duplicate indexer %q", key)
		}

		idx, err := indexer.Create(ctx, cfg, deps, log)
		if err != nil {
			m.closeAll()
			return nil, fmt.Errorf("failed to create indexer %q: %w", key, err)
		}

		m.indexers[key] = idx
		m.keys = append(m.keys, key)
		m.log.Infow("indexer registered", "indexer", key, "rpc_url", cfg.RPCURL)
	}

	sort.Strings(m.keys)
	return m, nil
}

// Get returns the indexer registered under key ("{chain}-{network}", case-insensitive).
func (m *Manager) Get(key string) (indexer.ChainIndexer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.indexers[icommon.ToLowerWithTrim(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", indexer.ErrUnknownIndexer, key)
	}
	return idx, nil
}

// Keys returns the sorted keys of all indexers.
func (m *Manager) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.keys...)
}

// Start starts every indexer concurrently. If any of them fails, the ones
// already started are stopped again.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return errors.New("indexer manager already started")
	}

	var (
		g          errgroup.Group
		startedMu  sync.Mutex
		startedIdx []indexer.ChainIndexer
	)
	for _, key := range m.keys {
		idx := m.indexers[key]
		g.Go(func() error {
			if err := idx.Start(ctx); err != nil {
				metrics.ErrorInc(icommon.ComponentIndexerManager, "error")
				return fmt.Errorf("failed to start indexer %q: %w", idx.Key(), err)
			}
			startedMu.Lock()
			startedIdx = append(startedIdx, idx)
			startedMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		_ = stopIndexers(startedIdx)
		return err
	}

	m.started = true
	m.log.Infow("all indexers started", "count", len(m.keys))
	return nil
}

// Stop stops every indexer concurrently and returns the first failure.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return nil
	}
	m.started = false

	all := make([]indexer.ChainIndexer, 0, len(m.keys))
	for _, key := range m.keys {
		all = append(all, m.indexers[key])
	}

	if err := stopIndexers(all); err != nil {
		return err
	}

	m.log.Info("all indexers stopped")
	return nil
}

// closeAll releases indexers created before a construction failure.
func (m *Manager) closeAll() {
	all := make([]indexer.ChainIndexer, 0, len(m.indexers))
	for _, idx := range m.indexers {
		all = append(all, idx)
	}
	_ = stopIndexers(all)
}

func stopIndexers(indexers []indexer.ChainIndexer) error {
	var g errgroup.Group
	for _, idx := range indexers {
		g.Go(func() error {
			if err := idx.Stop(); err != nil {
				return fmt.Errorf("failed to stop indexer %q: %w", idx.Key(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
