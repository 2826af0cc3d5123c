// Package indexer implements the Starknet stealth indexer and the manager that
// owns one indexer per configured (chain, network).
package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/StarkIndexor/internal/calldata"
	icommon "github.com/goran-ethernal/StarkIndexor/internal/common"
	"github.com/goran-ethernal/StarkIndexor/internal/felt"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	"github.com/goran-ethernal/StarkIndexor/internal/poller"
	"github.com/goran-ethernal/StarkIndexor/internal/progress"
	"github.com/goran-ethernal/StarkIndexor/internal/rpc"
	"github.com/goran-ethernal/StarkIndexor/internal/store"
	"github.com/goran-ethernal/StarkIndexor/internal/validation"
	"github.com/goran-ethernal/StarkIndexor/pkg/config"
	"github.com/goran-ethernal/StarkIndexor/pkg/indexer"
	pkgrpc "github.com/goran-ethernal/StarkIndexor/pkg/rpc"
)

func init() {
	indexer.Register(config.ChainStarknet, func(ctx context.Context, cfg config.IndexerConfig,
		deps indexer.Dependencies, log *logger.Logger) (indexer.ChainIndexer, error) {
		return NewStarknetIndexer(ctx, cfg, deps, log)
	})
}

var _ indexer.ChainIndexer = (*StarknetIndexer)(nil)

// watchedContract is one contract polled by the indexer.
type watchedContract struct {
	role    string
	cfg     config.ContractConfig
	address common.Hash
	schema  calldata.Schema
	tokens  *calldata.TokenRegistry
	handler poller.Handler
}

// StarknetIndexer polls the announcer and meta registry contracts of one
// Starknet network and serves reads over the indexed rows.
type StarknetIndexer struct {
	cfg        config.IndexerConfig
	key        string
	client     pkgrpc.StarknetClient
	ownsClient bool
	store      *store.Store
	progress   *progress.Store
	contracts  []*watchedContract
	log        *logger.Logger

	mu      sync.Mutex
	pollers []*poller.Poller
}

// NewStarknetIndexer builds the indexer of cfg. Parameter schemas and token lists
// are resolved here so configuration mistakes fail at startup.
func NewStarknetIndexer(ctx context.Context, cfg config.IndexerConfig, deps indexer.Dependencies,
	log *logger.Logger) (*StarknetIndexer, error) {
	if deps.DB == nil {
		return nil, errors.New("database is required")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	key := cfg.Key()
	validator := deps.Validator
	if validator == nil {
		validator = validation.NewValidator()
	}

	st := store.New(deps.DB, cfg.Chain, cfg.Network, deps.Maintenance, log)
	ps := progress.NewStore(deps.DB, cfg.Chain, cfg.Network, deps.Maintenance, log)
	handlerLog := log.WithComponent(icommon.ComponentIndexer)

	idx := &StarknetIndexer{
		cfg:      cfg,
		key:      key,
		store:    st,
		progress: ps,
		log:      handlerLog,
	}

	announcer, err := newWatchedContract(RoleAnnouncer, cfg.Announcer)
	if err != nil {
		return nil, fmt.Errorf("indexer %s: %w", key, err)
	}
	announcer.handler = NewAnnouncerHandler(key, announcer.address, st, ps, validator, handlerLog)

	meta, err := newWatchedContract(RoleMetaRegistry, cfg.MetaRegistry)
	if err != nil {
		return nil, fmt.Errorf("indexer %s: %w", key, err)
	}
	meta.handler = NewMetaRegistryHandler(key, meta.address, st, ps, validator, handlerLog)

	idx.contracts = []*watchedContract{announcer, meta}

	if deps.Client != nil {
		idx.client = deps.Client
	} else {
		client, err := rpc.NewClient(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("indexer %s: %w", key, err)
		}
		idx.client = client
		idx.ownsClient = true
	}

	return idx, nil
}

func newWatchedContract(role string, cfg config.ContractConfig) (*watchedContract, error) {
	address, err := felt.ParseAddress(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("%s address: %w", role, err)
	}

	schema, err := cfg.Schema()
	if err != nil {
		return nil, fmt.Errorf("%s params: %w", role, err)
	}

	tokens, err := cfg.TokenList()
	if err != nil {
		return nil, fmt.Errorf("%s tokens: %w", role, err)
	}

	return &watchedContract{
		role:    role,
		cfg:     cfg,
		address: address,
		schema:  schema,
		tokens:  calldata.NewTokenRegistry(tokens...),
	}, nil
}

// Key returns the "{chain}-{network}" identifier.
func (s *StarknetIndexer) Key() string {
	return s.key
}

// Start resolves the scan position of every contract and starts its poller.
func (s *StarknetIndexer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pollers) > 0 {
		return fmt.Errorf("indexer %s already started", s.key)
	}

	pollers := make([]*poller.Poller, 0, len(s.contracts))
	for _, c := range s.contracts {
		last, err := s.startCursor(ctx, c)
		if err != nil {
			stopAll(pollers)
			return err
		}

		p, err := poller.New(poller.Config{
			Indexer:     s.key,
			Role:        c.role,
			Contract:    c.address,
			EventName:   c.cfg.EventName,
			Schema:      c.schema,
			Tokens:      c.tokens,
			Interval:    s.cfg.PollInterval.Duration,
			ChunkSize:   int(c.cfg.EffectiveChunkSize(s.cfg.ChunkSize)), //nolint:gosec
			TxCacheSize: s.cfg.TxCacheSize,
		}, s.client, c.handler, last, s.log)
		if err != nil {
			stopAll(pollers)
			return fmt.Errorf("indexer %s: %s poller: %w", s.key, c.role, err)
		}

		if err := p.Start(ctx); err != nil {
			stopAll(pollers)
			return fmt.Errorf("indexer %s: %w", s.key, err)
		}
		pollers = append(pollers, p)
	}

	s.pollers = pollers
	s.log.Infow("indexer started", "indexer", s.key, "contracts", len(pollers))

	return nil
}

// startCursor returns the last block already scanned for c. Blocks before the
// configured start block count as scanned. Stored progress wins when resuming.
func (s *StarknetIndexer) startCursor(ctx context.Context, c *watchedContract) (uint64, error) {
	var last uint64
	if c.cfg.StartBlock > 0 {
		last = c.cfg.StartBlock - 1
	}

	if !c.cfg.ShouldResume() {
		return last, nil
	}

	stored, err := s.progress.Get(ctx, c.address)
	if err != nil {
		return 0, fmt.Errorf("indexer %s: failed to load %s progress: %w", s.key, c.role, err)
	}

	return max(last, stored), nil
}

// Stop stops every poller, waiting for in-flight cycles, and closes the RPC client it owns.
func (s *StarknetIndexer) Stop() error {
	s.mu.Lock()
	pollers := s.pollers
	s.pollers = nil
	s.mu.Unlock()

	start := time.Now()
	stopAll(pollers)

	if s.ownsClient {
		s.client.Close()
	}

	s.log.Infow("indexer stopped", "indexer", s.key, "duration", time.Since(start))
	return nil
}

func stopAll(pollers []*poller.Poller) {
	var wg sync.WaitGroup
	for _, p := range pollers {
		wg.Go(p.Stop)
	}
	wg.Wait()
}

func (s *StarknetIndexer) ResolveMetaID(ctx context.Context, address common.Hash) (string, error) {
	return s.store.ResolveMetaID(ctx, address)
}

func (s *StarknetIndexer) CheckMetaID(ctx context.Context, metaID string) (*indexer.MetaKeys, error) {
	return s.store.CheckMetaID(ctx, metaID)
}

func (s *StarknetIndexer) SaveAnnouncementInfo(ctx context.Context, info indexer.StealthInfo) error {
	return s.store.InsertStealthInfo(ctx, info)
}

func (s *StarknetIndexer) GetInfo(ctx context.Context, page indexer.Page) ([]*indexer.Announcement, error) {
	return s.store.GetInfo(ctx, page)
}

func (s *StarknetIndexer) GetInfoCount(ctx context.Context) (uint64, error) {
	return s.store.GetInfoCount(ctx)
}

func (s *StarknetIndexer) GetTransfers(ctx context.Context, addresses []common.Hash) ([]*indexer.Announcement, error) {
	return s.store.GetTransfers(ctx, addresses)
}

// Progress returns the stored scan position of the announcer and meta registry.
// It only reads, so a contract that was never scanned reports block 0.
func (s *StarknetIndexer) Progress(ctx context.Context) ([]indexer.ContractProgress, error) {
	out := make([]indexer.ContractProgress, 0, len(s.contracts))
	for _, c := range s.contracts {
		latest, err := s.progress.Latest(ctx, c.address)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s progress: %w", c.role, err)
		}
		out = append(out, indexer.ContractProgress{Role: c.role, Address: c.address, LatestBlock: latest})
	}
	return out, nil
}
