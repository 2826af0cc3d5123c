package indexer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goran-ethernal/StarkIndexor/internal/db"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	"github.com/goran-ethernal/StarkIndexor/internal/validation"
	"github.com/goran-ethernal/StarkIndexor/pkg/config"
	"github.com/goran-ethernal/StarkIndexor/pkg/rpc"
)

// Dependencies are the shared resources handed to every indexer.
type Dependencies struct {
	DB          *db.DB
	Maintenance db.Maintenance
	Validator   validation.CurveValidator
	// Client overrides the RPC client built from the indexer configuration.
	Client rpc.StarknetClient
}

// Factory creates the indexer of one chain family for one network.
type Factory func(ctx context.Context, cfg config.IndexerConfig, deps Dependencies, log *logger.Logger) (ChainIndexer, error)

var (
	registry = make(map[string]Factory)
	mu       sync.RWMutex
)

// Register registers the factory of a chain family.
// This is typically called in init() functions of indexer packages.
// The chain name is case-insensitive and will be stored in lowercase.
func Register(chain string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	name := strings.ToLower(chain)
	if _, exists := registry[name]; exists {
		logger.GetDefaultLogger().Infof("indexer for chain %s already in indexer registry. "+
			"It will be overwritten.", name)
	}

	registry[name] = factory
}

// GetFactory returns the factory for the given chain.
// Returns nil if the chain is not registered.
// The lookup is case-insensitive.
func GetFactory(chain string) Factory {
	mu.RLock()
	defer mu.RUnlock()
	return registry[strings.ToLower(chain)]
}

// ListRegistered returns the sorted names of all registered chains.
func ListRegistered() []string {
	mu.RLock()
	defer mu.RUnlock()

	chains := make([]string, 0, len(registry))
	for c := range registry {
		chains = append(chains, c)
	}
	sort.Strings(chains)
	return chains
}

// Create creates the indexer for cfg.Chain using the registered factory.
// An unregistered chain fails with ErrUnknownIndexer.
func Create(ctx context.Context, cfg config.IndexerConfig, deps Dependencies, log *logger.Logger) (ChainIndexer, error) {
	factory := GetFactory(cfg.Chain)
	if factory == nil {
		return nil, fmt.Errorf("%w: chain %q (registered chains: %v)", ErrUnknownIndexer, cfg.Chain, ListRegistered())
	}

	return factory(ctx, cfg, deps, log)
}
