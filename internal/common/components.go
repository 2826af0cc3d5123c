package common

const (
	ComponentPoller         = "poller"
	ComponentRPC            = "rpc"
	ComponentProgressStore  = "progress-store"
	ComponentStore          = "store"
	ComponentIndexer        = "indexer"
	ComponentIndexerManager = "indexer-manager"
	ComponentMaintenance    = "maintenance"
	ComponentAPI            = "api"
)

var AllComponents = map[string]struct{}{
	ComponentPoller:         {},
	ComponentRPC:            {},
	ComponentProgressStore:  {},
	ComponentStore:          {},
	ComponentIndexer:        {},
	ComponentIndexerManager: {},
	ComponentMaintenance:    {},
	ComponentAPI:            {},
}
