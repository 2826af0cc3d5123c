package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goran-ethernal/StarkIndexor/internal/calldata"
	"github.com/goran-ethernal/StarkIndexor/internal/common"
	"github.com/goran-ethernal/StarkIndexor/internal/felt"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	ChainStarknet = "starknet"
)

// Parameter names the event handlers read from a decoded call.
const (
	ParamEphemeralPublicKey      = "ephemeral_public_key"
	ParamViewTag                 = "view_tag"
	ParamStealthAccountPublicKey = "stealth_account_public_key"
	ParamStealthAccountAddress   = "stealth_account_address"
	ParamMetaID                  = "meta_id"
	ParamMetaAddress             = "meta_address"
)

const (
	defaultMetaRegistryEventName        = "MetaAddressSet"
	defaultPollInterval                 = time.Second
	defaultChunkSize             uint64 = 100
	defaultTxCacheSize                  = 1024
	defaultRequestTimeout               = 30 * time.Second
)

// AnnouncerParams are the parameters every announcer schema must declare.
var AnnouncerParams = []string{
	ParamEphemeralPublicKey,
	ParamViewTag,
	ParamStealthAccountPublicKey,
	ParamStealthAccountAddress,
}

// MetaRegistryParams are the parameters every meta registry schema must declare.
var MetaRegistryParams = []string{ParamMetaID, ParamMetaAddress}

// Config represents the complete configuration for the StarkIndexor.
type Config struct {
	// DB is the shared relational store used by every indexer
	DB DatabaseConfig `yaml:"db" json:"db" toml:"db"`

	// Indexers contains one entry per (chain, network) pair
	Indexers []IndexerConfig `yaml:"indexers" json:"indexers" toml:"indexers"`

	// Logging contains logging configuration
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" toml:"logging,omitempty"`

	// Metrics contains Prometheus metrics configuration
	Metrics *MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty" toml:"metrics,omitempty"`

	// API contains the HTTP read API configuration
	API *APIConfig `yaml:"api,omitempty" json:"api,omitempty" toml:"api,omitempty"`
}

// RetryConfig represents RPC retry configuration with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial request)
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts" toml:"max_attempts"`

	// InitialBackoff is the initial backoff duration before first retry
	InitialBackoff common.Duration `yaml:"initial_backoff" json:"initial_backoff" toml:"initial_backoff"`

	// MaxBackoff is the maximum backoff duration
	MaxBackoff common.Duration `yaml:"max_backoff" json:"max_backoff" toml:"max_backoff"`

	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64 `yaml:"backoff_multiplier" json:"backoff_multiplier" toml:"backoff_multiplier"`
}

// ApplyDefaults sets default values for retry configuration.
func (r *RetryConfig) ApplyDefaults() {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 3
	}
	if r.InitialBackoff.Duration == 0 {
		r.InitialBackoff = common.NewDuration(500 * time.Millisecond) //nolint:mnd
	}
	if r.MaxBackoff.Duration == 0 {
		r.MaxBackoff = common.NewDuration(5 * time.Second) //nolint:mnd
	}
	if r.BackoffMultiplier == 0 {
		r.BackoffMultiplier = 2.0
	}
}

// Validate checks if the retry configuration is valid.
func (r *RetryConfig) Validate() error {
	if r.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}
	if r.BackoffMultiplier < 1 {
		return fmt.Errorf("backoff_multiplier must be >= 1")
	}
	if r.MaxBackoff.Duration < r.InitialBackoff.Duration {
		return fmt.Errorf("max_backoff must not be lower than initial_backoff")
	}
	return nil
}

// CircuitBreakerConfig configures the breaker guarding an RPC endpoint.
type CircuitBreakerConfig struct {
	// Enabled controls whether the breaker wraps RPC calls
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// MaxFailures is the number of consecutive failures that opens the breaker
	MaxFailures uint32 `yaml:"max_failures" json:"max_failures" toml:"max_failures"`

	// OpenTimeout is how long the breaker stays open before probing again
	OpenTimeout common.Duration `yaml:"open_timeout" json:"open_timeout" toml:"open_timeout"`

	// HalfOpenRequests is the number of probe requests allowed while half-open
	HalfOpenRequests uint32 `yaml:"half_open_requests" json:"half_open_requests" toml:"half_open_requests"`

	// Interval clears failure counts while closed (0 = never)
	Interval common.Duration `yaml:"interval" json:"interval" toml:"interval"`
}

// ApplyDefaults sets default values for circuit breaker configuration.
func (c *CircuitBreakerConfig) ApplyDefaults() {
	if c.MaxFailures == 0 {
		c.MaxFailures = 5
	}
	if c.OpenTimeout.Duration == 0 {
		c.OpenTimeout = common.NewDuration(30 * time.Second) //nolint:mnd
	}
	if c.HalfOpenRequests == 0 {
		c.HalfOpenRequests = 1
	}
}

// DatabaseConfig represents database configuration.
type DatabaseConfig struct {
	// Driver selects the database engine: "sqlite3" (default) or "postgres"
	Driver string `yaml:"driver" json:"driver" toml:"driver"`

	// Path is the file path to the SQLite database
	Path string `yaml:"path" json:"path" toml:"path"`

	// DSN is the PostgreSQL connection string (postgres driver only)
	DSN string `yaml:"dsn" json:"dsn" toml:"dsn"`

	// JournalMode sets the SQLite journal mode (e.g., "WAL", "DELETE")
	// WAL mode is recommended for better concurrency
	JournalMode string `yaml:"journal_mode" json:"journal_mode" toml:"journal_mode"`

	// Synchronous sets the synchronization level ("FULL", "NORMAL", "OFF")
	Synchronous string `yaml:"synchronous" json:"synchronous" toml:"synchronous"`

	// BusyTimeout is the time in milliseconds to wait when the database is locked
	BusyTimeout int `yaml:"busy_timeout" json:"busy_timeout" toml:"busy_timeout"`

	// CacheSize is the size of the page cache (negative = KB, positive = pages)
	CacheSize int `yaml:"cache_size" json:"cache_size" toml:"cache_size"`

	// MaxOpenConnections is the maximum number of open database connections
	MaxOpenConnections int `yaml:"max_open_connections" json:"max_open_connections" toml:"max_open_connections"`

	// MaxIdleConnections is the maximum number of idle connections in the pool
	MaxIdleConnections int `yaml:"max_idle_connections" json:"max_idle_connections" toml:"max_idle_connections"`

	// EnableForeignKeys enables foreign key constraint enforcement
	EnableForeignKeys bool `yaml:"enable_foreign_keys" json:"enable_foreign_keys" toml:"enable_foreign_keys"`

	// Maintenance contains optional SQLite maintenance settings
	Maintenance *MaintenanceConfig `yaml:"maintenance,omitempty" json:"maintenance,omitempty" toml:"maintenance,omitempty"`
}

// ApplyDefaults sets default values for optional database configuration fields.
func (d *DatabaseConfig) ApplyDefaults() {
	if d.Driver == "" {
		d.Driver = DriverSQLite
	}
	if d.JournalMode == "" {
		d.JournalMode = "WAL"
	}
	if d.Synchronous == "" {
		d.Synchronous = "NORMAL"
	}
	if d.BusyTimeout == 0 {
		d.BusyTimeout = 5000
	}
	if d.CacheSize == 0 {
		d.CacheSize = 10000
	}
	if d.MaxOpenConnections == 0 {
		d.MaxOpenConnections = 25
	}
	if d.MaxIdleConnections == 0 {
		d.MaxIdleConnections = 5
	}
	if d.Maintenance != nil {
		d.Maintenance.ApplyDefaults()
	}
}

// Validate checks if the database configuration is valid.
func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case DriverSQLite:
		if d.Path == "" {
			return fmt.Errorf("db.path is required for the %s driver", DriverSQLite)
		}
	case DriverPostgres:
		if d.DSN == "" {
			return fmt.Errorf("db.dsn is required for the %s driver", DriverPostgres)
		}
		if d.Maintenance != nil && d.Maintenance.Enabled {
			return fmt.Errorf("db.maintenance is only supported for the %s driver", DriverSQLite)
		}
	default:
		return fmt.Errorf("db.driver must be one of: %s, %s", DriverSQLite, DriverPostgres)
	}

	if d.JournalMode != "" &&
		!slices.Contains([]string{"WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY"}, d.JournalMode) {
		return fmt.Errorf("db.journal_mode must be one of: WAL, DELETE, TRUNCATE, PERSIST, MEMORY")
	}

	if d.Synchronous != "" && !slices.Contains([]string{"FULL", "NORMAL", "OFF"}, d.Synchronous) {
		return fmt.Errorf("db.synchronous must be one of: FULL, NORMAL, OFF")
	}

	if d.Maintenance != nil {
		if err := d.Maintenance.Validate(); err != nil {
			return fmt.Errorf("db.maintenance: %w", err)
		}
	}

	return nil
}

// MaintenanceConfig configures database maintenance behavior.
type MaintenanceConfig struct {
	// Enabled controls whether background maintenance runs
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// CheckInterval is how often to run maintenance (e.g., "30m", "1h")
	CheckInterval common.Duration `yaml:"check_interval" json:"check_interval" toml:"check_interval"`

	// VacuumOnStartup runs maintenance immediately on startup
	VacuumOnStartup bool `yaml:"vacuum_on_startup" json:"vacuum_on_startup" toml:"vacuum_on_startup"`

	// WALCheckpointMode controls the WAL checkpoint aggressiveness
	// Options: PASSIVE, FULL, RESTART, TRUNCATE
	WALCheckpointMode string `yaml:"wal_checkpoint_mode" json:"wal_checkpoint_mode" toml:"wal_checkpoint_mode"`
}

// ApplyDefaults sets default values for optional maintenance configuration fields.
func (m *MaintenanceConfig) ApplyDefaults() {
	if m.CheckInterval.Duration == 0 {
		m.CheckInterval = common.NewDuration(30 * time.Minute) //nolint:mnd
	}
	if m.WALCheckpointMode == "" {
		m.WALCheckpointMode = "TRUNCATE"
	}
}

// Validate checks if the maintenance configuration is valid.
func (m *MaintenanceConfig) Validate() error {
	if m.WALCheckpointMode != "" {
		validModes := []string{"PASSIVE", "FULL", "RESTART", "TRUNCATE"}
		if !slices.Contains(validModes, m.WALCheckpointMode) {
			return fmt.Errorf("maintenance.wal_checkpoint_mode: must be one of: PASSIVE, FULL, RESTART, TRUNCATE")
		}
	}

	return nil
}

// LoggingConfig configures logging behavior with per-component log levels.
type LoggingConfig struct {
	// DefaultLevel is the default log level for all components
	// Options: "debug", "info", "warn", "error"
	DefaultLevel string `yaml:"default_level" json:"default_level" toml:"default_level"`

	// Development enables development mode (stack traces, console encoder)
	Development bool `yaml:"development" json:"development" toml:"development"`

	// ComponentLevels sets log levels for specific components
	// Available components:
	//   - poller: Contract event polling
	//   - rpc: Starknet JSON-RPC client
	//   - progress-store: Indexer progress persistence
	//   - store: Announcement and meta registry persistence
	//   - indexer: Event handlers of a single chain/network
	//   - indexer-manager: Indexer lifecycle
	//   - maintenance: Database maintenance
	//   - api: HTTP API server
	ComponentLevels map[string]string `yaml:"component_levels,omitempty" json:"component_levels,omitempty" toml:"component_levels,omitempty"` //nolint:lll
}

// ApplyDefaults sets default values for optional logging configuration fields.
func (l *LoggingConfig) ApplyDefaults() {
	if l.DefaultLevel == "" {
		l.DefaultLevel = "info"
	}
	if l.ComponentLevels == nil {
		l.ComponentLevels = make(map[string]string)
	}
}

// Validate checks if the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	if l.DefaultLevel != "" {
		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(l.DefaultLevel)]; !valid {
			return fmt.Errorf("logging.default_level: must be one of: debug, info, warn, error")
		}
	}

	for component, level := range l.ComponentLevels {
		if _, validComponent := common.AllComponents[common.ToLowerWithTrim(component)]; !validComponent {
			return fmt.Errorf("logging.component_levels: unknown component '%s'", component)
		}

		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(level)]; !valid {
			return fmt.Errorf("logging.component_levels[%s]: must be one of: debug, info, warn, error", component)
		}
	}

	return nil
}

// GetComponentLevel returns the log level for a specific component.
// Falls back to DefaultLevel if no component-specific level is set.
func (l *LoggingConfig) GetComponentLevel(component string) string {
	if l == nil {
		return "info"
	}
	if level, ok := l.ComponentLevels[component]; ok {
		return common.ToLowerWithTrim(level)
	}
	return l.GetDefaultLevel()
}

// GetDefaultLevel returns the default log level.
func (l *LoggingConfig) GetDefaultLevel() string {
	if l == nil || l.DefaultLevel == "" {
		return "info"
	}
	return common.ToLowerWithTrim(l.DefaultLevel)
}

// IsDevelopment returns whether development mode is enabled.
func (l *LoggingConfig) IsDevelopment() bool {
	return l != nil && l.Development
}

// MetricsConfig configures Prometheus metrics exposition.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP endpoint are active
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the metrics HTTP server to
	// Format: "host:port" or ":port"
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// Path is the HTTP path where metrics are exposed
	Path string `yaml:"path" json:"path" toml:"path"`
}

// ApplyDefaults sets default values for optional metrics configuration fields.
func (m *MetricsConfig) ApplyDefaults() {
	if m.ListenAddress == "" {
		m.ListenAddress = ":9090"
	}
	if m.Path == "" {
		m.Path = "/metrics"
	}
}

// Validate checks if the metrics configuration is valid.
func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.ListenAddress == "" {
			return fmt.Errorf("listen_address is required when metrics are enabled")
		}
		if m.Path == "" {
			return fmt.Errorf("path is required when metrics are enabled")
		}
		if m.Path[0] != '/' {
			return fmt.Errorf("path must start with '/'")
		}
	}
	return nil
}

// APIConfig configures the HTTP API.
type APIConfig struct {
	// Enabled controls whether the API server is started
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address the API binds to
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	ReadTimeout  common.Duration `yaml:"read_timeout" json:"read_timeout" toml:"read_timeout"`
	WriteTimeout common.Duration `yaml:"write_timeout" json:"write_timeout" toml:"write_timeout"`
	IdleTimeout  common.Duration `yaml:"idle_timeout" json:"idle_timeout" toml:"idle_timeout"`

	// JWTSecret signs the tokens accepted by write endpoints.
	// Write endpoints answer 500 when it is empty.
	JWTSecret string `yaml:"jwt_secret" json:"jwt_secret" toml:"jwt_secret"`

	// MaxPageSize caps the size query parameter of paginated endpoints
	MaxPageSize int `yaml:"max_page_size" json:"max_page_size" toml:"max_page_size"`

	// MaxTransferAddresses caps the number of addresses per transfers query
	MaxTransferAddresses int `yaml:"max_transfer_addresses" json:"max_transfer_addresses" toml:"max_transfer_addresses"`

	CORS CORSConfig `yaml:"cors" json:"cors" toml:"cors"`
}

// CORSConfig configures cross-origin access to the API.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" json:"enabled" toml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" toml:"allowed_origins"`
}

// ApplyDefaults sets default values for optional API configuration fields.
func (a *APIConfig) ApplyDefaults() {
	if a.ListenAddress == "" {
		a.ListenAddress = ":8080"
	}
	if a.ReadTimeout.Duration == 0 {
		a.ReadTimeout = common.NewDuration(15 * time.Second) //nolint:mnd
	}
	if a.WriteTimeout.Duration == 0 {
		a.WriteTimeout = common.NewDuration(15 * time.Second) //nolint:mnd
	}
	if a.IdleTimeout.Duration == 0 {
		a.IdleTimeout = common.NewDuration(60 * time.Second) //nolint:mnd
	}
	if a.MaxPageSize == 0 {
		a.MaxPageSize = 100
	}
	if a.MaxTransferAddresses == 0 {
		a.MaxTransferAddresses = 100
	}
	if a.CORS.Enabled && len(a.CORS.AllowedOrigins) == 0 {
		a.CORS.AllowedOrigins = []string{"*"}
	}
}

// Validate checks if the API configuration is valid.
func (a *APIConfig) Validate() error {
	if !a.Enabled {
		return nil
	}
	if a.ListenAddress == "" {
		return fmt.Errorf("listen_address is required when the API is enabled")
	}
	if a.MaxPageSize < 1 {
		return fmt.Errorf("max_page_size must be positive")
	}
	if a.MaxTransferAddresses < 1 {
		return fmt.Errorf("max_transfer_addresses must be positive")
	}
	return nil
}

// IndexerConfig represents the configuration of the indexer for one (chain, network) pair.
type IndexerConfig struct {
	// Chain is the chain family, e.g. "starknet"
	Chain string `yaml:"chain" json:"chain" toml:"chain"`

	// Network is the network name, e.g. "mainnet" or "sepolia"
	Network string `yaml:"network" json:"network" toml:"network"`

	// RPCURL is the JSON-RPC endpoint of the network
	RPCURL string `yaml:"rpc_url" json:"rpc_url" toml:"rpc_url"`

	// PollInterval is the period between two poll cycles of a contract
	PollInterval common.Duration `yaml:"poll_interval" json:"poll_interval" toml:"poll_interval"`

	// ChunkSize is the page size requested from starknet_getEvents
	ChunkSize uint64 `yaml:"chunk_size" json:"chunk_size" toml:"chunk_size"`

	// RequestTimeout bounds a single RPC request
	RequestTimeout common.Duration `yaml:"request_timeout" json:"request_timeout" toml:"request_timeout"`

	// TxCacheSize is the number of fetched transactions kept in memory per contract
	TxCacheSize int `yaml:"tx_cache_size" json:"tx_cache_size" toml:"tx_cache_size"`

	// Retry contains RPC retry configuration with exponential backoff
	Retry *RetryConfig `yaml:"retry,omitempty" json:"retry,omitempty" toml:"retry,omitempty"`

	// CircuitBreaker contains optional RPC circuit breaker settings
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuit_breaker,omitempty" json:"circuit_breaker,omitempty" toml:"circuit_breaker,omitempty"` //nolint:lll

	// Announcer is the stealth announcement contract
	Announcer ContractConfig `yaml:"announcer" json:"announcer" toml:"announcer"`

	// MetaRegistry is the meta address registry contract
	MetaRegistry ContractConfig `yaml:"meta_registry" json:"meta_registry" toml:"meta_registry"`
}

// Key returns the "{chain}-{network}" identifier of the indexer.
func (i *IndexerConfig) Key() string {
	return common.IndexerKey(i.Chain, i.Network)
}

// ApplyDefaults sets default values for optional indexer configuration fields.
func (i *IndexerConfig) ApplyDefaults() {
	i.Chain = common.ToLowerWithTrim(i.Chain)
	i.Network = common.ToLowerWithTrim(i.Network)

	if i.PollInterval.Duration == 0 {
		i.PollInterval = common.NewDuration(defaultPollInterval)
	}
	if i.ChunkSize == 0 {
		i.ChunkSize = defaultChunkSize
	}
	if i.RequestTimeout.Duration == 0 {
		i.RequestTimeout = common.NewDuration(defaultRequestTimeout)
	}
	if i.TxCacheSize == 0 {
		i.TxCacheSize = defaultTxCacheSize
	}
	if i.Retry != nil {
		i.Retry.ApplyDefaults()
	}
	if i.CircuitBreaker != nil {
		i.CircuitBreaker.ApplyDefaults()
	}

	if len(i.Announcer.Params) == 0 {
		i.Announcer.Params = []ParamConfig{
			{Name: ParamEphemeralPublicKey, Type: string(calldata.TypeByteArray)},
			{Name: ParamViewTag, Type: string(calldata.TypeByteArray)},
			{Name: ParamStealthAccountPublicKey, Type: string(calldata.TypeByteArray)},
			{Name: ParamStealthAccountAddress, Type: string(calldata.TypeContractAddress)},
		}
	}
	if len(i.MetaRegistry.Params) == 0 {
		i.MetaRegistry.Params = []ParamConfig{
			{Name: ParamMetaID, Type: string(calldata.TypeShortString)},
			{Name: ParamMetaAddress, Type: string(calldata.TypeByteArray)},
		}
	}
	if i.MetaRegistry.EventName == "" {
		i.MetaRegistry.EventName = defaultMetaRegistryEventName
	}
}

// Validate checks if the indexer configuration is valid.
func (i *IndexerConfig) Validate() error {
	if i.Chain == "" {
		return fmt.Errorf("chain is required")
	}
	if i.Network == "" {
		return fmt.Errorf("network is required")
	}
	if i.RPCURL == "" {
		return fmt.Errorf("rpc_url is required")
	}
	if i.TxCacheSize < 0 {
		return fmt.Errorf("tx_cache_size must not be negative")
	}
	if i.Retry != nil {
		if err := i.Retry.Validate(); err != nil {
			return fmt.Errorf("retry: %w", err)
		}
	}

	if err := i.Announcer.validate(AnnouncerParams); err != nil {
		return fmt.Errorf("announcer: %w", err)
	}
	if err := i.MetaRegistry.validate(MetaRegistryParams); err != nil {
		return fmt.Errorf("meta_registry: %w", err)
	}

	return nil
}

// ContractConfig describes one watched contract.
type ContractConfig struct {
	// Address is the contract address to monitor
	Address string `yaml:"address" json:"address" toml:"address"`

	// StartBlock is the first block scanned when no progress is stored (or resume is off)
	StartBlock uint64 `yaml:"start_block" json:"start_block" toml:"start_block"`

	// Resume continues from the stored progress when true (default)
	Resume *bool `yaml:"resume,omitempty" json:"resume,omitempty" toml:"resume,omitempty"`

	// ChunkSize overrides the indexer chunk size for this contract
	ChunkSize uint64 `yaml:"chunk_size,omitempty" json:"chunk_size,omitempty" toml:"chunk_size,omitempty"`

	// EventName restricts polling to a single event kind of the contract
	EventName string `yaml:"event_name,omitempty" json:"event_name,omitempty" toml:"event_name,omitempty"`

	// Params is the ordered parameter list of the contract entrypoint
	Params []ParamConfig `yaml:"params" json:"params" toml:"params"`

	// Tokens adds transfer-recognized tokens on top of ETH and STRK
	Tokens []TokenConfig `yaml:"tokens,omitempty" json:"tokens,omitempty" toml:"tokens,omitempty"`
}

// ParamConfig is a single named parameter of an entrypoint.
// Type accepts short names (felt252, byte_array, u256...) or Cairo paths.
type ParamConfig struct {
	Name string `yaml:"name" json:"name" toml:"name"`
	Type string `yaml:"type" json:"type" toml:"type"`
}

// TokenConfig describes an additional token whose transfers are recognized.
type TokenConfig struct {
	Name             string `yaml:"name" json:"name" toml:"name"`
	Address          string `yaml:"address" json:"address" toml:"address"`
	Decimals         int32  `yaml:"decimals" json:"decimals" toml:"decimals"`
	TransferSelector string `yaml:"transfer_selector,omitempty" json:"transfer_selector,omitempty" toml:"transfer_selector,omitempty"` //nolint:lll
}

// ShouldResume reports whether stored progress takes precedence over StartBlock.
func (c *ContractConfig) ShouldResume() bool {
	return c.Resume == nil || *c.Resume
}

// EffectiveChunkSize returns the contract override or the given indexer default.
func (c *ContractConfig) EffectiveChunkSize(indexerChunkSize uint64) uint64 {
	if c.ChunkSize > 0 {
		return c.ChunkSize
	}
	return indexerChunkSize
}

// Schema builds the decode schema of the contract parameters.
func (c *ContractConfig) Schema() (calldata.Schema, error) {
	names := make([]string, len(c.Params))
	types := make([]string, len(c.Params))
	for i, p := range c.Params {
		names[i] = strings.TrimSpace(p.Name)
		types[i] = p.Type
	}
	return calldata.NewSchema(names, types)
}

// TokenList converts the configured tokens into decoder tokens.
func (c *ContractConfig) TokenList() ([]calldata.Token, error) {
	tokens := make([]calldata.Token, 0, len(c.Tokens))
	for _, t := range c.Tokens {
		token, err := calldata.NewToken(t.Name, t.Address, t.Decimals, t.TransferSelector)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func (c *ContractConfig) validate(required []string) error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	if _, err := felt.ParseAddress(c.Address); err != nil {
		return fmt.Errorf("address: %w", err)
	}

	schema, err := c.Schema()
	if err != nil {
		return fmt.Errorf("params: %w", err)
	}
	if err := schema.Require(required...); err != nil {
		return fmt.Errorf("params: %w", err)
	}

	for j, t := range c.Tokens {
		if t.Name == "" {
			return fmt.Errorf("tokens[%d]: name is required", j)
		}
	}
	if _, err := c.TokenList(); err != nil {
		return fmt.Errorf("tokens: %w", err)
	}

	return nil
}

// ApplyDefaults sets default values for optional configuration fields.
func (c *Config) ApplyDefaults() {
	c.DB.ApplyDefaults()

	for i := range c.Indexers {
		c.Indexers[i].ApplyDefaults()
	}

	if c.Logging != nil {
		c.Logging.ApplyDefaults()
	}

	if c.Metrics != nil {
		c.Metrics.ApplyDefaults()
	}

	if c.API != nil {
		c.API.ApplyDefaults()
	}
}

// Validate checks if the configuration is valid.
// Chain families without a registered indexer implementation are rejected
// when the indexer manager is built, not here.
func (c *Config) Validate() error {
	if err := c.DB.Validate(); err != nil {
		return err
	}

	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			return err
		}
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	if c.API != nil {
		if err := c.API.Validate(); err != nil {
			return fmt.Errorf("api: %w", err)
		}
	}

	if len(c.Indexers) == 0 {
		return fmt.Errorf("at least one indexer must be configured")
	}

	keys := make(map[string]bool)
	for i := range c.Indexers {
		idx := &c.Indexers[i]
		if err := idx.Validate(); err != nil {
			return fmt.Errorf("indexer[%d]: %w", i, err)
		}

		key := idx.Key()
		if keys[key] {
			return fmt.Errorf("indexer[%d]: duplicate indexer '%s'", i, key)
		}
		keys[key] = true
	}

	return nil
}
