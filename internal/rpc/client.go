package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/StarkIndexor/internal/common"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	"github.com/goran-ethernal/StarkIndexor/pkg/config"
	pkgrpc "github.com/goran-ethernal/StarkIndexor/pkg/rpc"
	"github.com/sony/gobreaker"
)

const (
	MethodBlockNumber          = "starknet_blockNumber"
	MethodGetEvents            = "starknet_getEvents"
	MethodGetTransactionByHash = "starknet_getTransactionByHash"
)

// Compile-time check to ensure Client implements pkgrpc.StarknetClient interface.
var _ pkgrpc.StarknetClient = (*Client)(nil)

// Client is a Starknet JSON-RPC 2.0 client over HTTP.
// Every call goes through the optional circuit breaker and is retried with backoff
// when the error is transient.
type Client struct {
	rpc     *rpc.Client
	retry   *config.RetryConfig
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	log     *logger.Logger
}

// NewClient creates a new RPC client for the indexer's endpoint.
func NewClient(ctx context.Context, cfg config.IndexerConfig, log *logger.Logger) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.RPCURL, err)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.WithComponent(common.ComponentRPC)

	c := &Client{
		rpc:     rpcClient,
		retry:   cfg.Retry,
		timeout: cfg.RequestTimeout.Duration,
		log:     log,
	}

	if cb := cfg.CircuitBreaker; cb != nil && cb.Enabled {
		c.breaker = newBreaker(cfg.Key(), cb, log)
	}

	return c, nil
}

func newBreaker(name string, cfg *config.CircuitBreakerConfig, log *logger.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Interval.Duration,
		Timeout:     cfg.OpenTimeout.Duration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		// only transport failures count against the endpoint
		IsSuccessful: func(err error) bool {
			return err == nil || !retryableError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("circuit breaker %s changed state: %s -> %s", name, from, to)
			RPCBreakerStateSet(name, to)
		},
	})
}

// Close closes the RPC client connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// BlockNumber returns the number of the most recent accepted block.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var head uint64
	if err := c.call(ctx, &head, MethodBlockNumber); err != nil {
		return 0, err
	}
	return head, nil
}

// GetEvents retrieves a single page of events matching the given filter.
func (c *Client) GetEvents(ctx context.Context, filter pkgrpc.EventFilter) (*pkgrpc.EventsPage, error) {
	var page pkgrpc.EventsPage
	if err := c.call(ctx, &page, MethodGetEvents, toFilterArg(filter)); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetTransactionByHash retrieves the transaction with the given hash.
func (c *Client) GetTransactionByHash(ctx context.Context, hash string) (*pkgrpc.Transaction, error) {
	var tx *pkgrpc.Transaction
	if err := c.call(ctx, &tx, MethodGetTransactionByHash, hash); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction %s: %w", hash, ErrTransactionNotFound)
	}
	return tx, nil
}

func (c *Client) call(ctx context.Context, result any, method string, args ...any) error {
	RPCMethodInc(method)
	start := time.Now()
	defer func() { RPCMethodDuration(method, time.Since(start)) }()

	err := retryWithBackoff(ctx, c.retry, method, func() error {
		return c.execute(ctx, result, method, args...)
	})
	if err != nil {
		RPCMethodError(method, errorType(err))
		c.log.Debugf("%s failed: %v", method, err)
		return fmt.Errorf("%s: %w", method, err)
	}

	return nil
}

func (c *Client) execute(ctx context.Context, result any, method string, args ...any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.breaker == nil {
		return c.rpc.CallContext(ctx, result, method, args...)
	}

	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.rpc.CallContext(ctx, result, method, args...)
	})
	return err
}

// toFilterArg converts an EventFilter to the object expected by starknet_getEvents.
func toFilterArg(f pkgrpc.EventFilter) map[string]any {
	arg := map[string]any{
		"from_block": toBlockID(f.FromBlock),
		"to_block":   toBlockID(f.ToBlock),
		"chunk_size": f.ChunkSize,
	}

	if f.Address != "" {
		arg["address"] = f.Address
	}
	if len(f.Keys) > 0 {
		arg["keys"] = f.Keys
	}
	if f.ContinuationToken != "" {
		arg["continuation_token"] = f.ContinuationToken
	}

	return arg
}

// toBlockID converts a block number to a block id object.
func toBlockID(blockNum uint64) map[string]uint64 {
	return map[string]uint64{"block_number": blockNum}
}
