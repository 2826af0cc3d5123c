// Package poller periodically scans one contract for new events and hands
// every decoded event to a Handler.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"

	"github.com/goran-ethernal/StarkIndexor/internal/calldata"
	icommon "github.com/goran-ethernal/StarkIndexor/internal/common"
	"github.com/goran-ethernal/StarkIndexor/internal/felt"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	"github.com/goran-ethernal/StarkIndexor/internal/metrics"
	"github.com/goran-ethernal/StarkIndexor/internal/rpc"
	pkgrpc "github.com/goran-ethernal/StarkIndexor/pkg/rpc"
)

const (
	defaultInterval    = time.Second
	defaultChunkSize   = 100
	defaultTxCacheSize = 1024
)

// ErrPollInFlight is returned by Poll when a previous cycle has not finished.
var ErrPollInFlight = errors.New("poll cycle already in flight")

// Handler receives the output of a Poller.
type Handler interface {
	// OnProgress is called once per cycle with the new last scanned block,
	// before any event of the cycle. An error aborts the cycle.
	OnProgress(ctx context.Context, block uint64) error

	// OnEvent is called for every decoded event, in ascending block order.
	OnEvent(ctx context.Context, ev EventData) error

	// OnError reports a failed cycle or a skipped event. It is informational.
	OnError(ctx context.Context, err error)
}

// EventData is one contract event together with the transaction that emitted it.
type EventData struct {
	Contract        common.Hash
	Event           pkgrpc.Event
	BlockNumber     uint64
	TransactionHash common.Hash
	Transaction     *pkgrpc.Transaction
	// Sender is the canonical address of the account that sent the transaction.
	Sender common.Hash
	// Call is the call to Contract the event originated from.
	Call calldata.ParsedCall
	// Params holds Call's calldata decoded against the configured schema.
	Params calldata.Record
	// Transfers are the token transfers found in the same multicall.
	Transfers []calldata.TokenTransfer
}

// EventError describes an event that was skipped.
type EventError struct {
	Contract        common.Hash
	BlockNumber     uint64
	TransactionHash string
	Err             error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("event of %s in tx %s (block %d): %v",
		e.Contract.Hex(), e.TransactionHash, e.BlockNumber, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}

// Config describes the contract a Poller watches.
type Config struct {
	// Indexer and Role label logs and metrics, e.g. "starknet-sepolia" and "announcer".
	Indexer string
	Role    string

	Contract common.Hash
	// EventName restricts events to those whose first key is starknet_keccak(EventName).
	EventName   string
	Schema      calldata.Schema
	Tokens      *calldata.TokenRegistry
	Interval    time.Duration
	ChunkSize   int
	TxCacheSize int
}

func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = defaultChunkSize
	}
	if c.TxCacheSize <= 0 {
		c.TxCacheSize = defaultTxCacheSize
	}
	if c.Tokens == nil {
		c.Tokens = calldata.NewTokenRegistry()
	}
}

// Poller scans (lastBlockScanned, head] of one contract on every tick.
// At most one cycle runs at a time.
type Poller struct {
	cfg     Config
	client  pkgrpc.StarknetClient
	handler Handler
	log     *logger.Logger

	keys    [][]string
	txCache *lru.Cache

	lastBlock atomic.Uint64
	inFlight  atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a poller that resumes after lastBlockScanned.
func New(cfg Config, client pkgrpc.StarknetClient, handler Handler, lastBlockScanned uint64,
	log *logger.Logger) (*Poller, error) {
	if client == nil {
		return nil, errors.New("RPC client is required")
	}
	if handler == nil {
		return nil, errors.New("handler is required")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	cfg.applyDefaults()

	cache, err := lru.New(cfg.TxCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction cache: %w", err)
	}

	p := &Poller{
		cfg:     cfg,
		client:  client,
		handler: handler,
		log:     log.WithComponent(icommon.ComponentPoller),
		txCache: cache,
	}
	if cfg.EventName != "" {
		p.keys = [][]string{{felt.ToHex(felt.Selector(cfg.EventName))}}
	}
	p.lastBlock.Store(lastBlockScanned)

	return p, nil
}

// LastBlockScanned returns the last block the poller has fully scanned.
func (p *Poller) LastBlockScanned() uint64 {
	return p.lastBlock.Load()
}

// Contract returns the watched contract.
func (p *Poller) Contract() common.Hash {
	return p.cfg.Contract
}

// Role returns the role label of the watched contract.
func (p *Poller) Role() string {
	return p.cfg.Role
}

// Start polls once and then on every interval until Stop is called or ctx is done.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return fmt.Errorf("poller for %s already started", p.cfg.Contract.Hex())
	}

	ctx, p.cancel = context.WithCancel(ctx)

	p.log.Infow("starting poller",
		"indexer", p.cfg.Indexer,
		"role", p.cfg.Role,
		"contract", p.cfg.Contract.Hex(),
		"last_block", p.LastBlockScanned(),
		"interval", p.cfg.Interval,
		"chunk_size", p.cfg.ChunkSize,
	)

	p.wg.Go(func() { p.run(ctx) })

	return nil
}

// Stop stops the timer and waits for the in-flight cycle to finish. The
// running cycle is not cancelled.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	p.wg.Wait()

	p.log.Infow("poller stopped", "role", p.cfg.Role, "last_block", p.LastBlockScanned())
}

func (p *Poller) run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// a cycle that already saved its cursor must deliver its events, so
	// cancellation is only observed between ticks
	cycleCtx := context.WithoutCancel(ctx)

	for {
		_ = p.Poll(cycleCtx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll runs one cycle. It returns ErrPollInFlight without doing anything when
// another cycle is running. Errors are also reported to Handler.OnError.
func (p *Poller) Poll(ctx context.Context) error {
	if !p.inFlight.CompareAndSwap(false, true) {
		metrics.PollSkippedInc(p.cfg.Indexer, p.cfg.Role)
		p.log.Debugw("skipping tick, poll cycle in flight", "role", p.cfg.Role)
		return ErrPollInFlight
	}
	defer p.inFlight.Store(false)

	start := time.Now()
	defer func() { metrics.PollCycleTimeLog(p.cfg.Indexer, p.cfg.Role, time.Since(start)) }()

	if err := p.poll(ctx); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return err
		}

		metrics.ErrorInc(icommon.ComponentPoller, "warning")
		p.log.Warnw("poll cycle failed",
			"role", p.cfg.Role,
			"contract", p.cfg.Contract.Hex(),
			"last_block", p.LastBlockScanned(),
			"error", err,
		)
		p.handler.OnError(ctx, err)
		return err
	}

	return nil
}

func (p *Poller) poll(ctx context.Context) error {
	head, err := p.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain head: %w", err)
	}
	metrics.ChainHeadSet(p.cfg.Indexer, head)

	last := p.LastBlockScanned()
	if head <= last {
		p.log.Debugw("no new blocks", "role", p.cfg.Role, "head", head, "last_block", last)
		return nil
	}

	events, err := p.fetchEvents(ctx, last+1, head)
	if err != nil {
		return err
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].BlockNumber < events[j].BlockNumber
	})

	// the whole range up to head has been scanned, even when it held no events
	if err := p.handler.OnProgress(ctx, head); err != nil {
		return fmt.Errorf("failed to record progress at block %d: %w", head, err)
	}
	p.lastBlock.Store(head)
	metrics.LastIndexedBlockSet(p.cfg.Indexer, p.cfg.Role, head)
	metrics.BlocksScannedInc(p.cfg.Indexer, p.cfg.Role, head-last)

	p.log.Debugw("scanned block range",
		"role", p.cfg.Role,
		"from_block", last+1,
		"to_block", head,
		"events", len(events),
	)

	ordinals := make(map[string]int)
	for _, ev := range events {
		p.processEvent(ctx, ev, ordinals)
	}

	return nil
}

// fetchEvents pages through starknet_getEvents for [from, to].
// A chunk size rejected by the node is halved and the page retried.
func (p *Poller) fetchEvents(ctx context.Context, from, to uint64) ([]pkgrpc.Event, error) {
	filter := pkgrpc.EventFilter{
		FromBlock: from,
		ToBlock:   to,
		Address:   felt.ToHex(p.cfg.Contract),
		Keys:      p.keys,
		ChunkSize: p.cfg.ChunkSize,
	}

	var events []pkgrpc.Event
	for {
		page, err := p.client.GetEvents(ctx, filter)
		if err != nil {
			if rpc.IsPageSizeTooBigError(err) && filter.ChunkSize > 1 {
				filter.ChunkSize /= 2
				p.cfg.ChunkSize = filter.ChunkSize
				p.log.Warnw("chunk size rejected by node, halving",
					"role", p.cfg.Role,
					"chunk_size", filter.ChunkSize,
				)
				continue
			}
			return nil, fmt.Errorf("failed to get events in range [%d, %d]: %w", from, to, err)
		}

		events = append(events, page.Events...)

		if page.ContinuationToken == "" {
			return events, nil
		}
		filter.ContinuationToken = page.ContinuationToken
	}
}

// processEvent decodes one event and hands it to the handler.
// Failures are reported and only skip this event.
func (p *Poller) processEvent(ctx context.Context, ev pkgrpc.Event, ordinals map[string]int) {
	if !felt.EqualAddress(ev.FromAddress, felt.ToHex(p.cfg.Contract)) {
		metrics.EventProcessedInc(p.cfg.Indexer, p.cfg.Role, metrics.OutcomeSkipped)
		p.log.Debugw("skipping event of another contract",
			"role", p.cfg.Role,
			"from_address", ev.FromAddress,
			"tx_hash", ev.TransactionHash,
		)
		return
	}

	data, err := p.decodeEvent(ctx, ev, ordinals)
	if err != nil {
		p.fail(ctx, ev, err)
		return
	}
	if data == nil {
		metrics.EventProcessedInc(p.cfg.Indexer, p.cfg.Role, metrics.OutcomeSkipped)
		return
	}

	if err := p.handler.OnEvent(ctx, *data); err != nil {
		p.fail(ctx, ev, err)
		return
	}
}

// decodeEvent returns nil data when the transaction holds no call to the contract.
func (p *Poller) decodeEvent(ctx context.Context, ev pkgrpc.Event, ordinals map[string]int) (*EventData, error) {
	txHash, err := felt.Parse(ev.TransactionHash)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction hash: %w", err)
	}

	tx, err := p.transaction(ctx, txHash)
	if err != nil {
		return nil, err
	}

	calls, err := decodeCalls(tx)
	if err != nil {
		return nil, err
	}

	matched := calldata.FindCalls(calls, p.cfg.Contract)
	if len(matched) == 0 {
		p.log.Debugw("transaction holds no call to contract",
			"role", p.cfg.Role,
			"tx_hash", ev.TransactionHash,
			"calls", len(calls),
		)
		return nil, nil
	}

	// the n-th event of a transaction belongs to its n-th call to the contract
	ordinal := ordinals[txHash.Hex()]
	ordinals[txHash.Hex()] = ordinal + 1
	call := matched[min(ordinal, len(matched)-1)]

	params, err := calldata.Decode(p.cfg.Schema, call.Calldata)
	if err != nil {
		return nil, err
	}

	sender, err := felt.ParseAddress(tx.Sender())
	if err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}

	return &EventData{
		Contract:        p.cfg.Contract,
		Event:           ev,
		BlockNumber:     ev.BlockNumber,
		TransactionHash: txHash,
		Transaction:     tx,
		Sender:          sender,
		Call:            call,
		Params:          params,
		Transfers:       calldata.ParseTokenTransfers(calls, p.cfg.Tokens),
	}, nil
}

// transaction returns the transaction with the given hash, from cache when possible.
func (p *Poller) transaction(ctx context.Context, hash common.Hash) (*pkgrpc.Transaction, error) {
	if cached, ok := p.txCache.Get(hash); ok {
		if tx, ok := cached.(*pkgrpc.Transaction); ok {
			return tx, nil
		}
	}

	tx, err := p.client.GetTransactionByHash(ctx, felt.ToHex(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	p.txCache.Add(hash, tx)
	return tx, nil
}

// decodeCalls returns the calls of an invoke transaction. Version 0 invokes
// carry a single call in their envelope instead of a multicall payload.
func decodeCalls(tx *pkgrpc.Transaction) ([]calldata.ParsedCall, error) {
	if tx.SenderAddress == "" && tx.ContractAddress != "" && isVersionZero(tx.Version) {
		target, err := felt.ParseAddress(tx.ContractAddress)
		if err != nil {
			return nil, fmt.Errorf("invalid contract address: %w", err)
		}
		return []calldata.ParsedCall{{
			ContractAddress: target,
			RawAddress:      tx.ContractAddress,
			Calldata:        tx.Calldata,
		}}, nil
	}

	return calldata.ExtractAllCalls(tx.Calldata)
}

func isVersionZero(version string) bool {
	v := strings.TrimLeft(strings.TrimPrefix(strings.ToLower(version), "0x"), "0")
	return v == ""
}

func (p *Poller) fail(ctx context.Context, ev pkgrpc.Event, err error) {
	metrics.EventProcessedInc(p.cfg.Indexer, p.cfg.Role, metrics.OutcomeFailed)
	p.log.Errorw("skipping event",
		"role", p.cfg.Role,
		"contract", p.cfg.Contract.Hex(),
		"tx_hash", ev.TransactionHash,
		"block", ev.BlockNumber,
		"error", err,
	)
	p.handler.OnError(ctx, &EventError{
		Contract:        p.cfg.Contract,
		BlockNumber:     ev.BlockNumber,
		TransactionHash: ev.TransactionHash,
		Err:             err,
	})
}
