package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goran-ethernal/StarkIndexor/internal/common"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	"github.com/goran-ethernal/StarkIndexor/pkg/config"
	pkgrpc "github.com/goran-ethernal/StarkIndexor/pkg/rpc"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
)

// TestClientImplementsInterface verifies that Client implements the StarknetClient interface.
func TestClientImplementsInterface(t *testing.T) {
	var _ pkgrpc.StarknetClient = (*Client)(nil)
}

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type rpcErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rpcHandler answers one JSON-RPC method. Returning a non-nil status writes a bare HTTP error.
type rpcHandler func(params json.RawMessage) (result any, rpcErr *rpcErrorObject, status int)

// newFakeNode starts a JSON-RPC server dispatching by method name.
func newFakeNode(t *testing.T, handlers map[string]rpcHandler) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		handler, ok := handlers[req.Method]
		if !ok {
			writeRPC(w, req.ID, nil, &rpcErrorObject{Code: -32601, Message: "method not found"})
			return
		}

		result, rpcErr, status := handler(req.Params)
		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		writeRPC(w, req.ID, result, rpcErr)
	}))
	t.Cleanup(srv.Close)

	return srv, calls
}

func writeRPC(w http.ResponseWriter, id json.RawMessage, result any, rpcErr *rpcErrorObject) {
	resp := map[string]any{"jsonrpc": "2.0", "id": id}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestClient(t *testing.T, url string, mutate func(*config.IndexerConfig)) *Client {
	t.Helper()

	cfg := config.IndexerConfig{Chain: "starknet", Network: "sepolia", RPCURL: url}
	if mutate != nil {
		mutate(&cfg)
	}
	cfg.ApplyDefaults()

	client, err := NewClient(context.Background(), cfg, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func fastRetry(attempts int) *config.RetryConfig {
	return &config.RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    common.NewDuration(time.Millisecond),
		MaxBackoff:        common.NewDuration(5 * time.Millisecond),
		BackoffMultiplier: 2.0,
	}
}

func TestClient_BlockNumber(t *testing.T) {
	srv, _ := newFakeNode(t, map[string]rpcHandler{
		MethodBlockNumber: func(json.RawMessage) (any, *rpcErrorObject, int) {
			return 812345, nil, 0
		},
	})

	head, err := newTestClient(t, srv.URL, nil).BlockNumber(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(812345), head)
}

func TestClient_GetEvents(t *testing.T) {
	var gotFilter map[string]any

	srv, _ := newFakeNode(t, map[string]rpcHandler{
		MethodGetEvents: func(params json.RawMessage) (any, *rpcErrorObject, int) {
			var args []map[string]any
			if err := json.Unmarshal(params, &args); err != nil || len(args) != 1 {
				return nil, &rpcErrorObject{Code: -32602, Message: "invalid params"}, 0
			}
			gotFilter = args[0]

			return map[string]any{
				"events": []map[string]any{{
					"block_hash":       "0xabc",
					"block_number":     7,
					"from_address":     "0x123",
					"keys":             []string{"0x1"},
					"data":             []string{"0x2", "0x3"},
					"transaction_hash": "0xdead",
				}},
				"continuation_token": "7-1",
			}, nil, 0
		},
	})

	page, err := newTestClient(t, srv.URL, nil).GetEvents(context.Background(), pkgrpc.EventFilter{
		FromBlock:         1,
		ToBlock:           9,
		Address:           "0x123",
		Keys:              [][]string{{"0x1"}},
		ChunkSize:         50,
		ContinuationToken: "3-0",
	})
	require.NoError(t, err)

	require.Equal(t, map[string]any{"block_number": float64(1)}, gotFilter["from_block"])
	require.Equal(t, map[string]any{"block_number": float64(9)}, gotFilter["to_block"])
	require.Equal(t, "0x123", gotFilter["address"])
	require.Equal(t, float64(50), gotFilter["chunk_size"])
	require.Equal(t, "3-0", gotFilter["continuation_token"])
	require.Equal(t, []any{[]any{"0x1"}}, gotFilter["keys"])

	require.Equal(t, "7-1", page.ContinuationToken)
	require.Len(t, page.Events, 1)
	require.Equal(t, pkgrpc.Event{
		BlockHash:       "0xabc",
		BlockNumber:     7,
		FromAddress:     "0x123",
		Keys:            []string{"0x1"},
		Data:            []string{"0x2", "0x3"},
		TransactionHash: "0xdead",
	}, page.Events[0])
}

func TestClient_GetTransactionByHash(t *testing.T) {
	srv, _ := newFakeNode(t, map[string]rpcHandler{
		MethodGetTransactionByHash: func(params json.RawMessage) (any, *rpcErrorObject, int) {
			var args []string
			_ = json.Unmarshal(params, &args)
			switch args[0] {
			case "0xdead":
				return map[string]any{
					"transaction_hash": "0xdead",
					"type":             "INVOKE",
					"version":          "0x1",
					"sender_address":   "0x5",
					"calldata":         []string{"0x0"},
					"signature":        []string{"0x1", "0x2"},
					"nonce":            "0x3",
					"max_fee":          "0x4",
				}, nil, 0
			case "0xnull":
				return nil, nil, 0
			default:
				return nil, &rpcErrorObject{Code: CodeTransactionHashNotFound, Message: "Transaction hash not found"}, 0
			}
		},
	})
	client := newTestClient(t, srv.URL, nil)
	ctx := context.Background()

	tx, err := client.GetTransactionByHash(ctx, "0xdead")
	require.NoError(t, err)
	require.Equal(t, "INVOKE", tx.Type)
	require.Equal(t, "0x5", tx.Sender())
	require.Equal(t, []string{"0x0"}, tx.Calldata)

	_, err = client.GetTransactionByHash(ctx, "0xbeef")
	require.True(t, IsTransactionNotFoundError(err))

	_, err = client.GetTransactionByHash(ctx, "0xnull")
	require.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int32
	srv, calls := newFakeNode(t, map[string]rpcHandler{
		MethodBlockNumber: func(json.RawMessage) (any, *rpcErrorObject, int) {
			if attempts.Add(1) < 3 {
				return nil, nil, http.StatusServiceUnavailable
			}
			return 10, nil, 0
		},
	})

	client := newTestClient(t, srv.URL, func(cfg *config.IndexerConfig) {
		cfg.Retry = fastRetry(3)
	})

	head, err := client.BlockNumber(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(10), head)
	require.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryNodeErrors(t *testing.T) {
	srv, calls := newFakeNode(t, map[string]rpcHandler{
		MethodGetEvents: func(json.RawMessage) (any, *rpcErrorObject, int) {
			return nil, &rpcErrorObject{Code: CodePageSizeTooBig, Message: "Requested page size is too big"}, 0
		},
	})

	client := newTestClient(t, srv.URL, func(cfg *config.IndexerConfig) {
		cfg.Retry = fastRetry(5)
	})

	_, err := client.GetEvents(context.Background(), pkgrpc.EventFilter{ToBlock: 1, ChunkSize: 1000})
	require.True(t, IsPageSizeTooBigError(err))
	require.Equal(t, int32(1), calls.Load())
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	srv, calls := newFakeNode(t, map[string]rpcHandler{
		MethodBlockNumber: func(json.RawMessage) (any, *rpcErrorObject, int) {
			return nil, nil, http.StatusBadGateway
		},
	})

	client := newTestClient(t, srv.URL, func(cfg *config.IndexerConfig) {
		cfg.CircuitBreaker = &config.CircuitBreakerConfig{
			Enabled:     true,
			MaxFailures: 2,
			OpenTimeout: common.NewDuration(time.Minute),
		}
	})
	ctx := context.Background()

	for range 2 {
		_, err := client.BlockNumber(ctx)
		require.Error(t, err)
		require.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}

	_, err := client.BlockNumber(ctx)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Equal(t, int32(2), calls.Load())
}

func TestClient_CircuitBreakerIgnoresNodeErrors(t *testing.T) {
	srv, calls := newFakeNode(t, map[string]rpcHandler{
		MethodGetTransactionByHash: func(json.RawMessage) (any, *rpcErrorObject, int) {
			return nil, &rpcErrorObject{Code: CodeTransactionHashNotFound, Message: "Transaction hash not found"}, 0
		},
	})

	client := newTestClient(t, srv.URL, func(cfg *config.IndexerConfig) {
		cfg.CircuitBreaker = &config.CircuitBreakerConfig{Enabled: true, MaxFailures: 1}
	})

	for range 3 {
		_, err := client.GetTransactionByHash(context.Background(), "0x1")
		require.True(t, IsTransactionNotFoundError(err))
	}
	require.Equal(t, int32(3), calls.Load())
}

func TestToFilterArg(t *testing.T) {
	arg := toFilterArg(pkgrpc.EventFilter{FromBlock: 100, ToBlock: 200, ChunkSize: 10})

	require.Equal(t, map[string]uint64{"block_number": 100}, arg["from_block"])
	require.Equal(t, map[string]uint64{"block_number": 200}, arg["to_block"])
	require.Equal(t, 10, arg["chunk_size"])
	require.NotContains(t, arg, "address")
	require.NotContains(t, arg, "keys")
	require.NotContains(t, arg, "continuation_token")
}
