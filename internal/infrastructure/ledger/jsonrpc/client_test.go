package jsonrpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
	"github.com/tdex-network/tdex-auctions/internal/infrastructure/ledger/jsonrpc"
)

type rpcRequest struct {
	ID     string            `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type handlerFunc func(req rpcRequest) (interface{}, *jsonrpc.RPCError)

// newGateway starts a fake gateway answering with the given handler.
func newGateway(t *testing.T, handler handlerFunc) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, rpcErr := handler(req)
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newLedger(t *testing.T, cfg jsonrpc.Config) ports.Ledger {
	ledger, err := jsonrpc.NewLedger(cfg)
	require.NoError(t, err)
	return ledger
}

func TestNewLedgerInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  jsonrpc.Config
		err  error
	}{
		{"missing endpoint", jsonrpc.Config{}, jsonrpc.ErrMissingEndpoint},
		{"invalid endpoint", jsonrpc.Config{Endpoint: "localhost:8545"}, jsonrpc.ErrInvalidEndpoint},
		{
			"negative rate limit",
			jsonrpc.Config{Endpoint: "http://localhost:8545", RateLimit: -1},
			jsonrpc.ErrInvalidRateLimit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jsonrpc.NewLedger(tt.cfg)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCalls(t *testing.T) {
	srv := newGateway(t, func(req rpcRequest) (interface{}, *jsonrpc.RPCError) {
		switch req.Method {
		case "ledger_blockNumber":
			return 1234, nil
		case "ledger_call":
			var params struct {
				Contract string   `json:"contract"`
				Method   string   `json:"method"`
				Args     []string `json:"args"`
			}
			json.Unmarshal(req.Params[0], &params)
			if params.Method != "auctions" || len(params.Args) != 1 || params.Args[0] != "7" {
				return nil, &jsonrpc.RPCError{Code: -32602, Message: "invalid params"}
			}
			return map[string]string{"seller": "0xabc", "highestBid": "1500000000000000000"}, nil
		case "ledger_sendTransaction":
			var params struct {
				Value decimal.Decimal `json:"value"`
			}
			json.Unmarshal(req.Params[0], &params)
			if !params.Value.Equal(decimal.NewFromInt(5)) {
				return nil, &jsonrpc.RPCError{Code: 3, Message: "execution reverted"}
			}
			return "0xtxhash", nil
		case "ledger_getLogs":
			return []map[string]interface{}{
				{
					"event":       "BidPlaced",
					"blockNumber": 10,
					"logIndex":    2,
					"txHash":      "0x01",
					"timestamp":   1700000000,
					"data":        map[string]string{"bidder": "0xdef", "amount": "42"},
				},
			}, nil
		default:
			return nil, &jsonrpc.RPCError{Code: -32601, Message: "method not found"}
		}
	})
	ledger := newLedger(t, jsonrpc.Config{Endpoint: srv.URL})
	ctx := context.Background()

	height, err := ledger.BlockNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1234), height)

	var out struct {
		Seller     string          `json:"seller"`
		HighestBid decimal.Decimal `json:"highestBid"`
	}
	err = ledger.Call(ctx, ports.ContractCall{
		Contract: "0xc0ffee", Method: "auctions", Args: []interface{}{"7"},
	}, &out)
	require.NoError(t, err)
	require.Equal(t, "0xabc", out.Seller)
	require.True(t, out.HighestBid.Equal(decimal.RequireFromString("1500000000000000000")))

	err = ledger.Call(ctx, ports.ContractCall{Contract: "0xc0ffee", Method: "auctions"}, &out)
	var rpcErr *jsonrpc.RPCError
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, -32602, rpcErr.Code)
	require.False(t, errors.Is(err, domain.ErrTransport))

	txHash, err := ledger.SendTransaction(ctx, ports.TxRequest{
		From: "0x1", Contract: "0xc0ffee", Method: "bid", Value: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	require.Equal(t, "0xtxhash", txHash)

	_, err = ledger.SendTransaction(ctx, ports.TxRequest{
		From: "0x1", Contract: "0xc0ffee", Method: "bid", Value: decimal.NewFromInt(1),
	})
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, "execution reverted", rpcErr.Message)

	logs, err := ledger.GetLogs(ctx, ports.LogFilter{
		Contract: "0xc0ffee", Event: "BidPlaced", FromBlock: 0, ToBlock: 100,
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, uint64(10), logs[0].BlockNumber)
	require.Equal(t, uint64(2), logs[0].LogIndex)
	require.JSONEq(t, `{"bidder":"0xdef","amount":"42"}`, string(logs[0].Data))
}

func TestTransportFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("http error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newLedger(t, jsonrpc.Config{Endpoint: srv.URL}).BlockNumber(ctx)
		require.ErrorIs(t, err, domain.ErrTransport)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := newLedger(t, jsonrpc.Config{Endpoint: url}).BlockNumber(ctx)
		require.ErrorIs(t, err, domain.ErrTransport)
	})

	t.Run("timeout is not an empty result", func(t *testing.T) {
		srv := newGateway(t, func(req rpcRequest) (interface{}, *jsonrpc.RPCError) {
			time.Sleep(200 * time.Millisecond)
			return nil, nil
		})

		var out map[string]string
		err := newLedger(t, jsonrpc.Config{
			Endpoint: srv.URL, RequestTimeout: 20 * time.Millisecond,
		}).Call(ctx, ports.ContractCall{Method: "auctions"}, &out)
		require.ErrorIs(t, err, domain.ErrTransport)
		require.Nil(t, out)
	})

	t.Run("mismatched id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"jsonrpc":"2.0","id":"other","result":1}`))
		}))
		defer srv.Close()

		_, err := newLedger(t, jsonrpc.Config{Endpoint: srv.URL}).BlockNumber(ctx)
		require.ErrorIs(t, err, domain.ErrTransport)
	})
}

func TestCircuitBreaker(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ledger := newLedger(t, jsonrpc.Config{Endpoint: srv.URL})
	for i := 0; i < 20; i++ {
		_, err := ledger.BlockNumber(context.Background())
		require.ErrorIs(t, err, domain.ErrTransport)
	}
	require.Less(t, int(atomic.LoadInt32(&hits)), 20)
}

func TestWaitForReceipt(t *testing.T) {
	var polls int32
	srv := newGateway(t, func(req rpcRequest) (interface{}, *jsonrpc.RPCError) {
		if atomic.AddInt32(&polls, 1) < 3 {
			return nil, nil
		}
		return map[string]interface{}{
			"txHash": "0xtx", "blockNumber": 99, "status": 0, "revertReason": "too late",
		}, nil
	})
	ledger := newLedger(t, jsonrpc.Config{
		Endpoint: srv.URL, ReceiptPollInterval: 5 * time.Millisecond,
	})

	receipt, err := ledger.WaitForReceipt(context.Background(), "0xtx")
	require.NoError(t, err)
	require.False(t, receipt.Success)
	require.Equal(t, "too late", receipt.RevertReason)
	require.Equal(t, uint64(99), receipt.BlockNumber)
	require.Equal(t, int32(3), atomic.LoadInt32(&polls))

	t.Run("context done", func(t *testing.T) {
		srv := newGateway(t, func(req rpcRequest) (interface{}, *jsonrpc.RPCError) {
			return nil, nil
		})
		ledger := newLedger(t, jsonrpc.Config{
			Endpoint: srv.URL, ReceiptPollInterval: 5 * time.Millisecond,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		_, err := ledger.WaitForReceipt(ctx, "0xtx")
		require.ErrorIs(t, err, domain.ErrTransport)
	})
}

func TestMetrics(t *testing.T) {
	srv := newGateway(t, func(req rpcRequest) (interface{}, *jsonrpc.RPCError) {
		return 1, nil
	})
	reg := prometheus.NewRegistry()
	ledger := newLedger(t, jsonrpc.Config{Endpoint: srv.URL, Registerer: reg})

	for i := 0; i < 3; i++ {
		_, err := ledger.BlockNumber(context.Background())
		require.NoError(t, err)
	}

	count, err := testutil.GatherAndCount(reg, "auctions_ledger_requests_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	_, err = jsonrpc.NewLedger(jsonrpc.Config{Endpoint: srv.URL, Registerer: reg})
	require.Error(t, err)
}
