package jsonrpc

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
)

const jsonrpcVersion = "2.0"

// Gateway methods. The gateway signs transactions with the keys it manages
// and exposes the contracts through their ABI method and event names.
const (
	methodCall            = "ledger_call"
	methodSendTransaction = "ledger_sendTransaction"
	methodGetLogs         = "ledger_getLogs"
	methodGetReceipt      = "ledger_getReceipt"
	methodBlockNumber     = "ledger_blockNumber"
)

type request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      string        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Err     *RPCError       `json:"error"`
}

// RPCError is an error returned by the gateway for a request it did process,
// like a call to an unknown method or a transaction rejected on simulation.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type callParams struct {
	Contract string        `json:"contract"`
	Method   string        `json:"method"`
	Args     []interface{} `json:"args"`
}

type txParams struct {
	From     string          `json:"from"`
	Contract string          `json:"contract"`
	Method   string          `json:"method"`
	Args     []interface{}   `json:"args"`
	Value    decimal.Decimal `json:"value"`
}

type logFilterParams struct {
	Contract  string            `json:"contract"`
	Event     string            `json:"event"`
	FromBlock uint64            `json:"fromBlock"`
	ToBlock   uint64            `json:"toBlock"`
	Topics    map[string]string `json:"topics,omitempty"`
}

type rpcLog struct {
	Contract    string          `json:"contract"`
	Event       string          `json:"event"`
	BlockNumber uint64          `json:"blockNumber"`
	LogIndex    uint64          `json:"logIndex"`
	TxHash      string          `json:"txHash"`
	Timestamp   int64           `json:"timestamp"`
	Data        json.RawMessage `json:"data"`
}

func (l rpcLog) toPort() ports.Log {
	return ports.Log{
		Contract:    l.Contract,
		Event:       l.Event,
		BlockNumber: l.BlockNumber,
		LogIndex:    l.LogIndex,
		TxHash:      l.TxHash,
		Timestamp:   l.Timestamp,
		Data:        l.Data,
	}
}

type rpcReceipt struct {
	TxHash       string `json:"txHash"`
	BlockNumber  uint64 `json:"blockNumber"`
	Status       uint64 `json:"status"`
	RevertReason string `json:"revertReason"`
}

func (r rpcReceipt) toPort() *ports.Receipt {
	return &ports.Receipt{
		TxHash:       r.TxHash,
		BlockNumber:  r.BlockNumber,
		Success:      r.Status == 1,
		RevertReason: r.RevertReason,
	}
}
