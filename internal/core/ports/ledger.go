package ports

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ContractCall is a read-only call to a contract method.
type ContractCall struct {
	Contract string
	Method   string
	Args     []interface{}
}

// TxRequest is a state-changing call to a contract method, signed and sent by
// the ledger gateway on behalf of From. Value is the native amount attached.
type TxRequest struct {
	From     string
	Contract string
	Method   string
	Args     []interface{}
	Value    decimal.Decimal
}

// LogFilter selects the events emitted by a contract within a block range.
// Topics are matched as equality on indexed event fields.
type LogFilter struct {
	Contract  string
	Event     string
	FromBlock uint64
	ToBlock   uint64
	Topics    map[string]string
}

// Log is an event emitted by a contract. Data holds the decoded event fields.
type Log struct {
	Contract    string
	Event       string
	BlockNumber uint64
	LogIndex    uint64
	TxHash      string
	Timestamp   int64
	Data        json.RawMessage
}

// Receipt is the outcome of an included transaction.
type Receipt struct {
	TxHash       string
	BlockNumber  uint64
	Success      bool
	RevertReason string
}

// Ledger is the read/write transport towards the chain where the auction
// contracts live. Every method blocks until the request settles. Transport
// failures and timeouts must be reported as domain.ErrTransport, never as
// empty results.
type Ledger interface {
	// Call reads contract state and decodes the result into out.
	Call(ctx context.Context, call ContractCall, out interface{}) error
	// SendTransaction submits a transaction and returns its hash. It does not
	// wait for the transaction to be included.
	SendTransaction(ctx context.Context, tx TxRequest) (string, error)
	// GetLogs returns the events matching the filter, oldest first.
	GetLogs(ctx context.Context, filter LogFilter) ([]Log, error)
	// WaitForReceipt blocks until the transaction is included or ctx is done.
	WaitForReceipt(ctx context.Context, txHash string) (*Receipt, error)
	// BlockNumber returns the height of the chain tip.
	BlockNumber(ctx context.Context) (uint64, error)
}
