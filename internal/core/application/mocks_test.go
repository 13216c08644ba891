package application_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
)

var (
	ctx = context.Background()

	sellerAddr = testAddress("5e11e5")
	bidderAddr = testAddress("b1dde5")
	otherAddr  = testAddress("07e5")
	nftAddr    = testAddress("4f7")
	tokenAddr  = testAddress("70ce")

	contracts = map[domain.ProtocolTag]string{
		domain.ProtocolEnglish:     testAddress("e1"),
		domain.ProtocolLinear:      testAddress("d1"),
		domain.ProtocolExponential: testAddress("d2"),
		domain.ProtocolLogarithmic: testAddress("d3"),
		domain.ProtocolAllPay:      testAddress("a1"),
		domain.ProtocolVickrey:     testAddress("f1"),
	}
)

func testAddress(suffix string) string {
	return "0x" + strings.Repeat("0", 40-len(suffix)) + suffix
}

// **** Ledger ****

type mockLedger struct {
	mock.Mock
}

// Call matches on contract, method and the call args. The returned payload
// goes through a json round trip into out, like a real gateway response.
func (m *mockLedger) Call(
	ctx context.Context, call ports.ContractCall, out interface{},
) error {
	params := append([]interface{}{call.Contract, call.Method}, call.Args...)
	args := m.Called(params...)

	if a := args.Get(0); a != nil {
		buf, err := json.Marshal(a)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(buf, out); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *mockLedger) SendTransaction(
	ctx context.Context, tx ports.TxRequest,
) (string, error) {
	args := m.Called(tx.Method, tx)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

func (m *mockLedger) GetLogs(
	ctx context.Context, filter ports.LogFilter,
) ([]ports.Log, error) {
	args := m.Called(filter.Contract, filter.Event, filter.FromBlock, filter.ToBlock)

	var res []ports.Log
	if a := args.Get(0); a != nil {
		res = a.([]ports.Log)
	}
	return res, args.Error(1)
}

func (m *mockLedger) WaitForReceipt(
	ctx context.Context, txHash string,
) (*ports.Receipt, error) {
	args := m.Called(txHash)

	var res *ports.Receipt
	if a := args.Get(0); a != nil {
		res = a.(*ports.Receipt)
	}
	return res, args.Error(1)
}

func (m *mockLedger) BlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called()

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

// **** Clock ****

type mockClock struct {
	now time.Time
}

func (c *mockClock) Now() time.Time {
	return c.now
}

func (c *mockClock) set(secs int64) {
	c.now = time.Unix(secs, 0)
}

// **** Fixtures ****

func idArg(id uint64) string {
	return fmt.Sprint(id)
}

func transportErr() error {
	return fmt.Errorf("%w: connection reset", domain.ErrTransport)
}

func confirmed(txHash string) *ports.Receipt {
	return &ports.Receipt{TxHash: txHash, BlockNumber: 42, Success: true}
}

func eventLog(
	tag domain.ProtocolTag, event string, block, index uint64, fields map[string]string,
) ports.Log {
	data, _ := json.Marshal(fields)
	return ports.Log{
		Contract:    contracts[tag],
		Event:       event,
		BlockNumber: block,
		LogIndex:    index,
		TxHash:      fmt.Sprintf("0x%04x%04x", block, index),
		Timestamp:   1000 + int64(block),
		Data:        data,
	}
}

func englishPayload() map[string]interface{} {
	return map[string]interface{}{
		"seller":        sellerAddr,
		"nft":           nftAddr,
		"tokenId":       "7",
		"startingBid":   "100",
		"highestBid":    "0",
		"highestBidder": domain.ZeroAddress,
		"startAt":       1000,
		"endAt":         2000,
		"minIncrement":  "10",
		"ended":         false,
	}
}

func allPayPayload() map[string]interface{} {
	return map[string]interface{}{
		"auctioneer":      sellerAddr,
		"token":           tokenAddr,
		"tokenAmount":     "5000",
		"reservePrice":    "1000",
		"highestBid":      "10000",
		"highestBidder":   otherAddr,
		"startTime":       1000,
		"endTime":         2000,
		"bidIncrementBps": "500",
		"claimed":         false,
	}
}

func dutchPayload() map[string]interface{} {
	return map[string]interface{}{
		"seller":       sellerAddr,
		"nft":          nftAddr,
		"tokenId":      "9",
		"startPrice":   "1000",
		"reservePrice": "200",
		"startTime":    1000,
		"duration":     100,
		"decayRateWad": "50000000000000000",
		"sold":         false,
		"buyer":        domain.ZeroAddress,
		"soldPrice":    "0",
	}
}

func vickreyPayload() map[string]interface{} {
	return map[string]interface{}{
		"auctioneer":       sellerAddr,
		"nft":              nftAddr,
		"tokenId":          "11",
		"reservePrice":     "1000000000000000000",
		"startTime":        1000,
		"commitEnd":        2000,
		"revealEnd":        3000,
		"commitFee":        "10000000000000000",
		"highestBid":       "0",
		"secondHighestBid": "0",
		"highestBidder":    domain.ZeroAddress,
		"revealed":         0,
		"ended":            false,
	}
}

// zeroPayload is what the contracts return for unknown ids.
func zeroPayload(auctioneerField string) map[string]interface{} {
	return map[string]interface{}{auctioneerField: domain.ZeroAddress}
}
