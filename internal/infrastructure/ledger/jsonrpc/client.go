package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
	"golang.org/x/time/rate"
)

const (
	DefaultRequestTimeout      = 30 * time.Second
	DefaultReceiptPollInterval = 2 * time.Second

	// Circuit breaker tuning.
	maxNumOfFailingRequests = 10
	failingRatio            = 0.6
	openStateTimeout        = 30 * time.Second
)

var (
	// ErrMissingEndpoint ...
	ErrMissingEndpoint = errors.New("missing ledger gateway endpoint")
	// ErrInvalidEndpoint ...
	ErrInvalidEndpoint = errors.New("ledger gateway endpoint must be an http(s) url")
	// ErrInvalidRateLimit ...
	ErrInvalidRateLimit = errors.New("rate limit must not be negative")
)

// Config holds the settings of the gateway client. Zero values select the
// defaults, a zero RateLimit disables rate limiting.
type Config struct {
	Endpoint            string
	RequestTimeout      time.Duration
	RateLimit           float64
	RateBurst           int
	ReceiptPollInterval time.Duration
	// Registerer, if not nil, gets the client metrics registered.
	Registerer prometheus.Registerer
	HTTPClient *http.Client
}

func (c Config) validate() error {
	if c.Endpoint == "" {
		return ErrMissingEndpoint
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidEndpoint
	}
	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

type client struct {
	endpoint     string
	http         *http.Client
	timeout      time.Duration
	pollInterval time.Duration
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker
	metrics      *metrics
}

// NewLedger returns a ports.Ledger talking JSON-RPC over http with a ledger
// gateway. Every network failure, timeout or open circuit is reported as
// domain.ErrTransport. Requests are never retried.
func NewLedger(cfg Config) (ports.Ledger, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	pollInterval := cfg.ReceiptPollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultReceiptPollInterval
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	m, err := newMetrics(cfg.Registerer)
	if err != nil {
		return nil, fmt.Errorf("registering ledger metrics: %w", err)
	}

	return &client{
		endpoint:     cfg.Endpoint,
		http:         httpClient,
		timeout:      timeout,
		pollInterval: pollInterval,
		limiter:      rate.NewLimiter(limit, burst),
		breaker:      newCircuitBreaker(cfg.Endpoint),
		metrics:      m,
	}, nil
}

// newCircuitBreaker trips once more than maxNumOfFailingRequests requests
// were made and the ratio of failing ones reached failingRatio. Only
// transport failures count, errors returned by the gateway do not.
func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: openStateTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return int(counts.Requests) > maxNumOfFailingRequests && ratio >= failingRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{
				"endpoint": name,
				"from":     from.String(),
				"to":       to.String(),
			}).Warn("ledger circuit breaker changed state")
		},
	})
}

func (c *client) Call(ctx context.Context, call ports.ContractCall, out interface{}) error {
	return c.do(ctx, methodCall, []interface{}{callParams{
		Contract: call.Contract,
		Method:   call.Method,
		Args:     nonNilArgs(call.Args),
	}}, out)
}

func (c *client) SendTransaction(ctx context.Context, tx ports.TxRequest) (string, error) {
	var txHash string
	if err := c.do(ctx, methodSendTransaction, []interface{}{txParams{
		From:     tx.From,
		Contract: tx.Contract,
		Method:   tx.Method,
		Args:     nonNilArgs(tx.Args),
		Value:    tx.Value,
	}}, &txHash); err != nil {
		return "", err
	}
	if txHash == "" {
		return "", fmt.Errorf("%w: empty transaction hash", domain.ErrTransport)
	}
	return txHash, nil
}

func (c *client) GetLogs(ctx context.Context, filter ports.LogFilter) ([]ports.Log, error) {
	var logs []rpcLog
	if err := c.do(ctx, methodGetLogs, []interface{}{logFilterParams{
		Contract:  filter.Contract,
		Event:     filter.Event,
		FromBlock: filter.FromBlock,
		ToBlock:   filter.ToBlock,
		Topics:    filter.Topics,
	}}, &logs); err != nil {
		return nil, err
	}

	result := make([]ports.Log, 0, len(logs))
	for _, l := range logs {
		result = append(result, l.toPort())
	}
	return result, nil
}

// WaitForReceipt polls the gateway until the receipt is available. A
// failing poll ends the wait, the transaction outcome stays unknown.
func (c *client) WaitForReceipt(ctx context.Context, txHash string) (*ports.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var receipt *rpcReceipt
		if err := c.do(ctx, methodGetReceipt, []interface{}{txHash}, &receipt); err != nil {
			return nil, err
		}
		if receipt != nil {
			return receipt.toPort(), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf(
				"%w: waiting for receipt of %s: %s", domain.ErrTransport, txHash, ctx.Err(),
			)
		case <-ticker.C:
		}
	}
}

func (c *client) BlockNumber(ctx context.Context) (uint64, error) {
	var height uint64
	if err := c.do(ctx, methodBlockNumber, nil, &height); err != nil {
		return 0, err
	}
	return height, nil
}

func (c *client) do(
	ctx context.Context, method string, params []interface{}, out interface{},
) error {
	started := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.observe(method, outcomeTransport, started)
		return fmt.Errorf("%w: %s: %s", domain.ErrTransport, method, err)
	}

	if params == nil {
		params = []interface{}{}
	}
	id := uuid.New().String()
	body, err := json.Marshal(request{
		JSONRPC: jsonrpcVersion,
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, id, body)
	})
	if err != nil {
		c.metrics.observe(method, outcomeTransport, started)
		return fmt.Errorf("%w: %s: %s", domain.ErrTransport, method, err)
	}

	resp := res.(*response)
	if resp.Err != nil {
		c.metrics.observe(method, outcomeRPCError, started)
		return fmt.Errorf("%s: %w", method, resp.Err)
	}
	c.metrics.observe(method, outcomeOK, started)

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}

func (c *client) post(ctx context.Context, id string, body []byte) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.endpoint, bytes.NewReader(body),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	rs, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer rs.Body.Close()

	buf, err := io.ReadAll(rs.Body)
	if err != nil {
		return nil, err
	}
	if rs.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", rs.StatusCode, bytes.TrimSpace(buf))
	}

	resp := &response{}
	if err := json.Unmarshal(buf, resp); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	if resp.ID != id {
		return nil, fmt.Errorf("response id %q does not match request id %q", resp.ID, id)
	}
	return resp, nil
}

func nonNilArgs(args []interface{}) []interface{} {
	if args == nil {
		return []interface{}{}
	}
	return args
}
