package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/chain/ratelimit"
)

const defaultTimeout = 30 * time.Second

// Client is a JSON-RPC 2.0 client for one EVM endpoint.
type Client struct {
	httpClient *http.Client
	rpcURL     string
	chain      string
	requestID  atomic.Int64
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimiter throttles every outbound request through l.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithChainLabel sets the label used in metrics and logs.
func WithChainLabel(chain string) Option {
	return func(c *Client) { c.chain = chain }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

func NewClient(rpcURL string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		rpcURL:     rpcURL,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint this client talks to.
func (c *Client) URL() string { return c.rpcURL }

func (c *Client) newRequest(method string, params []interface{}) Request {
	if params == nil {
		params = []interface{}{}
	}
	return Request{
		JSONRPC: "2.0",
		ID:      int(c.requestID.Add(1)),
		Method:  method,
		Params:  params,
	}
}

func (c *Client) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	req := c.newRequest(method, params)
	respBody, err := c.post(ctx, req)
	if err != nil {
		ratelimit.RecordRPCCall(c.chain, method, err)
		return nil, err
	}

	var rpcResp Response
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		err = fmt.Errorf("unmarshal response: %w", err)
		ratelimit.RecordRPCCall(c.chain, method, err)
		return nil, err
	}
	if rpcResp.Error != nil {
		ratelimit.RecordRPCCall(c.chain, method, rpcResp.Error)
		return nil, rpcResp.Error
	}

	ratelimit.RecordRPCCall(c.chain, method, nil)
	return rpcResp.Result, nil
}

// callBatch sends requests as one JSON-RPC batch and returns the responses
// in request order. Per-item errors are left on the Response.
func (c *Client) callBatch(ctx context.Context, requests []Request) ([]Response, error) {
	if len(requests) == 0 {
		return []Response{}, nil
	}
	method := requests[0].Method + "#batch"

	respBody, err := c.post(ctx, requests)
	if err != nil {
		ratelimit.RecordRPCCall(c.chain, method, err)
		return nil, err
	}

	var raw []Response
	if err := json.Unmarshal(respBody, &raw); err != nil {
		// Some providers answer a batch with a single error object.
		var single Response
		if json.Unmarshal(respBody, &single) == nil && single.Error != nil {
			ratelimit.RecordRPCCall(c.chain, method, single.Error)
			return nil, single.Error
		}
		err = fmt.Errorf("unmarshal batch response: %w", err)
		ratelimit.RecordRPCCall(c.chain, method, err)
		return nil, err
	}

	byID := make(map[int]Response, len(raw))
	for _, r := range raw {
		byID[r.ID] = r
	}

	ordered := make([]Response, len(requests))
	for i, req := range requests {
		r, ok := byID[req.ID]
		if !ok {
			err := fmt.Errorf("missing batch response for id %d (%s)", req.ID, req.Method)
			ratelimit.RecordRPCCall(c.chain, method, err)
			return nil, err
		}
		ordered[i] = r
	}

	ratelimit.RecordRPCCall(c.chain, method, nil)
	return ordered, nil
}

func (c *Client) post(ctx context.Context, payload interface{}) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{Status: resp.StatusCode, Body: truncate(string(respBody), 256)}
	}
	return respBody, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
