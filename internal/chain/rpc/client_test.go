package rpc

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/chain/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(handler func(*http.Request) (*http.Response, error), opts ...Option) *Client {
	opts = append(opts, WithHTTPClient(&http.Client{Transport: roundTripFunc(handler)}))
	return NewClient("http://rpc.local", slog.Default(), opts...)
}

func jsonHTTPResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestCall_Success(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req Request
		require.NoError(t, json.Unmarshal(body, &req))

		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, "eth_chainId", req.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := json.Marshal(Response{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`"0x89"`)})
		require.NoError(t, err)
		return jsonHTTPResponse(http.StatusOK, string(raw)), nil
	})

	result, err := client.call(context.Background(), "eth_chainId", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `"0x89"`, string(result))
}

func TestCall_RPCError(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonHTTPResponse(http.StatusOK, `{"jsonrpc":"2.0","id":1,"error":{"code":-32005,"message":"limit exceeded"}}`), nil
	})

	_, err := client.call(context.Background(), "eth_getLogs", nil)
	require.Error(t, err)

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32005, rpcErr.Code)
	assert.Contains(t, err.Error(), "limit exceeded")
}

func TestCall_HTTPError(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonHTTPResponse(http.StatusBadGateway, "bad gateway"), nil
	})

	_, err := client.call(context.Background(), "eth_blockNumber", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http status 502")
}

func TestCall_RateLimiterCancelled(t *testing.T) {
	called := false
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		called = true
		return jsonHTTPResponse(http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":"0x1"}`), nil
	}, WithRateLimiter(ratelimit.NewLimiter(0.001, 1, "test")))

	_, err := client.call(context.Background(), "eth_blockNumber", nil)
	require.NoError(t, err)
	called = false

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = client.call(ctx, "eth_blockNumber", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait")
	assert.False(t, called, "request must not be sent while throttled")
}

func TestNewClient_Options(t *testing.T) {
	c := NewClient("http://a", nil, WithTimeout(5*time.Second), WithChainLabel("ethereum"))
	assert.Equal(t, "http://a", c.URL())
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.Equal(t, "ethereum", c.chain)
	assert.NotNil(t, c.logger)
}

func TestParseHexInt64(t *testing.T) {
	v, err := ParseHexInt64("0x10")
	require.NoError(t, err)
	assert.Equal(t, int64(16), v)

	v, err = ParseHexInt64("0x")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	_, err = ParseHexInt64("")
	require.Error(t, err)

	_, err = ParseHexInt64("0xzz")
	require.Error(t, err)
}

func TestParseHexBig(t *testing.T) {
	v, err := ParseHexBig("0xde0b6b3a7640000")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", v.String())

	v, err = ParseHexBig("0x")
	require.NoError(t, err)
	assert.Equal(t, "0", v.String())

	_, err = ParseHexBig("0xnothex")
	require.Error(t, err)
}

func TestHexToDecimal(t *testing.T) {
	assert.Equal(t, "0", HexToDecimal(""))
	assert.Equal(t, "0", HexToDecimal("0xzz"))
	assert.Equal(t, "255", HexToDecimal("0xff"))
	assert.Equal(t, "1000000000000000000", HexToDecimal("0xDE0B6B3A7640000"))
}

func TestCallBatch_ReordersByID(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var reqs []Request
		require.NoError(t, json.Unmarshal(body, &reqs))
		require.Len(t, reqs, 2)

		// answer out of order
		resp := []Response{
			{JSONRPC: "2.0", ID: reqs[1].ID, Result: json.RawMessage(`"second"`)},
			{JSONRPC: "2.0", ID: reqs[0].ID, Result: json.RawMessage(`"first"`)},
		}
		raw, err := json.Marshal(resp)
		require.NoError(t, err)
		return jsonHTTPResponse(http.StatusOK, string(raw)), nil
	})

	reqs := []Request{
		client.newRequest("eth_getTransactionByHash", []interface{}{"0xa"}),
		client.newRequest("eth_getTransactionByHash", []interface{}{"0xb"}),
	}
	out, err := client.callBatch(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.JSONEq(t, `"first"`, string(out[0].Result))
	assert.JSONEq(t, `"second"`, string(out[1].Result))
}

func TestCallBatch_MissingResponse(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonHTTPResponse(http.StatusOK, `[{"jsonrpc":"2.0","id":999,"result":"0x1"}]`), nil
	})

	reqs := []Request{client.newRequest("eth_getTransactionReceipt", []interface{}{"0xa"})}
	_, err := client.callBatch(context.Background(), reqs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing batch response")
}

func TestCallBatch_SingleErrorObject(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonHTTPResponse(http.StatusOK, `{"jsonrpc":"2.0","id":null,"error":{"code":-32600,"message":"batch not supported"}}`), nil
	})

	reqs := []Request{client.newRequest("eth_getTransactionReceipt", []interface{}{"0xa"})}
	_, err := client.callBatch(context.Background(), reqs)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32600, rpcErr.Code)
}
