package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/emperorhan/multichain-ingestor/internal/metrics"
)

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(10, 5, "ethereum")
	assert.InDelta(t, 10.0, float64(l.bucket.Limit()), 0.001)
	assert.Equal(t, 5, l.bucket.Burst())

	unlimited := NewLimiter(0, 0, "polygon")
	assert.Equal(t, rate.Inf, unlimited.bucket.Limit())
	assert.Equal(t, 1, unlimited.bucket.Burst())
}

func TestLimiter_NilNeverBlocks(t *testing.T) {
	var l *Limiter
	require.NoError(t, l.Wait(context.Background()))
}

func TestLimiter_BurstIsImmediate(t *testing.T) {
	l := NewLimiter(1, 3, "bsc-burst")
	before := testutil.ToFloat64(metrics.RPCRateLimitWaits.WithLabelValues("bsc-burst"))

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.Equal(t, before, testutil.ToFloat64(metrics.RPCRateLimitWaits.WithLabelValues("bsc-burst")))
}

func TestLimiter_WaitsWhenExhausted(t *testing.T) {
	l := NewLimiter(10, 1, "bsc-wait")
	require.NoError(t, l.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RPCRateLimitWaits.WithLabelValues("bsc-wait")))
}

func TestLimiter_CanceledContext(t *testing.T) {
	l := NewLimiter(0.1, 1, "ethereum")
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}

type fakeRPCError struct{ code int }

func (e fakeRPCError) Error() string  { return fmt.Sprintf("rpc error %d", e.code) }
func (e fakeRPCError) ErrorCode() int { return e.code }

type revertError struct{}

func (revertError) Error() string  { return "rpc error -32000: execution reverted" }
func (revertError) ErrorCode() int { return -32000 }

type fakeStatusError struct{ status int }

func (e fakeStatusError) Error() string   { return fmt.Sprintf("http status %d", e.status) }
func (e fakeStatusError) StatusCode() int { return e.status }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, OutcomeOK},
		{"canceled", fmt.Errorf("call: %w", context.Canceled), OutcomeCanceled},
		{"deadline", context.DeadlineExceeded, OutcomeTimeout},
		{"revert", fakeRPCError{3}, OutcomeReverted},
		{"plain revert", revertError{}, OutcomeReverted},
		{"limit exceeded", fakeRPCError{-32005}, OutcomeRateLimited},
		{"internal", fakeRPCError{-32603}, OutcomeServerError},
		{"server range", fmt.Errorf("get logs: %w", fakeRPCError{-32000}), OutcomeServerError},
		{"invalid params", fakeRPCError{-32602}, OutcomeClientError},
		{"http 429", fakeStatusError{429}, OutcomeRateLimited},
		{"http 502", fakeStatusError{502}, OutcomeServerError},
		{"http 404", fakeStatusError{404}, OutcomeClientError},
		{"net timeout", &net.OpError{Op: "read", Err: timeoutErr{}}, OutcomeTimeout},
		{"refused", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, OutcomeNetwork},
		{"eof", fmt.Errorf("read response: %w", io.ErrUnexpectedEOF), OutcomeNetwork},
		{"other", errors.New("unmarshal response"), OutcomeClientError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}
