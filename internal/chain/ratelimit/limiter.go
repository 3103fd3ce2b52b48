package ratelimit

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/emperorhan/multichain-ingestor/internal/metrics"
	"golang.org/x/time/rate"
)

// Limiter throttles outbound calls to one RPC endpoint. A nil Limiter
// never blocks.
type Limiter struct {
	bucket *rate.Limiter
	chain  string
}

// NewLimiter allows rps calls per second with the given burst. rps <= 0
// means unlimited.
func NewLimiter(rps float64, burst int, chain string) *Limiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Limiter{bucket: rate.NewLimiter(limit, burst), chain: chain}
}

// Wait takes one token, blocking until it is available or ctx ends.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.bucket.Allow() {
		return nil
	}
	metrics.RPCRateLimitWaits.WithLabelValues(l.chain).Inc()
	return l.bucket.Wait(ctx)
}

// Outcome labels of RPCCallsTotal.
const (
	OutcomeOK          = "ok"
	OutcomeCanceled    = "canceled"
	OutcomeTimeout     = "timeout"
	OutcomeRateLimited = "rate_limited"
	OutcomeReverted    = "reverted"
	OutcomeServerError = "server_error"
	OutcomeNetwork     = "network_error"
	OutcomeClientError = "client_error"
)

// Implemented by JSON-RPC error objects.
type codedError interface {
	error
	ErrorCode() int
}

// Implemented by non-200 transport responses.
type statusError interface {
	error
	StatusCode() int
}

// RecordRPCCall counts one call of method against chain.
func RecordRPCCall(chain, method string, err error) {
	metrics.RPCCallsTotal.WithLabelValues(chain, method, Outcome(err)).Inc()
}

// Outcome buckets a call error for metric labels.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if errors.Is(err, context.Canceled) {
		return OutcomeCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return OutcomeTimeout
	}

	var coded codedError
	if errors.As(err, &coded) {
		switch code := coded.ErrorCode(); {
		case code == 3, code == -32000 && strings.Contains(coded.Error(), "revert"):
			return OutcomeReverted
		case code == -32005:
			return OutcomeRateLimited
		case code == -32603, code <= -32000 && code >= -32099:
			return OutcomeServerError
		default:
			return OutcomeClientError
		}
	}

	var status statusError
	if errors.As(err, &status) {
		switch code := status.StatusCode(); {
		case code == http.StatusTooManyRequests:
			return OutcomeRateLimited
		case code >= 500:
			return OutcomeServerError
		default:
			return OutcomeClientError
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return OutcomeTimeout
		}
		return OutcomeNetwork
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return OutcomeNetwork
	}
	return OutcomeClientError
}
