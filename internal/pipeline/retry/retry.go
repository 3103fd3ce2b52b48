package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/chain/rpc"
	"github.com/lib/pq"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Class string

const (
	ClassTerminal  Class = "terminal"
	ClassTransient Class = "transient"
)

// Decision is the outcome of Classify. Reason is a stable log label.
type Decision struct {
	Class  Class
	Reason string
}

func (d Decision) IsTransient() bool { return d.Class == ClassTransient }

func transient(reason string) Decision { return Decision{Class: ClassTransient, Reason: reason} }

func terminal(reason string) Decision { return Decision{Class: ClassTerminal, Reason: reason} }

type markedError struct {
	error
	decision Decision
}

func (e *markedError) Unwrap() error { return e.error }

// Transient forces err to be retried regardless of its cause.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &markedError{error: err, decision: transient("explicit_transient")}
}

// Terminal stops retries of err regardless of its cause.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &markedError{error: err, decision: terminal("explicit_terminal")}
}

// A rule inspects err and reports a decision when it recognises the cause.
type rule func(err error) (Decision, bool)

// Rules run in order; typed causes win over message matching.
var rules = []rule{
	markedRule,
	contextRule,
	grpcRule,
	jsonRPCRule,
	httpStatusRule,
	netRule,
	sqlStateRule,
	messageRule,
}

// Classify decides whether err is worth retrying. Unknown errors are terminal.
func Classify(err error) Decision {
	if err == nil {
		return terminal("nil_error")
	}
	for _, r := range rules {
		if d, ok := r(err); ok {
			return d
		}
	}
	return terminal("unknown_terminal_default")
}

func markedRule(err error) (Decision, bool) {
	var m *markedError
	if errors.As(err, &m) {
		return m.decision, true
	}
	return Decision{}, false
}

func contextRule(err error) (Decision, bool) {
	switch {
	case errors.Is(err, context.Canceled):
		return terminal("context_canceled"), true
	case errors.Is(err, context.DeadlineExceeded):
		return transient("context_deadline_exceeded"), true
	}
	return Decision{}, false
}

func grpcRule(err error) (Decision, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return Decision{}, false
	}
	reason := "grpc_" + strings.ToLower(st.Code().String())
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Internal:
		return transient(reason), true
	}
	return terminal(reason), true
}

// jsonRPCRule treats the server error range, internal errors and provider
// rate limits (-32005) as transient.
func jsonRPCRule(err error) (Decision, bool) {
	var rpcErr *rpc.RPCError
	if !errors.As(err, &rpcErr) {
		return Decision{}, false
	}
	switch code := rpcErr.Code; {
	case code == -32603, code == -32005:
		return transient("jsonrpc_server_transient"), true
	case code <= -32000 && code >= -32099:
		if strings.Contains(strings.ToLower(rpcErr.Message), "revert") {
			return terminal("jsonrpc_reverted"), true
		}
		return transient("jsonrpc_server_range"), true
	}
	return terminal("jsonrpc_terminal"), true
}

func httpStatusRule(err error) (Decision, bool) {
	var httpErr *rpc.HTTPStatusError
	if !errors.As(err, &httpErr) {
		return Decision{}, false
	}
	switch code := httpErr.Status; {
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return transient("http_throttled"), true
	case code >= 500:
		return transient("http_server_error"), true
	}
	return terminal("http_client_error"), true
}

func netRule(err error) (Decision, bool) {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return transient("net_timeout"), true
	}
	return Decision{}, false
}

// sqlStateRule treats connection loss, admin shutdown, serialization
// failures and deadlocks as transient. Constraint and syntax errors are not.
func sqlStateRule(err error) (Decision, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return Decision{}, false
	}
	code := string(pqErr.Code)
	switch {
	case pqErr.Code.Class() == "08":
		return transient("sqlstate_connection"), true
	case code == "57P01", code == "57P02", code == "57P03":
		return transient("sqlstate_shutdown"), true
	case code == "40001", code == "40P01":
		return transient("sqlstate_concurrency"), true
	case code == "53300":
		return transient("sqlstate_too_many_connections"), true
	}
	return terminal("sqlstate_" + code), true
}

func messageRule(err error) (Decision, bool) {
	msg := strings.ToLower(err.Error())
	for _, token := range terminalMessageTokens {
		if strings.Contains(msg, token) {
			return terminal("message_terminal"), true
		}
	}
	for _, token := range transientMessageTokens {
		if strings.Contains(msg, token) {
			return transient("message_transient"), true
		}
	}
	return Decision{}, false
}

// Providers that wrap errors in plain strings.
var transientMessageTokens = []string{
	"timeout",
	"timed out",
	"temporar",
	"unavailable",
	"connection reset",
	"connection refused",
	"broken pipe",
	"too many requests",
	"rate limit",
	"http status 429",
	"http status 502",
	"http status 503",
	"http status 504",
	"server closed idle connection",
	"bad connection",
	"query returned more than",
	"block range",
	"range too large",
	"too many results",
}

var terminalMessageTokens = []string{
	"invalid argument",
	"invalid params",
	"method not found",
	"parse error",
	"execution reverted",
	"insufficient funds",
	"not found",
}

// Backoff doubles from Initial up to Max.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
}

// Delay returns the wait before the given 1-based attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	base, max := b.Initial, b.Max
	if base <= 0 {
		base = time.Second
	}
	if max < base {
		max = base
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay >= max/2 {
			return max
		}
		delay *= 2
	}
	return delay
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn until it succeeds, returns a terminal error, or maxAttempts is
// reached. sleepFn defaults to Sleep.
func Do(ctx context.Context, maxAttempts int, b Backoff, sleepFn func(context.Context, time.Duration) error, fn func(context.Context) error) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if sleepFn == nil {
		sleepFn = Sleep
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !Classify(err).IsTransient() || attempt == maxAttempts {
			return err
		}
		if serr := sleepFn(ctx, b.Delay(attempt)); serr != nil {
			return serr
		}
	}
	return err
}
