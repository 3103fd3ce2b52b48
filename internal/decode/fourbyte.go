package decode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/metrics"
	"github.com/sony/gobreaker"
)

// DefaultLookupURL is the public 4byte signature directory.
const DefaultLookupURL = "https://www.4byte.directory"

// Lookup resolves selectors against an external signature directory. An
// empty result with a nil error means the directory has no match.
type Lookup interface {
	LookupFunction(ctx context.Context, selector string) ([]string, error)
	LookupEvent(ctx context.Context, topic string) ([]string, error)
}

// FourByteClient queries a 4byte-compatible directory behind a circuit
// breaker.
type FourByteClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

type fourByteResponse struct {
	Count   int `json:"count"`
	Results []struct {
		ID            int64  `json:"id"`
		TextSignature string `json:"text_signature"`
		HexSignature  string `json:"hex_signature"`
	} `json:"results"`
}

func NewFourByteClient(baseURL string, timeout time.Duration, logger *slog.Logger) *FourByteClient {
	if baseURL == "" {
		baseURL = DefaultLookupURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger = logger.With("component", "signature_lookup")
	return &FourByteClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "signature-lookup",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				metrics.CircuitBreakerStateChanges.WithLabelValues(name, to.String()).Inc()
				logger.Warn("signature lookup breaker state changed", "from", from.String(), "to", to.String())
			},
		}),
	}
}

func (c *FourByteClient) LookupFunction(ctx context.Context, selector string) ([]string, error) {
	return c.lookup(ctx, "function", "/api/v1/signatures/", selector)
}

func (c *FourByteClient) LookupEvent(ctx context.Context, topic string) ([]string, error) {
	return c.lookup(ctx, "event", "/api/v1/event-signatures/", topic)
}

func (c *FourByteClient) lookup(ctx context.Context, kind, path, hexSig string) ([]string, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, path, hexSig)
	})
	if err != nil {
		result := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "breaker_open"
		}
		metrics.DecodeExternalLookups.WithLabelValues(kind, result).Inc()
		return nil, fmt.Errorf("lookup %s %s: %w", kind, hexSig, err)
	}

	sigs := out.([]string)
	result := "found"
	if len(sigs) == 0 {
		result = "not_found"
	}
	metrics.DecodeExternalLookups.WithLabelValues(kind, result).Inc()
	return sigs, nil
}

// fetch returns text signatures ordered by directory id, oldest first.
func (c *FourByteClient) fetch(ctx context.Context, path, hexSig string) ([]string, error) {
	u := c.baseURL + path + "?hex_signature=" + url.QueryEscape(hexSig)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return []string{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	var parsed fourByteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	sort.SliceStable(parsed.Results, func(i, j int) bool {
		return parsed.Results[i].ID < parsed.Results[j].ID
	})

	sigs := make([]string, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.TextSignature != "" {
			sigs = append(sigs, r.TextSignature)
		}
	}
	return sigs, nil
}
