package endpointpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/chain"
	"github.com/emperorhan/multichain-ingestor/internal/circuitbreaker"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/emperorhan/multichain-ingestor/internal/metrics"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoEndpoints is returned by New when an active chain has no RPC URLs.
	ErrNoEndpoints = errors.New("no rpc endpoints configured")
	// ErrUnknownChain is returned for chain ids the pool was not built with.
	ErrUnknownChain = errors.New("unknown chain")
)

// ClientFactory builds the RPC client for one endpoint of a chain.
type ClientFactory func(c model.Chain, rpcURL string) chain.Client

// Endpoint is one RPC provider of a chain.
type Endpoint struct {
	Index   int
	URL     string
	Client  chain.Client
	healthy atomic.Bool
	breaker *circuitbreaker.Breaker
}

// Healthy reports whether the last probe succeeded and the breaker is not open.
func (e *Endpoint) Healthy() bool {
	return e.healthy.Load() && !e.breaker.IsOpen()
}

// RecordSuccess feeds a successful call into the endpoint's breaker.
func (e *Endpoint) RecordSuccess() {
	e.breaker.RecordSuccess()
}

type chainEndpoints struct {
	chain     model.Chain
	endpoints []*Endpoint

	mu     sync.Mutex
	cursor int
}

// selectLocked returns the first healthy endpoint at or after the cursor,
// falling back to index 0 when none is healthy.
func (c *chainEndpoints) selectLocked() *Endpoint {
	n := len(c.endpoints)
	for i := 0; i < n; i++ {
		ep := c.endpoints[(c.cursor+i)%n]
		if ep.Healthy() {
			return ep
		}
	}
	return c.endpoints[0]
}

type Config struct {
	HealthInterval          time.Duration
	ProbeTimeout            time.Duration
	BreakerFailureThreshold int
	BreakerOpenTimeout      time.Duration
}

func (c Config) withDefaults() Config {
	if c.HealthInterval <= 0 {
		c.HealthInterval = 30 * time.Second
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 10 * time.Second
	}
	if c.BreakerFailureThreshold <= 0 {
		c.BreakerFailureThreshold = 3
	}
	if c.BreakerOpenTimeout <= 0 {
		c.BreakerOpenTimeout = time.Minute
	}
	return c
}

// Pool serves a current endpoint per chain with failover on reported errors
// and a background health check.
type Pool struct {
	cfg    Config
	chains map[model.ChainID]*chainEndpoints
	logger *slog.Logger
}

// New builds endpoints for every active chain. An active chain without
// endpoints is a configuration error.
func New(chains []model.Chain, factory ClientFactory, cfg Config, logger *slog.Logger) (*Pool, error) {
	cfg = cfg.withDefaults()
	p := &Pool{
		cfg:    cfg,
		chains: make(map[model.ChainID]*chainEndpoints, len(chains)),
		logger: logger.With("component", "endpoint_pool"),
	}

	for _, c := range chains {
		if !c.Active {
			continue
		}
		if len(c.RPCURLs) == 0 {
			return nil, fmt.Errorf("chain %s: %w", c.Label(), ErrNoEndpoints)
		}
		ce := &chainEndpoints{chain: c, endpoints: make([]*Endpoint, 0, len(c.RPCURLs))}
		for i, u := range c.RPCURLs {
			ep := &Endpoint{
				Index:  i,
				URL:    u,
				Client: factory(c, u),
				breaker: circuitbreaker.New(circuitbreaker.Config{
					Name:             c.Label() + "-" + strconv.Itoa(i),
					FailureThreshold: cfg.BreakerFailureThreshold,
					OpenTimeout:      cfg.BreakerOpenTimeout,
					OnStateChange:    p.logBreakerChange,
				}),
			}
			ep.healthy.Store(true)
			ce.endpoints = append(ce.endpoints, ep)
		}
		p.chains[c.ID] = ce
	}
	return p, nil
}

// GetEndpoint returns the current best endpoint for chainID. It only fails
// for chains the pool does not know.
func (p *Pool) GetEndpoint(chainID model.ChainID) (*Endpoint, error) {
	ce, ok := p.chains[chainID]
	if !ok {
		return nil, fmt.Errorf("chain %d: %w", chainID, ErrUnknownChain)
	}
	ce.mu.Lock()
	defer ce.mu.Unlock()
	return ce.selectLocked(), nil
}

// GetHealthyEndpoints returns up to n healthy endpoints in rotation order,
// or the first endpoint alone when none is healthy.
func (p *Pool) GetHealthyEndpoints(chainID model.ChainID, n int) ([]*Endpoint, error) {
	ce, ok := p.chains[chainID]
	if !ok {
		return nil, fmt.Errorf("chain %d: %w", chainID, ErrUnknownChain)
	}
	if n <= 0 {
		return nil, nil
	}

	ce.mu.Lock()
	defer ce.mu.Unlock()

	total := len(ce.endpoints)
	out := make([]*Endpoint, 0, min(n, total))
	for i := 0; i < total && len(out) < n; i++ {
		ep := ce.endpoints[(ce.cursor+i)%total]
		if ep.Healthy() {
			out = append(out, ep)
		}
	}
	if len(out) == 0 {
		out = append(out, ce.endpoints[0])
	}
	return out, nil
}

// ReportFailure charges the current endpoint with a failure and moves the
// cursor past it.
func (p *Pool) ReportFailure(chainID model.ChainID) {
	ce, ok := p.chains[chainID]
	if !ok {
		return
	}

	ce.mu.Lock()
	failed := ce.selectLocked()
	failed.breaker.RecordFailure()
	ce.cursor = (failed.Index + 1) % len(ce.endpoints)
	next := ce.selectLocked()
	ce.mu.Unlock()

	metrics.EndpointFailoversTotal.WithLabelValues(ce.chain.Label()).Inc()
	p.logger.Warn("rotating rpc endpoint after failure",
		"chain", ce.chain.Label(),
		"from", redactURL(failed.URL),
		"to", redactURL(next.URL),
	)
}

// EndpointStatus is a point-in-time view of one endpoint. URL credentials
// are redacted.
type EndpointStatus struct {
	Index   int    `json:"index"`
	URL     string `json:"url"`
	Healthy bool   `json:"healthy"`
	Current bool   `json:"current"`
}

// Status reports every endpoint of chainID in configured order, marking the
// one GetEndpoint would hand out now.
func (p *Pool) Status(chainID model.ChainID) []EndpointStatus {
	ce, ok := p.chains[chainID]
	if !ok {
		return nil
	}
	ce.mu.Lock()
	current := ce.selectLocked()
	ce.mu.Unlock()

	out := make([]EndpointStatus, len(ce.endpoints))
	for i, ep := range ce.endpoints {
		out[i] = EndpointStatus{
			Index:   ep.Index,
			URL:     redactURL(ep.URL),
			Healthy: ep.Healthy(),
			Current: ep == current,
		}
	}
	return out
}

// Run probes every endpoint immediately and then every HealthInterval until
// ctx is done.
func (p *Pool) Run(ctx context.Context) error {
	p.logger.Info("endpoint health monitor started", "interval", p.cfg.HealthInterval)

	ticker := time.NewTicker(p.cfg.HealthInterval)
	defer ticker.Stop()

	p.CheckHealth(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("endpoint health monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			p.CheckHealth(ctx)
		}
	}
}

// CheckHealth probes all endpoints of all chains concurrently with a
// block-height call.
func (p *Pool) CheckHealth(ctx context.Context) {
	var g errgroup.Group
	for _, ce := range p.chains {
		for _, ep := range ce.endpoints {
			g.Go(func() error {
				p.probe(ctx, ce.chain, ep)
				return nil
			})
		}
	}
	_ = g.Wait()
}

func (p *Pool) probe(ctx context.Context, c model.Chain, ep *Endpoint) {
	probeCtx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout)
	defer cancel()

	start := time.Now()
	height, err := ep.Client.GetBlockNumber(probeCtx)
	label := strconv.Itoa(ep.Index)
	if err != nil {
		ep.healthy.Store(false)
		metrics.EndpointHealthy.WithLabelValues(c.Label(), label).Set(0)
		p.logger.Warn("rpc endpoint health check failed",
			"chain", c.Label(),
			"endpoint", redactURL(ep.URL),
			"latency", time.Since(start),
			"error", err,
		)
		return
	}

	if !ep.healthy.Swap(true) {
		p.logger.Info("rpc endpoint recovered", "chain", c.Label(), "endpoint", redactURL(ep.URL), "height", height)
	}
	ep.breaker.Reset()
	metrics.EndpointHealthy.WithLabelValues(c.Label(), label).Set(1)
}

func (p *Pool) logBreakerChange(name string, from, to circuitbreaker.State) {
	p.logger.Warn("endpoint circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
}

// redactURL strips path, query and credentials from raw.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "invalid-url"
	}
	return u.Scheme + "://" + u.Host
}
