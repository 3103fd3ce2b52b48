package pipeline

import (
	"sort"
	"sync"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/metrics"
)

// HealthStatus is the coarse state of one chain's ingestion.
type HealthStatus string

const (
	HealthStatusUnknown   HealthStatus = "UNKNOWN"
	HealthStatusHealthy   HealthStatus = "HEALTHY"
	HealthStatusDegraded  HealthStatus = "DEGRADED"
	HealthStatusUnhealthy HealthStatus = "UNHEALTHY"

	// DefaultUnhealthyThreshold is the number of consecutive failures
	// before a chain is considered unhealthy.
	DefaultUnhealthyThreshold = 3

	// DefaultDegradedLatencyThreshold is the P95 latency above which a
	// healthy chain is reported degraded.
	DefaultDegradedLatencyThreshold = 5 * time.Second

	latencyWindowSize = 10
)

var statusGaugeValue = map[HealthStatus]float64{
	HealthStatusUnknown:   0,
	HealthStatusHealthy:   1,
	HealthStatusDegraded:  2,
	HealthStatusUnhealthy: 3,
}

// ChainHealth tracks one chain's consecutive failures and recent latencies.
type ChainHealth struct {
	mu                       sync.RWMutex
	chain                    string
	status                   HealthStatus
	consecutiveFailures      int
	lastSuccessAt            *time.Time
	lastFailureAt            *time.Time
	unhealthyThreshold       int
	recentLatencies          []time.Duration
	degradedLatencyThreshold time.Duration
}

func NewChainHealth(chain string, unhealthyThreshold int) *ChainHealth {
	if unhealthyThreshold <= 0 {
		unhealthyThreshold = DefaultUnhealthyThreshold
	}
	return &ChainHealth{
		chain:                    chain,
		status:                   HealthStatusUnknown,
		unhealthyThreshold:       unhealthyThreshold,
		recentLatencies:          make([]time.Duration, 0, latencyWindowSize),
		degradedLatencyThreshold: DefaultDegradedLatencyThreshold,
	}
}

// RecordSuccess resets the failure counter. It returns true when the chain
// recovers from UNHEALTHY.
func (h *ChainHealth) RecordSuccess() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := time.Now()
	wasUnhealthy := h.status == HealthStatusUnhealthy
	h.consecutiveFailures = 0
	h.lastSuccessAt = &now
	if h.isLatencyDegraded() {
		h.setStatus(HealthStatusDegraded)
	} else {
		h.setStatus(HealthStatusHealthy)
	}
	metrics.PipelineConsecutiveFailures.WithLabelValues(h.chain).Set(0)
	return wasUnhealthy
}

// RecordFailure increments the failure counter and returns the new count
// and whether this call made the chain UNHEALTHY.
func (h *ChainHealth) RecordFailure() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := time.Now()
	h.consecutiveFailures++
	h.lastFailureAt = &now
	metrics.PipelineConsecutiveFailures.WithLabelValues(h.chain).Set(float64(h.consecutiveFailures))
	if h.consecutiveFailures >= h.unhealthyThreshold && h.status != HealthStatusUnhealthy {
		h.setStatus(HealthStatusUnhealthy)
		return h.consecutiveFailures, true
	}
	return h.consecutiveFailures, false
}

// ConsecutiveFailures returns the current failure streak.
func (h *ChainHealth) ConsecutiveFailures() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.consecutiveFailures
}

// RecordLatency records a processing latency and updates degraded state.
func (h *ChainHealth) RecordLatency(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.recentLatencies) >= latencyWindowSize {
		h.recentLatencies = h.recentLatencies[1:]
	}
	h.recentLatencies = append(h.recentLatencies, d)

	if h.status == HealthStatusHealthy || h.status == HealthStatusDegraded {
		if h.isLatencyDegraded() {
			h.setStatus(HealthStatusDegraded)
		} else if h.status == HealthStatusDegraded && h.consecutiveFailures == 0 {
			h.setStatus(HealthStatusHealthy)
		}
	}
}

// Must be called with mu held.
func (h *ChainHealth) setStatus(s HealthStatus) {
	h.status = s
	metrics.PipelineHealthStatus.WithLabelValues(h.chain).Set(statusGaugeValue[s])
}

// Must be called with mu held.
func (h *ChainHealth) isLatencyDegraded() bool {
	if len(h.recentLatencies) < 2 {
		return false
	}
	return h.percentileLatency(95) > h.degradedLatencyThreshold
}

// Must be called with mu held.
func (h *ChainHealth) percentileLatency(pct int) time.Duration {
	n := len(h.recentLatencies)
	if n == 0 {
		return 0
	}
	sorted := make([]time.Duration, n)
	copy(sorted, h.recentLatencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := (pct*n - 1) / 100
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

func (h *ChainHealth) Snapshot() HealthSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HealthSnapshot{
		Chain:               h.chain,
		Status:              string(h.status),
		ConsecutiveFailures: h.consecutiveFailures,
		LastSuccessAt:       h.lastSuccessAt,
		LastFailureAt:       h.lastFailureAt,
	}
}

// HealthSnapshot is a point-in-time view of chain health (JSON-safe).
type HealthSnapshot struct {
	Chain               string     `json:"chain"`
	Status              string     `json:"status"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastSuccessAt       *time.Time `json:"last_success_at,omitempty"`
	LastFailureAt       *time.Time `json:"last_failure_at,omitempty"`
}

// HealthRegistry holds a ChainHealth per chain label.
type HealthRegistry struct {
	mu        sync.RWMutex
	threshold int
	chains    map[string]*ChainHealth
}

func NewHealthRegistry(unhealthyThreshold int) *HealthRegistry {
	return &HealthRegistry{
		threshold: unhealthyThreshold,
		chains:    make(map[string]*ChainHealth),
	}
}

// Get returns the tracker for chain, creating it on first use.
func (r *HealthRegistry) Get(chain string) *ChainHealth {
	r.mu.RLock()
	h, ok := r.chains[chain]
	r.mu.RUnlock()
	if ok {
		return h
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.chains[chain]; ok {
		return h
	}
	h = NewChainHealth(chain, r.threshold)
	r.chains[chain] = h
	return h
}

// Snapshots returns every chain's health ordered by chain label.
func (r *HealthRegistry) Snapshots() []HealthSnapshot {
	r.mu.RLock()
	out := make([]HealthSnapshot, 0, len(r.chains))
	for _, h := range r.chains {
		out = append(out, h.Snapshot())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Chain < out[j].Chain })
	return out
}

// Healthy reports whether no chain is UNHEALTHY.
func (r *HealthRegistry) Healthy() bool {
	for _, s := range r.Snapshots() {
		if s.Status == string(HealthStatusUnhealthy) {
			return false
		}
	}
	return true
}
