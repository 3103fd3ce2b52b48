package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion counters and histograms, partitioned by chain label.

var (
	// Rotation cycle
	CycleRotationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "cycle",
		Name:      "rotations_total",
		Help:      "Total cycle rotations by outcome",
	}, []string{"status"})

	CycleCurrentID = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ingestor",
		Subsystem: "cycle",
		Name:      "current_id",
		Help:      "Identifier of the active rotation cycle",
	})

	// Orchestrator
	OrchestratorTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "orchestrator",
		Name:      "ticks_total",
		Help:      "Total orchestrator ticks",
	})

	OrchestratorTickLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ingestor",
		Subsystem: "orchestrator",
		Name:      "tick_duration_seconds",
		Help:      "Orchestrator tick processing duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	OrchestratorChainFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "orchestrator",
		Name:      "chain_failures_total",
		Help:      "Total failed per-chain fetch attempts",
	}, []string{"chain"})

	OrchestratorChainsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "orchestrator",
		Name:      "chains_skipped_total",
		Help:      "Total ticks a chain was skipped while cooling down",
	}, []string{"chain"})

	OrchestratorRowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "orchestrator",
		Name:      "rows_written_total",
		Help:      "Total snapshot rows persisted by kind",
	}, []string{"kind"})

	// Fetcher
	FetcherLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ingestor",
		Subsystem: "fetcher",
		Name:      "fetch_duration_seconds",
		Help:      "Per-chain snapshot fetch duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"chain"})

	FetcherLogsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "fetcher",
		Name:      "logs_fetched_total",
		Help:      "Total logs fetched for monitored entities",
	}, []string{"chain"})

	FetcherLogRangeSplits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "fetcher",
		Name:      "log_range_splits_total",
		Help:      "Total log ranges halved after a range-too-large response",
	}, []string{"chain"})

	// Endpoint pool
	EndpointFailoversTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "endpoint",
		Name:      "failovers_total",
		Help:      "Total endpoint failovers after a reported failure",
	}, []string{"chain"})

	EndpointHealthy = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ingestor",
		Subsystem: "endpoint",
		Name:      "healthy",
		Help:      "Endpoint health from the last probe (1=healthy, 0=unhealthy)",
	}, []string{"chain", "endpoint"})

	// RPC
	RPCRateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "rpc",
		Name:      "rate_limit_waits_total",
		Help:      "Total times RPC calls waited for rate limiter",
	}, []string{"chain"})

	RPCCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "rpc",
		Name:      "calls_total",
		Help:      "Total RPC calls by method and status",
	}, []string{"chain", "method", "status"})

	CircuitBreakerStateChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "rpc",
		Name:      "breaker_state_changes_total",
		Help:      "Total circuit breaker state transitions",
	}, []string{"name", "to"})

	// Decoder
	DecodeCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "decode",
		Name:      "cache_hits_total",
		Help:      "Total signature lookups served from memory",
	}, []string{"kind"})

	DecodeCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "decode",
		Name:      "cache_misses_total",
		Help:      "Total signature lookups not found in memory",
	}, []string{"kind"})

	DecodeExternalLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "decode",
		Name:      "external_lookups_total",
		Help:      "Total external signature directory lookups by result",
	}, []string{"kind", "result"})

	DecodeUnresolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "decode",
		Name:      "unresolved_total",
		Help:      "Total inputs and logs left undecoded",
	}, []string{"kind"})

	// Checkpointed ingestor
	IngesterBlocksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "ingester",
		Name:      "blocks_processed_total",
		Help:      "Total blocks ingested",
	}, []string{"chain"})

	IngesterTransactionsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "ingester",
		Name:      "transactions_written_total",
		Help:      "Total chain transactions committed",
	}, []string{"chain"})

	IngesterTxErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "ingester",
		Name:      "tx_errors_total",
		Help:      "Total per-transaction failures that were skipped",
	}, []string{"chain"})

	IngesterErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "ingester",
		Name:      "errors_total",
		Help:      "Total block-level ingestion errors",
	}, []string{"chain"})

	IngesterLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ingestor",
		Subsystem: "ingester",
		Name:      "block_duration_seconds",
		Help:      "Per-block ingestion duration",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"chain"})

	IngesterCheckpointBlock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ingestor",
		Subsystem: "ingester",
		Name:      "checkpoint_block",
		Help:      "Last saved block checkpoint",
	}, []string{"chain"})

	IngesterHeadLag = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ingestor",
		Subsystem: "ingester",
		Name:      "head_lag_blocks",
		Help:      "Blocks between the chain head and the ingestion cursor",
	}, []string{"chain"})

	// Reorg detector
	ReorgDetectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "reorg",
		Name:      "detected_total",
		Help:      "Total parent-hash mismatches detected",
	}, []string{"chain"})

	ReorgBlocksFlagged = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "reorg",
		Name:      "blocks_flagged_total",
		Help:      "Total blocks marked REORGANIZED",
	}, []string{"chain"})

	ReorgDetectorCheckLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ingestor",
		Subsystem: "reorg",
		Name:      "check_duration_seconds",
		Help:      "Tip verification duration",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"chain"})

	// Pipeline health
	PipelineHealthStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ingestor",
		Subsystem: "pipeline",
		Name:      "health_status",
		Help:      "Chain health status (1=healthy, 0.5=unhealthy, 0=unknown)",
	}, []string{"chain"})

	PipelineConsecutiveFailures = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ingestor",
		Subsystem: "pipeline",
		Name:      "consecutive_failures",
		Help:      "Current consecutive failure count per chain",
	}, []string{"chain"})

	// DB connection pool
	DBPoolOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ingestor",
		Subsystem: "db",
		Name:      "pool_open",
		Help:      "Open database connections",
	}, []string{"pool"})

	DBPoolInUse = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ingestor",
		Subsystem: "db",
		Name:      "pool_in_use",
		Help:      "In-use database connections",
	}, []string{"pool"})

	DBPoolIdle = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ingestor",
		Subsystem: "db",
		Name:      "pool_idle",
		Help:      "Idle database connections",
	}, []string{"pool"})

	DBPoolWaitCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ingestor",
		Subsystem: "db",
		Name:      "pool_wait_count",
		Help:      "Total waits for a database connection",
	}, []string{"pool"})

	DBPoolWaitDurationSeconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ingestor",
		Subsystem: "db",
		Name:      "pool_wait_duration_seconds",
		Help:      "Total time blocked waiting for a database connection",
	}, []string{"pool"})

	// Event bus
	BusEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "bus",
		Name:      "events_published_total",
		Help:      "Total events published to the stream bus",
	}, []string{"stream"})

	BusPublishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "bus",
		Name:      "publish_errors_total",
		Help:      "Total failed stream bus publishes",
	}, []string{"stream"})

	// Alerts
	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "alert",
		Name:      "sent_total",
		Help:      "Total alerts sent",
	}, []string{"channel", "type"})

	AlertsCooldownSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ingestor",
		Subsystem: "alert",
		Name:      "cooldown_skipped_total",
		Help:      "Total alerts skipped due to cooldown",
	}, []string{"channel", "type"})
)
