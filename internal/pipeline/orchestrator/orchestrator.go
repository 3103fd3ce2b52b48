package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/alert"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/emperorhan/multichain-ingestor/internal/metrics"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/fetcher"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/normalizer"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/retry"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/writer"
	"github.com/emperorhan/multichain-ingestor/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	otelTrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	defaultInterval   = 5 * time.Second
	defaultBatchSize  = 3
	defaultMaxRetries = 3
	maxCooldown       = 5 * time.Minute
)

type ChainFetcher interface {
	Fetch(ctx context.Context, c model.Chain, cycleID int64) (*fetcher.Result, error)
}

type BatchWriter interface {
	Write(ctx context.Context, b writer.Batch) (writer.Stats, error)
}

type FailureReporter interface {
	ReportFailure(chainID model.ChainID)
}

type CycleSource interface {
	CurrentCycleID() (int64, bool)
}

type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	// Cooldown after MaxRetries consecutive failures; Initial defaults to Interval.
	Backoff retry.Backoff
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.Backoff.Initial <= 0 {
		c.Backoff.Initial = c.Interval
	}
	if c.Backoff.Max <= 0 {
		c.Backoff.Max = maxCooldown
	}
	return c
}

type chainState struct {
	failures  int
	skipUntil time.Time
}

// TickReport summarizes one tick by chain label.
type TickReport struct {
	CycleID   int64
	Succeeded []string
	Failed    []string
	Skipped   []string
	Rows      writer.Stats
	// StaleRows counts cycle-scoped rows dropped because the cycle rotated
	// while the tick was running.
	StaleRows int
}

// Orchestrator snapshots every active chain once per tick.
type Orchestrator struct {
	chains     []model.Chain
	fetcher    ChainFetcher
	normalizer *normalizer.Normalizer
	writer     BatchWriter
	pool       FailureReporter
	cycles     CycleSource
	health     *pipeline.HealthRegistry
	alerter    alert.Alerter
	cfg        Config
	now        func() time.Time
	logger     *slog.Logger

	mu    sync.Mutex
	state map[model.ChainID]*chainState
}

type Option func(*Orchestrator)

func WithAlerter(a alert.Alerter) Option {
	return func(o *Orchestrator) { o.alerter = a }
}

func WithHealthRegistry(r *pipeline.HealthRegistry) Option {
	return func(o *Orchestrator) { o.health = r }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(
	chains []model.Chain,
	f ChainFetcher,
	n *normalizer.Normalizer,
	w BatchWriter,
	pool FailureReporter,
	cycles CycleSource,
	cfg Config,
	logger *slog.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		fetcher:    f,
		normalizer: n,
		writer:     w,
		pool:       pool,
		cycles:     cycles,
		alerter:    &alert.NoopAlerter{},
		cfg:        cfg.withDefaults(),
		now:        time.Now,
		logger:     logger.With("component", "orchestrator"),
		state:      make(map[model.ChainID]*chainState),
	}
	for _, c := range chains {
		if c.Active {
			o.chains = append(o.chains, c)
			o.state[c.ID] = &chainState{}
		}
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.health == nil {
		o.health = pipeline.NewHealthRegistry(o.cfg.MaxRetries)
	}
	return o
}

// Run ticks until ctx is cancelled. A tick that overruns the interval is
// followed immediately by the next one; ticks never overlap.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("orchestrator started",
		"chains", len(o.chains),
		"interval", o.cfg.Interval,
		"batch_size", o.cfg.BatchSize,
	)
	for {
		start := time.Now()
		o.Tick(ctx)

		wait := o.cfg.Interval - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			o.logger.Info("orchestrator stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Tick runs one pass over all active chains in batches of BatchSize.
func (o *Orchestrator) Tick(ctx context.Context) TickReport {
	report := TickReport{Rows: writer.Stats{}}
	cycleID, ok := o.cycles.CurrentCycleID()
	if !ok {
		o.logger.Debug("no active cycle, skipping tick")
		return report
	}
	report.CycleID = cycleID

	ctx, span := tracing.Tracer("orchestrator").Start(ctx, "orchestrator.tick",
		otelTrace.WithAttributes(
			tracing.AttrCycleID.Int64(cycleID),
			attribute.Int("chains", len(o.chains)),
		),
	)
	defer span.End()

	start := time.Now()
	metrics.OrchestratorTicksTotal.Inc()
	defer func() { metrics.OrchestratorTickLatency.Observe(time.Since(start).Seconds()) }()

	var due []model.Chain
	for _, c := range o.chains {
		if o.coolingDown(c.ID) {
			metrics.OrchestratorChainsSkipped.WithLabelValues(c.Label()).Inc()
			report.Skipped = append(report.Skipped, c.Label())
			continue
		}
		due = append(due, c)
	}

	for i := 0; i < len(due); i += o.cfg.BatchSize {
		if ctx.Err() != nil {
			break
		}
		end := i + o.cfg.BatchSize
		if end > len(due) {
			end = len(due)
		}
		o.runBatch(ctx, cycleID, due[i:end], &report)
	}

	span.SetAttributes(
		attribute.Int("succeeded", len(report.Succeeded)),
		attribute.Int("failed", len(report.Failed)),
		attribute.Int("skipped", len(report.Skipped)),
	)
	return report
}

func (o *Orchestrator) runBatch(ctx context.Context, cycleID int64, batch []model.Chain, report *TickReport) {
	results := make([]*fetcher.Result, len(batch))
	errs := make([]error, len(batch))

	var g errgroup.Group
	for i, c := range batch {
		g.Go(func() error {
			start := time.Now()
			res, err := o.fetcher.Fetch(ctx, c, cycleID)
			o.health.Get(c.Label()).RecordLatency(time.Since(start))
			results[i], errs[i] = res, err
			return nil
		})
	}
	_ = g.Wait()

	var merged writer.Batch
	for i, c := range batch {
		if errs[i] != nil {
			o.recordFailure(ctx, c, errs[i])
			report.Failed = append(report.Failed, c.Label())
			continue
		}
		merged.Merge(assemble(ctx, o.normalizer, cycleID, results[i]))
		o.recordSuccess(ctx, c)
		report.Succeeded = append(report.Succeeded, c.Label())
	}

	if cur, ok := o.cycles.CurrentCycleID(); !ok || cur != cycleID {
		dropped := merged.DropCycleScoped()
		report.StaleRows += dropped
		o.logger.Warn("cycle rotated during tick, dropping cycle-scoped rows",
			"tick_cycle_id", cycleID,
			"current_cycle_id", cur,
			"dropped_rows", dropped,
		)
	}
	if merged.Empty() {
		return
	}
	stats, err := o.writer.Write(ctx, merged)
	if err != nil {
		o.logger.Error("persist batch failed",
			"cycle_id", cycleID,
			"chains", len(batch),
			"error", err,
		)
		return
	}
	for k, v := range stats {
		report.Rows[k] += v
	}
}

func (o *Orchestrator) coolingDown(id model.ChainID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := o.state[id]
	return st != nil && o.now().Before(st.skipUntil)
}

func (o *Orchestrator) recordFailure(ctx context.Context, c model.Chain, cause error) {
	o.mu.Lock()
	st := o.state[c.ID]
	st.failures++
	failures := st.failures
	var cooldown time.Duration
	if failures >= o.cfg.MaxRetries {
		cooldown = o.cfg.Backoff.Delay(failures - o.cfg.MaxRetries + 1)
		st.skipUntil = o.now().Add(cooldown)
	}
	o.mu.Unlock()

	o.pool.ReportFailure(c.ID)
	o.health.Get(c.Label()).RecordFailure()
	metrics.OrchestratorChainFailures.WithLabelValues(c.Label()).Inc()

	decision := retry.Classify(cause)
	o.logger.Warn("chain fetch failed",
		"chain", c.Label(),
		"chain_id", c.ID,
		"consecutive_failures", failures,
		"class", decision.Class,
		"reason", decision.Reason,
		"error", cause,
	)

	if cooldown > 0 {
		o.logger.Warn("chain cooling down",
			"chain", c.Label(),
			"consecutive_failures", failures,
			"cooldown", cooldown,
		)
		_ = o.alerter.Send(ctx, alert.Alert{
			Type:    alert.AlertTypeChainCooldown,
			Chain:   c.Label(),
			Title:   fmt.Sprintf("%s fetch failing", c.Label()),
			Message: cause.Error(),
			Fields: map[string]string{
				"consecutive_failures": fmt.Sprintf("%d", failures),
				"cooldown":             cooldown.String(),
			},
		})
	}
}

func (o *Orchestrator) recordSuccess(ctx context.Context, c model.Chain) {
	o.mu.Lock()
	st := o.state[c.ID]
	prev := st.failures
	st.failures = 0
	st.skipUntil = time.Time{}
	o.mu.Unlock()

	if recovered := o.health.Get(c.Label()).RecordSuccess(); recovered {
		o.logger.Info("chain recovered", "chain", c.Label(), "previous_failures", prev)
		_ = o.alerter.Send(ctx, alert.Alert{
			Type:    alert.AlertTypeRecovery,
			Chain:   c.Label(),
			Title:   fmt.Sprintf("%s recovered", c.Label()),
			Message: fmt.Sprintf("fetch succeeded after %d consecutive failures", prev),
		})
	}
}

// Failures returns the consecutive failure count for a chain.
func (o *Orchestrator) Failures(id model.ChainID) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if st := o.state[id]; st != nil {
		return st.failures
	}
	return 0
}
