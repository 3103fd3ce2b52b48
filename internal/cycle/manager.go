package cycle

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/alert"
	"github.com/emperorhan/multichain-ingestor/internal/metrics"
	"github.com/emperorhan/multichain-ingestor/internal/store"
)

const defaultPeriod = 30 * time.Minute

// Manager owns the rotation cycle. It is the only writer of the current
// cycle id; every other component reads it through CurrentCycleID.
type Manager struct {
	db      store.TxBeginner
	repo    store.CycleRepository
	period  time.Duration
	alerter alert.Alerter
	logger  *slog.Logger

	current   atomic.Int64
	startedAt atomic.Int64
}

type Option func(*Manager)

func WithAlerter(a alert.Alerter) Option {
	return func(m *Manager) { m.alerter = a }
}

func New(db store.TxBeginner, repo store.CycleRepository, period time.Duration, logger *slog.Logger, opts ...Option) *Manager {
	if period <= 0 {
		period = defaultPeriod
	}
	m := &Manager{
		db:     db,
		repo:   repo,
		period: period,
		logger: logger.With("component", "cycle_manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CurrentCycleID returns the active cycle id, or false before the first
// successful rotation.
func (m *Manager) CurrentCycleID() (int64, bool) {
	id := m.current.Load()
	return id, id > 0
}

// StartedAt returns when the current cycle began, zero before the first rotation.
func (m *Manager) StartedAt() time.Time {
	ns := m.startedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

// Start performs the first rotation synchronously. A failure is logged and
// left for the next timer tick; it never prevents startup.
func (m *Manager) Start(ctx context.Context) {
	if prev, err := m.repo.Active(ctx); err != nil {
		m.logger.Warn("read active cycle failed", "error", err)
	} else if prev != nil {
		m.logger.Info("closing cycle left active by previous run",
			"cycle_id", prev.ID,
			"age", time.Since(prev.StartedAt).Round(time.Second),
		)
	}
	if err := m.Rotate(ctx); err != nil {
		m.logger.Error("initial cycle rotation failed", "error", err)
	}
}

// Run rotates every period until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := m.Rotate(ctx); err != nil {
				m.logger.Error("cycle rotation failed, retrying next period", "error", err, "period", m.period)
			}
		}
	}
}

// Rotate completes the active cycle, truncates volatile tables and opens a
// new cycle in one transaction.
func (m *Manager) Rotate(ctx context.Context) error {
	err := m.rotate(ctx)
	if err != nil {
		metrics.CycleRotationsTotal.WithLabelValues("error").Inc()
		m.notifyFailure(ctx, err)
		return err
	}
	metrics.CycleRotationsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (m *Manager) rotate(ctx context.Context) error {
	dbTx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rotation tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = dbTx.Rollback()
		}
	}()

	closed, err := m.repo.CompleteActiveTx(ctx, dbTx)
	if err != nil {
		return fmt.Errorf("complete active cycle: %w", err)
	}
	if err := m.repo.TruncateVolatileTx(ctx, dbTx); err != nil {
		return fmt.Errorf("truncate volatile tables: %w", err)
	}
	next, err := m.repo.CreateTx(ctx, dbTx)
	if err != nil {
		return fmt.Errorf("create cycle: %w", err)
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit rotation: %w", err)
	}
	committed = true

	m.current.Store(next.ID)
	m.startedAt.Store(next.StartedAt.UnixNano())
	metrics.CycleCurrentID.Set(float64(next.ID))

	m.logger.Info("cycle rotated",
		"cycle_id", next.ID,
		"completed_cycles", closed,
		"started_at", next.StartedAt,
	)
	return nil
}

func (m *Manager) notifyFailure(ctx context.Context, cause error) {
	if m.alerter == nil {
		return
	}
	fields := map[string]string{"period": m.period.String()}
	if id, ok := m.CurrentCycleID(); ok {
		fields["current_cycle"] = strconv.FormatInt(id, 10)
	}
	_ = m.alerter.Send(ctx, alert.Alert{
		Type:    alert.AlertTypeRotationFailed,
		Title:   "Cycle rotation failed",
		Message: cause.Error(),
		Fields:  fields,
	})
}
