package writer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/decode"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/emperorhan/multichain-ingestor/internal/metrics"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/retry"
	"github.com/emperorhan/multichain-ingestor/internal/store"
)

const (
	defaultMaxAttempts    = 3
	defaultBackoffInitial = 200 * time.Millisecond
	defaultBackoffMax     = 5 * time.Second
)

// Batch is one set of rows written in a single database transaction.
type Batch struct {
	ChainSnapshots     []model.ChainSnapshot
	EntitySnapshots    []model.EntitySnapshot
	StagedLogs         []model.StagedLog
	StagedTransactions []model.StagedTransaction
	Details            []model.TransactionDetail
	Events             []model.DecodedEvent
	Derived            decode.Records
	InternalCalls      []model.InternalCall
}

func (b *Batch) Merge(o Batch) {
	b.ChainSnapshots = append(b.ChainSnapshots, o.ChainSnapshots...)
	b.EntitySnapshots = append(b.EntitySnapshots, o.EntitySnapshots...)
	b.StagedLogs = append(b.StagedLogs, o.StagedLogs...)
	b.StagedTransactions = append(b.StagedTransactions, o.StagedTransactions...)
	b.Details = append(b.Details, o.Details...)
	b.Events = append(b.Events, o.Events...)
	b.Derived.Merge(o.Derived)
	b.InternalCalls = append(b.InternalCalls, o.InternalCalls...)
}

// DropCycleScoped clears the rows that belong to one rotation cycle and
// returns how many were dropped. Insert-once records are kept.
func (b *Batch) DropCycleScoped() int {
	n := len(b.ChainSnapshots) + len(b.EntitySnapshots) + len(b.StagedLogs) + len(b.StagedTransactions)
	b.ChainSnapshots = nil
	b.EntitySnapshots = nil
	b.StagedLogs = nil
	b.StagedTransactions = nil
	return n
}

func (b Batch) Empty() bool {
	return len(b.ChainSnapshots) == 0 && len(b.EntitySnapshots) == 0 &&
		len(b.StagedLogs) == 0 && len(b.StagedTransactions) == 0 &&
		len(b.Details) == 0 && len(b.Events) == 0 &&
		b.Derived.Len() == 0 && len(b.InternalCalls) == 0
}

// Stats counts rows newly inserted into the insert-once tables, keyed by
// table kind. Snapshot upserts are counted as written.
type Stats map[string]int64

func (s Stats) add(kind string, n int64) {
	if n > 0 {
		s[kind] += n
	}
}

// Writer persists batches. Snapshot tables are upserted, record tables are
// insert-once, and the whole batch commits or rolls back together.
type Writer struct {
	db          store.TxBeginner
	snapshots   store.SnapshotRepository
	records     store.RecordRepository
	maxAttempts int
	backoff     retry.Backoff
	sleepFn     func(context.Context, time.Duration) error
	logger      *slog.Logger
}

type Option func(*Writer)

func WithRetry(maxAttempts int, initial, max time.Duration) Option {
	return func(w *Writer) {
		if maxAttempts > 0 {
			w.maxAttempts = maxAttempts
		}
		w.backoff = retry.Backoff{Initial: initial, Max: max}
	}
}

func WithSleepFn(fn func(context.Context, time.Duration) error) Option {
	return func(w *Writer) { w.sleepFn = fn }
}

func New(db store.TxBeginner, snapshots store.SnapshotRepository, records store.RecordRepository, logger *slog.Logger, opts ...Option) *Writer {
	w := &Writer{
		db:          db,
		snapshots:   snapshots,
		records:     records,
		maxAttempts: defaultMaxAttempts,
		backoff:     retry.Backoff{Initial: defaultBackoffInitial, Max: defaultBackoffMax},
		sleepFn:     retry.Sleep,
		logger:      logger.With("component", "writer"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write commits the batch in one transaction, retrying transient store
// errors with backoff.
func (w *Writer) Write(ctx context.Context, b Batch) (Stats, error) {
	if b.Empty() {
		return Stats{}, nil
	}

	var stats Stats
	attempt := 0
	err := retry.Do(ctx, w.maxAttempts, w.backoff, w.sleepFn, func(ctx context.Context) error {
		attempt++
		s, err := w.writeOnce(ctx, b)
		if err != nil {
			w.logger.Warn("batch write failed",
				"attempt", attempt,
				"chain_snapshots", len(b.ChainSnapshots),
				"details", len(b.Details),
				"events", len(b.Events),
				"error", err,
			)
			return err
		}
		stats = s
		return nil
	})
	if err != nil {
		w.logger.Error("batch write abandoned", "attempts", attempt, "error", err)
		return nil, err
	}

	for kind, n := range stats {
		metrics.OrchestratorRowsWritten.WithLabelValues(kind).Add(float64(n))
	}
	return stats, nil
}

func (w *Writer) writeOnce(ctx context.Context, b Batch) (Stats, error) {
	dbTx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = dbTx.Rollback()
		}
	}()

	stats, err := w.WriteTx(ctx, dbTx, b)
	if err != nil {
		return nil, err
	}
	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return stats, nil
}

// WriteTx writes the batch inside a caller-owned transaction.
func (w *Writer) WriteTx(ctx context.Context, tx *sql.Tx, b Batch) (Stats, error) {
	stats := Stats{}

	if len(b.ChainSnapshots) > 0 {
		if err := w.snapshots.UpsertChainSnapshotsTx(ctx, tx, b.ChainSnapshots); err != nil {
			return nil, fmt.Errorf("upsert chain snapshots: %w", err)
		}
		stats.add("chain_snapshots", int64(len(b.ChainSnapshots)))
	}
	if len(b.EntitySnapshots) > 0 {
		if err := w.snapshots.UpsertEntitySnapshotsTx(ctx, tx, b.EntitySnapshots); err != nil {
			return nil, fmt.Errorf("upsert entity snapshots: %w", err)
		}
		stats.add("entity_snapshots", int64(len(b.EntitySnapshots)))
	}
	if len(b.StagedLogs) > 0 {
		if err := w.snapshots.StageLogsTx(ctx, tx, b.StagedLogs); err != nil {
			return nil, fmt.Errorf("stage logs: %w", err)
		}
		stats.add("staged_logs", int64(len(b.StagedLogs)))
	}
	if len(b.StagedTransactions) > 0 {
		if err := w.snapshots.StageTransactionsTx(ctx, tx, b.StagedTransactions); err != nil {
			return nil, fmt.Errorf("stage transactions: %w", err)
		}
		stats.add("staged_transactions", int64(len(b.StagedTransactions)))
	}

	if len(b.Details) > 0 {
		n, err := w.records.InsertTransactionDetailsTx(ctx, tx, b.Details)
		if err != nil {
			return nil, fmt.Errorf("insert transaction details: %w", err)
		}
		stats.add("transaction_details", n)
	}
	if len(b.Events) > 0 {
		n, err := w.records.InsertDecodedEventsTx(ctx, tx, b.Events)
		if err != nil {
			return nil, fmt.Errorf("insert decoded events: %w", err)
		}
		stats.add("decoded_events", n)
	}
	if len(b.Derived.TokenTransfers) > 0 {
		n, err := w.records.InsertTokenTransfersTx(ctx, tx, b.Derived.TokenTransfers)
		if err != nil {
			return nil, fmt.Errorf("insert token transfers: %w", err)
		}
		stats.add("token_transfers", n)
	}
	if len(b.Derived.NFTTransfers) > 0 {
		n, err := w.records.InsertNFTTransfersTx(ctx, tx, b.Derived.NFTTransfers)
		if err != nil {
			return nil, fmt.Errorf("insert nft transfers: %w", err)
		}
		stats.add("nft_transfers", n)
	}
	if len(b.Derived.DeFi) > 0 {
		n, err := w.records.InsertDeFiInteractionsTx(ctx, tx, b.Derived.DeFi)
		if err != nil {
			return nil, fmt.Errorf("insert defi interactions: %w", err)
		}
		stats.add("defi_interactions", n)
	}
	if len(b.InternalCalls) > 0 {
		n, err := w.records.InsertInternalCallsTx(ctx, tx, b.InternalCalls)
		if err != nil {
			return nil, fmt.Errorf("insert internal calls: %w", err)
		}
		stats.add("internal_calls", n)
	}
	return stats, nil
}
