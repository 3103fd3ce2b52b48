package reorgdetector

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/alert"
	"github.com/emperorhan/multichain-ingestor/internal/chain"
	"github.com/emperorhan/multichain-ingestor/internal/chain/endpointpool"
	"github.com/emperorhan/multichain-ingestor/internal/domain/event"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/emperorhan/multichain-ingestor/internal/metrics"
	"github.com/emperorhan/multichain-ingestor/internal/store"
	"github.com/google/uuid"
)

const (
	defaultInterval = 30 * time.Second
	defaultTipDepth = 64
)

// Detector validates parent-hash linkage for incoming blocks and re-checks
// recently stored blocks against the chain. Mismatches are flagged and
// audited; nothing is rolled back.
type Detector struct {
	db       store.TxBeginner
	blocks   store.BlockRepository
	reorgs   store.ReorgEventRepository
	cache    store.BlockCache
	alerter  alert.Alerter
	interval time.Duration
	tipDepth int64
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Detector)

// WithBlockCache consults cache before the block table for stored hashes.
func WithBlockCache(c store.BlockCache) Option {
	return func(d *Detector) { d.cache = c }
}

func WithAlerter(a alert.Alerter) Option {
	return func(d *Detector) { d.alerter = a }
}

// WithTipVerification sets how often and how deep Run re-checks stored blocks.
func WithTipVerification(interval time.Duration, depth int64) Option {
	return func(d *Detector) {
		if interval > 0 {
			d.interval = interval
		}
		if depth > 0 {
			d.tipDepth = depth
		}
	}
}

func New(db store.TxBeginner, blocks store.BlockRepository, reorgs store.ReorgEventRepository, logger *slog.Logger, opts ...Option) *Detector {
	d := &Detector{
		db:       db,
		blocks:   blocks,
		reorgs:   reorgs,
		alerter:  &alert.NoopAlerter{},
		interval: defaultInterval,
		tipDepth: defaultTipDepth,
		now:      time.Now,
		logger:   logger.With("component", "reorg_detector"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CheckParent compares the parent hash declared by block number against the
// stored hash of number-1. It returns nil when they match or when the
// predecessor is not stored.
func (d *Detector) CheckParent(ctx context.Context, chainID model.ChainID, number int64, blockHash, parentHash string) (*event.ReorgEvent, error) {
	if number <= 0 {
		return nil, nil
	}
	stored, ok, err := d.storedHash(ctx, chainID, number-1)
	if err != nil {
		return nil, err
	}
	if !ok || strings.EqualFold(stored, parentHash) {
		return nil, nil
	}
	return &event.ReorgEvent{
		ID:                 uuid.New(),
		ChainID:            chainID,
		BlockNumber:        number,
		StoredParentHash:   strings.ToLower(stored),
		DeclaredParentHash: strings.ToLower(parentHash),
		BlockHash:          strings.ToLower(blockHash),
		DetectedAt:         d.now(),
	}, nil
}

func (d *Detector) storedHash(ctx context.Context, chainID model.ChainID, number int64) (string, bool, error) {
	if d.cache != nil {
		if h, ok := d.cache.GetHash(ctx, chainID, number); ok {
			return h, true, nil
		}
	}
	b, err := d.blocks.Get(ctx, chainID, number)
	if err != nil {
		return "", false, fmt.Errorf("get block %d: %w", number, err)
	}
	if b == nil {
		return "", false, nil
	}
	return b.Hash, true, nil
}

// FlagTx marks every stored block from ev.BlockNumber onward REORGANIZED and
// writes the audit record in the caller's transaction.
func (d *Detector) FlagTx(ctx context.Context, tx *sql.Tx, ev *event.ReorgEvent) error {
	n, err := d.blocks.MarkReorganizedFromTx(ctx, tx, ev.ChainID, ev.BlockNumber)
	if err != nil {
		return fmt.Errorf("mark reorganized from %d: %w", ev.BlockNumber, err)
	}
	ev.BlocksFlagged = n
	if _, err := d.reorgs.InsertTx(ctx, tx, ev); err != nil {
		return fmt.Errorf("insert reorg event: %w", err)
	}
	return nil
}

// Notify reports a committed reorg to logs, metrics and alert channels.
func (d *Detector) Notify(ctx context.Context, chainLabel string, ev *event.ReorgEvent) {
	d.logger.Warn("reorganization detected",
		"chain", chainLabel,
		"block", ev.BlockNumber,
		"stored_parent_hash", ev.StoredParentHash,
		"declared_parent_hash", ev.DeclaredParentHash,
		"blocks_flagged", ev.BlocksFlagged,
		"reorg_id", ev.ID,
	)
	metrics.ReorgDetectedTotal.WithLabelValues(chainLabel).Inc()
	metrics.ReorgBlocksFlagged.WithLabelValues(chainLabel).Add(float64(ev.BlocksFlagged))

	if err := d.alerter.Send(ctx, alert.Alert{
		Type:    alert.AlertTypeReorg,
		Chain:   chainLabel,
		Title:   fmt.Sprintf("Reorganization on %s at block %d", chainLabel, ev.BlockNumber),
		Message: fmt.Sprintf("declared parent %s does not match stored %s", ev.DeclaredParentHash, ev.StoredParentHash),
		Fields: map[string]string{
			"block":          fmt.Sprintf("%d", ev.BlockNumber),
			"blocks_flagged": fmt.Sprintf("%d", ev.BlocksFlagged),
			"reorg_id":       ev.ID.String(),
		},
	}); err != nil {
		d.logger.Warn("failed to send reorg alert", "error", err)
	}
}

// EndpointSource hands out the current endpoint of a chain.
type EndpointSource interface {
	GetEndpoint(chainID model.ChainID) (*endpointpool.Endpoint, error)
}

// Run re-verifies the tip of c every interval until ctx is cancelled.
func (d *Detector) Run(ctx context.Context, c model.Chain, endpoints EndpointSource) error {
	logger := d.logger.With("chain", c.Label())
	logger.Info("tip verification started", "interval", d.interval, "depth", d.tipDepth)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("tip verification stopped")
			return ctx.Err()
		case <-ticker.C:
			ep, err := endpoints.GetEndpoint(c.ID)
			if err != nil {
				logger.Warn("no endpoint for tip verification", "error", err)
				continue
			}
			if _, err := d.VerifyTip(ctx, c, ep.Client); err != nil {
				logger.Warn("tip verification failed", "error", err)
			}
		}
	}
}

// VerifyTip compares the most recent stored blocks against the chain and
// flags from the lowest mismatching block. It returns the committed event,
// or nil when the stored tip agrees with the chain.
func (d *Detector) VerifyTip(ctx context.Context, c model.Chain, client chain.Client) (*event.ReorgEvent, error) {
	start := time.Now()
	defer func() {
		metrics.ReorgDetectorCheckLatency.WithLabelValues(c.Label()).Observe(time.Since(start).Seconds())
	}()

	head, err := client.GetBlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("get head: %w", err)
	}
	from := head - d.tipDepth + 1
	if from < 0 {
		from = 0
	}
	stored, err := d.blocks.ListRange(ctx, c.ID, from, head)
	if err != nil {
		return nil, fmt.Errorf("list stored blocks: %w", err)
	}

	// Walk down from the tip; the fork point is the lowest block that
	// disagrees before a matching block is found.
	var fork *model.Block
	var onchain struct{ hash, parent string }
	for i := len(stored) - 1; i >= 0; i-- {
		b := stored[i]
		if b.Status == model.BlockStatusReorganized {
			continue
		}
		raw, err := client.GetBlockByNumber(ctx, b.Number, false)
		if err != nil {
			return nil, fmt.Errorf("get block %d: %w", b.Number, err)
		}
		if raw == nil || strings.EqualFold(raw.Hash, b.Hash) {
			break
		}
		fork = &stored[i]
		onchain.hash, onchain.parent = raw.Hash, raw.ParentHash
	}
	if fork == nil {
		return nil, nil
	}

	ev := &event.ReorgEvent{
		ID:                 uuid.New(),
		ChainID:            c.ID,
		BlockNumber:        fork.Number,
		StoredParentHash:   strings.ToLower(fork.ParentHash),
		DeclaredParentHash: strings.ToLower(onchain.parent),
		BlockHash:          strings.ToLower(onchain.hash),
		DetectedAt:         d.now(),
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := d.FlagTx(ctx, tx, ev); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true

	d.Notify(ctx, c.Label(), ev)
	return ev, nil
}
