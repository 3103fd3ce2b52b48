package ingester

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/chain"
	"github.com/emperorhan/multichain-ingestor/internal/chain/rpc"
	"github.com/emperorhan/multichain-ingestor/internal/decode"
	"github.com/emperorhan/multichain-ingestor/internal/domain/event"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/emperorhan/multichain-ingestor/internal/metrics"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/fetcher"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/normalizer"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/retry"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/writer"
	"github.com/emperorhan/multichain-ingestor/internal/store"
	"github.com/emperorhan/multichain-ingestor/internal/tracing"
)

const (
	defaultPollInterval       = 2 * time.Second
	defaultCheckpointInterval = 100
	maxErrorBackoff           = time.Minute

	// Bus categories.
	CategoryBlocks       = "blocks"
	CategoryTransactions = "transactions"
	CategoryEvents       = "events"
)

// ParentValidator links incoming blocks to stored ones and records breaks.
type ParentValidator interface {
	CheckParent(ctx context.Context, chainID model.ChainID, number int64, blockHash, parentHash string) (*event.ReorgEvent, error)
	FlagTx(ctx context.Context, tx *sql.Tx, ev *event.ReorgEvent) error
	Notify(ctx context.Context, chainLabel string, ev *event.ReorgEvent)
}

// RecordWriter persists decoded rows inside a caller-owned transaction.
type RecordWriter interface {
	WriteTx(ctx context.Context, tx *sql.Tx, b writer.Batch) (writer.Stats, error)
}

// EndpointSource hands out endpoints and takes failure reports.
type EndpointSource interface {
	fetcher.EndpointSource
	ReportFailure(chainID model.ChainID)
}

type Config struct {
	PollInterval       time.Duration
	CheckpointInterval int64
	TraceInternalCalls bool
	TraceMaxDepth      int
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.CheckpointInterval <= 0 {
		c.CheckpointInterval = defaultCheckpointInterval
	}
	if c.TraceMaxDepth <= 0 {
		c.TraceMaxDepth = decode.DefaultTraceMaxDepth
	}
	return c
}

// Ingester walks one chain block by block from its checkpoint, persisting
// blocks, transactions and decoded records.
type Ingester struct {
	chain       model.Chain
	endpoints   EndpointSource
	db          store.TxBeginner
	blocks      store.BlockRepository
	checkpoints store.CheckpointRepository
	records     RecordWriter
	normalizer  *normalizer.Normalizer
	validator   ParentValidator
	cache       store.BlockCache
	publisher   store.Publisher
	cfg         Config
	sleepFn     func(context.Context, time.Duration) error
	logger      *slog.Logger

	next  int64 // next block to process
	saved int64 // last persisted checkpoint
}

type Option func(*Ingester)

func WithBlockCache(c store.BlockCache) Option {
	return func(i *Ingester) { i.cache = c }
}

func WithPublisher(p store.Publisher) Option {
	return func(i *Ingester) { i.publisher = p }
}

func WithSleepFn(fn func(context.Context, time.Duration) error) Option {
	return func(i *Ingester) { i.sleepFn = fn }
}

func New(
	c model.Chain,
	endpoints EndpointSource,
	db store.TxBeginner,
	blocks store.BlockRepository,
	checkpoints store.CheckpointRepository,
	records RecordWriter,
	n *normalizer.Normalizer,
	validator ParentValidator,
	cfg Config,
	logger *slog.Logger,
	opts ...Option,
) *Ingester {
	i := &Ingester{
		chain:       c,
		endpoints:   endpoints,
		db:          db,
		blocks:      blocks,
		checkpoints: checkpoints,
		records:     records,
		normalizer:  n,
		validator:   validator,
		cfg:         cfg.withDefaults(),
		sleepFn:     retry.Sleep,
		logger:      logger.With("component", "ingester", "chain", c.Label()),
		next:        -1,
		saved:       -1,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// CheckpointName is the checkpoint key of a chain's block stream.
func CheckpointName(c model.Chain) string {
	return "blocks:" + c.Label()
}

func (i *Ingester) Chain() model.Chain { return i.chain }

// Next returns the next block the ingester will process, or -1 before the
// checkpoint has been loaded.
func (i *Ingester) Next() int64 { return i.next }

// Run processes blocks until ctx is cancelled, sleeping PollInterval when
// caught up with the chain head.
func (i *Ingester) Run(ctx context.Context) error {
	if err := i.load(ctx); err != nil {
		return err
	}
	i.logger.Info("ingester started", "from_block", i.next, "checkpoint_interval", i.cfg.CheckpointInterval)

	failures := 0
	for {
		progressed, err := i.Step(ctx)
		if ctx.Err() != nil {
			i.flush(context.WithoutCancel(ctx))
			i.logger.Info("ingester stopped", "next_block", i.next)
			return ctx.Err()
		}

		wait := time.Duration(0)
		switch {
		case err != nil:
			failures++
			wait = retry.Backoff{Initial: i.cfg.PollInterval, Max: maxErrorBackoff}.Delay(failures)
			decision := retry.Classify(err)
			i.logger.Warn("block ingest failed",
				"block", i.next,
				"attempt", failures,
				"class", decision.Class,
				"retry_in", wait,
				"error", err,
			)
		case !progressed:
			failures = 0
			i.flush(ctx)
			wait = i.cfg.PollInterval
		default:
			failures = 0
		}
		if wait > 0 {
			if err := i.sleepFn(ctx, wait); err != nil {
				i.flush(context.WithoutCancel(ctx))
				i.logger.Info("ingester stopped", "next_block", i.next)
				return err
			}
		}
	}
}

func (i *Ingester) load(ctx context.Context) error {
	if i.next >= 0 {
		return nil
	}
	cp, err := i.checkpoints.Get(ctx, CheckpointName(i.chain))
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}
	if cp != nil {
		i.next = cp.BlockNumber + 1
		i.saved = cp.BlockNumber
		return nil
	}
	if i.chain.StartBlock > 0 {
		i.next = i.chain.StartBlock
		i.saved = i.next - 1
		return nil
	}
	ep, err := i.endpoints.GetEndpoint(i.chain.ID)
	if err != nil {
		return fmt.Errorf("get endpoint: %w", err)
	}
	head, err := ep.Client.GetBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("get head for start block: %w", err)
	}
	i.next = head
	i.saved = i.next - 1
	return nil
}

// Step processes the next block if the chain has produced it. It reports
// whether a block was consumed.
func (i *Ingester) Step(ctx context.Context) (bool, error) {
	if err := i.load(ctx); err != nil {
		return false, err
	}
	ep, err := i.endpoints.GetEndpoint(i.chain.ID)
	if err != nil {
		return false, fmt.Errorf("get endpoint: %w", err)
	}
	head, err := ep.Client.GetBlockNumber(ctx)
	if err != nil {
		i.endpoints.ReportFailure(i.chain.ID)
		return false, fmt.Errorf("get head: %w", err)
	}
	metrics.IngesterHeadLag.WithLabelValues(i.chain.Label()).Set(float64(head - i.next + 1))
	if i.next > head {
		return false, nil
	}

	if err := i.ProcessBlock(ctx, ep.Client, i.next); err != nil {
		i.endpoints.ReportFailure(i.chain.ID)
		metrics.IngesterErrors.WithLabelValues(i.chain.Label()).Inc()
		return false, err
	}
	i.next++
	if i.next-1-i.saved >= i.cfg.CheckpointInterval {
		i.flush(ctx)
	}
	return true, nil
}

// ProcessBlock ingests one block. Blocks already COMPLETE or REORGANIZED are
// skipped; a PENDING block left by an interrupted run has its transactions
// re-driven. Per-transaction failures are logged and do not fail the block.
func (i *Ingester) ProcessBlock(ctx context.Context, client chain.Client, number int64) error {
	ctx, span := tracing.StartChainSpan(ctx, "ingester", "ingester.processBlock", i.chain, tracing.AttrBlock.Int64(number))
	defer span.End()
	start := time.Now()
	defer func() {
		metrics.IngesterLatency.WithLabelValues(i.chain.Label()).Observe(time.Since(start).Seconds())
	}()

	err := i.processBlock(ctx, client, number)
	tracing.Fail(span, err)
	return err
}

func (i *Ingester) processBlock(ctx context.Context, client chain.Client, number int64) error {
	existing, err := i.blocks.Get(ctx, i.chain.ID, number)
	if err != nil {
		return fmt.Errorf("get stored block %d: %w", number, err)
	}
	if existing != nil && existing.Status != model.BlockStatusPending {
		i.logger.Debug("block already ingested", "block", number, "status", existing.Status)
		return nil
	}

	raw, err := client.GetBlockByNumber(ctx, number, true)
	if err != nil {
		return fmt.Errorf("get block %d: %w", number, err)
	}
	if raw == nil {
		return fmt.Errorf("block %d not found", number)
	}
	receipts, err := i.receipts(ctx, client, raw)
	if err != nil {
		return err
	}
	block := normalizer.Block(i.chain.ID, raw)

	if existing == nil {
		if err := i.insertBlock(ctx, &block); err != nil {
			return err
		}
	} else if existing.Hash != block.Hash {
		i.logger.Warn("pending block hash changed since first attempt",
			"block", number,
			"stored_hash", existing.Hash,
			"fetched_hash", block.Hash,
		)
	}

	written := 0
	for idx, tx := range raw.Transactions {
		if err := i.ingestTransaction(ctx, client, block, tx, receipts[strings.ToLower(tx.Hash)]); err != nil {
			metrics.IngesterTxErrors.WithLabelValues(i.chain.Label()).Inc()
			i.logger.Warn("transaction ingest failed",
				"block", number,
				"tx_index", idx,
				"tx_hash", tx.Hash,
				"error", err,
			)
			continue
		}
		written++
	}
	metrics.IngesterTransactionsWritten.WithLabelValues(i.chain.Label()).Add(float64(written))

	if err := i.inTx(ctx, func(tx *sql.Tx) error {
		return i.blocks.MarkCompleteTx(ctx, tx, i.chain.ID, number)
	}); err != nil {
		return fmt.Errorf("mark block %d complete: %w", number, err)
	}
	if i.cache != nil {
		i.cache.PutHash(ctx, i.chain.ID, number, block.Hash)
	}
	i.publish(ctx, CategoryBlocks, block)
	metrics.IngesterBlocksProcessed.WithLabelValues(i.chain.Label()).Inc()
	i.logger.Debug("block ingested", "block", number, "txs", len(raw.Transactions), "written", written)
	return nil
}

func (i *Ingester) receipts(ctx context.Context, client chain.Client, raw *rpc.Block) (map[string]*rpc.TransactionReceipt, error) {
	out := make(map[string]*rpc.TransactionReceipt, len(raw.Transactions))
	if len(raw.Transactions) == 0 {
		return out, nil
	}
	hashes := make([]string, len(raw.Transactions))
	for idx, tx := range raw.Transactions {
		hashes[idx] = tx.Hash
	}
	receipts, err := client.GetTransactionReceiptsByHash(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("get receipts for block %s: %w", raw.Number, err)
	}
	for _, r := range receipts {
		if r != nil {
			out[strings.ToLower(r.TransactionHash)] = r
		}
	}
	return out, nil
}

// insertBlock commits the block row, flagging a reorganization in the same
// transaction when its parent link is broken.
func (i *Ingester) insertBlock(ctx context.Context, block *model.Block) error {
	reorg, err := i.validator.CheckParent(ctx, i.chain.ID, block.Number, block.Hash, block.ParentHash)
	if err != nil {
		return fmt.Errorf("validate parent of %d: %w", block.Number, err)
	}

	if err := i.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := i.blocks.InsertTx(ctx, tx, block); err != nil {
			return fmt.Errorf("insert block %d: %w", block.Number, err)
		}
		if reorg != nil {
			return i.validator.FlagTx(ctx, tx, reorg)
		}
		return nil
	}); err != nil {
		return err
	}

	if reorg != nil {
		i.validator.Notify(ctx, i.chain.Label(), reorg)
	}
	return nil
}

// ingestTransaction commits one transaction with its events and derived
// records as a unit.
func (i *Ingester) ingestTransaction(ctx context.Context, client chain.Client, block model.Block, raw *rpc.Transaction, receipt *rpc.TransactionReceipt) error {
	if receipt == nil {
		return errors.New("missing receipt")
	}

	var revert *string
	if model.TxStatusFromReceipt(receipt.Status) == model.TxStatusFailed {
		revert = fetcher.RevertReason(ctx, client, raw)
	}
	out := i.normalizer.Transaction(ctx, normalizer.TxInput{
		ChainID:      i.chain.ID,
		Tx:           raw,
		Receipt:      receipt,
		BlockTime:    block.BlockTime,
		RevertReason: revert,
	})

	batch := writer.Batch{
		Details: []model.TransactionDetail{out.Detail},
		Events:  out.Events,
		Derived: out.Derived,
	}
	if i.cfg.TraceInternalCalls {
		frame, err := client.TraceTransaction(ctx, raw.Hash)
		if err != nil {
			i.logger.Warn("trace transaction failed", "tx_hash", raw.Hash, "error", err)
		} else {
			batch.InternalCalls = i.normalizer.Decoder().FlattenTrace(ctx, i.chain.ID, out.Detail.TxHash, frame, i.cfg.TraceMaxDepth)
		}
	}

	if err := i.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := i.blocks.InsertTransactionTx(ctx, tx, &out.Chain); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		if _, err := i.records.WriteTx(ctx, tx, batch); err != nil {
			return err
		}
		return nil
	}); err != nil {
		return err
	}

	i.publish(ctx, CategoryTransactions, out.Chain)
	for _, ev := range out.Events {
		i.publish(ctx, CategoryEvents, ev)
	}
	return nil
}

func (i *Ingester) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

func (i *Ingester) publish(ctx context.Context, category string, payload interface{}) {
	if i.publisher == nil {
		return
	}
	if err := i.publisher.Publish(ctx, category, i.chain.ID, payload); err != nil {
		i.logger.Debug("publish failed", "category", category, "error", err)
	}
}

// flush persists the highest fully processed block as the checkpoint.
func (i *Ingester) flush(ctx context.Context) {
	done := i.next - 1
	if done < 0 || done <= i.saved {
		return
	}
	cp := &model.Checkpoint{
		Name:        CheckpointName(i.chain),
		ChainID:     i.chain.ID,
		BlockNumber: done,
		UpdatedAt:   time.Now(),
	}
	if err := i.inTx(ctx, func(tx *sql.Tx) error {
		return i.checkpoints.SaveTx(ctx, tx, cp)
	}); err != nil {
		i.logger.Warn("save checkpoint failed", "block", done, "error", err)
		return
	}
	i.saved = done
	metrics.IngesterCheckpointBlock.WithLabelValues(i.chain.Label()).Set(float64(done))
}

// Reprocess deletes stored blocks from fromBlock onward and rewinds the
// checkpoint so the next Run ingests them again. It must not run
// concurrently with Run.
func (i *Ingester) Reprocess(ctx context.Context, fromBlock int64) (int64, error) {
	if fromBlock < 0 {
		return 0, fmt.Errorf("invalid reprocess block %d", fromBlock)
	}
	var deleted int64
	err := i.inTx(ctx, func(tx *sql.Tx) error {
		n, err := i.blocks.DeleteFromTx(ctx, tx, i.chain.ID, fromBlock)
		if err != nil {
			return fmt.Errorf("delete blocks from %d: %w", fromBlock, err)
		}
		deleted = n
		return i.checkpoints.ResetTx(ctx, tx, &model.Checkpoint{
			Name:        CheckpointName(i.chain),
			ChainID:     i.chain.ID,
			BlockNumber: fromBlock - 1,
			UpdatedAt:   time.Now(),
		})
	})
	if err != nil {
		return 0, err
	}
	i.next = fromBlock
	i.saved = fromBlock - 1
	i.logger.Info("reprocess scheduled", "from_block", fromBlock, "blocks_deleted", deleted)
	return deleted, nil
}

// Incomplete is a block whose stored transaction count differs from the
// count declared by its header.
type Incomplete struct {
	Number   int64
	Declared int
	Stored   int
}

// VerifyCompleteness checks every stored block in [from, to].
func (i *Ingester) VerifyCompleteness(ctx context.Context, from, to int64) ([]Incomplete, error) {
	blocks, err := i.blocks.ListRange(ctx, i.chain.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	var out []Incomplete
	for _, b := range blocks {
		n, err := i.blocks.CountTransactions(ctx, i.chain.ID, b.Number)
		if err != nil {
			return nil, fmt.Errorf("count transactions of %d: %w", b.Number, err)
		}
		if n != b.TxCount {
			out = append(out, Incomplete{Number: b.Number, Declared: b.TxCount, Stored: n})
		}
	}
	return out, nil
}
