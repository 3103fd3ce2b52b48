package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/chain"
	"github.com/emperorhan/multichain-ingestor/internal/chain/endpointpool"
	"github.com/emperorhan/multichain-ingestor/internal/chain/rpc"
	"github.com/emperorhan/multichain-ingestor/internal/decode"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/emperorhan/multichain-ingestor/internal/metrics"
	"github.com/emperorhan/multichain-ingestor/internal/store"
	"github.com/emperorhan/multichain-ingestor/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	defaultEntitySampleSize  = 20
	defaultLogLookbackBlocks = 100
	defaultLogMaxBlockRange  = 1000
	defaultMaxTxDetails      = 50
	entityConcurrency        = 4
)

// EndpointSource hands out the current endpoint of a chain.
type EndpointSource interface {
	GetEndpoint(chainID model.ChainID) (*endpointpool.Endpoint, error)
}

type Config struct {
	EntitySampleSize  int
	LogLookbackBlocks int64
	LogMaxBlockRange  int64
	MaxTxDetails      int
}

func (c Config) withDefaults() Config {
	if c.EntitySampleSize <= 0 {
		c.EntitySampleSize = defaultEntitySampleSize
	}
	if c.LogLookbackBlocks <= 0 {
		c.LogLookbackBlocks = defaultLogLookbackBlocks
	}
	if c.LogMaxBlockRange <= 0 {
		c.LogMaxBlockRange = defaultLogMaxBlockRange
	}
	if c.MaxTxDetails < 0 {
		c.MaxTxDetails = 0
	} else if c.MaxTxDetails == 0 {
		c.MaxTxDetails = defaultMaxTxDetails
	}
	return c
}

// EntityState is one tracked entity observed at the head block.
type EntityState struct {
	Entity  model.TrackedEntity
	Balance *big.Int
	Nonce   int64
	Code    string
}

// TxBundle is a transaction behind a monitored log.
type TxBundle struct {
	Tx           *rpc.Transaction
	Receipt      *rpc.TransactionReceipt
	RevertReason *string
}

// Result is everything fetched for one chain in one pass. Every field comes
// from the same endpoint but not from a consistent snapshot.
type Result struct {
	Chain        model.Chain
	Endpoint     string
	Head         *rpc.Block
	HeadNumber   int64
	GasPrice     *big.Int
	Entities     []EntityState
	Logs         []*rpc.Log
	LogFrom      int64
	LogTo        int64
	Transactions []TxBundle
	FetchedAt    time.Time
}

// Fetcher pulls one pass of data for a chain.
type Fetcher struct {
	endpoints EndpointSource
	entities  store.TrackedEntityRepository
	snapshots store.SnapshotRepository
	cfg       Config
	logger    *slog.Logger
	nowFn     func() time.Time
}

func New(endpoints EndpointSource, entities store.TrackedEntityRepository, snapshots store.SnapshotRepository, cfg Config, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		endpoints: endpoints,
		entities:  entities,
		snapshots: snapshots,
		cfg:       cfg.withDefaults(),
		logger:    logger.With("component", "fetcher"),
		nowFn:     time.Now,
	}
}

// Fetch runs one pass for c. cycleID scopes the log cursor: logs already
// staged in the cycle are not fetched again.
func (f *Fetcher) Fetch(ctx context.Context, c model.Chain, cycleID int64) (*Result, error) {
	label := c.Label()
	ctx, span := tracing.StartChainSpan(ctx, "fetcher", "fetcher.fetchChain", c, tracing.AttrCycleID.Int64(cycleID))
	defer span.End()

	start := f.nowFn()
	res, err := f.fetch(ctx, c, cycleID)
	metrics.FetcherLatency.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("head", res.HeadNumber),
		attribute.Int("logs", len(res.Logs)),
	)
	return res, nil
}

func (f *Fetcher) fetch(ctx context.Context, c model.Chain, cycleID int64) (*Result, error) {
	ep, err := f.endpoints.GetEndpoint(c.ID)
	if err != nil {
		return nil, err
	}
	client := ep.Client
	log := f.logger.With("chain", c.Label(), "endpoint_index", ep.Index)

	head, err := client.GetLatestBlock(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest block: %w", err)
	}
	if head == nil {
		return nil, errors.New("latest block: empty response")
	}
	headNumber, err := rpc.ParseHexInt64(head.Number)
	if err != nil {
		return nil, fmt.Errorf("latest block number: %w", err)
	}

	gasPrice, err := client.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas price: %w", err)
	}

	res := &Result{
		Chain:      c,
		Endpoint:   client.URL(),
		Head:       head,
		HeadNumber: headNumber,
		GasPrice:   gasPrice,
		FetchedAt:  f.nowFn(),
	}

	if res.Entities, err = f.fetchEntities(ctx, client, c.ID, headNumber); err != nil {
		return nil, err
	}
	if err := f.fetchLogs(ctx, client, c, cycleID, res); err != nil {
		return nil, err
	}
	if res.Transactions, err = f.fetchTransactions(ctx, client, res); err != nil {
		return nil, err
	}
	metrics.FetcherLogsFetched.WithLabelValues(c.Label()).Add(float64(len(res.Logs)))

	ep.RecordSuccess()
	log.Debug("chain fetched",
		"head", headNumber,
		"entities", len(res.Entities),
		"logs", len(res.Logs),
		"transactions", len(res.Transactions),
	)
	return res, nil
}

func (f *Fetcher) fetchEntities(ctx context.Context, client chain.Client, chainID model.ChainID, head int64) ([]EntityState, error) {
	sample, err := f.entities.Sample(ctx, chainID, f.cfg.EntitySampleSize)
	if err != nil {
		return nil, fmt.Errorf("sample tracked entities: %w", err)
	}
	if len(sample) == 0 {
		return nil, nil
	}

	states := make([]EntityState, len(sample))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(entityConcurrency)
	for i, e := range sample {
		g.Go(func() error {
			balance, err := client.GetBalance(gCtx, e.Address, head)
			if err != nil {
				return fmt.Errorf("balance %s: %w", e.Address, err)
			}
			nonce, err := client.GetTransactionCount(gCtx, e.Address, head)
			if err != nil {
				return fmt.Errorf("nonce %s: %w", e.Address, err)
			}
			code, err := client.GetCode(gCtx, e.Address, head)
			if err != nil {
				return fmt.Errorf("code %s: %w", e.Address, err)
			}
			states[i] = EntityState{Entity: e, Balance: balance, Nonce: nonce, Code: code}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return states, nil
}

// fetchLogs reads logs of monitored entities from the block after the last
// staged one (bounded by the lookback window) up to the head.
func (f *Fetcher) fetchLogs(ctx context.Context, client chain.Client, c model.Chain, cycleID int64, res *Result) error {
	monitored, err := f.entities.ListMonitored(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("list monitored entities: %w", err)
	}
	if len(monitored) == 0 {
		return nil
	}
	addrs := make([]string, 0, len(monitored))
	for _, e := range monitored {
		addrs = append(addrs, strings.ToLower(e.Address))
	}

	from := res.HeadNumber - f.cfg.LogLookbackBlocks + 1
	if from < 0 {
		from = 0
	}
	if f.snapshots != nil && cycleID > 0 {
		last, err := f.snapshots.LastLogBlock(ctx, cycleID, c.ID)
		if err != nil {
			f.logger.Warn("read log cursor failed, using lookback window", "chain", c.Label(), "error", err)
		} else if last+1 > from {
			from = last + 1
		}
	}
	to := res.HeadNumber
	res.LogFrom, res.LogTo = from, to
	if from > to {
		return nil
	}

	var logs []*rpc.Log
	for start := from; start <= to; start += f.cfg.LogMaxBlockRange {
		end := min(start+f.cfg.LogMaxBlockRange-1, to)
		chunk, err := f.getLogsAdaptive(ctx, client, c.Label(), start, end, addrs)
		if err != nil {
			return err
		}
		logs = append(logs, chunk...)
	}

	kept := logs[:0]
	for _, l := range logs {
		if l != nil && !l.Removed {
			kept = append(kept, l)
		}
	}
	res.Logs = kept
	return nil
}

// getLogsAdaptive halves the range whenever the provider rejects it as too
// large, down to a single block.
func (f *Fetcher) getLogsAdaptive(ctx context.Context, client chain.Client, label string, from, to int64, addrs []string) ([]*rpc.Log, error) {
	logs, err := client.GetLogs(ctx, rpc.NewLogFilter(from, to, addrs))
	if err == nil {
		return logs, nil
	}
	if from == to || !isRangeTooLarge(err) {
		return nil, fmt.Errorf("get logs %d-%d: %w", from, to, err)
	}

	metrics.FetcherLogRangeSplits.WithLabelValues(label).Inc()
	mid := from + (to-from)/2
	f.logger.Debug("splitting log range", "chain", label, "from", from, "to", to, "error", err)

	left, err := f.getLogsAdaptive(ctx, client, label, from, mid, addrs)
	if err != nil {
		return nil, err
	}
	right, err := f.getLogsAdaptive(ctx, client, label, mid+1, to, addrs)
	if err != nil {
		return nil, err
	}
	return append(left, right...), nil
}

var rangeTooLargeTokens = []string{
	"range too large",
	"block range",
	"query returned more than",
	"too many results",
	"response size exceeded",
	"limit exceeded",
	"exceed maximum block range",
}

func isRangeTooLarge(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, t := range rangeTooLargeTokens {
		if strings.Contains(msg, t) {
			return true
		}
	}
	return false
}

type txRef struct {
	hash  string
	block int64
	index int64
}

// txRefs returns the distinct transactions behind logs in chain order.
func txRefs(logs []*rpc.Log) []txRef {
	seen := make(map[string]bool)
	var refs []txRef
	for _, l := range logs {
		h := strings.ToLower(l.TransactionHash)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		block, _ := rpc.ParseHexInt64(l.BlockNumber)
		index, _ := rpc.ParseHexInt64(l.TransactionIndex)
		refs = append(refs, txRef{hash: h, block: block, index: index})
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].block != refs[j].block {
			return refs[i].block < refs[j].block
		}
		return refs[i].index < refs[j].index
	})
	return refs
}

// fetchTransactions loads the transactions and receipts behind the logs,
// oldest first, up to MaxTxDetails. When the cap cuts into the logs, logs
// from the first uncovered block on are dropped from res so the log cursor
// stops before them and the next pass picks them up. A single block holding
// more transactions than the cap is taken whole.
func (f *Fetcher) fetchTransactions(ctx context.Context, client chain.Client, res *Result) ([]TxBundle, error) {
	if len(res.Logs) == 0 || f.cfg.MaxTxDetails == 0 {
		return nil, nil
	}

	refs := txRefs(res.Logs)
	if len(refs) > f.cfg.MaxTxDetails {
		cutoff := refs[f.cfg.MaxTxDetails].block
		n := sort.Search(len(refs), func(i int) bool { return refs[i].block >= cutoff })
		if n == 0 {
			n = sort.Search(len(refs), func(i int) bool { return refs[i].block > cutoff })
			cutoff++
		}
		deferred := len(refs) - n
		refs = refs[:n]
		res.Logs = logsBefore(res.Logs, cutoff)
		res.LogTo = cutoff - 1
		f.logger.Debug("transaction detail cap reached, deferring later logs",
			"chain", res.Chain.Label(),
			"log_to", res.LogTo,
			"deferred_transactions", deferred,
		)
	}
	if len(refs) == 0 {
		return nil, nil
	}

	hashes := make([]string, len(refs))
	for i, r := range refs {
		hashes[i] = r.hash
	}
	txs, err := client.GetTransactionsByHash(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("transactions by hash: %w", err)
	}
	receipts, err := client.GetTransactionReceiptsByHash(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("receipts by hash: %w", err)
	}

	bundles := make([]TxBundle, 0, len(hashes))
	for i := range hashes {
		if i >= len(txs) || txs[i] == nil {
			continue
		}
		b := TxBundle{Tx: txs[i]}
		if i < len(receipts) {
			b.Receipt = receipts[i]
		}
		if b.Receipt != nil && model.TxStatusFromReceipt(b.Receipt.Status) == model.TxStatusFailed {
			b.RevertReason = RevertReason(ctx, client, b.Tx)
		}
		bundles = append(bundles, b)
	}
	return bundles, nil
}

func logsBefore(logs []*rpc.Log, block int64) []*rpc.Log {
	kept := make([]*rpc.Log, 0, len(logs))
	for _, l := range logs {
		if n, _ := rpc.ParseHexInt64(l.BlockNumber); n < block {
			kept = append(kept, l)
		}
	}
	return kept
}

// RevertReason replays a failed transaction with eth_call at its block and
// decodes the revert payload. It returns nil when no reason can be decoded.
func RevertReason(ctx context.Context, client chain.Client, tx *rpc.Transaction) *string {
	if tx == nil || tx.To == "" {
		return nil
	}
	block, err := rpc.ParseHexInt64(tx.BlockNumber)
	if err != nil {
		return nil
	}
	out, err := client.Call(ctx, rpc.CallMsg{
		From:  tx.From,
		To:    tx.To,
		Data:  tx.Input,
		Value: tx.Value,
	}, block)

	payload := out
	if err != nil {
		var rpcErr *rpc.RPCError
		if !errors.As(err, &rpcErr) || len(rpcErr.Data) == 0 {
			return nil
		}
		var data string
		if json.Unmarshal(rpcErr.Data, &data) != nil {
			return nil
		}
		payload = data
	}
	reason, ok := decode.DecodeRevert(payload)
	if !ok {
		return nil
	}
	return &reason
}
