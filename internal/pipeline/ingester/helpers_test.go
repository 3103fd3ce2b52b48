package ingester

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/emperorhan/multichain-ingestor/internal/chain"
	"github.com/emperorhan/multichain-ingestor/internal/chain/endpointpool"
	"github.com/emperorhan/multichain-ingestor/internal/chain/rpc"
	"github.com/emperorhan/multichain-ingestor/internal/decode"
	"github.com/emperorhan/multichain-ingestor/internal/domain/event"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/normalizer"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/reorgdetector"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/writer"
	"github.com/stretchr/testify/require"
)

type fakeDriver struct{}
type fakeConn struct{}
type fakeTx struct{}

func (d *fakeDriver) Open(string) (driver.Conn, error)  { return &fakeConn{}, nil }
func (c *fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (c *fakeConn) Close() error                        { return nil }
func (c *fakeConn) Begin() (driver.Tx, error)           { return &fakeTx{}, nil }
func (tx *fakeTx) Commit() error                        { return nil }
func (tx *fakeTx) Rollback() error                      { return nil }

func init() {
	sql.Register("fake_ingester", &fakeDriver{})
}

// fakeChain serves a fixed set of blocks over the chain.Client surface.
type fakeChain struct {
	mu         sync.Mutex
	head       int64
	blocks     map[int64]*rpc.Block
	receipts   map[string]*rpc.TransactionReceipt
	traces     map[string]*rpc.CallFrame
	failBlocks map[int64]error
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		blocks:     map[int64]*rpc.Block{},
		receipts:   map[string]*rpc.TransactionReceipt{},
		traces:     map[string]*rpc.CallFrame{},
		failBlocks: map[int64]error{},
	}
}

func hexNum(n int64) string { return "0x" + big.NewInt(n).Text(16) }

func blockHash(n int64) string { return fmt.Sprintf("0x%064x", n) }

// addBlock appends a block linked to the previous one.
func (c *fakeChain) addBlock(n int64, txs ...*rpc.Transaction) *rpc.Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tx := range txs {
		tx.BlockNumber = hexNum(n)
		tx.BlockHash = blockHash(n)
	}
	b := &rpc.Block{
		Number:       hexNum(n),
		Hash:         blockHash(n),
		ParentHash:   blockHash(n - 1),
		Timestamp:    hexNum(1700000000 + n*12),
		Transactions: txs,
	}
	if txs == nil {
		b.Transactions = []*rpc.Transaction{}
	}
	c.blocks[n] = b
	if n > c.head {
		c.head = n
	}
	return b
}

func (c *fakeChain) addReceipt(r *rpc.TransactionReceipt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receipts[strings.ToLower(r.TransactionHash)] = r
}

func (c *fakeChain) URL() string { return "http://fake" }

func (c *fakeChain) GetBlockNumber(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head, nil
}

func (c *fakeChain) GetBlockByNumber(_ context.Context, n int64, _ bool) (*rpc.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failBlocks[n]; err != nil {
		return nil, err
	}
	return c.blocks[n], nil
}

func (c *fakeChain) GetLatestBlock(ctx context.Context) (*rpc.Block, error) {
	return c.GetBlockByNumber(ctx, c.head, false)
}

func (c *fakeChain) GetBalance(context.Context, string, int64) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (c *fakeChain) GetTransactionCount(context.Context, string, int64) (int64, error) { return 0, nil }
func (c *fakeChain) GetCode(context.Context, string, int64) (string, error)            { return "0x", nil }
func (c *fakeChain) GasPrice(context.Context) (*big.Int, error)                        { return big.NewInt(1), nil }

func (c *fakeChain) GetTransactionsByHash(context.Context, []string) ([]*rpc.Transaction, error) {
	return nil, errors.New("not supported")
}

func (c *fakeChain) GetTransactionReceiptsByHash(_ context.Context, hashes []string) ([]*rpc.TransactionReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*rpc.TransactionReceipt, len(hashes))
	for i, h := range hashes {
		out[i] = c.receipts[strings.ToLower(h)]
	}
	return out, nil
}

func (c *fakeChain) GetLogs(context.Context, rpc.LogFilter) ([]*rpc.Log, error) { return nil, nil }

func (c *fakeChain) Call(context.Context, rpc.CallMsg, int64) (string, error) {
	return "", errors.New("execution reverted")
}

func (c *fakeChain) TraceTransaction(_ context.Context, hash string) (*rpc.CallFrame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.traces[strings.ToLower(hash)]; ok {
		return f, nil
	}
	return nil, errors.New("trace not found")
}

var _ chain.Client = (*fakeChain)(nil)

// memDB is an in-memory rendition of the block, checkpoint, reorg and
// record tables with the same insert-once semantics as the SQL schema.
type memDB struct {
	mu          sync.Mutex
	blocks      map[int64]model.Block
	txs         map[string]model.ChainTransaction
	checkpoints map[string]model.Checkpoint
	reorgs      []event.ReorgEvent
	details     map[string]model.TransactionDetail
	events      map[string]model.DecodedEvent
	tokens      map[string]model.TokenTransfer
	nfts        map[string]model.NFTTransfer
	defi        map[string]model.DeFiInteraction
	calls       map[string]model.InternalCall
	failTx      map[string]error
}

func newMemDB() *memDB {
	return &memDB{
		blocks:      map[int64]model.Block{},
		txs:         map[string]model.ChainTransaction{},
		checkpoints: map[string]model.Checkpoint{},
		details:     map[string]model.TransactionDetail{},
		events:      map[string]model.DecodedEvent{},
		tokens:      map[string]model.TokenTransfer{},
		nfts:        map[string]model.NFTTransfer{},
		defi:        map[string]model.DeFiInteraction{},
		calls:       map[string]model.InternalCall{},
		failTx:      map[string]error{},
	}
}

func recKey(hash string, idx int64) string { return fmt.Sprintf("%s:%d", hash, idx) }

type memBlocks struct{ *memDB }

func (m memBlocks) Get(_ context.Context, _ model.ChainID, n int64) (*model.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blocks[n]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m memBlocks) InsertTx(_ context.Context, _ *sql.Tx, b *model.Block) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blocks[b.Number]; ok {
		return false, nil
	}
	m.blocks[b.Number] = *b
	return true, nil
}

func (m memBlocks) MarkReorganizedFromTx(_ context.Context, _ *sql.Tx, _ model.ChainID, from int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for num, b := range m.blocks {
		if num >= from && b.Status != model.BlockStatusReorganized {
			b.Status = model.BlockStatusReorganized
			m.blocks[num] = b
			n++
		}
	}
	return n, nil
}

func (m memBlocks) MarkCompleteTx(_ context.Context, _ *sql.Tx, _ model.ChainID, n int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.blocks[n]; ok && b.Status == model.BlockStatusPending {
		b.Status = model.BlockStatusComplete
		m.blocks[n] = b
	}
	return nil
}

func (m memBlocks) InsertTransactionTx(_ context.Context, _ *sql.Tx, t *model.ChainTransaction) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failTx[t.TxHash]; err != nil {
		return false, err
	}
	if _, ok := m.txs[t.TxHash]; ok {
		return false, nil
	}
	m.txs[t.TxHash] = *t
	return true, nil
}

func (m memBlocks) CountTransactions(_ context.Context, _ model.ChainID, n int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, t := range m.txs {
		if t.BlockNumber == n {
			count++
		}
	}
	return count, nil
}

func (m memBlocks) ListRange(_ context.Context, _ model.ChainID, from, to int64) ([]model.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Block
	for n, b := range m.blocks {
		if n >= from && n <= to {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m memBlocks) DeleteFromTx(_ context.Context, _ *sql.Tx, _ model.ChainID, from int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for num := range m.blocks {
		if num >= from {
			delete(m.blocks, num)
			n++
		}
	}
	for h, t := range m.txs {
		if t.BlockNumber >= from {
			delete(m.txs, h)
		}
	}
	return n, nil
}

type memCheckpoints struct{ *memDB }

func (m memCheckpoints) Get(_ context.Context, name string) (*model.Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp, ok := m.checkpoints[name]
	if !ok {
		return nil, nil
	}
	return &cp, nil
}

func (m memCheckpoints) SaveTx(_ context.Context, _ *sql.Tx, cp *model.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.checkpoints[cp.Name]; ok && cur.BlockNumber >= cp.BlockNumber {
		return nil
	}
	m.checkpoints[cp.Name] = *cp
	return nil
}

func (m memCheckpoints) ResetTx(_ context.Context, _ *sql.Tx, cp *model.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints[cp.Name] = *cp
	return nil
}

type memReorgs struct{ *memDB }

func (m memReorgs) InsertTx(_ context.Context, _ *sql.Tx, ev *event.ReorgEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reorgs = append(m.reorgs, *ev)
	return true, nil
}

type memRecords struct{ *memDB }

func (m memRecords) InsertTransactionDetailsTx(_ context.Context, _ *sql.Tx, rows []model.TransactionDetail) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range rows {
		if _, ok := m.details[r.TxHash]; !ok {
			m.details[r.TxHash] = r
			n++
		}
	}
	return n, nil
}

func (m memRecords) InsertDecodedEventsTx(_ context.Context, _ *sql.Tx, rows []model.DecodedEvent) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range rows {
		k := recKey(r.TxHash, r.LogIndex)
		if _, ok := m.events[k]; !ok {
			m.events[k] = r
			n++
		}
	}
	return n, nil
}

func (m memRecords) InsertTokenTransfersTx(_ context.Context, _ *sql.Tx, rows []model.TokenTransfer) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range rows {
		k := recKey(r.TxHash, r.LogIndex)
		if _, ok := m.tokens[k]; !ok {
			m.tokens[k] = r
			n++
		}
	}
	return n, nil
}

func (m memRecords) InsertNFTTransfersTx(_ context.Context, _ *sql.Tx, rows []model.NFTTransfer) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range rows {
		k := recKey(r.TxHash, r.LogIndex)
		if _, ok := m.nfts[k]; !ok {
			m.nfts[k] = r
			n++
		}
	}
	return n, nil
}

func (m memRecords) InsertDeFiInteractionsTx(_ context.Context, _ *sql.Tx, rows []model.DeFiInteraction) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range rows {
		k := recKey(r.TxHash, r.LogIndex)
		if _, ok := m.defi[k]; !ok {
			m.defi[k] = r
			n++
		}
	}
	return n, nil
}

func (m memRecords) InsertInternalCallsTx(_ context.Context, _ *sql.Tx, rows []model.InternalCall) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range rows {
		k := r.TxHash + ":" + r.TraceAddress
		if _, ok := m.calls[k]; !ok {
			m.calls[k] = r
			n++
		}
	}
	return n, nil
}

func (m *memDB) checkpoint(name string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp, ok := m.checkpoints[name]
	return cp.BlockNumber, ok
}

func (m *memDB) blockStatus(n int64) model.BlockStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blocks[n].Status
}

// highestComplete returns the highest n such that every block from start
// through n is stored and not PENDING.
func (m *memDB) highestComplete(start int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := start - 1
	for {
		b, ok := m.blocks[n+1]
		if !ok || b.Status == model.BlockStatusPending {
			return n
		}
		n++
	}
}

var testChain = model.Chain{ID: 1, Name: "ethereum", RPCURLs: []string{"http://fake"}, Active: true, Checkpointed: true, StartBlock: 100}

type harness struct {
	chain *fakeChain
	mem   *memDB
	pool  *endpointpool.Pool
	db    *sql.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{chain: newFakeChain(), mem: newMemDB()}
	pool, err := endpointpool.New([]model.Chain{testChain}, func(model.Chain, string) chain.Client { return h.chain }, endpointpool.Config{}, slog.Default())
	require.NoError(t, err)
	h.pool = pool
	h.db, err = sql.Open("fake_ingester", "")
	require.NoError(t, err)
	return h
}

func (h *harness) ingester(cfg Config, opts ...Option) *Ingester {
	logger := slog.Default()
	n := normalizer.New(decode.NewDecoder(decode.NewResolver(nil, logger), logger), logger)
	w := writer.New(h.db, nil, memRecords{h.mem}, logger)
	v := reorgdetector.New(h.db, memBlocks{h.mem}, memReorgs{h.mem}, logger)
	return New(testChain, h.pool, h.db, memBlocks{h.mem}, memCheckpoints{h.mem}, w, n, v, cfg, logger, opts...)
}
