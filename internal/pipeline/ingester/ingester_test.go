package ingester

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/chain/rpc"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tokenContract = "0x00000000000000000000000000000000000000aa"
	sender        = "0x0000000000000000000000000000000000000011"
	trackedWallet = "0x0000000000000000000000000000000000000022"
)

func transferInput(to string, amount int64) string {
	pad := func(s string) string { return strings.Repeat("0", 64-len(s)) + s }
	return "0xa9059cbb" + pad(strings.TrimPrefix(to, "0x")) + pad(strings.TrimPrefix(hexNum(amount), "0x"))
}

func transferTx(hash string) *rpc.Transaction {
	return &rpc.Transaction{
		Hash:             hash,
		TransactionIndex: "0x0",
		From:             sender,
		To:               tokenContract,
		Value:            "0x0",
		Gas:              "0x186a0",
		GasPrice:         "0x3b9aca00",
		Nonce:            "0x1",
		Input:            transferInput(trackedWallet, 1000),
	}
}

func successReceipt(hash string, block int64) *rpc.TransactionReceipt {
	return &rpc.TransactionReceipt{
		TransactionHash: hash,
		BlockNumber:     hexNum(block),
		Status:          "0x1",
		GasUsed:         "0xb411",
		Logs:            []*rpc.Log{},
	}
}

// stepUntilIdle drives the ingester until it reports no progress.
func stepUntilIdle(t *testing.T, ing *Ingester) {
	t.Helper()
	for i := 0; i < 100; i++ {
		progressed, err := ing.Step(context.Background())
		require.NoError(t, err)
		if !progressed {
			return
		}
	}
	t.Fatal("ingester never caught up")
}

func TestIngest_EndToEndTransfer(t *testing.T) {
	h := newHarness(t)
	h.chain.addBlock(100)
	h.chain.addBlock(101, transferTx("0xT1"))
	h.chain.addReceipt(successReceipt("0xT1", 101))

	ing := h.ingester(Config{})
	stepUntilIdle(t, ing)

	require.Len(t, h.mem.blocks, 2)
	assert.Equal(t, model.BlockStatusComplete, h.mem.blockStatus(100))
	assert.Equal(t, model.BlockStatusComplete, h.mem.blockStatus(101))

	require.Len(t, h.mem.txs, 1)
	tx := h.mem.txs["0xt1"]
	assert.Equal(t, "transfer", tx.FunctionName)
	assert.Equal(t, int64(101), tx.BlockNumber)

	require.Len(t, h.mem.tokens, 1)
	for _, tr := range h.mem.tokens {
		assert.Equal(t, model.TransferTypeTransfer, tr.TransferType)
		assert.Equal(t, sender, tr.FromAddress)
		assert.Equal(t, trackedWallet, tr.ToAddress)
		assert.Equal(t, "1000", tr.Amount)
		assert.Equal(t, model.CallLogIndex, tr.LogIndex)
	}
	require.Len(t, h.mem.details, 1)
	assert.Equal(t, "transfer", h.mem.details["0xt1"].FunctionName)

	// A second run over the same range from a lost checkpoint adds nothing.
	h.mem.checkpoints = map[string]model.Checkpoint{}
	stepUntilIdle(t, h.ingester(Config{}))

	// So does re-driving a block left PENDING.
	b := h.mem.blocks[101]
	b.Status = model.BlockStatusPending
	h.mem.blocks[101] = b
	client := h.chain
	require.NoError(t, h.ingester(Config{}).ProcessBlock(context.Background(), client, 101))

	assert.Len(t, h.mem.blocks, 2)
	assert.Len(t, h.mem.txs, 1)
	assert.Len(t, h.mem.details, 1)
	assert.Len(t, h.mem.tokens, 1)
	assert.Equal(t, model.BlockStatusComplete, h.mem.blockStatus(101))
}

func TestIngest_ReorgFlagsBlocksAndAuditsOnce(t *testing.T) {
	h := newHarness(t)
	h.mem.blocks[99] = model.Block{ChainID: 1, Number: 99, Hash: "0xstale99", Status: model.BlockStatusComplete}
	h.mem.blocks[102] = model.Block{ChainID: 1, Number: 102, Hash: blockHash(102), Status: model.BlockStatusComplete}
	h.chain.addBlock(100)

	ing := h.ingester(Config{})
	require.NoError(t, ing.ProcessBlock(context.Background(), h.chain, 100))

	assert.Equal(t, model.BlockStatusReorganized, h.mem.blockStatus(100))
	assert.Equal(t, model.BlockStatusReorganized, h.mem.blockStatus(102))
	assert.Equal(t, model.BlockStatusComplete, h.mem.blockStatus(99))

	require.Len(t, h.mem.reorgs, 1)
	ev := h.mem.reorgs[0]
	assert.Equal(t, int64(100), ev.BlockNumber)
	assert.Equal(t, "0xstale99", ev.StoredParentHash)
	assert.Equal(t, blockHash(99), ev.DeclaredParentHash)
	assert.Equal(t, int64(2), ev.BlocksFlagged)

	// Flagged blocks are skipped on later passes without new audit rows.
	require.NoError(t, ing.ProcessBlock(context.Background(), h.chain, 100))
	assert.Len(t, h.mem.reorgs, 1)
}

func TestIngest_CheckpointNeverPassesCommittedBlocks(t *testing.T) {
	h := newHarness(t)
	for n := int64(100); n <= 104; n++ {
		h.chain.addBlock(n)
	}
	h.chain.failBlocks[103] = errors.New("502 bad gateway")
	name := CheckpointName(testChain)

	assertInvariant := func() {
		t.Helper()
		if cp, ok := h.mem.checkpoint(name); ok {
			assert.LessOrEqual(t, cp, h.mem.highestComplete(testChain.StartBlock))
		}
	}

	ing := h.ingester(Config{CheckpointInterval: 2})
	for i := 0; i < 3; i++ {
		progressed, err := ing.Step(context.Background())
		require.NoError(t, err)
		require.True(t, progressed)
		assertInvariant()
	}
	cp, ok := h.mem.checkpoint(name)
	require.True(t, ok)
	assert.Equal(t, int64(101), cp)

	_, err := ing.Step(context.Background())
	require.Error(t, err)
	assertInvariant()

	// Crash and restart: resumes after the checkpoint, skipping 102.
	delete(h.chain.failBlocks, 103)
	restarted := h.ingester(Config{CheckpointInterval: 2})
	progressed, err := restarted.Step(context.Background())
	require.NoError(t, err)
	require.True(t, progressed)
	assert.Equal(t, int64(103), restarted.Next())
	assertInvariant()

	stepUntilIdle(t, restarted)
	assertInvariant()
	restarted.flush(context.Background())
	cp, _ = h.mem.checkpoint(name)
	assert.Equal(t, int64(104), cp)
}

func TestIngest_TransactionFailureDoesNotAbortBlock(t *testing.T) {
	h := newHarness(t)
	h.chain.addBlock(100, transferTx("0xgood"), transferTx("0xbad"))
	h.chain.addReceipt(successReceipt("0xgood", 100))
	h.chain.addReceipt(successReceipt("0xbad", 100))
	h.mem.failTx["0xbad"] = errors.New("deadlock detected")

	ing := h.ingester(Config{})
	require.NoError(t, ing.ProcessBlock(context.Background(), h.chain, 100))

	assert.Equal(t, model.BlockStatusComplete, h.mem.blockStatus(100))
	assert.Contains(t, h.mem.txs, "0xgood")
	assert.NotContains(t, h.mem.txs, "0xbad")

	incomplete, err := ing.VerifyCompleteness(context.Background(), 100, 100)
	require.NoError(t, err)
	require.Len(t, incomplete, 1)
	assert.Equal(t, Incomplete{Number: 100, Declared: 2, Stored: 1}, incomplete[0])
}

func TestIngest_MissingReceiptSkipsTransaction(t *testing.T) {
	h := newHarness(t)
	h.chain.addBlock(100, transferTx("0xnoreceipt"))

	require.NoError(t, h.ingester(Config{}).ProcessBlock(context.Background(), h.chain, 100))
	assert.Empty(t, h.mem.txs)
	assert.Equal(t, model.BlockStatusComplete, h.mem.blockStatus(100))
}

func TestVerifyCompleteness_AllComplete(t *testing.T) {
	h := newHarness(t)
	h.chain.addBlock(100, transferTx("0xa"))
	h.chain.addReceipt(successReceipt("0xa", 100))
	h.chain.addBlock(101)

	ing := h.ingester(Config{})
	stepUntilIdle(t, ing)

	incomplete, err := ing.VerifyCompleteness(context.Background(), 100, 101)
	require.NoError(t, err)
	assert.Empty(t, incomplete)
}

func TestReprocess_RewindsAndReingests(t *testing.T) {
	h := newHarness(t)
	h.chain.addBlock(100)
	h.chain.addBlock(101, transferTx("0xT1"))
	h.chain.addReceipt(successReceipt("0xT1", 101))

	ing := h.ingester(Config{})
	stepUntilIdle(t, ing)
	ing.flush(context.Background())

	deleted, err := ing.Reprocess(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, int64(101), ing.Next())
	cp, _ := h.mem.checkpoint(CheckpointName(testChain))
	assert.Equal(t, int64(100), cp)
	assert.NotContains(t, h.mem.blocks, int64(101))
	assert.Empty(t, h.mem.txs)

	stepUntilIdle(t, ing)
	assert.Equal(t, model.BlockStatusComplete, h.mem.blockStatus(101))
	assert.Len(t, h.mem.txs, 1)
	assert.Len(t, h.mem.tokens, 1)
}

func TestReprocess_RejectsNegative(t *testing.T) {
	h := newHarness(t)
	_, err := h.ingester(Config{}).Reprocess(context.Background(), -1)
	require.Error(t, err)
}

func TestIngest_InternalCallsTraced(t *testing.T) {
	h := newHarness(t)
	h.chain.addBlock(100, transferTx("0xT1"))
	h.chain.addReceipt(successReceipt("0xT1", 100))
	h.chain.traces["0xt1"] = &rpc.CallFrame{
		Type: "CALL", From: sender, To: tokenContract, Input: transferInput(trackedWallet, 1000),
		Calls: []rpc.CallFrame{
			{Type: "CALL", From: tokenContract, To: trackedWallet, Input: transferInput(sender, 5)},
		},
	}

	require.NoError(t, h.ingester(Config{TraceInternalCalls: true}).ProcessBlock(context.Background(), h.chain, 100))

	require.Len(t, h.mem.calls, 1)
	call := h.mem.calls["0xt1:0"]
	assert.Equal(t, "CALL", call.CallType)
	assert.Equal(t, 1, call.Depth)
	assert.Equal(t, "transfer", call.FunctionName)
}

type recordingPublisher struct {
	categories []string
}

func (p *recordingPublisher) Publish(_ context.Context, category string, _ model.ChainID, _ interface{}) error {
	p.categories = append(p.categories, category)
	return nil
}

type mapCache map[int64]string

func (c mapCache) GetHash(_ context.Context, _ model.ChainID, n int64) (string, bool) {
	h, ok := c[n]
	return h, ok
}

func (c mapCache) PutHash(_ context.Context, _ model.ChainID, n int64, hash string) { c[n] = hash }

func TestIngest_PublishesAndCaches(t *testing.T) {
	h := newHarness(t)
	h.chain.addBlock(100, transferTx("0xT1"))
	h.chain.addReceipt(successReceipt("0xT1", 100))
	pub := &recordingPublisher{}
	cache := mapCache{}

	require.NoError(t, h.ingester(Config{}, WithPublisher(pub), WithBlockCache(cache)).
		ProcessBlock(context.Background(), h.chain, 100))

	assert.Equal(t, []string{CategoryTransactions, CategoryBlocks}, pub.categories)
	assert.Equal(t, blockHash(100), cache[100])
}

func TestRun_FlushesCheckpointWhenIdleAndStops(t *testing.T) {
	h := newHarness(t)
	h.chain.addBlock(100)
	h.chain.addBlock(101)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ing := h.ingester(Config{PollInterval: time.Millisecond}, WithSleepFn(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	err := ing.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	cp, ok := h.mem.checkpoint(CheckpointName(testChain))
	require.True(t, ok)
	assert.Equal(t, int64(101), cp)
}

func TestRun_StartsAtHeadWithoutStartBlock(t *testing.T) {
	h := newHarness(t)
	h.chain.addBlock(500)
	c := testChain
	c.StartBlock = 0
	ing := h.ingester(Config{})
	ing.chain = c

	require.NoError(t, ing.load(context.Background()))
	assert.Equal(t, int64(500), ing.Next())
}
