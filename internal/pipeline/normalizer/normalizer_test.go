package normalizer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/emperorhan/multichain-ingestor/internal/chain/rpc"
	"github.com/emperorhan/multichain-ingestor/internal/decode"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sender    = "0x1111111111111111111111111111111111111111"
	recipient = "0x2222222222222222222222222222222222222222"
	tokenAddr = "0x3333333333333333333333333333333333333333"

	transferTopic = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"
)

func word(v string) string {
	v = strings.TrimPrefix(v, "0x")
	return strings.Repeat("0", 64-len(v)) + v
}

func newTestNormalizer() *Normalizer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(decode.NewDecoder(decode.NewResolver(nil, logger), logger), logger)
}

func transferTx() *rpc.Transaction {
	return &rpc.Transaction{
		Hash:             "0xAAA1",
		BlockNumber:      "0x65",
		TransactionIndex: "0x0",
		From:             strings.ToUpper(sender[:2]) + sender[2:],
		To:               tokenAddr,
		Value:            "0x0",
		GasPrice:         "0x3b9aca00",
		Input:            "0xa9059cbb" + word(recipient) + word("64"),
	}
}

func transferLog() *rpc.Log {
	return &rpc.Log{
		Address:         tokenAddr,
		Topics:          []string{transferTopic, "0x" + word(sender), "0x" + word(recipient)},
		Data:            "0x" + word("64"),
		BlockNumber:     "0x65",
		TransactionHash: "0xaaa1",
		LogIndex:        "0x0",
	}
}

func TestTransaction_TransferWithLog(t *testing.T) {
	n := newTestNormalizer()
	out := n.Transaction(context.Background(), TxInput{
		ChainID: 1,
		Tx:      transferTx(),
		Receipt: &rpc.TransactionReceipt{Status: "0x1", GasUsed: "0x5208", EffectiveGasPrice: "0x77359400", Logs: []*rpc.Log{transferLog()}},
	})

	d := out.Detail
	assert.Equal(t, "0xaaa1", d.TxHash)
	assert.Equal(t, int64(101), d.BlockNumber)
	assert.Equal(t, sender, d.FromAddress)
	assert.Equal(t, "transfer", d.FunctionName)
	require.NotNil(t, d.FunctionSelector)
	assert.Equal(t, "0xa9059cbb", *d.FunctionSelector)
	assert.Equal(t, int64(21000), d.GasUsed)
	assert.Equal(t, "2000000000", d.GasPriceWei)
	assert.Equal(t, model.TxStatusSuccess, d.Status)

	var args map[string]string
	require.NoError(t, json.Unmarshal(d.DecodedArgs, &args))
	assert.Equal(t, "100", args["value"])

	require.Len(t, out.Events, 1)
	assert.Equal(t, "Transfer", out.Events[0].EventName)
	require.NotNil(t, out.Events[0].EventSignature)

	// The log-derived transfer wins; the call does not add a second row.
	require.Len(t, out.Derived.TokenTransfers, 1)
	assert.Equal(t, int64(0), out.Derived.TokenTransfers[0].LogIndex)
	assert.Equal(t, model.TransferTypeTransfer, out.Derived.TokenTransfers[0].TransferType)

	assert.Equal(t, "transfer", out.Chain.FunctionName)
	assert.Equal(t, d.TxHash, out.Chain.TxHash)
}

func TestTransaction_TransferWithoutLogUsesCall(t *testing.T) {
	n := newTestNormalizer()
	out := n.Transaction(context.Background(), TxInput{
		ChainID: 1,
		Tx:      transferTx(),
		Receipt: &rpc.TransactionReceipt{Status: "0x1"},
	})

	require.Len(t, out.Derived.TokenTransfers, 1)
	assert.Equal(t, model.CallLogIndex, out.Derived.TokenTransfers[0].LogIndex)
}

func TestTransaction_FailedKeepsRevertAndSkipsDerived(t *testing.T) {
	n := newTestNormalizer()
	reason := "ERC20: transfer amount exceeds balance"
	out := n.Transaction(context.Background(), TxInput{
		ChainID:      1,
		Tx:           transferTx(),
		Receipt:      &rpc.TransactionReceipt{Status: "0x0", GasUsed: "0x1"},
		RevertReason: &reason,
	})

	assert.Equal(t, model.TxStatusFailed, out.Detail.Status)
	require.NotNil(t, out.Detail.RevertReason)
	assert.Equal(t, reason, *out.Detail.RevertReason)
	assert.Zero(t, out.Derived.Len())
	assert.Empty(t, out.Events)
}

func TestTransaction_UnknownSelectorAndPlainTransfer(t *testing.T) {
	n := newTestNormalizer()

	tx := transferTx()
	tx.Input = "0xdeadbeef"
	out := n.Transaction(context.Background(), TxInput{ChainID: 1, Tx: tx})
	assert.Equal(t, decode.UnknownName, out.Detail.FunctionName)
	assert.Nil(t, out.Detail.DecodedArgs)
	assert.Equal(t, "0xdeadbeef", out.Detail.InputData)

	tx.Input = "0x"
	tx.Value = "0xde0b6b3a7640000"
	out = n.Transaction(context.Background(), TxInput{ChainID: 1, Tx: tx})
	assert.Empty(t, out.Detail.FunctionName)
	assert.Nil(t, out.Detail.FunctionSelector)
	assert.Equal(t, "1000000000000000000", out.Detail.ValueWei)
}

func TestTransaction_ContractCreation(t *testing.T) {
	n := newTestNormalizer()
	tx := transferTx()
	tx.To = ""
	out := n.Transaction(context.Background(), TxInput{ChainID: 1, Tx: tx, Receipt: &rpc.TransactionReceipt{Status: "0x1"}})
	assert.Nil(t, out.Detail.ToAddress)
	assert.Zero(t, out.Derived.Len())
}

func TestBlockAndHelpers(t *testing.T) {
	b := Block(1, &rpc.Block{Number: "0x65", Hash: "0xABC", ParentHash: "0xDEF", Timestamp: "0x5f5e1000", TransactionHashes: []string{"0x1", "0x2"}})
	assert.Equal(t, int64(101), b.Number)
	assert.Equal(t, "0xabc", b.Hash)
	assert.Equal(t, "0xdef", b.ParentHash)
	assert.Equal(t, 2, b.TxCount)
	assert.Equal(t, model.BlockStatusPending, b.Status)
	require.NotNil(t, b.BlockTime)
	assert.Equal(t, int64(0x5f5e1000), b.BlockTime.Unix())

	assert.Nil(t, BlockTime(&rpc.Block{Timestamp: "zz"}))

	staged := StagedLog(7, 1, transferLog(), "Transfer")
	assert.Equal(t, int64(7), staged.CycleID)
	assert.Equal(t, tokenAddr, staged.Address)
	assert.Equal(t, int64(101), staged.BlockNumber)
}
