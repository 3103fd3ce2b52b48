package orchestrator

import (
	"context"
	"strconv"
	"strings"

	"github.com/emperorhan/multichain-ingestor/internal/chain/rpc"
	"github.com/emperorhan/multichain-ingestor/internal/decode"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/fetcher"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/normalizer"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/writer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

// assemble turns one chain's fetch result into rows tagged with cycleID.
// Transactions are normalized first so their receipt context wins over the
// bare log when both describe the same (tx hash, log index).
func assemble(ctx context.Context, n *normalizer.Normalizer, cycleID int64, res *fetcher.Result) writer.Batch {
	var b writer.Batch
	c := res.Chain

	b.ChainSnapshots = append(b.ChainSnapshots, chainSnapshot(cycleID, res))
	for _, e := range res.Entities {
		b.EntitySnapshots = append(b.EntitySnapshots, entitySnapshot(cycleID, c.ID, res, e))
	}

	seen := newRecordKeys()
	for _, bundle := range res.Transactions {
		out := n.Transaction(ctx, normalizer.TxInput{
			ChainID:      c.ID,
			Tx:           bundle.Tx,
			Receipt:      bundle.Receipt,
			RevertReason: bundle.RevertReason,
		})
		b.Details = append(b.Details, out.Detail)
		b.StagedTransactions = append(b.StagedTransactions, model.StagedTransaction{
			CycleID:     cycleID,
			ChainID:     c.ID,
			TxHash:      out.Detail.TxHash,
			BlockNumber: out.Detail.BlockNumber,
		})
		seen.addEvents(&b, out.Events)
		seen.addDerived(&b, out.Derived)
	}

	for _, l := range res.Logs {
		ev, derived := n.Log(ctx, c.ID, l, "")
		b.StagedLogs = append(b.StagedLogs, normalizer.StagedLog(cycleID, c.ID, l, ev.EventName))
		seen.addEvents(&b, []model.DecodedEvent{ev})
		seen.addDerived(&b, derived)
	}
	return b
}

func chainSnapshot(cycleID int64, res *fetcher.Result) model.ChainSnapshot {
	snap := model.ChainSnapshot{
		CycleID:      cycleID,
		ChainID:      res.Chain.ID,
		BlockNumber:  res.HeadNumber,
		BlockHash:    strings.ToLower(res.Head.Hash),
		BlockTime:    normalizer.BlockTime(res.Head),
		GasPriceGwei: "0",
		ObservedAt:   res.FetchedAt,
	}
	if res.GasPrice != nil {
		snap.GasPriceGwei = weiToGwei(decimal.NewFromBigInt(res.GasPrice, 0))
	}
	if res.Head.BaseFeePerGas != nil {
		if fee, err := rpc.ParseHexBig(*res.Head.BaseFeePerGas); err == nil {
			g := weiToGwei(decimal.NewFromBigInt(fee, 0))
			snap.BaseFeeGwei = &g
		}
	}
	return snap
}

func entitySnapshot(cycleID int64, chainID model.ChainID, res *fetcher.Result, e fetcher.EntityState) model.EntitySnapshot {
	snap := model.EntitySnapshot{
		CycleID:     cycleID,
		ChainID:     chainID,
		Address:     strings.ToLower(e.Entity.Address),
		BlockNumber: res.HeadNumber,
		BalanceWei:  "0",
		Nonce:       e.Nonce,
		ObservedAt:  res.FetchedAt,
	}
	if e.Balance != nil {
		snap.BalanceWei = e.Balance.String()
	}
	if code := strings.TrimPrefix(strings.ToLower(e.Code), "0x"); code != "" {
		snap.IsContract = true
		h := crypto.Keccak256Hash(common.FromHex(e.Code)).Hex()
		snap.CodeHash = &h
	}
	return snap
}

func weiToGwei(wei decimal.Decimal) string {
	return wei.Shift(-9).String()
}

// recordKeys dedupes insert-once rows within one batch.
type recordKeys struct {
	events map[string]bool
	tokens map[string]bool
	nfts   map[string]bool
	defi   map[string]bool
}

func newRecordKeys() *recordKeys {
	return &recordKeys{
		events: make(map[string]bool),
		tokens: make(map[string]bool),
		nfts:   make(map[string]bool),
		defi:   make(map[string]bool),
	}
}

func recordKey(chainID model.ChainID, txHash string, logIndex int64) string {
	return chainID.String() + ":" + txHash + ":" + strconv.FormatInt(logIndex, 10)
}

func (k *recordKeys) addEvents(b *writer.Batch, events []model.DecodedEvent) {
	for _, ev := range events {
		key := recordKey(ev.ChainID, ev.TxHash, ev.LogIndex)
		if k.events[key] {
			continue
		}
		k.events[key] = true
		b.Events = append(b.Events, ev)
	}
}

func (k *recordKeys) addDerived(b *writer.Batch, r decode.Records) {
	for _, t := range r.TokenTransfers {
		key := recordKey(t.ChainID, t.TxHash, t.LogIndex)
		if !k.tokens[key] {
			k.tokens[key] = true
			b.Derived.TokenTransfers = append(b.Derived.TokenTransfers, t)
		}
	}
	for _, t := range r.NFTTransfers {
		key := recordKey(t.ChainID, t.TxHash, t.LogIndex)
		if !k.nfts[key] {
			k.nfts[key] = true
			b.Derived.NFTTransfers = append(b.Derived.NFTTransfers, t)
		}
	}
	for _, d := range r.DeFi {
		key := recordKey(d.ChainID, d.TxHash, d.LogIndex)
		if !k.defi[key] {
			k.defi[key] = true
			b.Derived.DeFi = append(b.Derived.DeFi, d)
		}
	}
}
