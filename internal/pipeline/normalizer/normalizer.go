package normalizer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/chain/rpc"
	"github.com/emperorhan/multichain-ingestor/internal/decode"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
)

// Normalizer turns raw RPC transactions, receipts and logs into domain
// records, decoding and classifying along the way. Decode problems never
// surface as errors: the raw fields are always carried through.
type Normalizer struct {
	decoder *decode.Decoder
	logger  *slog.Logger
}

func New(decoder *decode.Decoder, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		decoder: decoder,
		logger:  logger.With("component", "normalizer"),
	}
}

// TxInput is one transaction with its receipt. Receipt may be nil when the
// provider has not indexed it yet; status and gas then default.
type TxInput struct {
	ChainID      model.ChainID
	Tx           *rpc.Transaction
	Receipt      *rpc.TransactionReceipt
	BlockTime    *time.Time
	RevertReason *string
}

// TxOutput holds every row derived from one transaction.
type TxOutput struct {
	Detail  model.TransactionDetail
	Chain   model.ChainTransaction
	Events  []model.DecodedEvent
	Derived decode.Records
}

func (n *Normalizer) Decoder() *decode.Decoder { return n.decoder }

func (n *Normalizer) Transaction(ctx context.Context, in TxInput) TxOutput {
	tx := in.Tx
	blockNumber := parseInt(tx.BlockNumber)
	from := strings.ToLower(tx.From)
	var to *string
	if tx.To != "" {
		t := strings.ToLower(tx.To)
		to = &t
	}

	status := model.TxStatusSuccess
	var gasUsed int64
	gasPrice := tx.GasPrice
	if in.Receipt != nil {
		status = model.TxStatusFromReceipt(in.Receipt.Status)
		gasUsed = parseInt(in.Receipt.GasUsed)
		if in.Receipt.EffectiveGasPrice != "" {
			gasPrice = in.Receipt.EffectiveGasPrice
		}
	}

	fn := n.decoder.DecodeFunction(ctx, tx.Input)
	var selector *string
	name := ""
	if fn.Hex() != "" {
		s := fn.Hex()
		selector = &s
		name = fn.Label()
	}

	var revert *string
	if status == model.TxStatusFailed {
		revert = in.RevertReason
	}

	out := TxOutput{
		Detail: model.TransactionDetail{
			ChainID:          in.ChainID,
			TxHash:           strings.ToLower(tx.Hash),
			BlockNumber:      blockNumber,
			BlockTime:        in.BlockTime,
			TxIndex:          parseInt(tx.TransactionIndex),
			FromAddress:      from,
			ToAddress:        to,
			ValueWei:         rpc.HexToDecimal(tx.Value),
			GasUsed:          gasUsed,
			GasPriceWei:      rpc.HexToDecimal(gasPrice),
			Status:           status,
			FunctionName:     name,
			FunctionSelector: selector,
			DecodedArgs:      decode.ArgsJSON(fn),
			RevertReason:     revert,
			InputData:        tx.Input,
		},
	}
	out.Chain = model.ChainTransaction{
		ChainID:          in.ChainID,
		TxHash:           out.Detail.TxHash,
		BlockNumber:      blockNumber,
		TxIndex:          out.Detail.TxIndex,
		FromAddress:      from,
		ToAddress:        to,
		ValueWei:         out.Detail.ValueWei,
		GasUsed:          gasUsed,
		Status:           status,
		FunctionName:     name,
		FunctionSelector: selector,
	}

	transferLogs := make(map[string]bool)
	if in.Receipt != nil && status == model.TxStatusSuccess {
		for _, l := range in.Receipt.Logs {
			if l == nil || l.Removed {
				continue
			}
			ev, derived := n.Log(ctx, in.ChainID, l, from)
			out.Events = append(out.Events, ev)
			out.Derived.Merge(derived)
			if ev.EventName == "Transfer" {
				transferLogs[ev.ContractAddress] = true
			}
		}
	}

	if status == model.TxStatusSuccess && to != nil {
		out.Derived.Merge(decode.ClassifyCall(decode.CallContext{
			ChainID:              in.ChainID,
			TxHash:               out.Detail.TxHash,
			BlockNumber:          blockNumber,
			From:                 from,
			To:                   *to,
			TransferLogContracts: transferLogs,
		}, fn))
	}
	return out
}

// Log decodes one log and classifies it. txFrom attributes DeFi events to
// the transaction sender.
func (n *Normalizer) Log(ctx context.Context, chainID model.ChainID, l *rpc.Log, txFrom string) (model.DecodedEvent, decode.Records) {
	r := n.decoder.DecodeEvent(ctx, l.Topics, l.Data)
	contract := strings.ToLower(l.Address)
	txHash := strings.ToLower(l.TransactionHash)
	logIndex := parseInt(l.LogIndex)
	blockNumber := parseInt(l.BlockNumber)

	ev := model.DecodedEvent{
		ChainID:         chainID,
		TxHash:          txHash,
		LogIndex:        logIndex,
		BlockNumber:     blockNumber,
		ContractAddress: contract,
		EventName:       r.Label(),
		DecodedArgs:     decode.ArgsJSON(r),
		Topics:          l.Topics,
		Data:            l.Data,
	}
	if d, ok := r.(decode.Decoded); ok {
		sig := d.Signature
		ev.EventSignature = &sig
	}

	derived := decode.ClassifyEvent(decode.EventContext{
		ChainID:     chainID,
		TxHash:      txHash,
		LogIndex:    logIndex,
		BlockNumber: blockNumber,
		Contract:    contract,
		TxFrom:      txFrom,
	}, r)
	return ev, derived
}

// StagedLog converts a log into its volatile per-cycle form.
func StagedLog(cycleID int64, chainID model.ChainID, l *rpc.Log, eventName string) model.StagedLog {
	return model.StagedLog{
		CycleID:     cycleID,
		ChainID:     chainID,
		TxHash:      strings.ToLower(l.TransactionHash),
		LogIndex:    parseInt(l.LogIndex),
		BlockNumber: parseInt(l.BlockNumber),
		Address:     strings.ToLower(l.Address),
		Topics:      l.Topics,
		Data:        l.Data,
		EventName:   eventName,
	}
}

// Block converts a block header into its full-history row.
func Block(chainID model.ChainID, b *rpc.Block) model.Block {
	return model.Block{
		ChainID:    chainID,
		Number:     parseInt(b.Number),
		Hash:       strings.ToLower(b.Hash),
		ParentHash: strings.ToLower(b.ParentHash),
		BlockTime:  BlockTime(b),
		TxCount:    b.TxCount(),
		Status:     model.BlockStatusPending,
	}
}

// BlockTime returns the header timestamp, or nil when it does not parse.
func BlockTime(b *rpc.Block) *time.Time {
	if b == nil || b.Timestamp == "" {
		return nil
	}
	ts, err := rpc.ParseHexInt64(b.Timestamp)
	if err != nil {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}

func parseInt(v string) int64 {
	if v == "" {
		return 0
	}
	n, err := rpc.ParseHexInt64(v)
	if err != nil {
		return 0
	}
	return n
}
