package decode

import (
	"context"
	"strconv"
	"strings"

	"github.com/emperorhan/multichain-ingestor/internal/chain/rpc"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
)

// DefaultTraceMaxDepth bounds how deep FlattenTrace descends.
const DefaultTraceMaxDepth = 32

type traceItem struct {
	frame *rpc.CallFrame
	depth int
	path  string
}

// FlattenTrace walks a callTracer tree in pre-order with an explicit stack
// and returns one row per nested call. The root frame is the transaction
// itself and is not emitted. Frames deeper than maxDepth are dropped.
func (d *Decoder) FlattenTrace(ctx context.Context, chainID model.ChainID, txHash string, root *rpc.CallFrame, maxDepth int) []model.InternalCall {
	if root == nil {
		return nil
	}
	if maxDepth <= 0 {
		maxDepth = DefaultTraceMaxDepth
	}

	var (
		out   []model.InternalCall
		stack []traceItem
	)
	pushChildren := func(parent *rpc.CallFrame, depth int, path string) {
		if depth > maxDepth {
			return
		}
		for i := len(parent.Calls) - 1; i >= 0; i-- {
			childPath := strconv.Itoa(i)
			if path != "" {
				childPath = path + "." + childPath
			}
			stack = append(stack, traceItem{frame: &parent.Calls[i], depth: depth, path: childPath})
		}
	}
	pushChildren(root, 1, "")

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		f := item.frame

		call := model.InternalCall{
			ChainID:      chainID,
			TxHash:       txHash,
			TraceAddress: item.path,
			Depth:        item.depth,
			CallType:     strings.ToLower(f.Type),
			FromAddress:  strings.ToLower(f.From),
			ToAddress:    strings.ToLower(f.To),
			ValueWei:     rpc.HexToDecimal(f.Value),
		}
		if f.Error != "" {
			e := f.Error
			call.Error = &e
		}
		if len(f.Input) >= 10 {
			r := d.DecodeFunction(ctx, f.Input)
			call.FunctionName = r.Label()
			call.DecodedArgs = ArgsJSON(r)
		}
		out = append(out, call)

		pushChildren(f, item.depth+1, item.path)
	}
	return out
}
