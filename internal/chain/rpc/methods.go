package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

func (c *Client) GetBlockNumber(ctx context.Context) (int64, error) {
	result, err := c.call(ctx, "eth_blockNumber", nil)
	if err != nil {
		return 0, fmt.Errorf("eth_blockNumber: %w", err)
	}

	var hexNum string
	if err := json.Unmarshal(result, &hexNum); err != nil {
		return 0, fmt.Errorf("unmarshal block number: %w", err)
	}

	blockNumber, err := ParseHexInt64(hexNum)
	if err != nil {
		return 0, fmt.Errorf("parse block number: %w", err)
	}
	return blockNumber, nil
}

// GetBlockByNumber returns nil without error when the node does not know the block.
func (c *Client) GetBlockByNumber(ctx context.Context, blockNumber int64, includeFullTx bool) (*Block, error) {
	return c.getBlock(ctx, formatHexInt64(blockNumber), includeFullTx)
}

// GetLatestBlock returns the head block header with transaction hashes only.
func (c *Client) GetLatestBlock(ctx context.Context) (*Block, error) {
	block, err := c.getBlock(ctx, "latest", false)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, fmt.Errorf("latest block not available")
	}
	return block, nil
}

func (c *Client) getBlock(ctx context.Context, tag string, includeFullTx bool) (*Block, error) {
	result, err := c.call(ctx, "eth_getBlockByNumber", []interface{}{tag, includeFullTx})
	if err != nil {
		return nil, fmt.Errorf("eth_getBlockByNumber(%s): %w", tag, err)
	}
	if isNull(result) {
		return nil, nil
	}

	var block Block
	if err := json.Unmarshal(result, &block); err != nil {
		return nil, fmt.Errorf("unmarshal block: %w", err)
	}
	return &block, nil
}

func (c *Client) GetBalance(ctx context.Context, address string, blockNumber int64) (*big.Int, error) {
	hexVal, err := c.callString(ctx, "eth_getBalance", address, formatHexInt64(blockNumber))
	if err != nil {
		return nil, err
	}
	return ParseHexBig(hexVal)
}

func (c *Client) GetTransactionCount(ctx context.Context, address string, blockNumber int64) (int64, error) {
	hexVal, err := c.callString(ctx, "eth_getTransactionCount", address, formatHexInt64(blockNumber))
	if err != nil {
		return 0, err
	}
	return ParseHexInt64(hexVal)
}

// GetCode returns the hex-encoded contract bytecode, "0x" for plain accounts.
func (c *Client) GetCode(ctx context.Context, address string, blockNumber int64) (string, error) {
	return c.callString(ctx, "eth_getCode", address, formatHexInt64(blockNumber))
}

func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	hexVal, err := c.callString(ctx, "eth_gasPrice")
	if err != nil {
		return nil, err
	}
	return ParseHexBig(hexVal)
}

// Call executes eth_call at blockNumber and returns the hex-encoded output.
func (c *Client) Call(ctx context.Context, msg CallMsg, blockNumber int64) (string, error) {
	return c.callString(ctx, "eth_call", msg, formatHexInt64(blockNumber))
}

// TraceTransaction returns the callTracer frame tree for hash.
func (c *Client) TraceTransaction(ctx context.Context, hash string) (*CallFrame, error) {
	params := []interface{}{hash, map[string]string{"tracer": "callTracer"}}
	result, err := c.call(ctx, "debug_traceTransaction", params)
	if err != nil {
		return nil, fmt.Errorf("debug_traceTransaction(%s): %w", hash, err)
	}
	if isNull(result) {
		return nil, nil
	}

	var frame CallFrame
	if err := json.Unmarshal(result, &frame); err != nil {
		return nil, fmt.Errorf("unmarshal call frame: %w", err)
	}
	return &frame, nil
}

func (c *Client) GetTransactionByHash(ctx context.Context, hash string) (*Transaction, error) {
	result, err := c.call(ctx, "eth_getTransactionByHash", []interface{}{hash})
	if err != nil {
		return nil, fmt.Errorf("eth_getTransactionByHash(%s): %w", hash, err)
	}
	if isNull(result) {
		return nil, nil
	}

	var tx Transaction
	if err := json.Unmarshal(result, &tx); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return &tx, nil
}

func (c *Client) GetTransactionReceipt(ctx context.Context, hash string) (*TransactionReceipt, error) {
	result, err := c.call(ctx, "eth_getTransactionReceipt", []interface{}{hash})
	if err != nil {
		return nil, fmt.Errorf("eth_getTransactionReceipt(%s): %w", hash, err)
	}
	if isNull(result) {
		return nil, nil
	}

	var receipt TransactionReceipt
	if err := json.Unmarshal(result, &receipt); err != nil {
		return nil, fmt.Errorf("unmarshal transaction receipt: %w", err)
	}
	return &receipt, nil
}

func (c *Client) GetLogs(ctx context.Context, filter LogFilter) ([]*Log, error) {
	result, err := c.call(ctx, "eth_getLogs", []interface{}{filter})
	if err != nil {
		return nil, fmt.Errorf("eth_getLogs(%s..%s): %w", filter.FromBlock, filter.ToBlock, err)
	}

	var logs []*Log
	if err := json.Unmarshal(result, &logs); err != nil {
		return nil, fmt.Errorf("unmarshal logs: %w", err)
	}
	return logs, nil
}

// GetTransactionsByHash fetches transactions in one batch. Entries are nil
// where the node returned null.
func (c *Client) GetTransactionsByHash(ctx context.Context, hashes []string) ([]*Transaction, error) {
	return batchByHash[Transaction](ctx, c, "eth_getTransactionByHash", hashes)
}

// GetTransactionReceiptsByHash fetches receipts in one batch. Entries are nil
// where the node returned null.
func (c *Client) GetTransactionReceiptsByHash(ctx context.Context, hashes []string) ([]*TransactionReceipt, error) {
	return batchByHash[TransactionReceipt](ctx, c, "eth_getTransactionReceipt", hashes)
}

func batchByHash[T any](ctx context.Context, c *Client, method string, hashes []string) ([]*T, error) {
	if len(hashes) == 0 {
		return []*T{}, nil
	}

	requests := make([]Request, len(hashes))
	for i, hash := range hashes {
		requests[i] = c.newRequest(method, []interface{}{hash})
	}

	responses, err := c.callBatch(ctx, requests)
	if err != nil {
		return nil, fmt.Errorf("%s batch: %w", method, err)
	}

	results := make([]*T, len(hashes))
	for i, resp := range responses {
		if resp.Error != nil {
			return nil, fmt.Errorf("%s(%s): %w", method, hashes[i], resp.Error)
		}
		if isNull(resp.Result) {
			continue
		}
		var v T
		if err := json.Unmarshal(resp.Result, &v); err != nil {
			return nil, fmt.Errorf("unmarshal %s result %s: %w", method, hashes[i], err)
		}
		results[i] = &v
	}
	return results, nil
}

func (c *Client) callString(ctx context.Context, method string, params ...interface{}) (string, error) {
	result, err := c.call(ctx, method, params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", method, err)
	}
	var s string
	if err := json.Unmarshal(result, &s); err != nil {
		return "", fmt.Errorf("unmarshal %s result: %w", method, err)
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func ParseHexInt64(value string) (int64, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0, fmt.Errorf("empty hex value")
	}
	raw = strings.TrimPrefix(strings.ToLower(raw), "0x")
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(raw, 16, 63)
	if err != nil {
		return 0, fmt.Errorf("parse hex %q: %w", value, err)
	}
	return int64(parsed), nil
}

// ParseHexBig parses a 0x-prefixed quantity of arbitrary size.
func ParseHexBig(value string) (*big.Int, error) {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), "0x")
	if raw == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(raw, 16)
	if !ok {
		return nil, fmt.Errorf("parse hex quantity %q", value)
	}
	return n, nil
}

// HexToDecimal renders a hex quantity as a base-10 integer string. Empty or
// malformed input yields "0".
func HexToDecimal(value string) string {
	n, err := ParseHexBig(value)
	if err != nil {
		return "0"
	}
	return n.String()
}

func formatHexInt64(value int64) string {
	return fmt.Sprintf("0x%x", value)
}
