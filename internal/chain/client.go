package chain

import (
	"context"
	"math/big"

	"github.com/emperorhan/multichain-ingestor/internal/chain/rpc"
)

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

// Client is the set of EVM JSON-RPC calls the ingestion pipeline issues
// against a single endpoint.
type Client interface {
	URL() string
	GetBlockNumber(ctx context.Context) (int64, error)
	GetBlockByNumber(ctx context.Context, blockNumber int64, includeFullTx bool) (*rpc.Block, error)
	GetLatestBlock(ctx context.Context) (*rpc.Block, error)
	GetBalance(ctx context.Context, address string, blockNumber int64) (*big.Int, error)
	GetTransactionCount(ctx context.Context, address string, blockNumber int64) (int64, error)
	GetCode(ctx context.Context, address string, blockNumber int64) (string, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	GetTransactionsByHash(ctx context.Context, hashes []string) ([]*rpc.Transaction, error)
	GetTransactionReceiptsByHash(ctx context.Context, hashes []string) ([]*rpc.TransactionReceipt, error)
	GetLogs(ctx context.Context, filter rpc.LogFilter) ([]*rpc.Log, error)
	Call(ctx context.Context, msg rpc.CallMsg, blockNumber int64) (string, error)
	TraceTransaction(ctx context.Context, hash string) (*rpc.CallFrame, error)
}

var _ Client = (*rpc.Client)(nil)
