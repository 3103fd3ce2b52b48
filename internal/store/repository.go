package store

import (
	"context"
	"database/sql"

	"github.com/emperorhan/multichain-ingestor/internal/domain/event"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
)

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

// TxBeginner abstracts the ability to begin a database transaction.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// ChainRepository provides access to the chain registry.
type ChainRepository interface {
	Upsert(ctx context.Context, c *model.Chain) error
	ListActive(ctx context.Context) ([]model.Chain, error)
}

// TrackedEntityRepository provides access to tracked addresses.
type TrackedEntityRepository interface {
	Upsert(ctx context.Context, e *model.TrackedEntity) error
	// Sample returns up to limit active entities of a chain, rotating through
	// the set across calls.
	Sample(ctx context.Context, chainID model.ChainID, limit int) ([]model.TrackedEntity, error)
	ListMonitored(ctx context.Context, chainID model.ChainID) ([]model.TrackedEntity, error)
}

// CycleRepository owns rotation cycle rows and volatile table truncation.
type CycleRepository interface {
	Active(ctx context.Context) (*model.RotationCycle, error)
	CompleteActiveTx(ctx context.Context, tx *sql.Tx) (int64, error)
	TruncateVolatileTx(ctx context.Context, tx *sql.Tx) error
	CreateTx(ctx context.Context, tx *sql.Tx) (*model.RotationCycle, error)
}

// SnapshotRepository writes volatile per-cycle state.
type SnapshotRepository interface {
	UpsertChainSnapshotsTx(ctx context.Context, tx *sql.Tx, snaps []model.ChainSnapshot) error
	UpsertEntitySnapshotsTx(ctx context.Context, tx *sql.Tx, snaps []model.EntitySnapshot) error
	StageLogsTx(ctx context.Context, tx *sql.Tx, logs []model.StagedLog) error
	StageTransactionsTx(ctx context.Context, tx *sql.Tx, txs []model.StagedTransaction) error
	// LastLogBlock returns the highest staged log block for a chain in the
	// cycle, or 0 when none is staged.
	LastLogBlock(ctx context.Context, cycleID int64, chainID model.ChainID) (int64, error)
}

// RecordRepository writes insert-once records. Rows whose key already exists
// are left untouched; the returned count covers new rows only.
type RecordRepository interface {
	InsertTransactionDetailsTx(ctx context.Context, tx *sql.Tx, details []model.TransactionDetail) (int64, error)
	InsertDecodedEventsTx(ctx context.Context, tx *sql.Tx, events []model.DecodedEvent) (int64, error)
	InsertTokenTransfersTx(ctx context.Context, tx *sql.Tx, transfers []model.TokenTransfer) (int64, error)
	InsertNFTTransfersTx(ctx context.Context, tx *sql.Tx, transfers []model.NFTTransfer) (int64, error)
	InsertDeFiInteractionsTx(ctx context.Context, tx *sql.Tx, interactions []model.DeFiInteraction) (int64, error)
	InsertInternalCallsTx(ctx context.Context, tx *sql.Tx, calls []model.InternalCall) (int64, error)
}

// SignatureRepository is the persistent signature table.
type SignatureRepository interface {
	FindFunction(ctx context.Context, selector string) (*model.FunctionSignature, error)
	FindEvents(ctx context.Context, topic string) ([]model.EventSignature, error)
	SaveFunction(ctx context.Context, sig *model.FunctionSignature) error
	SaveEvent(ctx context.Context, sig *model.EventSignature) error
}

// BlockRepository provides access to full-history blocks and transactions.
type BlockRepository interface {
	Get(ctx context.Context, chainID model.ChainID, number int64) (*model.Block, error)
	// InsertTx inserts the block and reports whether a new row was created.
	InsertTx(ctx context.Context, tx *sql.Tx, b *model.Block) (bool, error)
	MarkReorganizedFromTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, fromBlock int64) (int64, error)
	MarkCompleteTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, number int64) error
	InsertTransactionTx(ctx context.Context, tx *sql.Tx, t *model.ChainTransaction) (bool, error)
	CountTransactions(ctx context.Context, chainID model.ChainID, number int64) (int, error)
	ListRange(ctx context.Context, chainID model.ChainID, from, to int64) ([]model.Block, error)
	DeleteFromTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, fromBlock int64) (int64, error)
}

// CheckpointRepository provides access to ingestion checkpoints.
type CheckpointRepository interface {
	Get(ctx context.Context, name string) (*model.Checkpoint, error)
	// SaveTx never moves a checkpoint backwards.
	SaveTx(ctx context.Context, tx *sql.Tx, cp *model.Checkpoint) error
	ResetTx(ctx context.Context, tx *sql.Tx, cp *model.Checkpoint) error
}

// ReorgEventRepository stores reorganization audit records.
type ReorgEventRepository interface {
	// InsertTx reports whether the record was new.
	InsertTx(ctx context.Context, tx *sql.Tx, ev *event.ReorgEvent) (bool, error)
}

// BlockCache holds recently committed block hashes. Misses fall back to the
// block table, so implementations may drop entries freely.
type BlockCache interface {
	GetHash(ctx context.Context, chainID model.ChainID, number int64) (string, bool)
	PutHash(ctx context.Context, chainID model.ChainID, number int64, hash string)
}

// Publisher forwards committed records to a message bus. Delivery is best
// effort; callers log and continue on error.
type Publisher interface {
	Publish(ctx context.Context, category string, chainID model.ChainID, payload interface{}) error
}
