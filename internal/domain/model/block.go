package model

import "time"

type BlockStatus string

const (
	BlockStatusPending     BlockStatus = "PENDING"
	BlockStatusComplete    BlockStatus = "COMPLETE"
	BlockStatusReorganized BlockStatus = "REORGANIZED"
)

// Block is a full-history block row written by the checkpointed ingestor.
type Block struct {
	ChainID    ChainID     `db:"chain_id"`
	Number     int64       `db:"number"`
	Hash       string      `db:"hash"`
	ParentHash string      `db:"parent_hash"`
	BlockTime  *time.Time  `db:"block_time"`
	TxCount    int         `db:"tx_count"`
	Status     BlockStatus `db:"status"`
}

// ChainTransaction is a full-history transaction row linked to a block.
type ChainTransaction struct {
	ChainID          ChainID  `db:"chain_id"`
	TxHash           string   `db:"tx_hash"`
	BlockNumber      int64    `db:"block_number"`
	TxIndex          int64    `db:"tx_index"`
	FromAddress      string   `db:"from_address"`
	ToAddress        *string  `db:"to_address"`
	ValueWei         string   `db:"value_wei"`
	GasUsed          int64    `db:"gas_used"`
	Status           TxStatus `db:"status"`
	FunctionName     string   `db:"function_name"`
	FunctionSelector *string  `db:"function_selector"`
}

// Checkpoint is the highest contiguous block fully processed by an ingestion stream.
type Checkpoint struct {
	Name        string    `db:"name"`
	ChainID     ChainID   `db:"chain_id"`
	BlockNumber int64     `db:"block_number"`
	UpdatedAt   time.Time `db:"updated_at"`
}
