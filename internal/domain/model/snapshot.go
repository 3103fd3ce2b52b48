package model

import "time"

// ChainSnapshot is the latest observed head of a chain within a cycle.
type ChainSnapshot struct {
	CycleID      int64      `db:"cycle_id"`
	ChainID      ChainID    `db:"chain_id"`
	BlockNumber  int64      `db:"block_number"`
	BlockHash    string     `db:"block_hash"`
	BlockTime    *time.Time `db:"block_time"`
	GasPriceGwei string     `db:"gas_price_gwei"` // NUMERIC as string
	BaseFeeGwei  *string    `db:"base_fee_gwei"`  // nil on pre-London chains
	ObservedAt   time.Time  `db:"observed_at"`
}

// EntitySnapshot is the latest observed on-chain state of a tracked entity within a cycle.
type EntitySnapshot struct {
	CycleID     int64     `db:"cycle_id"`
	ChainID     ChainID   `db:"chain_id"`
	Address     string    `db:"address"`
	BlockNumber int64     `db:"block_number"`
	BalanceWei  string    `db:"balance_wei"` // NUMERIC(78,0) as string
	Nonce       int64     `db:"nonce"`
	IsContract  bool      `db:"is_contract"`
	CodeHash    *string   `db:"code_hash"`
	ObservedAt  time.Time `db:"observed_at"`
}

// StagedLog is a raw log captured during a cycle, kept until the next rotation.
type StagedLog struct {
	CycleID     int64    `db:"cycle_id"`
	ChainID     ChainID  `db:"chain_id"`
	TxHash      string   `db:"tx_hash"`
	LogIndex    int64    `db:"log_index"`
	BlockNumber int64    `db:"block_number"`
	Address     string   `db:"address"`
	Topics      []string `db:"topics"`
	Data        string   `db:"data"`
	EventName   string   `db:"event_name"`
}

// StagedTransaction records a transaction hash seen in the cycle before its detail is durable.
type StagedTransaction struct {
	CycleID     int64   `db:"cycle_id"`
	ChainID     ChainID `db:"chain_id"`
	TxHash      string  `db:"tx_hash"`
	BlockNumber int64   `db:"block_number"`
}
