package model

import (
	"encoding/json"
	"time"
)

// TransactionDetail is an immutable, insert-once record of a transaction.
type TransactionDetail struct {
	ChainID          ChainID         `db:"chain_id"`
	TxHash           string          `db:"tx_hash"`
	BlockNumber      int64           `db:"block_number"`
	BlockTime        *time.Time      `db:"block_time"`
	TxIndex          int64           `db:"tx_index"`
	FromAddress      string          `db:"from_address"`
	ToAddress        *string         `db:"to_address"`
	ValueWei         string          `db:"value_wei"`
	GasUsed          int64           `db:"gas_used"`
	GasPriceWei      string          `db:"gas_price_wei"`
	Status           TxStatus        `db:"status"`
	FunctionName     string          `db:"function_name"`
	FunctionSelector *string         `db:"function_selector"`
	DecodedArgs      json.RawMessage `db:"decoded_args"` // nil when arguments could not be decoded
	RevertReason     *string         `db:"revert_reason"`
	InputData        string          `db:"input_data"`
}

// DecodedEvent is one insert-once row per (tx hash, log index).
type DecodedEvent struct {
	ChainID         ChainID         `db:"chain_id"`
	TxHash          string          `db:"tx_hash"`
	LogIndex        int64           `db:"log_index"`
	BlockNumber     int64           `db:"block_number"`
	ContractAddress string          `db:"contract_address"`
	EventName       string          `db:"event_name"`
	EventSignature  *string         `db:"event_signature"`
	DecodedArgs     json.RawMessage `db:"decoded_args"`
	Topics          []string        `db:"topics"`
	Data            string          `db:"data"`
}

// InternalCall is one flattened frame of a transaction's call trace.
type InternalCall struct {
	ChainID      ChainID         `db:"chain_id"`
	TxHash       string          `db:"tx_hash"`
	TraceAddress string          `db:"trace_address"` // e.g. "0.2.1"
	Depth        int             `db:"depth"`
	CallType     string          `db:"call_type"`
	FromAddress  string          `db:"from_address"`
	ToAddress    string          `db:"to_address"`
	ValueWei     string          `db:"value_wei"`
	FunctionName string          `db:"function_name"`
	DecodedArgs  json.RawMessage `db:"decoded_args"`
	Error        *string         `db:"error"`
}
