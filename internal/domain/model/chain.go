package model

import "strconv"

// ChainID is the numeric chain identifier (EIP-155 for EVM networks).
type ChainID int64

func (id ChainID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

type Chain struct {
	ID           ChainID  `db:"id"`
	Name         string   `db:"name"`
	RPCURLs      []string `db:"rpc_urls"`
	Active       bool     `db:"is_active"`
	Checkpointed bool     `db:"checkpointed"`
	StartBlock   int64    `db:"start_block"`
}

// Label is the metric/log label for the chain.
func (c Chain) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID.String()
}

type TxStatus string

const (
	TxStatusSuccess TxStatus = "SUCCESS"
	TxStatusFailed  TxStatus = "FAILED"
)

// TxStatusFromReceipt maps an EVM receipt status (0x1 / 0x0) to a TxStatus.
func TxStatusFromReceipt(status string) TxStatus {
	if status == "0x0" {
		return TxStatusFailed
	}
	return TxStatusSuccess
}
