package model

// Derived records share the (tx hash, log index) key of the event they came from.
// Records derived from a direct function call use CallLogIndex.
const CallLogIndex int64 = -1

type TransferType string

const (
	TransferTypeTransfer TransferType = "transfer"
	TransferTypeMint     TransferType = "mint"
	TransferTypeBurn     TransferType = "burn"
)

type TokenTransfer struct {
	ChainID         ChainID      `db:"chain_id"`
	TxHash          string       `db:"tx_hash"`
	LogIndex        int64        `db:"log_index"`
	BlockNumber     int64        `db:"block_number"`
	ContractAddress string       `db:"contract_address"`
	FromAddress     string       `db:"from_address"`
	ToAddress       string       `db:"to_address"`
	Amount          string       `db:"amount"` // raw integer units
	TransferType    TransferType `db:"transfer_type"`
}

type NFTTransfer struct {
	ChainID         ChainID      `db:"chain_id"`
	TxHash          string       `db:"tx_hash"`
	LogIndex        int64        `db:"log_index"`
	BlockNumber     int64        `db:"block_number"`
	ContractAddress string       `db:"contract_address"`
	FromAddress     string       `db:"from_address"`
	ToAddress       string       `db:"to_address"`
	TokenID         string       `db:"token_id"`
	Quantity        string       `db:"quantity"`
	TransferType    TransferType `db:"transfer_type"`
}

// DeFiInteraction is a best-effort, pattern-matched protocol interaction.
type DeFiInteraction struct {
	ChainID         ChainID `db:"chain_id"`
	TxHash          string  `db:"tx_hash"`
	LogIndex        int64   `db:"log_index"`
	BlockNumber     int64   `db:"block_number"`
	ContractAddress string  `db:"contract_address"`
	UserAddress     string  `db:"user_address"`
	Action          string  `db:"action"`
	ProtocolGuess   string  `db:"protocol_guess"`
}
