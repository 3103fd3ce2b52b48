package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/lib/pq"
)

// RecordRepo writes insert-once records. Conflicts on the natural key are
// ignored so the first write wins.
type RecordRepo struct {
	db *DB
}

func NewRecordRepo(db *DB) *RecordRepo {
	return &RecordRepo{db: db}
}

func (r *RecordRepo) InsertTransactionDetailsTx(ctx context.Context, tx *sql.Tx, details []model.TransactionDetail) (int64, error) {
	rows := make([][]interface{}, len(details))
	for i, d := range details {
		rows[i] = []interface{}{
			int64(d.ChainID), d.TxHash, d.BlockNumber, d.BlockTime, d.TxIndex,
			d.FromAddress, d.ToAddress, d.ValueWei, d.GasUsed, d.GasPriceWei,
			string(d.Status), d.FunctionName, d.FunctionSelector, nullJSON(d.DecodedArgs), d.RevertReason,
			d.InputData,
		}
	}
	n, err := bulkInsertTx(ctx, tx, "transaction_details",
		[]string{
			"chain_id", "tx_hash", "block_number", "block_time", "tx_index",
			"from_address", "to_address", "value_wei", "gas_used", "gas_price_wei",
			"status", "function_name", "function_selector", "decoded_args", "revert_reason",
			"input_data",
		},
		"ON CONFLICT (chain_id, tx_hash) DO NOTHING",
		rows,
	)
	if err != nil {
		return n, fmt.Errorf("insert transaction details: %w", err)
	}
	return n, nil
}

func (r *RecordRepo) InsertDecodedEventsTx(ctx context.Context, tx *sql.Tx, events []model.DecodedEvent) (int64, error) {
	rows := make([][]interface{}, len(events))
	for i, e := range events {
		rows[i] = []interface{}{
			int64(e.ChainID), e.TxHash, e.LogIndex, e.BlockNumber, e.ContractAddress,
			e.EventName, e.EventSignature, nullJSON(e.DecodedArgs), pq.Array(e.Topics), e.Data,
		}
	}
	n, err := bulkInsertTx(ctx, tx, "decoded_events",
		[]string{
			"chain_id", "tx_hash", "log_index", "block_number", "contract_address",
			"event_name", "event_signature", "decoded_args", "topics", "data",
		},
		"ON CONFLICT (chain_id, tx_hash, log_index) DO NOTHING",
		rows,
	)
	if err != nil {
		return n, fmt.Errorf("insert decoded events: %w", err)
	}
	return n, nil
}

func (r *RecordRepo) InsertTokenTransfersTx(ctx context.Context, tx *sql.Tx, transfers []model.TokenTransfer) (int64, error) {
	rows := make([][]interface{}, len(transfers))
	for i, t := range transfers {
		rows[i] = []interface{}{
			int64(t.ChainID), t.TxHash, t.LogIndex, t.BlockNumber, t.ContractAddress,
			t.FromAddress, t.ToAddress, t.Amount, string(t.TransferType),
		}
	}
	n, err := bulkInsertTx(ctx, tx, "token_transfers",
		[]string{"chain_id", "tx_hash", "log_index", "block_number", "contract_address", "from_address", "to_address", "amount", "transfer_type"},
		"ON CONFLICT (chain_id, tx_hash, log_index) DO NOTHING",
		rows,
	)
	if err != nil {
		return n, fmt.Errorf("insert token transfers: %w", err)
	}
	return n, nil
}

func (r *RecordRepo) InsertNFTTransfersTx(ctx context.Context, tx *sql.Tx, transfers []model.NFTTransfer) (int64, error) {
	rows := make([][]interface{}, len(transfers))
	for i, t := range transfers {
		rows[i] = []interface{}{
			int64(t.ChainID), t.TxHash, t.LogIndex, t.BlockNumber, t.ContractAddress,
			t.FromAddress, t.ToAddress, t.TokenID, t.Quantity, string(t.TransferType),
		}
	}
	n, err := bulkInsertTx(ctx, tx, "nft_transfers",
		[]string{"chain_id", "tx_hash", "log_index", "block_number", "contract_address", "from_address", "to_address", "token_id", "quantity", "transfer_type"},
		"ON CONFLICT (chain_id, tx_hash, log_index) DO NOTHING",
		rows,
	)
	if err != nil {
		return n, fmt.Errorf("insert nft transfers: %w", err)
	}
	return n, nil
}

func (r *RecordRepo) InsertDeFiInteractionsTx(ctx context.Context, tx *sql.Tx, interactions []model.DeFiInteraction) (int64, error) {
	rows := make([][]interface{}, len(interactions))
	for i, d := range interactions {
		rows[i] = []interface{}{
			int64(d.ChainID), d.TxHash, d.LogIndex, d.BlockNumber, d.ContractAddress,
			d.UserAddress, d.Action, d.ProtocolGuess,
		}
	}
	n, err := bulkInsertTx(ctx, tx, "defi_interactions",
		[]string{"chain_id", "tx_hash", "log_index", "block_number", "contract_address", "user_address", "action", "protocol_guess"},
		"ON CONFLICT (chain_id, tx_hash, log_index) DO NOTHING",
		rows,
	)
	if err != nil {
		return n, fmt.Errorf("insert defi interactions: %w", err)
	}
	return n, nil
}

func (r *RecordRepo) InsertInternalCallsTx(ctx context.Context, tx *sql.Tx, calls []model.InternalCall) (int64, error) {
	rows := make([][]interface{}, len(calls))
	for i, c := range calls {
		rows[i] = []interface{}{
			int64(c.ChainID), c.TxHash, c.TraceAddress, c.Depth, c.CallType,
			c.FromAddress, c.ToAddress, c.ValueWei, c.FunctionName, nullJSON(c.DecodedArgs), c.Error,
		}
	}
	n, err := bulkInsertTx(ctx, tx, "internal_calls",
		[]string{
			"chain_id", "tx_hash", "trace_address", "depth", "call_type",
			"from_address", "to_address", "value_wei", "function_name", "decoded_args", "error",
		},
		"ON CONFLICT (chain_id, tx_hash, trace_address) DO NOTHING",
		rows,
	)
	if err != nil {
		return n, fmt.Errorf("insert internal calls: %w", err)
	}
	return n, nil
}
