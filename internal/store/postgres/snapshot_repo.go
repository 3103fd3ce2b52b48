package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/lib/pq"
)

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

func (r *SnapshotRepo) UpsertChainSnapshotsTx(ctx context.Context, tx *sql.Tx, snaps []model.ChainSnapshot) error {
	rows := make([][]interface{}, len(snaps))
	for i, s := range snaps {
		rows[i] = []interface{}{
			s.CycleID, int64(s.ChainID), s.BlockNumber, s.BlockHash, s.BlockTime,
			s.GasPriceGwei, s.BaseFeeGwei, s.ObservedAt,
		}
	}
	_, err := bulkInsertTx(ctx, tx, "chain_snapshots",
		[]string{"cycle_id", "chain_id", "block_number", "block_hash", "block_time", "gas_price_gwei", "base_fee_gwei", "observed_at"},
		`ON CONFLICT (cycle_id, chain_id) DO UPDATE SET
			block_number = EXCLUDED.block_number,
			block_hash = EXCLUDED.block_hash,
			block_time = EXCLUDED.block_time,
			gas_price_gwei = EXCLUDED.gas_price_gwei,
			base_fee_gwei = EXCLUDED.base_fee_gwei,
			observed_at = EXCLUDED.observed_at`,
		rows,
	)
	if err != nil {
		return fmt.Errorf("upsert chain snapshots: %w", err)
	}
	return nil
}

func (r *SnapshotRepo) UpsertEntitySnapshotsTx(ctx context.Context, tx *sql.Tx, snaps []model.EntitySnapshot) error {
	rows := make([][]interface{}, len(snaps))
	for i, s := range snaps {
		rows[i] = []interface{}{
			s.CycleID, int64(s.ChainID), s.Address, s.BlockNumber, s.BalanceWei,
			s.Nonce, s.IsContract, s.CodeHash, s.ObservedAt,
		}
	}
	_, err := bulkInsertTx(ctx, tx, "entity_snapshots",
		[]string{"cycle_id", "chain_id", "address", "block_number", "balance_wei", "nonce", "is_contract", "code_hash", "observed_at"},
		`ON CONFLICT (cycle_id, chain_id, address) DO UPDATE SET
			block_number = EXCLUDED.block_number,
			balance_wei = EXCLUDED.balance_wei,
			nonce = EXCLUDED.nonce,
			is_contract = EXCLUDED.is_contract,
			code_hash = EXCLUDED.code_hash,
			observed_at = EXCLUDED.observed_at`,
		rows,
	)
	if err != nil {
		return fmt.Errorf("upsert entity snapshots: %w", err)
	}
	return nil
}

func (r *SnapshotRepo) StageLogsTx(ctx context.Context, tx *sql.Tx, logs []model.StagedLog) error {
	rows := make([][]interface{}, len(logs))
	for i, l := range logs {
		rows[i] = []interface{}{
			l.CycleID, int64(l.ChainID), l.TxHash, l.LogIndex, l.BlockNumber,
			l.Address, pq.Array(l.Topics), l.Data, l.EventName,
		}
	}
	_, err := bulkInsertTx(ctx, tx, "staged_logs",
		[]string{"cycle_id", "chain_id", "tx_hash", "log_index", "block_number", "address", "topics", "data", "event_name"},
		"ON CONFLICT (cycle_id, chain_id, tx_hash, log_index) DO NOTHING",
		rows,
	)
	if err != nil {
		return fmt.Errorf("stage logs: %w", err)
	}
	return nil
}

func (r *SnapshotRepo) StageTransactionsTx(ctx context.Context, tx *sql.Tx, txs []model.StagedTransaction) error {
	rows := make([][]interface{}, len(txs))
	for i, t := range txs {
		rows[i] = []interface{}{t.CycleID, int64(t.ChainID), t.TxHash, t.BlockNumber}
	}
	_, err := bulkInsertTx(ctx, tx, "staged_transactions",
		[]string{"cycle_id", "chain_id", "tx_hash", "block_number"},
		"ON CONFLICT (cycle_id, chain_id, tx_hash) DO NOTHING",
		rows,
	)
	if err != nil {
		return fmt.Errorf("stage transactions: %w", err)
	}
	return nil
}

func (r *SnapshotRepo) LastLogBlock(ctx context.Context, cycleID int64, chainID model.ChainID) (int64, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var n int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(block_number), 0)
		FROM staged_logs
		WHERE cycle_id = $1 AND chain_id = $2
	`, cycleID, int64(chainID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("last staged log block: %w", err)
	}
	return n, nil
}
