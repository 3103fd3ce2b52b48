package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
)

type BlockRepo struct {
	db *DB
}

func NewBlockRepo(db *DB) *BlockRepo {
	return &BlockRepo{db: db}
}

func (r *BlockRepo) Get(ctx context.Context, chainID model.ChainID, number int64) (*model.Block, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var b model.Block
	err := r.db.QueryRowContext(ctx, `
		SELECT chain_id, number, hash, parent_hash, block_time, tx_count, status
		FROM blocks
		WHERE chain_id = $1 AND number = $2
	`, int64(chainID), number).Scan(
		&b.ChainID, &b.Number, &b.Hash, &b.ParentHash, &b.BlockTime, &b.TxCount, &b.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get block %d: %w", number, err)
	}
	return &b, nil
}

func (r *BlockRepo) InsertTx(ctx context.Context, tx *sql.Tx, b *model.Block) (bool, error) {
	const query = `
		INSERT INTO blocks (chain_id, number, hash, parent_hash, block_time, tx_count, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'PENDING')
		ON CONFLICT (chain_id, number) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, query,
		int64(b.ChainID), b.Number, b.Hash, b.ParentHash, b.BlockTime, b.TxCount,
	)
	if err != nil {
		return false, fmt.Errorf("insert block %d: %w", b.Number, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert block %d: %w", b.Number, err)
	}
	return n > 0, nil
}

// MarkReorganizedFromTx flags every stored block at or above fromBlock that is
// not already flagged.
func (r *BlockRepo) MarkReorganizedFromTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, fromBlock int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE blocks
		SET status = 'REORGANIZED', updated_at = now()
		WHERE chain_id = $1 AND number >= $2 AND status <> 'REORGANIZED'
	`, int64(chainID), fromBlock)
	if err != nil {
		return 0, fmt.Errorf("mark reorganized from %d: %w", fromBlock, err)
	}
	return res.RowsAffected()
}

func (r *BlockRepo) MarkCompleteTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, number int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE blocks
		SET status = 'COMPLETE', updated_at = now()
		WHERE chain_id = $1 AND number = $2 AND status = 'PENDING'
	`, int64(chainID), number)
	if err != nil {
		return fmt.Errorf("mark block %d complete: %w", number, err)
	}
	return nil
}

func (r *BlockRepo) InsertTransactionTx(ctx context.Context, tx *sql.Tx, t *model.ChainTransaction) (bool, error) {
	const query = `
		INSERT INTO transactions (
			chain_id, tx_hash, block_number, tx_index, from_address, to_address,
			value_wei, gas_used, status, function_name, function_selector
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (chain_id, tx_hash) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, query,
		int64(t.ChainID), t.TxHash, t.BlockNumber, t.TxIndex, t.FromAddress, t.ToAddress,
		t.ValueWei, t.GasUsed, string(t.Status), t.FunctionName, t.FunctionSelector,
	)
	if err != nil {
		return false, fmt.Errorf("insert transaction %s: %w", t.TxHash, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert transaction %s: %w", t.TxHash, err)
	}
	return n > 0, nil
}

func (r *BlockRepo) CountTransactions(ctx context.Context, chainID model.ChainID, number int64) (int, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transactions WHERE chain_id = $1 AND block_number = $2
	`, int64(chainID), number).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions in block %d: %w", number, err)
	}
	return n, nil
}

func (r *BlockRepo) ListRange(ctx context.Context, chainID model.ChainID, from, to int64) ([]model.Block, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT chain_id, number, hash, parent_hash, block_time, tx_count, status
		FROM blocks
		WHERE chain_id = $1 AND number BETWEEN $2 AND $3
		ORDER BY number
	`, int64(chainID), from, to)
	if err != nil {
		return nil, fmt.Errorf("list blocks [%d, %d]: %w", from, to, err)
	}
	defer rows.Close()

	var out []model.Block
	for rows.Next() {
		var b model.Block
		if err := rows.Scan(&b.ChainID, &b.Number, &b.Hash, &b.ParentHash, &b.BlockTime, &b.TxCount, &b.Status); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteFromTx removes blocks at or above fromBlock. Their transactions go
// with them through the cascading foreign key.
func (r *BlockRepo) DeleteFromTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, fromBlock int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM blocks WHERE chain_id = $1 AND number >= $2
	`, int64(chainID), fromBlock)
	if err != nil {
		return 0, fmt.Errorf("delete blocks from %d: %w", fromBlock, err)
	}
	return res.RowsAffected()
}
