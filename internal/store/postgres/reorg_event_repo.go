package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emperorhan/multichain-ingestor/internal/domain/event"
)

type ReorgEventRepo struct {
	db *DB
}

func NewReorgEventRepo(db *DB) *ReorgEventRepo {
	return &ReorgEventRepo{db: db}
}

// InsertTx records a reorg once per (chain, block, declared parent).
func (r *ReorgEventRepo) InsertTx(ctx context.Context, tx *sql.Tx, ev *event.ReorgEvent) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO reorg_events (
			id, chain_id, block_number, stored_parent_hash, declared_parent_hash,
			block_hash, blocks_flagged, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (chain_id, block_number, declared_parent_hash) DO NOTHING
	`,
		ev.ID, int64(ev.ChainID), ev.BlockNumber, ev.StoredParentHash, ev.DeclaredParentHash,
		ev.BlockHash, ev.BlocksFlagged, ev.DetectedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert reorg event at %d: %w", ev.BlockNumber, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert reorg event at %d: %w", ev.BlockNumber, err)
	}
	return n > 0, nil
}
