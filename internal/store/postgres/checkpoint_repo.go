package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
)

type CheckpointRepo struct {
	db *DB
}

func NewCheckpointRepo(db *DB) *CheckpointRepo {
	return &CheckpointRepo{db: db}
}

func (r *CheckpointRepo) Get(ctx context.Context, name string) (*model.Checkpoint, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var cp model.Checkpoint
	err := r.db.QueryRowContext(ctx, `
		SELECT name, chain_id, block_number, updated_at
		FROM ingestion_checkpoints
		WHERE name = $1
	`, name).Scan(&cp.Name, &cp.ChainID, &cp.BlockNumber, &cp.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get checkpoint %s: %w", name, err)
	}
	return &cp, nil
}

func (r *CheckpointRepo) SaveTx(ctx context.Context, tx *sql.Tx, cp *model.Checkpoint) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ingestion_checkpoints (name, chain_id, block_number, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE SET
			block_number = GREATEST(ingestion_checkpoints.block_number, EXCLUDED.block_number),
			updated_at = now()
	`, cp.Name, int64(cp.ChainID), cp.BlockNumber)
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", cp.Name, err)
	}
	return nil
}

// ResetTx overwrites the checkpoint, allowing it to move backwards.
func (r *CheckpointRepo) ResetTx(ctx context.Context, tx *sql.Tx, cp *model.Checkpoint) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ingestion_checkpoints (name, chain_id, block_number, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE SET
			block_number = EXCLUDED.block_number,
			updated_at = now()
	`, cp.Name, int64(cp.ChainID), cp.BlockNumber)
	if err != nil {
		return fmt.Errorf("reset checkpoint %s: %w", cp.Name, err)
	}
	return nil
}
