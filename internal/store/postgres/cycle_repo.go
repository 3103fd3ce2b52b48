package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
)

// volatileTables are emptied on every cycle rotation.
var volatileTables = []string{
	"chain_snapshots",
	"entity_snapshots",
	"staged_logs",
	"staged_transactions",
}

type CycleRepo struct {
	db *DB
}

func NewCycleRepo(db *DB) *CycleRepo {
	return &CycleRepo{db: db}
}

func (r *CycleRepo) Active(ctx context.Context) (*model.RotationCycle, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var c model.RotationCycle
	err := r.db.QueryRowContext(ctx, `
		SELECT id, started_at, ended_at, status
		FROM rotation_cycles
		WHERE status = 'ACTIVE'
	`).Scan(&c.ID, &c.StartedAt, &c.EndedAt, &c.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active cycle: %w", err)
	}
	return &c, nil
}

func (r *CycleRepo) CompleteActiveTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE rotation_cycles
		SET status = 'COMPLETED', ended_at = now()
		WHERE status = 'ACTIVE'
	`)
	if err != nil {
		return 0, fmt.Errorf("complete active cycle: %w", err)
	}
	return res.RowsAffected()
}

func (r *CycleRepo) TruncateVolatileTx(ctx context.Context, tx *sql.Tx) error {
	for _, table := range volatileTables {
		if _, err := tx.ExecContext(ctx, "TRUNCATE TABLE "+table); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

func (r *CycleRepo) CreateTx(ctx context.Context, tx *sql.Tx) (*model.RotationCycle, error) {
	var c model.RotationCycle
	err := tx.QueryRowContext(ctx, `
		INSERT INTO rotation_cycles (started_at, status)
		VALUES (now(), 'ACTIVE')
		RETURNING id, started_at, ended_at, status
	`).Scan(&c.ID, &c.StartedAt, &c.EndedAt, &c.Status)
	if err != nil {
		return nil, fmt.Errorf("insert cycle: %w", err)
	}
	return &c, nil
}
