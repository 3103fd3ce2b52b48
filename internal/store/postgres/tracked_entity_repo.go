package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
)

type TrackedEntityRepo struct {
	db *DB
}

func NewTrackedEntityRepo(db *DB) *TrackedEntityRepo {
	return &TrackedEntityRepo{db: db}
}

func (r *TrackedEntityRepo) Upsert(ctx context.Context, e *model.TrackedEntity) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tracked_entities (chain_id, address, label, is_contract, monitor_events, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (chain_id, address) DO UPDATE SET
			label = EXCLUDED.label,
			is_contract = EXCLUDED.is_contract,
			monitor_events = EXCLUDED.monitor_events,
			is_active = EXCLUDED.is_active
	`, int64(e.ChainID), strings.ToLower(e.Address), e.Label, e.IsContract, e.MonitorEvents, e.IsActive)
	if err != nil {
		return fmt.Errorf("upsert tracked entity %s: %w", e.Address, err)
	}
	return nil
}

// Sample returns the least recently sampled active entities and stamps them,
// so consecutive calls rotate through the whole set.
func (r *TrackedEntityRepo) Sample(ctx context.Context, chainID model.ChainID, limit int) ([]model.TrackedEntity, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		WITH picked AS (
			SELECT chain_id, address
			FROM tracked_entities
			WHERE chain_id = $1 AND is_active = true
			ORDER BY last_sampled_at NULLS FIRST, address
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		UPDATE tracked_entities t
		SET last_sampled_at = clock_timestamp()
		FROM picked
		WHERE t.chain_id = picked.chain_id AND t.address = picked.address
		RETURNING t.chain_id, t.address, t.label, t.is_contract, t.monitor_events, t.is_active, t.created_at
	`, int64(chainID), limit)
	if err != nil {
		return nil, fmt.Errorf("sample tracked entities: %w", err)
	}
	defer rows.Close()
	return scanEntities(rows)
}

func (r *TrackedEntityRepo) ListMonitored(ctx context.Context, chainID model.ChainID) ([]model.TrackedEntity, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT chain_id, address, label, is_contract, monitor_events, is_active, created_at
		FROM tracked_entities
		WHERE chain_id = $1 AND is_active = true AND monitor_events = true
		ORDER BY address
	`, int64(chainID))
	if err != nil {
		return nil, fmt.Errorf("query monitored entities: %w", err)
	}
	defer rows.Close()
	return scanEntities(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanEntities(rows rowScanner) ([]model.TrackedEntity, error) {
	var out []model.TrackedEntity
	for rows.Next() {
		var e model.TrackedEntity
		var chainID int64
		if err := rows.Scan(&chainID, &e.Address, &e.Label, &e.IsContract, &e.MonitorEvents, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tracked entity: %w", err)
		}
		e.ChainID = model.ChainID(chainID)
		out = append(out, e)
	}
	return out, rows.Err()
}
