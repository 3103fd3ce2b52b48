package postgres

import (
	"context"
	"fmt"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/lib/pq"
)

type ChainRepo struct {
	db *DB
}

func NewChainRepo(db *DB) *ChainRepo {
	return &ChainRepo{db: db}
}

func (r *ChainRepo) Upsert(ctx context.Context, c *model.Chain) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chains (id, name, rpc_urls, is_active, checkpointed, start_block)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			rpc_urls = EXCLUDED.rpc_urls,
			is_active = EXCLUDED.is_active,
			checkpointed = EXCLUDED.checkpointed,
			start_block = EXCLUDED.start_block,
			updated_at = now()
	`, int64(c.ID), c.Name, pq.Array(c.RPCURLs), c.Active, c.Checkpointed, c.StartBlock)
	if err != nil {
		return fmt.Errorf("upsert chain %s: %w", c.Label(), err)
	}
	return nil
}

func (r *ChainRepo) ListActive(ctx context.Context) ([]model.Chain, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, rpc_urls, is_active, checkpointed, start_block
		FROM chains
		WHERE is_active = true
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query active chains: %w", err)
	}
	defer rows.Close()

	var chains []model.Chain
	for rows.Next() {
		var c model.Chain
		var id int64
		if err := rows.Scan(&id, &c.Name, pq.Array(&c.RPCURLs), &c.Active, &c.Checkpointed, &c.StartBlock); err != nil {
			return nil, fmt.Errorf("scan chain: %w", err)
		}
		c.ID = model.ChainID(id)
		chains = append(chains, c)
	}
	return chains, rows.Err()
}
