package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/lib/pq"
)

type SignatureRepo struct {
	db *DB
}

func NewSignatureRepo(db *DB) *SignatureRepo {
	return &SignatureRepo{db: db}
}

func (r *SignatureRepo) FindFunction(ctx context.Context, selector string) (*model.FunctionSignature, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var s model.FunctionSignature
	err := r.db.QueryRowContext(ctx, `
		SELECT selector, name, text_signature, param_names, source
		FROM function_signatures
		WHERE selector = $1
	`, selector).Scan(&s.Selector, &s.Name, &s.TextSignature, pq.Array(&s.ParamNames), &s.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find function %s: %w", selector, err)
	}
	return &s, nil
}

func (r *SignatureRepo) FindEvents(ctx context.Context, topic string) ([]model.EventSignature, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT topic, name, text_signature, param_names, indexed, source
		FROM event_signatures
		WHERE topic = $1
		ORDER BY created_at, text_signature
	`, topic)
	if err != nil {
		return nil, fmt.Errorf("find events %s: %w", topic, err)
	}
	defer rows.Close()

	var out []model.EventSignature
	for rows.Next() {
		var s model.EventSignature
		if err := rows.Scan(&s.Topic, &s.Name, &s.TextSignature, pq.Array(&s.ParamNames), pq.Array(&s.Indexed), &s.Source); err != nil {
			return nil, fmt.Errorf("scan event signature: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SaveFunction keeps the first signature stored for a selector.
func (r *SignatureRepo) SaveFunction(ctx context.Context, sig *model.FunctionSignature) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO function_signatures (selector, name, text_signature, param_names, source)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (selector) DO NOTHING
	`, sig.Selector, sig.Name, sig.TextSignature, pq.Array(sig.ParamNames), sig.Source)
	if err != nil {
		return fmt.Errorf("save function %s: %w", sig.Selector, err)
	}
	return nil
}

func (r *SignatureRepo) SaveEvent(ctx context.Context, sig *model.EventSignature) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO event_signatures (topic, name, text_signature, param_names, indexed, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (topic, text_signature, indexed) DO NOTHING
	`, sig.Topic, sig.Name, sig.TextSignature, pq.Array(sig.ParamNames), pq.Array(sig.Indexed), sig.Source)
	if err != nil {
		return fmt.Errorf("save event %s: %w", sig.Topic, err)
	}
	return nil
}
