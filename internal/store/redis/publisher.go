package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/emperorhan/multichain-ingestor/internal/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultStreamMaxLen = 100_000

// Publisher appends committed records to per-category streams named
// <prefix>:<category>. Streams are trimmed approximately to maxLen.
type Publisher struct {
	client *redis.Client
	prefix string
	maxLen int64
	nowFn  func() time.Time
}

func NewPublisher(client *redis.Client, prefix string, maxLen int64) *Publisher {
	if maxLen <= 0 {
		maxLen = defaultStreamMaxLen
	}
	return &Publisher{
		client: client,
		prefix: prefix,
		maxLen: maxLen,
		nowFn:  time.Now,
	}
}

func (p *Publisher) StreamName(category string) string {
	return p.prefix + ":" + category
}

func (p *Publisher) Publish(ctx context.Context, category string, chainID model.ChainID, payload interface{}) error {
	args, err := p.message(category, chainID, payload)
	if err != nil {
		metrics.BusPublishErrors.WithLabelValues(category).Inc()
		return err
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		metrics.BusPublishErrors.WithLabelValues(category).Inc()
		return fmt.Errorf("xadd %s: %w", args.Stream, err)
	}
	metrics.BusEventsPublished.WithLabelValues(category).Inc()
	return nil
}

func (p *Publisher) message(category string, chainID model.ChainID, payload interface{}) (*redis.XAddArgs, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", category, err)
	}
	return &redis.XAddArgs{
		Stream: p.StreamName(category),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"id":           uuid.NewString(),
			"chain_id":     int64(chainID),
			"published_at": p.nowFn().UTC().Format(time.RFC3339Nano),
			"payload":      string(body),
		},
	}, nil
}
