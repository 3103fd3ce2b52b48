package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

const defaultBlockCacheTTL = time.Hour

// BlockCache stores recent block hashes as plain keys with an expiry.
// Redis errors degrade to cache misses.
type BlockCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

func NewBlockCache(client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *BlockCache {
	if ttl <= 0 {
		ttl = defaultBlockCacheTTL
	}
	return &BlockCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With("component", "redis_block_cache"),
	}
}

func (c *BlockCache) key(chainID model.ChainID, number int64) string {
	return fmt.Sprintf("%s:block:%d:%d", c.prefix, chainID, number)
}

func (c *BlockCache) GetHash(ctx context.Context, chainID model.ChainID, number int64) (string, bool) {
	hash, err := c.client.Get(ctx, c.key(chainID, number)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.logger.Debug("block cache get failed", "chain_id", chainID, "block", number, "error", err)
		return "", false
	}
	return hash, true
}

func (c *BlockCache) PutHash(ctx context.Context, chainID model.ChainID, number int64, hash string) {
	if err := c.client.Set(ctx, c.key(chainID, number), hash, c.ttl).Err(); err != nil {
		c.logger.Debug("block cache set failed", "chain_id", chainID, "block", number, "error", err)
	}
}
