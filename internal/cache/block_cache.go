package cache

import (
	"context"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
)

type blockKey struct {
	chainID model.ChainID
	number  int64
}

// BlockHashCache keeps recently committed block hashes in process memory.
type BlockHashCache struct {
	lru *LRU[blockKey, string]
}

func NewBlockHashCache(capacity int, ttl time.Duration) *BlockHashCache {
	return &BlockHashCache{lru: NewLRU[blockKey, string](capacity, ttl)}
}

func (c *BlockHashCache) GetHash(_ context.Context, chainID model.ChainID, number int64) (string, bool) {
	return c.lru.Get(blockKey{chainID: chainID, number: number})
}

func (c *BlockHashCache) PutHash(_ context.Context, chainID model.ChainID, number int64, hash string) {
	c.lru.Put(blockKey{chainID: chainID, number: number}, hash)
}
