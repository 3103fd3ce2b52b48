package cache

import (
	"hash/maphash"
	"time"
)

const defaultShards = 16

// ShardedLRU spreads keys over independent LRUs so that concurrent decoders
// rarely contend on one lock. Eviction order is per shard.
type ShardedLRU[K comparable, V any] struct {
	seed   maphash.Seed
	mask   uint64
	shards []*LRU[K, V]
}

// NewShardedLRU splits capacity over shards, rounded up to a power of two.
// shards <= 0 selects the default.
func NewShardedLRU[K comparable, V any](capacity int, ttl time.Duration, shards int) *ShardedLRU[K, V] {
	if shards <= 0 {
		shards = defaultShards
	}
	n := 1
	for n < shards {
		n <<= 1
	}
	per := capacity / n
	if per < 1 {
		per = 1
	}
	s := &ShardedLRU[K, V]{
		seed:   maphash.MakeSeed(),
		mask:   uint64(n - 1),
		shards: make([]*LRU[K, V], n),
	}
	for i := range s.shards {
		s.shards[i] = NewLRU[K, V](per, ttl)
	}
	return s
}

func (s *ShardedLRU[K, V]) shardFor(key K) *LRU[K, V] {
	return s.shards[maphash.Comparable(s.seed, key)&s.mask]
}

func (s *ShardedLRU[K, V]) Get(key K) (V, bool) { return s.shardFor(key).Get(key) }

func (s *ShardedLRU[K, V]) Put(key K, value V) { s.shardFor(key).Put(key, value) }

func (s *ShardedLRU[K, V]) Delete(key K) { s.shardFor(key).Delete(key) }

func (s *ShardedLRU[K, V]) Len() int {
	total := 0
	for _, sh := range s.shards {
		total += sh.Len()
	}
	return total
}

// Stats sums the counters of every shard.
func (s *ShardedLRU[K, V]) Stats() Stats {
	var out Stats
	for _, sh := range s.shards {
		st := sh.Stats()
		out.Hits += st.Hits
		out.Misses += st.Misses
		out.Evictions += st.Evictions
	}
	return out
}
