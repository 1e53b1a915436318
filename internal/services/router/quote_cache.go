package router

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
	"github.com/hxuan190/evm-quote-engine/internal/metrics"
)

const (
	quoteCacheMaxSize = 1024 // Power of 2 for efficient modulo
	quoteCacheShards  = 16   // Number of shards for reduced lock contention
)

// FNV-1a constants for zero-allocation hashing
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

type cacheEntry struct {
	key         uint64
	fingerprint string
	quote       *domain.QuoteResult
	expiry      int64  // Unix nano for faster comparison
	used        uint32 // Clock bit for eviction
}

type cacheShard struct {
	mu      sync.RWMutex
	entries []cacheEntry
	size    int
	hand    int // Clock hand for eviction
}

// QuoteCache is a sharded clock cache of settled quotes keyed by request fingerprint.
type QuoteCache struct {
	ttl      time.Duration
	shards   [quoteCacheShards]cacheShard
	stopOnce sync.Once
	stopChan chan struct{}
}

func NewQuoteCache(ttl time.Duration) *QuoteCache {
	qc := &QuoteCache{
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	entriesPerShard := quoteCacheMaxSize / quoteCacheShards
	for i := 0; i < quoteCacheShards; i++ {
		qc.shards[i].entries = make([]cacheEntry, entriesPerShard)
	}
	go qc.cleanupLoop()
	return qc
}

func (qc *QuoteCache) Stop() {
	qc.stopOnce.Do(func() { close(qc.stopChan) })
}

func hashFingerprint(fp string) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < len(fp); i++ {
		h ^= uint64(fp[i])
		h *= fnvPrime64
	}
	return h
}

func (qc *QuoteCache) getShard(key uint64) *cacheShard {
	return &qc.shards[key%quoteCacheShards]
}

func (qc *QuoteCache) Get(fingerprint string) *domain.QuoteResult {
	key := hashFingerprint(fingerprint)
	now := time.Now().UnixNano()

	shard := qc.getShard(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()

	for i := 0; i < shard.size; i++ {
		entry := &shard.entries[i]
		if entry.key == key && entry.fingerprint == fingerprint && now <= entry.expiry {
			atomic.StoreUint32(&entry.used, 1)
			return entry.quote
		}
	}
	return nil
}

func (qc *QuoteCache) Set(fingerprint string, quote *domain.QuoteResult) {
	key := hashFingerprint(fingerprint)
	expiry := time.Now().Add(qc.ttl).UnixNano()

	shard := qc.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	for i := 0; i < shard.size; i++ {
		entry := &shard.entries[i]
		if entry.key == key && entry.fingerprint == fingerprint {
			entry.quote = quote
			entry.expiry = expiry
			atomic.StoreUint32(&entry.used, 1)
			return
		}
	}

	entriesPerShard := len(shard.entries)
	if shard.size < entriesPerShard {
		shard.entries[shard.size] = cacheEntry{key: key, fingerprint: fingerprint, quote: quote, expiry: expiry, used: 1}
		shard.size++
		return
	}

	// Clock eviction: expired or unreferenced entries go first.
	now := time.Now().UnixNano()
	for attempts := 0; attempts < entriesPerShard*2; attempts++ {
		entry := &shard.entries[shard.hand]
		shard.hand = (shard.hand + 1) % entriesPerShard

		if atomic.LoadUint32(&entry.used) == 0 || now > entry.expiry {
			*entry = cacheEntry{key: key, fingerprint: fingerprint, quote: quote, expiry: expiry, used: 1}
			return
		}
		atomic.StoreUint32(&entry.used, 0)
	}

	shard.entries[shard.hand] = cacheEntry{key: key, fingerprint: fingerprint, quote: quote, expiry: expiry, used: 1}
	shard.hand = (shard.hand + 1) % entriesPerShard
}

func (qc *QuoteCache) evictExpired() {
	now := time.Now().UnixNano()
	for i := 0; i < quoteCacheShards; i++ {
		shard := &qc.shards[i]
		shard.mu.Lock()
		for j := 0; j < shard.size; j++ {
			if now > shard.entries[j].expiry {
				atomic.StoreUint32(&shard.entries[j].used, 0)
			}
		}
		shard.mu.Unlock()
	}
}

func (qc *QuoteCache) Size() int {
	total := 0
	for i := 0; i < quoteCacheShards; i++ {
		shard := &qc.shards[i]
		shard.mu.RLock()
		total += shard.size
		shard.mu.RUnlock()
	}
	return total
}

func (qc *QuoteCache) cleanupLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-qc.stopChan:
			return
		case <-ticker.C:
			qc.evictExpired()
			metrics.QuoteCacheSize.Set(float64(qc.Size()))
		}
	}
}

// CachedQuoter serves repeated identical requests from a short-lived cache. Errors are
// never cached.
type CachedQuoter struct {
	*Quoter
	cache *QuoteCache
}

func NewCachedQuoter(quoter *Quoter, ttl time.Duration) *CachedQuoter {
	return &CachedQuoter{
		Quoter: quoter,
		cache:  NewQuoteCache(ttl),
	}
}

func (c *CachedQuoter) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.QuoteResult, error) {
	fp := req.Fingerprint()
	if cached := c.cache.Get(fp); cached != nil {
		metrics.QuoteCacheHits.Inc()
		return cached, nil
	}
	metrics.QuoteCacheMisses.Inc()

	quote, err := c.Quoter.Quote(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.Set(fp, quote)
	return quote, nil
}

func (c *CachedQuoter) Stop() {
	c.cache.Stop()
}
