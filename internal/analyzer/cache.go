package analyzer

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

const cacheKeyPrefixLength = 100

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// CacheKey derives the cache key for normalized text: character length,
// the first hundred characters and a short content hash.
func CacheKey(text string) string {
	prefix := text
	if utf8.RuneCountInString(text) > cacheKeyPrefixLength {
		prefix = string([]rune(text)[:cacheKeyPrefixLength])
	}
	sum := md5.Sum([]byte(text))
	return fmt.Sprintf("%d_%s_%s", utf8.RuneCountInString(text), prefix, hex.EncodeToString(sum[:])[:8])
}

// ResultCache is a bounded LRU of analysis results, safe for concurrent use.
// Stored and returned results are copies.
type ResultCache struct {
	mu       sync.Mutex
	capacity int
	lru      *simplelru.LRU[string, *JobAnalysisResult]
	stats    CacheStats
}

func NewResultCache(capacity int) *ResultCache {
	if capacity <= 0 {
		capacity = defaultCacheSize
	}
	return &ResultCache{capacity: capacity, lru: newLRU(capacity)}
}

func newLRU(capacity int) *simplelru.LRU[string, *JobAnalysisResult] {
	// NewLRU only fails for a non-positive size
	l, _ := simplelru.NewLRU[string, *JobAnalysisResult](capacity, nil)
	return l
}

// Get returns a copy of the cached result and marks it most recently used.
func (c *ResultCache) Get(key string) (*JobAnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, ok := c.lru.Get(key)
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return result.Clone(), true
}

// Put stores a copy of result, evicting the least recently used entry when full.
func (c *ResultCache) Put(key string, result *JobAnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if evicted := c.lru.Add(key, result.Clone()); evicted {
		c.stats.Evictions++
	}
}

// Clear drops every entry and resets the counters.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru = newLRU(c.capacity)
	c.stats = CacheStats{}
}

func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *ResultCache) Capacity() int {
	return c.capacity
}

func (c *ResultCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
