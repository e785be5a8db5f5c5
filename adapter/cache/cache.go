// Package cache contains the three-tier cache wrapping the matcher: a
// whole-result cache keyed by slice identity plus expression hash, a
// compiled-predicate cache with LRU eviction and TTL expiry, and a compiled
// regex cache. A hit in any tier is always observationally equivalent to
// recomputation; the layers only trade memory for latency.
package cache

import (
	"regexp"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/siftkit/sift/domain"
)

// Default bounds for the cache tiers.
const (
	// DefaultPredicateCapacity bounds the compiled-predicate cache.
	DefaultPredicateCapacity = 500
	// DefaultPredicateTTL expires compiled predicates.
	DefaultPredicateTTL = 5 * time.Minute
	// DefaultResultCapacity bounds the whole-result cache. Go has no
	// weak-keyed map with the contract the result cache needs, so old
	// entries disappear through LRU eviction instead of garbage
	// collection.
	DefaultResultCapacity = 128
)

// ResultKey identifies a cached filter result: the identity of the input
// slice (backing array pointer and length) plus the structural hash of the
// expression and options.
type ResultKey struct {
	Data uintptr
	Len  int
	Hash uint64
}

// Cache implements the three cache tiers. All methods are safe for
// concurrent use.
type Cache struct {
	results *lru.Cache[ResultKey, any]
	preds   *expirable.LRU[uint64, domain.CompiledQuery]

	mu      sync.RWMutex
	regexps map[string]*regexp.Regexp
}

// New returns a cache with the given options applied:
//
// - [WithPredicateCapacity]: bounds the compiled-predicate cache.
//
// - [WithPredicateTTL]: expires compiled predicates.
//
// - [WithResultCapacity]: bounds the whole-result cache.
func New(options ...Option) *Cache {
	o := settings{
		predicateCapacity: DefaultPredicateCapacity,
		predicateTTL:      DefaultPredicateTTL,
		resultCapacity:    DefaultResultCapacity,
	}
	for _, option := range options {
		option(&o)
	}

	results, _ := lru.New[ResultKey, any](o.resultCapacity)
	return &Cache{
		results: results,
		preds: expirable.NewLRU[uint64, domain.CompiledQuery](
			o.predicateCapacity, nil, o.predicateTTL,
		),
		regexps: make(map[string]*regexp.Regexp),
	}
}

// Predicate returns the cached compiled query for the given expression hash.
func (c *Cache) Predicate(hash uint64) (domain.CompiledQuery, bool) {
	return c.preds.Get(hash)
}

// StorePredicate caches a compiled query under the given expression hash.
// The least recently used entry is evicted once the capacity is exceeded.
func (c *Cache) StorePredicate(hash uint64, cq domain.CompiledQuery) {
	c.preds.Add(hash, cq)
}

// Result returns the cached output for the given key. The cached slice is
// returned as stored, not copied; callers must treat results as read-only.
func (c *Cache) Result(key ResultKey) (any, bool) {
	return c.results.Get(key)
}

// StoreResult caches a filter output under the given key.
func (c *Cache) StoreResult(key ResultKey, result any) {
	c.results.Add(key, result)
}

// Regexp returns the compiled regex for the given pattern, compiling and
// storing it on first use. The pattern string includes any inline flags, so
// it fully identifies the compiled form. A concurrent first-compile of the
// same pattern is idempotent: both compiled values are equivalent and only
// one survives.
func (c *Cache) Regexp(pattern string) (*regexp.Regexp, error) {
	c.mu.RLock()
	re, ok := c.regexps[pattern]
	c.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if cached, ok := c.regexps[pattern]; ok {
		re = cached
	} else {
		c.regexps[pattern] = re
	}
	c.mu.Unlock()
	return re, nil
}

// Clear resets all three tiers.
func (c *Cache) Clear() {
	c.results.Purge()
	c.preds.Purge()
	c.mu.Lock()
	c.regexps = make(map[string]*regexp.Regexp)
	c.mu.Unlock()
}

// Stats reports the current size of each tier.
func (c *Cache) Stats() domain.CacheStats {
	c.mu.RLock()
	regexps := len(c.regexps)
	c.mu.RUnlock()
	return domain.CacheStats{
		PredicateCacheSize: c.preds.Len(),
		RegexCacheSize:     regexps,
		ResultCacheSize:    c.results.Len(),
	}
}

type settings struct {
	predicateCapacity int
	predicateTTL      time.Duration
	resultCapacity    int
}

// Option configures cache behavior through the functional options pattern.
type Option func(*settings)

// WithPredicateCapacity bounds the compiled-predicate cache.
func WithPredicateCapacity(n int) Option {
	return func(s *settings) {
		s.predicateCapacity = n
	}
}

// WithPredicateTTL sets the compiled-predicate expiry.
func WithPredicateTTL(d time.Duration) Option {
	return func(s *settings) {
		s.predicateTTL = d
	}
}

// WithResultCapacity bounds the whole-result cache.
func WithResultCapacity(n int) Option {
	return func(s *settings) {
		s.resultCapacity = n
	}
}
