package lang

import (
	"sync"

	"github.com/zeebo/xxh3"
)

// shards is the number of independently locked cache partitions.
const shards = 16

// cache maps exact source text to its compiled expression.
//
// Keys are distributed over shards by xxh3 hash so concurrent lookups of
// different sources rarely contend. Within a shard the key is the exact
// source, so hash collisions never alias two expressions.
type cache struct {
	shard [shards]cacheShard
}

type cacheShard struct {
	mu    sync.RWMutex
	items map[string]*Expression
	order []string // insertion order, for eviction
	limit int
}

// newCache returns a cache holding at most about limit entries, or an
// unbounded cache when limit <= 0.
func newCache(limit int) *cache {
	c := new(cache)

	per := 0
	if limit > 0 {
		per = (limit + shards - 1) / shards
	}

	for i := range c.shard {
		c.shard[i].items = make(map[string]*Expression)
		c.shard[i].limit = per
	}

	return c
}

func (c *cache) of(source string) *cacheShard {
	return &c.shard[xxh3.HashString(source)%shards]
}

func (c *cache) get(source string) (*Expression, bool) {
	s := c.of(source)

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[source]

	return e, ok
}

// put stores e under source. A concurrent compile of the same source may
// have stored an equivalent expression first; the later one wins.
func (c *cache) put(source string, e *Expression) {
	s := c.of(source)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[source]; !ok {
		if s.limit > 0 && len(s.order) >= s.limit {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.items, oldest)
		}

		s.order = append(s.order, source)
	}

	s.items[source] = e
}

func (c *cache) len() int {
	n := 0

	for i := range c.shard {
		s := &c.shard[i]
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}

	return n
}

func (c *cache) clear() {
	for i := range c.shard {
		s := &c.shard[i]
		s.mu.Lock()
		s.items = make(map[string]*Expression)
		s.order = nil
		s.mu.Unlock()
	}
}
