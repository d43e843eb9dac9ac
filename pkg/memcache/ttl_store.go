// pkg/memcache/ttl_store.go
package memcache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is a typed in-process TTL cache. Safe for concurrent use.
type Store[T any] interface {
	Set(key string, value T, ttl time.Duration)
	// Get returns the value if present and not expired.
	Get(key string) (T, bool)
	Delete(key string)
	Len() int
}

type ttlStore[T any] struct {
	c *gocache.Cache
}

// New returns a store whose entries default to ttl. Expired entries are
// swept every cleanup interval.
func New[T any](ttl, cleanup time.Duration) Store[T] {
	return &ttlStore[T]{c: gocache.New(ttl, cleanup)}
}

func (s *ttlStore[T]) Set(key string, value T, ttl time.Duration) {
	if ttl <= 0 {
		s.c.SetDefault(key, value)
		return
	}
	s.c.Set(key, value, ttl)
}

func (s *ttlStore[T]) Get(key string) (T, bool) {
	var zero T
	v, ok := s.c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

func (s *ttlStore[T]) Delete(key string) {
	s.c.Delete(key)
}

func (s *ttlStore[T]) Len() int {
	return s.c.ItemCount()
}
