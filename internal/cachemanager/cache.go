// Package cachemanager holds short-lived, string-keyed state such as the
// request IDs a window has already answered.
package cachemanager

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/tabdock/internal/log"
)

// Cache is a TTL map. Expired entries behave as absent.
type Cache[K ~string, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	// Add stores value only if key is absent and reports whether it did.
	// Concurrent Adds of one key have exactly one winner.
	Add(key K, value V, ttl time.Duration) bool
	Delete(keys ...K)
	Len() int
}

// GoCache is a Cache backed by go-cache.
type GoCache[K ~string, V any] struct {
	name  string
	items *gocache.Cache
}

var _ Cache[string, int] = (*GoCache[string, int])(nil)

// NewGoCache creates a cache whose entries live for ttl unless a call says
// otherwise. Expired entries are swept every 2*ttl.
func NewGoCache[K ~string, V any](name string, ttl time.Duration) *GoCache[K, V] {
	return &GoCache[K, V]{name: name, items: gocache.New(ttl, 2*ttl)}
}

func (c *GoCache[K, V]) Get(key K) (V, bool) {
	var zero V
	raw, ok := c.items.Get(string(key))
	if !ok {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		log.Error(log.CatCache, "Cached value has unexpected type", "cache", c.name, "key", key)
		return zero, false
	}
	return v, true
}

func (c *GoCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.items.Set(string(key), value, ttl)
}

func (c *GoCache[K, V]) Add(key K, value V, ttl time.Duration) bool {
	return c.items.Add(string(key), value, ttl) == nil
}

func (c *GoCache[K, V]) Delete(keys ...K) {
	for _, k := range keys {
		c.items.Delete(string(k))
	}
}

// Len counts entries, including expired ones not yet swept.
func (c *GoCache[K, V]) Len() int { return c.items.ItemCount() }
