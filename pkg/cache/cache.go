// Package cache keeps parsed fragments keyed by a content hash of their
// source text, so watch-mode rebuilds only re-parse changed files.
// Merged document graphs are never cached: a build always merges fresh
// fragments, since merge is cheap and a merged graph must be immutable.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/minio/highwayhash"

	"github.com/weavelint/weavelint/pkg/model"
)

var hashKey = []byte("weavelint-fragment-cache-key-32b")

// Key hashes a fragment kind tag and source text into a cache key.
func Key(kind, src string) uint64 {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		// Key length is fixed at 32 bytes above; this cannot fail.
		panic(fmt.Sprintf("cache: %v", err))
	}
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(src))
	return h.Sum64()
}

// Cache is an LRU of parsed fragments. Element graphs are stored
// pristine and cloned on retrieval, because merging mutates elements;
// behavior and style graphs are read-only during merge and shared.
type Cache struct {
	elements  *lru.Cache[uint64, *model.ElementGraph]
	behaviors *lru.Cache[uint64, *model.BehaviorGraph]
	styles    *lru.Cache[uint64, *model.StyleGraph]
}

// New creates a cache holding up to size fragments per kind.
func New(size int) (*Cache, error) {
	elements, err := lru.New[uint64, *model.ElementGraph](size)
	if err != nil {
		return nil, fmt.Errorf("creating element cache: %w", err)
	}
	behaviors, err := lru.New[uint64, *model.BehaviorGraph](size)
	if err != nil {
		return nil, fmt.Errorf("creating behavior cache: %w", err)
	}
	styles, err := lru.New[uint64, *model.StyleGraph](size)
	if err != nil {
		return nil, fmt.Errorf("creating style cache: %w", err)
	}
	return &Cache{elements: elements, behaviors: behaviors, styles: styles}, nil
}

// Elements returns a clone of the cached element graph for key.
func (c *Cache) Elements(key uint64) (*model.ElementGraph, bool) {
	g, ok := c.elements.Get(key)
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// StoreElements caches a pristine element graph under key.
func (c *Cache) StoreElements(key uint64, g *model.ElementGraph) {
	c.elements.Add(key, g)
}

// Behaviors returns the cached behavior graph for key.
func (c *Cache) Behaviors(key uint64) (*model.BehaviorGraph, bool) {
	return c.behaviors.Get(key)
}

// StoreBehaviors caches a behavior graph under key.
func (c *Cache) StoreBehaviors(key uint64, g *model.BehaviorGraph) {
	c.behaviors.Add(key, g)
}

// Styles returns the cached style graph for key.
func (c *Cache) Styles(key uint64) (*model.StyleGraph, bool) {
	return c.styles.Get(key)
}

// StoreStyles caches a style graph under key.
func (c *Cache) StoreStyles(key uint64, g *model.StyleGraph) {
	c.styles.Add(key, g)
}
