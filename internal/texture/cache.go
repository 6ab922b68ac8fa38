package texture

import (
	"image"
	"sync"
)

// Resolver resolves a texture name to a decoded, premultiplied RGBA image.
type Resolver interface {
	Resolve(texName string) *image.RGBA
}

// Cache is a concurrency-safe texture cache. Failed loads are cached as nil
// so a missing file is only tried once.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*image.RGBA
	index *Index
}

// NewCache creates a new texture cache backed by the given index, which may be nil.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*image.RGBA),
		index: index,
	}
}

// Resolve loads and caches a texture by name. Returns nil if not found.
func (c *Cache) Resolve(texName string) *image.RGBA {
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		return nil
	}

	// Fast path: read lock
	c.mu.RLock()
	img, exists := c.items[path]
	c.mu.RUnlock()
	if exists {
		return img
	}

	// Slow path: load from disk
	img, _ = LoadTexture(path)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, exists := c.items[path]; exists {
		return cached
	}
	c.items[path] = img
	return img
}

// Len returns the number of cached paths, including failed loads.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
