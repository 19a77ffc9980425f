// Package assets provides a caching loader for the command-line tools.
package assets

import (
	"io"
	"sync"

	"github.com/Faultbox/assetkit/pkg/assetio"
)

// Manager is an assetio.Loader that reads each file once through an
// underlying loader and serves later opens from memory. Probing importers
// and the importer that finally reads a file share one read.
type Manager struct {
	loader assetio.Loader
	cache  *Cache
	mu     sync.Mutex
}

// NewManager creates a manager reading through loader.
func NewManager(loader assetio.Loader) *Manager {
	return &Manager{
		loader: loader,
		cache:  NewCache(),
	}
}

// Open implements assetio.Loader.
func (m *Manager) Open(path string) (io.ReadSeekCloser, error) {
	data, err := m.Load(path)
	if err != nil {
		return nil, err
	}
	return assetio.BytesReader(data), nil
}

// Load returns the contents of path.
func (m *Manager) Load(path string) ([]byte, error) {
	key := assetio.NormPath(path)
	if data, ok := m.cache.Get(key); ok {
		return data, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if data, ok := m.cache.Peek(key); ok {
		return data, nil
	}
	data, err := assetio.ReadAll(m.loader, path)
	if err != nil {
		return nil, err
	}
	m.cache.Set(key, data)
	return data, nil
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close drops every cached file.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded files.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache and counts the hit or miss.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Peek retrieves an item without touching the statistics.
func (c *Cache) Peek(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.data[key]
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
