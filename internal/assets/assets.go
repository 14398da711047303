// Package assets fetches item images by reference, from the local asset root
// or over HTTP, and caches the raw bytes.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/pulpcarousel/internal/engine/texture"
	"github.com/Faultbox/pulpcarousel/internal/logger"
)

// maxImageBytes bounds a single image download.
const maxImageBytes = 32 << 20

// ErrNotFound is returned when a reference resolves to nothing.
var ErrNotFound = errors.New("asset not found")

// Manager resolves image references.
//
// Absolute http(s) URLs are fetched with GET. Anything else is a path under
// Root; a reference without a leading slash is treated as rooted, the same way
// a page resolves "products/x.png" against its site root.
type Manager struct {
	root   string
	client *http.Client
	cache  *Cache
	log    *zap.Logger
}

// NewManager creates a manager serving relative references from root.
func NewManager(root string, timeout time.Duration) *Manager {
	return &Manager{
		root:   root,
		client: &http.Client{Timeout: timeout},
		cache:  NewCache(),
		log:    logger.Named("assets"),
	}
}

// Normalize returns the canonical form of a reference.
func Normalize(ref string) string {
	if isRemote(ref) || strings.HasPrefix(ref, "/") {
		return ref
	}
	return "/" + ref
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Load returns the bytes behind a reference.
func (m *Manager) Load(ctx context.Context, ref string) ([]byte, error) {
	ref = Normalize(ref)
	if data, ok := m.cache.Get(ref); ok {
		return data, nil
	}

	var (
		data []byte
		err  error
	)
	if isRemote(ref) {
		data, err = m.fetch(ctx, ref)
	} else {
		data, err = m.readFile(ref)
	}
	if err != nil {
		return nil, err
	}

	m.cache.Set(ref, data)
	m.log.Debug("asset loaded", zap.String("ref", ref), zap.Int("bytes", len(data)))
	return data, nil
}

// Image loads and decodes the image behind a reference.
func (m *Manager) Image(ctx context.Context, ref string) (image.Image, error) {
	data, err := m.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	return texture.Decode(data, ref)
}

func (m *Manager) readFile(ref string) ([]byte, error) {
	// path.Clean on a rooted path cannot climb above the root.
	rel := strings.TrimPrefix(path.Clean(ref), "/")
	data, err := os.ReadFile(filepath.Join(m.root, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ref, err)
	}
	return data, nil
}

func (m *Manager) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("fetching %s: image larger than %d bytes", url, maxImageBytes)
	}
	return data, nil
}

// Stats returns cache hit and miss counts.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close drops cached data.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
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

// Get retrieves an item from cache.
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
