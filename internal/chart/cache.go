package chart

import (
	"sync"

	"github.com/google/uuid"
)

// defaultCapacity bounds how many rendered artifacts are kept. Payloads are
// single-render by contract, so old artifacts only need to survive long
// enough for the browser to fetch them.
const defaultCapacity = 64

// ArtifactCache holds rendered PNG artifacts keyed by id, evicting the
// oldest entry beyond capacity.
type ArtifactCache struct {
	mu       sync.Mutex
	items    map[string][]byte
	order    []string
	capacity int
}

// NewArtifactCache creates a cache with the given capacity; values <= 0 use
// the default.
func NewArtifactCache(capacity int) *ArtifactCache {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &ArtifactCache{
		items:    make(map[string][]byte),
		capacity: capacity,
	}
}

// Put stores an artifact and returns its generated id.
func (c *ArtifactCache) Put(png []byte) string {
	id := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[id] = png
	c.order = append(c.order, id)
	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}
	return id
}

// Get returns the artifact for id, if still cached.
func (c *ArtifactCache) Get(id string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	png, ok := c.items[id]
	return png, ok
}
