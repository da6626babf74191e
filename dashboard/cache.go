package dashboard

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/barasalah2/chartflow/engine"
	"github.com/zeebo/xxh3"
)

// panelCache memoizes panels by dataset fingerprint and spec. Oldest
// entries are evicted first once size is reached.
type panelCache struct {
	mu    sync.Mutex
	size  int
	items map[uint64]Panel
	order []uint64
}

func newPanelCache(size int) *panelCache {
	return &panelCache{size: size, items: make(map[uint64]Panel)}
}

func cacheKey(fingerprint uint64, spec engine.ChartSpec) uint64 {
	b, _ := json.Marshal(spec)
	h := xxh3.New()
	_, _ = h.Write([]byte(strconv.FormatUint(fingerprint, 16)))
	_, _ = h.Write(b)
	return h.Sum64()
}

func (c *panelCache) get(key uint64) (Panel, bool) {
	if c.size == 0 {
		return Panel{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[key]
	return p, ok
}

func (c *panelCache) put(key uint64, p Panel) {
	if c.size == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[key]; exists {
		c.items[key] = p
		return
	}
	for len(c.order) >= c.size {
		delete(c.items, c.order[0])
		c.order = c.order[1:]
	}
	c.items[key] = p
	c.order = append(c.order, key)
}

func (c *panelCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
