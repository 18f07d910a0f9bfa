// Package cache provides the bounded memoization cache for parsed stats
// files. Capacity is fixed at construction; once full, the least-recently-used
// entry is evicted. The zero cache is not usable, call New.
package cache

import (
	"container/list"
	"sync"

	"github.com/TELOS-syslab/zsimview/internal/models"
)

type entry struct {
	key     string
	periods []*models.Node
}

// LRU is a fixed-capacity least-recently-used cache keyed by file path.
// Safe for concurrent use.
type LRU struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	items    map[string]*list.Element
}

// DefaultCapacity bounds the parse cache when the caller does not care.
const DefaultCapacity = 8

func New(capacity int) *LRU {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get returns the cached periods for key and marks the entry as most
// recently used.
func (c *LRU) Get(key string) ([]*models.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).periods, true
}

// Add inserts or refreshes an entry, evicting the least-recently-used one
// when the cache is full.
func (c *LRU) Add(key string, periods []*models.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).periods = periods
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&entry{key: key, periods: periods})

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
}

// Len reports the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge drops every entry.
func (c *LRU) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
}
