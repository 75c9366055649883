package tools

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"picoagent/pkg/models"
)

// resultCache stores tool results keyed by a canonical fingerprint of
// (tool name, arguments), evicting the least recently used entry once
// maxEntries is exceeded and treating entries older than ttl as misses.
type resultCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	order      *list.List
	entries    map[string]*list.Element
}

type cacheEntry struct {
	key       string
	result    models.ToolResult
	expiresAt time.Time
}

func newResultCache(ttl time.Duration, maxEntries int) *resultCache {
	return &resultCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

// fingerprint canonicalizes name+args into a stable cache key: map keys are
// sorted before hashing so argument ordering never affects the fingerprint.
func fingerprint(name string, args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]any, 0, len(keys)*2+1)
	ordered = append(ordered, name)
	for _, k := range keys {
		ordered = append(ordered, k, args[k])
	}
	payload, _ := json.Marshal(ordered)

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (c *resultCache) get(key string) (models.ToolResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return models.ToolResult{}, false
	}
	entry := el.Value.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		return models.ToolResult{}, false
	}
	c.order.MoveToFront(el)
	result := entry.result
	result.Cached = true
	return result, true
}

func (c *resultCache) put(key string, result models.ToolResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).result = result
		el.Value.(*cacheEntry).expiresAt = time.Now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}

	entry := &cacheEntry{key: key, result: result, expiresAt: time.Now().Add(c.ttl)}
	el := c.order.PushFront(entry)
	c.entries[key] = el

	for c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}
