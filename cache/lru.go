package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goliatone/go-navgate/gate"
)

// DefaultLRUSize bounds the LRU cache when no size is provided.
const DefaultLRUSize = 1024

type lruKey struct {
	feature  string
	tenantID string
	orgID    string
	userID   string
}

// LRUCache is a bounded, concurrency-safe entitlement cache.
type LRUCache struct {
	entries *lru.Cache[lruKey, Entry]
}

// NewLRU constructs an LRU cache holding up to size entries.
func NewLRU(size int) (*LRUCache, error) {
	if size <= 0 {
		size = DefaultLRUSize
	}
	entries, err := lru.New[lruKey, Entry](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{entries: entries}, nil
}

// Get implements Cache.
func (c *LRUCache) Get(_ context.Context, feature string, scope gate.Scope) (Entry, bool) {
	if c == nil || c.entries == nil {
		return Entry{}, false
	}
	return c.entries.Get(keyFor(feature, scope))
}

// Set implements Cache.
func (c *LRUCache) Set(_ context.Context, feature string, scope gate.Scope, entry Entry) {
	if c == nil || c.entries == nil {
		return
	}
	c.entries.Add(keyFor(feature, scope), entry)
}

// Delete implements Cache.
func (c *LRUCache) Delete(_ context.Context, feature string, scope gate.Scope) {
	if c == nil || c.entries == nil {
		return
	}
	c.entries.Remove(keyFor(feature, scope))
}

// Clear implements Cache.
func (c *LRUCache) Clear(context.Context) {
	if c == nil || c.entries == nil {
		return
	}
	c.entries.Purge()
}

// Len returns the number of cached entries.
func (c *LRUCache) Len() int {
	if c == nil || c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

func keyFor(feature string, scope gate.Scope) lruKey {
	return lruKey{
		feature:  feature,
		tenantID: scope.TenantID,
		orgID:    scope.OrgID,
		userID:   scope.UserID,
	}
}

var _ Cache = (*LRUCache)(nil)
