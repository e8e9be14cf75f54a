package cache

import (
	"context"
	"testing"

	"github.com/goliatone/go-navgate/gate"
)

func TestLRUCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(8)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	scope := gate.Scope{TenantID: "t1", UserID: "u1"}
	entry := Entry{Access: gate.Access{HasAccess: true}}

	c.Set(ctx, "fpa", scope, entry)
	got, ok := c.Get(ctx, "fpa", scope)
	if !ok || !got.Access.HasAccess {
		t.Fatalf("expected cached entry, got %+v ok=%v", got, ok)
	}

	// scope is part of the key
	if _, ok := c.Get(ctx, "fpa", gate.Scope{TenantID: "t2"}); ok {
		t.Fatalf("different scope must miss")
	}

	c.Delete(ctx, "fpa", scope)
	if _, ok := c.Get(ctx, "fpa", scope); ok {
		t.Fatalf("expected delete to evict entry")
	}
}

func TestLRUCacheBounded(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(2)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	scope := gate.Scope{TenantID: "t1"}
	c.Set(ctx, "a", scope, Entry{})
	c.Set(ctx, "b", scope, Entry{})
	c.Set(ctx, "c", scope, Entry{})
	if c.Len() != 2 {
		t.Fatalf("expected bounded cache, len=%d", c.Len())
	}
	if _, ok := c.Get(ctx, "a", scope); ok {
		t.Fatalf("oldest entry should have been evicted")
	}
}

func TestLRUCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewLRU(4)
	c.Set(ctx, "a", gate.Scope{}, Entry{})
	c.Clear(ctx)
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after clear")
	}
}
