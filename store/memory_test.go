package store

import (
	"context"
	"testing"

	"github.com/goliatone/go-navgate/gate"
)

func TestMemoryStoreScopePrecedence(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	actor := gate.Actor{ID: "admin-1"}

	if err := m.Set(ctx, "fpa", gate.Scope{TenantID: "t1"}, true, actor); err != nil {
		t.Fatalf("set tenant: %v", err)
	}
	if err := m.Set(ctx, "fpa", gate.Scope{TenantID: "t1", UserID: "u1"}, false, actor); err != nil {
		t.Fatalf("set user: %v", err)
	}

	grant, err := m.Get(ctx, "fpa", gate.Scope{TenantID: "t1", UserID: "u1"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if grant.State != GrantStateRevoked {
		t.Fatalf("user scope must win, got %s", grant.State)
	}

	grant, err = m.Get(ctx, "fpa", gate.Scope{TenantID: "t1", UserID: "u2"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if grant.State != GrantStateGranted {
		t.Fatalf("tenant scope should apply, got %s", grant.State)
	}
}

func TestMemoryStoreMissingGrant(t *testing.T) {
	m := NewMemoryStore()
	grant, err := m.Get(context.Background(), "pmi", gate.Scope{TenantID: "t1"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if grant.State != GrantStateMissing || grant.HasValue() {
		t.Fatalf("expected missing grant, got %+v", grant)
	}
}

func TestMemoryStoreUnsetAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	scope := gate.Scope{TenantID: "t1"}
	actor := gate.Actor{ID: "admin-1"}

	if err := m.Set(ctx, "fpa", scope, true, actor); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Unset(ctx, "fpa", scope, actor); err != nil {
		t.Fatalf("unset: %v", err)
	}
	grant, _ := m.Get(ctx, "fpa", scope)
	if grant.State != GrantStateUnset {
		t.Fatalf("expected unset state, got %s", grant.State)
	}

	if !m.Delete("fpa", scope) {
		t.Fatalf("expected delete to remove entry")
	}
	grant, _ = m.Get(ctx, "fpa", scope)
	if grant.State != GrantStateMissing {
		t.Fatalf("expected missing after delete, got %s", grant.State)
	}
}

func TestMemoryStoreRejectsEmptyKey(t *testing.T) {
	m := NewMemoryStore()
	if _, err := m.Get(context.Background(), "  ", gate.Scope{}); err != ErrInvalidKey {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestMemoryStoreNormalizesAliases(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	if err := m.Set(ctx, "fpna", gate.Scope{}, true, gate.Actor{}); err != nil {
		t.Fatalf("set: %v", err)
	}
	grant, err := m.Get(ctx, "fpa", gate.Scope{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if grant.State != GrantStateGranted {
		t.Fatalf("alias write should be readable by canonical key, got %s", grant.State)
	}
}
