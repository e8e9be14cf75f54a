package cache

import (
	"context"

	"github.com/goliatone/go-navgate/gate"
)

// Entry stores a resolved entitlement decision and its trace. Tier records
// the caller tier a plan decision was computed for; entries with an empty
// Tier (runtime grants) hold for every caller in the scope.
type Entry struct {
	Access gate.Access
	Trace  gate.CheckTrace
	Tier   string
}

// Cache stores resolved entitlement decisions by feature key and scope.
type Cache interface {
	Get(ctx context.Context, feature string, scope gate.Scope) (Entry, bool)
	Set(ctx context.Context, feature string, scope gate.Scope, entry Entry)
	Delete(ctx context.Context, feature string, scope gate.Scope)
	Clear(ctx context.Context)
}

// NoopCache ignores all cache operations.
type NoopCache struct{}

// Get implements Cache.
func (NoopCache) Get(context.Context, string, gate.Scope) (Entry, bool) {
	return Entry{}, false
}

// Set implements Cache.
func (NoopCache) Set(context.Context, string, gate.Scope, Entry) {}

// Delete implements Cache.
func (NoopCache) Delete(context.Context, string, gate.Scope) {}

// Clear implements Cache.
func (NoopCache) Clear(context.Context) {}
