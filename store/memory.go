package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/goliatone/go-navgate/gate"
)

// ErrMemoryStoreRequired signals a missing memory store.
var ErrMemoryStoreRequired = errors.New("store: memory store is required")

// ErrInvalidKey signals a missing or invalid feature key.
var ErrInvalidKey = errors.New("store: feature key required")

// MemoryStore keeps entitlement grants in memory for tests and examples.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]map[scopeKey]Grant
}

type scopeKind string

const (
	scopeSystem scopeKind = "system"
	scopeTenant scopeKind = "tenant"
	scopeOrg    scopeKind = "org"
	scopeUser   scopeKind = "user"
)

type scopeKey struct {
	kind scopeKind
	id   string
}

// NewMemoryStore constructs an in-memory grant store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]map[scopeKey]Grant{}}
}

// Get implements Reader. Narrower scopes win: user, then org, then tenant,
// then system.
func (m *MemoryStore) Get(_ context.Context, feature string, scope gate.Scope) (Grant, error) {
	if m == nil {
		return MissingGrant(), ErrMemoryStoreRequired
	}
	normalized, err := normalizeKey(feature)
	if err != nil {
		return MissingGrant(), err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.entries[normalized]
	if len(entries) == 0 {
		return MissingGrant(), nil
	}
	for _, key := range readScopes(scope) {
		if grant, ok := entries[key]; ok {
			if grant.State == "" {
				grant.State = GrantStateMissing
			}
			return grant, nil
		}
	}
	return MissingGrant(), nil
}

// Set implements Writer.
func (m *MemoryStore) Set(_ context.Context, feature string, scope gate.Scope, granted bool, _ gate.Actor) error {
	if m == nil {
		return ErrMemoryStoreRequired
	}
	normalized, err := normalizeKey(feature)
	if err != nil {
		return err
	}
	grant := RevokedGrant()
	if granted {
		grant = GrantedGrant("")
	}
	key := writeScope(scope)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = map[string]map[scopeKey]Grant{}
	}
	if m.entries[normalized] == nil {
		m.entries[normalized] = map[scopeKey]Grant{}
	}
	m.entries[normalized][key] = grant
	return nil
}

// Unset implements Writer.
func (m *MemoryStore) Unset(_ context.Context, feature string, scope gate.Scope, _ gate.Actor) error {
	if m == nil {
		return ErrMemoryStoreRequired
	}
	normalized, err := normalizeKey(feature)
	if err != nil {
		return err
	}
	key := writeScope(scope)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = map[string]map[scopeKey]Grant{}
	}
	if m.entries[normalized] == nil {
		m.entries[normalized] = map[scopeKey]Grant{}
	}
	m.entries[normalized][key] = UnsetGrant()
	return nil
}

// Delete removes a stored grant entirely.
func (m *MemoryStore) Delete(feature string, scope gate.Scope) bool {
	if m == nil {
		return false
	}
	normalized, err := normalizeKey(feature)
	if err != nil {
		return false
	}
	key := writeScope(scope)
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.entries[normalized]
	if len(entries) == 0 {
		return false
	}
	if _, ok := entries[key]; !ok {
		return false
	}
	delete(entries, key)
	if len(entries) == 0 {
		delete(m.entries, normalized)
	}
	return true
}

// Clear removes all stored grants.
func (m *MemoryStore) Clear() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string]map[scopeKey]Grant{}
}

func normalizeKey(feature string) (string, error) {
	normalized := gate.NormalizeKey(strings.TrimSpace(feature))
	if normalized == "" {
		return "", ErrInvalidKey
	}
	return normalized, nil
}

func readScopes(scope gate.Scope) []scopeKey {
	scopes := make([]scopeKey, 0, 4)
	if scope.UserID != "" {
		scopes = append(scopes, scopeKey{kind: scopeUser, id: scope.UserID})
	}
	if scope.OrgID != "" {
		scopes = append(scopes, scopeKey{kind: scopeOrg, id: scope.OrgID})
	}
	if scope.TenantID != "" {
		scopes = append(scopes, scopeKey{kind: scopeTenant, id: scope.TenantID})
	}
	scopes = append(scopes, scopeKey{kind: scopeSystem})
	return scopes
}

func writeScope(scope gate.Scope) scopeKey {
	switch {
	case scope.UserID != "":
		return scopeKey{kind: scopeUser, id: scope.UserID}
	case scope.OrgID != "":
		return scopeKey{kind: scopeOrg, id: scope.OrgID}
	case scope.TenantID != "":
		return scopeKey{kind: scopeTenant, id: scope.TenantID}
	default:
		return scopeKey{kind: scopeSystem}
	}
}

var _ ReadWriter = (*MemoryStore)(nil)
