package optionsadapter

import (
	"context"
	"fmt"
	"strings"

	opts "github.com/goliatone/go-options"
	"github.com/goliatone/go-options/pkg/state"

	"github.com/goliatone/go-navgate/gate"
	"github.com/goliatone/go-navgate/naverrors"
	"github.com/goliatone/go-navgate/store"
)

const (
	prioritySystem = 10
	priorityTenant = 20
	priorityOrg    = 30
	priorityUser   = 40
)

// Scope metadata keys used in go-options scope definitions.
const (
	MetadataTenantID = "tenant_id"
	MetadataOrgID    = "org_id"
	MetadataUserID   = "user_id"
)

// DefaultDomain is the default options domain for entitlement grants.
const DefaultDomain = "entitlements"

// ErrStoreRequired indicates the underlying state store is missing.
var ErrStoreRequired = naverrors.ErrStoreRequired

// ErrInvalidKey indicates a missing or invalid feature key.
var ErrInvalidKey = naverrors.ErrInvalidKey

// ScopeBuilder maps a gate.Scope into go-options scopes ordered by
// precedence, narrowest first.
type ScopeBuilder func(scope gate.Scope) []opts.Scope

// MetaBuilder builds storage metadata from the mutating actor.
type MetaBuilder func(actor gate.Actor) state.Meta

// Option customizes the Store adapter.
type Option func(*Store)

// Store adapts a go-options state.Store into an entitlement grant store.
// Grants are stored as booleans under the feature key path: true grants,
// false revokes, a removed key falls back to plan requirements.
type Store struct {
	stateStore state.Store[map[string]any]
	domain     string
	scopes     ScopeBuilder
	meta       MetaBuilder
}

// NewStore constructs an adapter backed by a go-options state.Store.
func NewStore(stateStore state.Store[map[string]any], opts ...Option) *Store {
	adapter := &Store{
		stateStore: stateStore,
		domain:     DefaultDomain,
		scopes:     defaultScopes,
		meta:       defaultMeta,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	if adapter.domain == "" {
		adapter.domain = DefaultDomain
	}
	if adapter.scopes == nil {
		adapter.scopes = defaultScopes
	}
	if adapter.meta == nil {
		adapter.meta = defaultMeta
	}
	return adapter
}

// WithDomain sets the options domain used for grants.
func WithDomain(domain string) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.domain = strings.TrimSpace(domain)
	}
}

// WithScopeBuilder overrides the default scope mapping.
func WithScopeBuilder(builder ScopeBuilder) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.scopes = builder
	}
}

// WithMetaBuilder overrides the metadata builder used on mutations.
func WithMetaBuilder(builder MetaBuilder) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.meta = builder
	}
}

// Get implements store.Reader. The narrowest scope carrying a value wins:
// user, then org, then tenant, then system.
func (s *Store) Get(ctx context.Context, feature string, scope gate.Scope) (store.Grant, error) {
	if s == nil || s.stateStore == nil {
		domain := ""
		if s != nil {
			domain = s.domain
		}
		return store.MissingGrant(), storeRequiredError(feature, scope, "get", domain)
	}
	trimmed := strings.TrimSpace(feature)
	normalized := gate.NormalizeKey(trimmed)
	if normalized == "" {
		return store.MissingGrant(), invalidKeyError(trimmed, normalized, scope, "get", s.domain)
	}

	scopes := s.scopes(scope)
	if len(scopes) == 0 {
		return store.MissingGrant(), nil
	}

	for _, scopeDef := range scopes {
		snapshot, _, ok, err := s.stateStore.Load(ctx, state.Ref{Domain: s.domain, Scope: scopeDef})
		if err != nil {
			meta := storeMeta(scopeDef, "load", s.domain)
			meta[naverrors.MetaFeatureKey] = trimmed
			meta[naverrors.MetaFeatureKeyNormalized] = normalized
			return store.MissingGrant(), naverrors.WrapExternal(err, naverrors.TextCodeStoreReadFailed, "optionsadapter: load failed", meta)
		}
		if !ok || len(snapshot) == 0 {
			continue
		}
		if value, found := lookupPath(snapshot, normalized); found {
			return grantFromValue(normalized, value, scopeDef, s.domain)
		}
	}

	return store.MissingGrant(), nil
}

// Set implements store.Writer.
func (s *Store) Set(ctx context.Context, feature string, scope gate.Scope, granted bool, actor gate.Actor) error {
	if s == nil || s.stateStore == nil {
		domain := ""
		if s != nil {
			domain = s.domain
		}
		return storeRequiredError(feature, scope, "set", domain)
	}
	trimmed := strings.TrimSpace(feature)
	normalized := gate.NormalizeKey(trimmed)
	if normalized == "" {
		return invalidKeyError(trimmed, normalized, scope, "set", s.domain)
	}

	ref, err := s.writeRef(scope)
	if err != nil {
		return err
	}

	resolver := state.Resolver[map[string]any]{Store: s.stateStore}
	_, _, err = resolver.Mutate(ctx, ref, s.meta(actor), func(snapshot *map[string]any) error {
		if snapshot == nil {
			return naverrors.WrapSentinel(naverrors.ErrSnapshotRequired, "optionsadapter: snapshot is nil", storeMeta(ref.Scope, "set", s.domain))
		}
		if *snapshot == nil {
			*snapshot = map[string]any{}
		}
		return setPath(*snapshot, normalized, granted)
	})
	if err != nil {
		meta := storeMeta(ref.Scope, "set", s.domain)
		meta[naverrors.MetaFeatureKey] = trimmed
		meta[naverrors.MetaFeatureKeyNormalized] = normalized
		return naverrors.WrapExternal(err, naverrors.TextCodeStoreWriteFailed, "optionsadapter: set failed", meta)
	}
	return nil
}

// Unset implements store.Writer.
func (s *Store) Unset(ctx context.Context, feature string, scope gate.Scope, actor gate.Actor) error {
	if s == nil || s.stateStore == nil {
		domain := ""
		if s != nil {
			domain = s.domain
		}
		return storeRequiredError(feature, scope, "unset", domain)
	}
	trimmed := strings.TrimSpace(feature)
	normalized := gate.NormalizeKey(trimmed)
	if normalized == "" {
		return invalidKeyError(trimmed, normalized, scope, "unset", s.domain)
	}

	ref, err := s.writeRef(scope)
	if err != nil {
		return err
	}

	resolver := state.Resolver[map[string]any]{Store: s.stateStore}
	_, _, err = resolver.Mutate(ctx, ref, s.meta(actor), func(snapshot *map[string]any) error {
		if snapshot == nil {
			return naverrors.WrapSentinel(naverrors.ErrSnapshotRequired, "optionsadapter: snapshot is nil", storeMeta(ref.Scope, "unset", s.domain))
		}
		if *snapshot == nil {
			*snapshot = map[string]any{}
		}
		deletePath(*snapshot, normalized)
		return nil
	})
	if err != nil {
		meta := storeMeta(ref.Scope, "unset", s.domain)
		meta[naverrors.MetaFeatureKey] = trimmed
		meta[naverrors.MetaFeatureKeyNormalized] = normalized
		return naverrors.WrapExternal(err, naverrors.TextCodeStoreWriteFailed, "optionsadapter: unset failed", meta)
	}
	return nil
}

func (s *Store) writeRef(scope gate.Scope) (state.Ref, error) {
	scopeDef := writeScope(scope)
	if scopeDef.Name == "" {
		return state.Ref{}, naverrors.WrapSentinel(naverrors.ErrScopeRequired, "optionsadapter: scope is required", storeMeta(scopeDef, "write_ref", s.domain))
	}
	return state.Ref{Domain: s.domain, Scope: scopeDef}, nil
}

func defaultScopes(scope gate.Scope) []opts.Scope {
	if scope.System {
		return []opts.Scope{scoped("system", "System", prioritySystem, "", "")}
	}
	var scopes []opts.Scope
	if scope.UserID != "" {
		scopes = append(scopes, scoped("user", "User", priorityUser, MetadataUserID, scope.UserID))
	}
	if scope.OrgID != "" {
		scopes = append(scopes, scoped("org", "Org", priorityOrg, MetadataOrgID, scope.OrgID))
	}
	if scope.TenantID != "" {
		scopes = append(scopes, scoped("tenant", "Tenant", priorityTenant, MetadataTenantID, scope.TenantID))
	}
	scopes = append(scopes, scoped("system", "System", prioritySystem, "", ""))
	return scopes
}

func writeScope(scope gate.Scope) opts.Scope {
	switch {
	case scope.System:
		return scoped("system", "System", prioritySystem, "", "")
	case scope.UserID != "":
		return scoped("user", "User", priorityUser, MetadataUserID, scope.UserID)
	case scope.OrgID != "":
		return scoped("org", "Org", priorityOrg, MetadataOrgID, scope.OrgID)
	case scope.TenantID != "":
		return scoped("tenant", "Tenant", priorityTenant, MetadataTenantID, scope.TenantID)
	default:
		return scoped("system", "System", prioritySystem, "", "")
	}
}

func scoped(name, label string, priority int, metadataKey, metadataValue string) opts.Scope {
	var metadata map[string]any
	if metadataKey != "" && metadataValue != "" {
		metadata = map[string]any{metadataKey: metadataValue}
	}
	return opts.NewScope(
		name,
		priority,
		opts.WithScopeLabel(label),
		opts.WithScopeMetadata(metadata),
	)
}

func defaultMeta(actor gate.Actor) state.Meta {
	extra := map[string]string{}
	if actor.ID != "" {
		extra["actor_id"] = actor.ID
	}
	if actor.Type != "" {
		extra["actor_type"] = actor.Type
	}
	if actor.Name != "" {
		extra["actor_name"] = actor.Name
	}
	if len(extra) == 0 {
		return state.Meta{}
	}
	return state.Meta{Extra: extra}
}

func grantFromValue(key string, value any, scopeDef opts.Scope, domain string) (store.Grant, error) {
	switch typed := value.(type) {
	case nil:
		return store.UnsetGrant(), nil
	case bool:
		if typed {
			return store.GrantedGrant(""), nil
		}
		return store.RevokedGrant(), nil
	case *bool:
		if typed == nil {
			return store.UnsetGrant(), nil
		}
		if *typed {
			return store.GrantedGrant(""), nil
		}
		return store.RevokedGrant(), nil
	default:
		meta := storeMeta(scopeDef, "decode", domain)
		meta[naverrors.MetaFeatureKeyNormalized] = key
		return store.MissingGrant(), naverrors.NewExternal(naverrors.TextCodeGrantTypeInvalid, fmt.Sprintf("optionsadapter: unsupported grant type %T", value), meta)
	}
}

var _ store.ReadWriter = (*Store)(nil)

func storeRequiredError(feature string, scope gate.Scope, operation, domain string) error {
	trimmed := strings.TrimSpace(feature)
	normalized := gate.NormalizeKey(trimmed)
	return naverrors.WrapSentinel(naverrors.ErrStoreRequired, "optionsadapter: state store is required", map[string]any{
		naverrors.MetaAdapter:              "options",
		naverrors.MetaStore:                "state",
		naverrors.MetaDomain:               strings.TrimSpace(domain),
		naverrors.MetaScope:                scope,
		naverrors.MetaOperation:            operation,
		naverrors.MetaFeatureKey:           trimmed,
		naverrors.MetaFeatureKeyNormalized: normalized,
	})
}

func invalidKeyError(feature, normalized string, scope gate.Scope, operation, domain string) error {
	meta := map[string]any{
		naverrors.MetaAdapter:              "options",
		naverrors.MetaStore:                "state",
		naverrors.MetaDomain:               strings.TrimSpace(domain),
		naverrors.MetaScope:                scope,
		naverrors.MetaOperation:            operation,
		naverrors.MetaFeatureKey:           strings.TrimSpace(feature),
		naverrors.MetaFeatureKeyNormalized: normalized,
	}
	return naverrors.WrapSentinel(naverrors.ErrInvalidKey, "optionsadapter: feature key required", meta)
}

func storeMeta(scopeDef opts.Scope, operation, domain string) map[string]any {
	meta := map[string]any{
		naverrors.MetaAdapter:   "options",
		naverrors.MetaStore:     "state",
		naverrors.MetaOperation: operation,
		naverrors.MetaScope:     scopeDef,
	}
	if strings.TrimSpace(domain) != "" {
		meta[naverrors.MetaDomain] = strings.TrimSpace(domain)
	}
	return meta
}
