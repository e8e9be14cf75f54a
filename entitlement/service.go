package entitlement

import (
	"context"
	"strings"

	"github.com/goliatone/go-navgate/activity"
	"github.com/goliatone/go-navgate/cache"
	"github.com/goliatone/go-navgate/gate"
	"github.com/goliatone/go-navgate/naverrors"
	"github.com/goliatone/go-navgate/role"
	"github.com/goliatone/go-navgate/session"
	"github.com/goliatone/go-navgate/store"
)

// ErrInvalidKey signals an empty or invalid feature key.
var ErrInvalidKey = naverrors.ErrInvalidKey

// ErrStoreUnavailable signals a missing grant store writer.
var ErrStoreUnavailable = naverrors.ErrStoreRequired

// PlanRequirement captures a plan catalog lookup for a feature.
type PlanRequirement struct {
	Set            bool
	Tier           string
	UpgradeMessage string
	UpgradeCTAURL  string
}

// PlanSource resolves the tier requirement for a feature key.
type PlanSource interface {
	Requirement(ctx context.Context, feature string) (PlanRequirement, error)
}

// NoopPlans knows no features.
type NoopPlans struct{}

// Requirement implements PlanSource.
func (NoopPlans) Requirement(context.Context, string) (PlanRequirement, error) {
	return PlanRequirement{}, nil
}

// TierSource derives the caller's current subscription tier from context.
type TierSource func(ctx context.Context) string

// SessionTier maps the session role onto a subscription tier. Admin roles
// carry enterprise entitlements; everything else maps one to one.
func SessionTier(ctx context.Context) string {
	sess, _ := session.FromContext(ctx)
	switch sess.Role {
	case role.Growth:
		return gate.TierGrowth
	case role.Enterprise:
		return gate.TierEnterprise
	case role.Admin, role.MasterAdmin:
		return gate.TierEnterprise
	default:
		return gate.TierSolo
	}
}

// ScopeResolver derives a Scope from context.
type ScopeResolver interface {
	Resolve(ctx context.Context) (gate.Scope, error)
}

// Service resolves entitlements from runtime grants, plan requirements, and
// a deny-by-default fallback. It implements gate.Checker.
type Service struct {
	plans         PlanSource
	grants        store.Reader
	writer        store.Writer
	tier          TierSource
	scopeResolver ScopeResolver
	cache         cache.Cache
	hooks         []gate.CheckHook
	auditHooks    []activity.Hook
	strictStore   bool
}

// Option customizes a Service.
type Option func(*Service)

// WithPlans sets the plan requirement source.
func WithPlans(plans PlanSource) Option {
	return func(s *Service) {
		if s == nil {
			return
		}
		s.plans = plans
	}
}

// WithGrantStore sets the runtime grant reader.
func WithGrantStore(reader store.Reader) Option {
	return func(s *Service) {
		if s == nil {
			return
		}
		s.grants = reader
		if writer, ok := reader.(store.Writer); ok {
			s.writer = writer
		}
	}
}

// WithGrantWriter sets the runtime grant writer.
func WithGrantWriter(writer store.Writer) Option {
	return func(s *Service) {
		if s == nil {
			return
		}
		s.writer = writer
	}
}

// WithTierSource overrides how the caller's current tier is derived.
func WithTierSource(tier TierSource) Option {
	return func(s *Service) {
		if s == nil || tier == nil {
			return
		}
		s.tier = tier
	}
}

// WithScopeResolver overrides scope derivation.
func WithScopeResolver(resolver ScopeResolver) Option {
	return func(s *Service) {
		if s == nil {
			return
		}
		s.scopeResolver = resolver
	}
}

// WithCache sets the cache implementation.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if s == nil {
			return
		}
		s.cache = c
	}
}

// WithCheckHook registers a check hook.
func WithCheckHook(hook gate.CheckHook) Option {
	return func(s *Service) {
		if s == nil || hook == nil {
			return
		}
		s.hooks = append(s.hooks, hook)
	}
}

// WithActivityHook registers an audit hook for grant mutations.
func WithActivityHook(hook activity.Hook) Option {
	return func(s *Service) {
		if s == nil || hook == nil {
			return
		}
		s.auditHooks = append(s.auditHooks, hook)
	}
}

// WithStrictStore toggles strict grant resolution (fail closed on store
// errors instead of falling back to plan requirements).
func WithStrictStore(strict bool) Option {
	return func(s *Service) {
		if s == nil {
			return
		}
		s.strictStore = strict
	}
}

// New constructs a Service with the provided options.
func New(options ...Option) *Service {
	s := &Service{
		plans: NoopPlans{},
		tier:  SessionTier,
		cache: cache.NoopCache{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.plans == nil {
		s.plans = NoopPlans{}
	}
	if s.tier == nil {
		s.tier = SessionTier
	}
	if s.cache == nil {
		s.cache = cache.NoopCache{}
	}
	return s
}

// Check implements gate.Checker.
func (s *Service) Check(ctx context.Context, feature string, requiredTier string) (gate.Access, error) {
	access, _, err := s.check(ctx, feature, requiredTier)
	return access, err
}

// CheckWithTrace resolves an entitlement and returns trace data.
func (s *Service) CheckWithTrace(ctx context.Context, feature string, requiredTier string) (gate.Access, gate.CheckTrace, error) {
	return s.check(ctx, feature, requiredTier)
}

// Grant stores a runtime grant for a feature within a scope.
func (s *Service) Grant(ctx context.Context, feature string, scope gate.Scope, actor gate.Actor) error {
	return s.write(ctx, feature, scope, actor, activity.ActionGrantSet, boolPtr(true))
}

// Revoke stores a runtime revocation for a feature within a scope.
func (s *Service) Revoke(ctx context.Context, feature string, scope gate.Scope, actor gate.Actor) error {
	return s.write(ctx, feature, scope, actor, activity.ActionGrantSet, boolPtr(false))
}

// Unset clears a runtime grant so plan requirements apply again.
func (s *Service) Unset(ctx context.Context, feature string, scope gate.Scope, actor gate.Actor) error {
	return s.write(ctx, feature, scope, actor, activity.ActionGrantUnset, nil)
}

func (s *Service) write(ctx context.Context, feature string, scope gate.Scope, actor gate.Actor, action activity.Action, granted *bool) error {
	trimmed := strings.TrimSpace(feature)
	normalized := gate.NormalizeKey(trimmed)
	if s.writer == nil {
		return naverrors.WrapSentinel(ErrStoreUnavailable, "", map[string]any{
			naverrors.MetaFeatureKey:           trimmed,
			naverrors.MetaFeatureKeyNormalized: normalized,
			naverrors.MetaStore:                "grants",
			naverrors.MetaOperation:            string(action),
		})
	}
	if normalized == "" {
		return naverrors.WrapSentinel(ErrInvalidKey, "", map[string]any{
			naverrors.MetaFeatureKey: trimmed,
			naverrors.MetaOperation:  string(action),
		})
	}
	var err error
	if granted != nil {
		err = s.writer.Set(ctx, normalized, scope, *granted, actor)
	} else {
		err = s.writer.Unset(ctx, normalized, scope, actor)
	}
	if err != nil {
		return naverrors.WrapExternal(err, naverrors.TextCodeStoreWriteFailed, "grant store write failed", map[string]any{
			naverrors.MetaFeatureKey:           trimmed,
			naverrors.MetaFeatureKeyNormalized: normalized,
			naverrors.MetaStore:                "grants",
			naverrors.MetaOperation:            string(action),
		})
	}
	if s.cache != nil {
		s.cache.Delete(ctx, normalized, scope)
	}
	activity.Emit(ctx, s.auditHooks, activity.Event{
		Action:        action,
		Feature:       trimmed,
		NormalizedKey: normalized,
		Scope:         activity.Scope(scope),
		Actor:         activity.Actor(actor),
		Granted:       granted,
	})
	return nil
}

func (s *Service) check(ctx context.Context, feature string, requiredTier string) (gate.Access, gate.CheckTrace, error) {
	trimmed := strings.TrimSpace(feature)
	normalized := gate.NormalizeKey(trimmed)
	trace := gate.CheckTrace{
		Feature:       trimmed,
		NormalizedKey: normalized,
	}
	if normalized == "" {
		err := naverrors.WrapSentinel(ErrInvalidKey, "", map[string]any{
			naverrors.MetaFeatureKey: trimmed,
			naverrors.MetaOperation:  "check",
		})
		trace.Source = gate.CheckSourceFallback
		s.emit(ctx, trace, err)
		return gate.Access{}, trace, err
	}

	scope, err := s.resolveScope(ctx)
	if err != nil {
		err = naverrors.WrapExternal(err, naverrors.TextCodeAdapterFailed, "scope resolution failed", map[string]any{
			naverrors.MetaFeatureKeyNormalized: normalized,
			naverrors.MetaOperation:            "resolve_scope",
		})
		trace.Source = gate.CheckSourceFallback
		s.emit(ctx, trace, err)
		return gate.Access{}, trace, err
	}
	trace.Scope = scope

	have := s.tier(ctx)
	if s.cache != nil {
		// Plan decisions depend on the caller tier; an entry computed for a
		// different tier never serves another caller in the same scope.
		if entry, ok := s.cache.Get(ctx, normalized, scope); ok && (entry.Tier == "" || entry.Tier == have) {
			cached := entry.Trace
			cached.Feature = trimmed
			cached.NormalizedKey = normalized
			cached.Scope = scope
			cached.Access = entry.Access
			cached.CacheHit = true
			s.emit(ctx, cached, nil)
			return entry.Access, cached, nil
		}
	}

	var storeErr error
	if s.grants != nil {
		grant, err := s.grants.Get(ctx, normalized, scope)
		if err != nil {
			storeErr = naverrors.WrapExternal(err, naverrors.TextCodeStoreReadFailed, "grant store read failed", map[string]any{
				naverrors.MetaFeatureKeyNormalized: normalized,
				naverrors.MetaStore:                "grants",
				naverrors.MetaOperation:            "get",
				naverrors.MetaStrict:               s.strictStore,
			})
			if s.strictStore {
				trace.Source = gate.CheckSourceFallback
				s.emit(ctx, trace, storeErr)
				return gate.Access{}, trace, storeErr
			}
		} else if grant.HasValue() {
			access := gate.Access{HasAccess: grant.State == store.GrantStateGranted}
			if !access.HasAccess {
				access = s.denialPayload(ctx, normalized, requiredTier)
			}
			trace.Access = access
			trace.Source = gate.CheckSourceOverride
			s.writeCache(ctx, normalized, scope, "", trace, storeErr)
			s.emit(ctx, trace, nil)
			return access, trace, nil
		}
	}

	requirement, err := s.plans.Requirement(ctx, normalized)
	if err != nil {
		err = naverrors.WrapExternal(err, naverrors.TextCodePlanLookupFailed, "plan lookup failed", map[string]any{
			naverrors.MetaFeatureKeyNormalized: normalized,
			naverrors.MetaOperation:            "plan",
		})
		trace.Source = gate.CheckSourceFallback
		s.emit(ctx, trace, err)
		return gate.Access{}, trace, err
	}

	want := strings.TrimSpace(requiredTier)
	if want == "" && requirement.Set {
		want = requirement.Tier
	}

	if want == "" && !requirement.Set {
		// unknown feature: fail closed
		access := gate.Access{}
		trace.Access = access
		trace.Source = gate.CheckSourceFallback
		s.writeCache(ctx, normalized, scope, "", trace, storeErr)
		s.emit(ctx, trace, nil)
		return access, trace, nil
	}

	access := gate.Access{
		HasAccess:      gate.TierAtLeast(have, want),
		RequiredTier:   want,
		UpgradeMessage: requirement.UpgradeMessage,
		UpgradeCTAURL:  requirement.UpgradeCTAURL,
	}
	if access.HasAccess {
		access.RequiredTier = ""
		access.UpgradeMessage = ""
	}
	trace.Access = access
	trace.Source = gate.CheckSourcePlan
	s.writeCache(ctx, normalized, scope, have, trace, storeErr)
	s.emit(ctx, trace, nil)
	return access, trace, nil
}

func (s *Service) denialPayload(ctx context.Context, feature string, requiredTier string) gate.Access {
	access := gate.Access{RequiredTier: strings.TrimSpace(requiredTier)}
	requirement, err := s.plans.Requirement(ctx, feature)
	if err != nil || !requirement.Set {
		return access
	}
	if access.RequiredTier == "" {
		access.RequiredTier = requirement.Tier
	}
	access.UpgradeMessage = requirement.UpgradeMessage
	access.UpgradeCTAURL = requirement.UpgradeCTAURL
	return access
}

func (s *Service) resolveScope(ctx context.Context) (gate.Scope, error) {
	if s.scopeResolver != nil {
		return s.scopeResolver.Resolve(ctx)
	}
	return gate.ScopeFromContext(ctx), nil
}

func (s *Service) writeCache(ctx context.Context, feature string, scope gate.Scope, tier string, trace gate.CheckTrace, storeErr error) {
	if s.cache == nil || storeErr != nil {
		return
	}
	s.cache.Set(ctx, feature, scope, cache.Entry{
		Access: trace.Access,
		Trace:  trace,
		Tier:   tier,
	})
}

func (s *Service) emit(ctx context.Context, trace gate.CheckTrace, err error) {
	if len(s.hooks) == 0 {
		return
	}
	event := gate.CheckEvent{
		Feature:       trace.Feature,
		NormalizedKey: trace.NormalizedKey,
		Scope:         trace.Scope,
		Access:        trace.Access,
		Source:        trace.Source,
		Error:         err,
		Trace:         trace,
	}
	for _, hook := range s.hooks {
		if hook == nil {
			continue
		}
		hook.OnCheck(ctx, event)
	}
}

func boolPtr(value bool) *bool {
	return &value
}

var _ gate.Checker = (*Service)(nil)
