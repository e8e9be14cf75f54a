package entitlement

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-navgate/activity"
	"github.com/goliatone/go-navgate/cache"
	"github.com/goliatone/go-navgate/gate"
	"github.com/goliatone/go-navgate/naverrors"
	"github.com/goliatone/go-navgate/role"
	"github.com/goliatone/go-navgate/session"
	"github.com/goliatone/go-navgate/store"
)

type stubReader struct {
	grant store.Grant
	err   error
	calls int
}

func (s *stubReader) Get(context.Context, string, gate.Scope) (store.Grant, error) {
	s.calls++
	return s.grant, s.err
}

type recordingCache struct {
	entries map[string]cache.Entry
	sets    int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[string]cache.Entry{}}
}

func (c *recordingCache) Get(_ context.Context, feature string, _ gate.Scope) (cache.Entry, bool) {
	entry, ok := c.entries[feature]
	return entry, ok
}

func (c *recordingCache) Set(_ context.Context, feature string, _ gate.Scope, entry cache.Entry) {
	c.sets++
	c.entries[feature] = entry
}

func (c *recordingCache) Delete(_ context.Context, feature string, _ gate.Scope) {
	delete(c.entries, feature)
}

func (c *recordingCache) Clear(context.Context) {
	c.entries = map[string]cache.Entry{}
}

func sessionContext(r role.Role) context.Context {
	return session.WithSession(context.Background(), session.Session{
		Loaded:   true,
		SignedIn: true,
		Role:     r,
		TenantID: "tenant-1",
		UserID:   "user-1",
	})
}

func TestServiceCheckPlanSatisfied(t *testing.T) {
	svc := New(WithPlans(DefaultPlans()))

	access, trace, err := svc.CheckWithTrace(sessionContext(role.Growth), gate.FeatureFPA, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !access.HasAccess {
		t.Fatal("expected growth session to satisfy fpa requirement")
	}
	if trace.Source != gate.CheckSourcePlan {
		t.Fatalf("expected plan source, got %s", trace.Source)
	}
}

func TestServiceCheckPlanDenied(t *testing.T) {
	svc := New(WithPlans(DefaultPlans()))

	access, trace, err := svc.CheckWithTrace(sessionContext(role.Solo), gate.FeatureMonteCarlo, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if access.HasAccess {
		t.Fatal("expected solo session to be denied monte carlo")
	}
	if access.RequiredTier != gate.TierEnterprise {
		t.Fatalf("expected enterprise requirement, got %q", access.RequiredTier)
	}
	if access.UpgradeMessage == "" {
		t.Fatal("expected upgrade message from plan requirement")
	}
	if trace.Source != gate.CheckSourcePlan {
		t.Fatalf("expected plan source, got %s", trace.Source)
	}
}

func TestServiceCheckAdminRolesCarryEnterpriseTier(t *testing.T) {
	svc := New(WithPlans(DefaultPlans()))

	for _, r := range []role.Role{role.Enterprise, role.Admin, role.MasterAdmin} {
		access, err := svc.Check(sessionContext(r), gate.FeatureMonteCarlo, "")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", r, err)
		}
		if !access.HasAccess {
			t.Fatalf("%s: expected access to enterprise feature", r)
		}
	}
}

func TestServiceCheckExplicitTierOverridesPlan(t *testing.T) {
	svc := New(WithPlans(DefaultPlans()))

	access, err := svc.Check(sessionContext(role.Growth), gate.FeatureFPA, gate.TierEnterprise)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if access.HasAccess {
		t.Fatal("explicit enterprise requirement should deny a growth session")
	}
	if access.RequiredTier != gate.TierEnterprise {
		t.Fatalf("expected enterprise requirement, got %q", access.RequiredTier)
	}
}

func TestServiceCheckUnknownFeatureFailsClosed(t *testing.T) {
	svc := New(WithPlans(DefaultPlans()))

	access, trace, err := svc.CheckWithTrace(sessionContext(role.Enterprise), "made.up.feature", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if access.HasAccess {
		t.Fatal("unknown features must be denied")
	}
	if trace.Source != gate.CheckSourceFallback {
		t.Fatalf("expected fallback source, got %s", trace.Source)
	}
}

func TestServiceCheckEmptyKey(t *testing.T) {
	svc := New()

	_, err := svc.Check(context.Background(), "   ", "")
	if err == nil {
		t.Fatal("expected error for empty key")
	}
	rich, ok := naverrors.As(err)
	if !ok || rich.TextCode != naverrors.TextCodeInvalidKey {
		t.Fatalf("expected %s, got %v", naverrors.TextCodeInvalidKey, err)
	}
}

func TestServiceCheckOverrideGrantWins(t *testing.T) {
	reader := &stubReader{grant: store.GrantedGrant("")}
	svc := New(
		WithPlans(DefaultPlans()),
		WithGrantStore(reader),
	)

	access, trace, err := svc.CheckWithTrace(sessionContext(role.Solo), gate.FeatureMonteCarlo, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !access.HasAccess {
		t.Fatal("runtime grant should win over an unmet plan requirement")
	}
	if trace.Source != gate.CheckSourceOverride {
		t.Fatalf("expected override source, got %s", trace.Source)
	}
}

func TestServiceCheckOverrideRevocationWins(t *testing.T) {
	reader := &stubReader{grant: store.RevokedGrant()}
	svc := New(
		WithPlans(DefaultPlans()),
		WithGrantStore(reader),
	)

	access, trace, err := svc.CheckWithTrace(sessionContext(role.Enterprise), gate.FeatureMonteCarlo, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if access.HasAccess {
		t.Fatal("runtime revocation should win over a satisfied plan requirement")
	}
	if access.RequiredTier != gate.TierEnterprise {
		t.Fatalf("expected plan payload in denial, got %q", access.RequiredTier)
	}
	if trace.Source != gate.CheckSourceOverride {
		t.Fatalf("expected override source, got %s", trace.Source)
	}
}

func TestServiceCheckStrictStoreError(t *testing.T) {
	reader := &stubReader{err: errors.New("boom")}
	svc := New(
		WithPlans(DefaultPlans()),
		WithGrantStore(reader),
		WithStrictStore(true),
	)

	_, err := svc.Check(sessionContext(role.Enterprise), gate.FeatureFPA, "")
	if err == nil {
		t.Fatal("expected strict store errors to surface")
	}
	rich, ok := naverrors.As(err)
	if !ok || rich.TextCode != naverrors.TextCodeStoreReadFailed {
		t.Fatalf("expected %s, got %v", naverrors.TextCodeStoreReadFailed, err)
	}
}

func TestServiceCheckNonStrictStoreErrorFallsBack(t *testing.T) {
	reader := &stubReader{err: errors.New("boom")}
	cacheImpl := newRecordingCache()
	svc := New(
		WithPlans(DefaultPlans()),
		WithGrantStore(reader),
		WithCache(cacheImpl),
	)

	access, err := svc.Check(sessionContext(role.Growth), gate.FeatureFPA, "")
	if err != nil {
		t.Fatalf("expected fallback to plan, got %v", err)
	}
	if !access.HasAccess {
		t.Fatal("expected plan requirement to grant access")
	}
	if cacheImpl.sets != 0 {
		t.Fatal("results computed past a failing store must not be cached")
	}
}

func TestServiceCheckCacheHitSkipsStore(t *testing.T) {
	reader := &stubReader{grant: store.MissingGrant()}
	cacheImpl := newRecordingCache()
	svc := New(
		WithPlans(DefaultPlans()),
		WithGrantStore(reader),
		WithCache(cacheImpl),
	)
	ctx := sessionContext(role.Growth)

	if _, err := svc.Check(ctx, gate.FeatureFPA, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, trace, err := svc.CheckWithTrace(ctx, gate.FeatureFPA, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !trace.CacheHit {
		t.Fatal("expected second check to hit the cache")
	}
	if reader.calls != 1 {
		t.Fatalf("expected a single store read, got %d", reader.calls)
	}
}

type tenantResolver struct{}

func (tenantResolver) Resolve(context.Context) (gate.Scope, error) {
	return gate.Scope{TenantID: "tenant-1"}, nil
}

func TestServiceCheckCacheIsolatesTiers(t *testing.T) {
	svc := New(
		WithPlans(DefaultPlans()),
		WithGrantStore(&stubReader{grant: store.MissingGrant()}),
		WithScopeResolver(tenantResolver{}),
		WithCache(newRecordingCache()),
	)

	access, err := svc.Check(sessionContext(role.Admin), gate.FeatureMonteCarlo, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !access.HasAccess {
		t.Fatal("expected admin session to satisfy the enterprise requirement")
	}

	access, err = svc.Check(sessionContext(role.Solo), gate.FeatureMonteCarlo, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if access.HasAccess {
		t.Fatal("cached admin decision must not grant a solo session in the same tenant")
	}
}

func TestServiceCheckCachedGrantServesAllTiers(t *testing.T) {
	reader := &stubReader{grant: store.GrantedGrant("")}
	svc := New(
		WithPlans(DefaultPlans()),
		WithGrantStore(reader),
		WithScopeResolver(tenantResolver{}),
		WithCache(newRecordingCache()),
	)

	if _, err := svc.Check(sessionContext(role.Admin), gate.FeatureMonteCarlo, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	access, trace, err := svc.CheckWithTrace(sessionContext(role.Solo), gate.FeatureMonteCarlo, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !access.HasAccess {
		t.Fatal("runtime grant applies to every caller in the scope")
	}
	if !trace.CacheHit || reader.calls != 1 {
		t.Fatalf("expected grant entry to serve from cache, calls=%d hit=%v", reader.calls, trace.CacheHit)
	}
}

func TestServiceCheckAliasNormalized(t *testing.T) {
	svc := New(WithPlans(DefaultPlans()))

	access, trace, err := svc.CheckWithTrace(sessionContext(role.Growth), "fpna", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !access.HasAccess {
		t.Fatal("alias should resolve to the fpa plan entry")
	}
	if trace.NormalizedKey != gate.FeatureFPA {
		t.Fatalf("expected normalized key %q, got %q", gate.FeatureFPA, trace.NormalizedKey)
	}
}

func TestServiceGrantAndUnset(t *testing.T) {
	memory := store.NewMemoryStore()
	cacheImpl := newRecordingCache()
	var events []activity.Event
	svc := New(
		WithPlans(DefaultPlans()),
		WithGrantStore(memory),
		WithCache(cacheImpl),
		WithActivityHook(activity.HookFunc(func(_ context.Context, event activity.Event) {
			events = append(events, event)
		})),
	)
	ctx := sessionContext(role.Solo)
	scope := gate.ScopeFromContext(ctx)
	actor := gate.Actor{ID: "admin-1"}

	if _, err := svc.Check(ctx, gate.FeatureMonteCarlo, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Grant(ctx, gate.FeatureMonteCarlo, scope, actor); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	access, err := svc.Check(ctx, gate.FeatureMonteCarlo, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !access.HasAccess {
		t.Fatal("grant should invalidate the cached denial")
	}

	if err := svc.Unset(ctx, gate.FeatureMonteCarlo, scope, actor); err != nil {
		t.Fatalf("unset failed: %v", err)
	}
	access, err = svc.Check(ctx, gate.FeatureMonteCarlo, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if access.HasAccess {
		t.Fatal("unset should restore the plan denial")
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(events))
	}
	if events[0].Action != activity.ActionGrantSet || events[1].Action != activity.ActionGrantUnset {
		t.Fatalf("unexpected actions: %s, %s", events[0].Action, events[1].Action)
	}
	if events[0].Granted == nil || !*events[0].Granted {
		t.Fatal("grant event should carry granted=true")
	}
	if events[0].Scope.TenantID != "tenant-1" || events[0].Scope.UserID != "user-1" {
		t.Fatalf("expected grant scope on event, got %+v", events[0].Scope)
	}
	if events[0].Actor.ID != "admin-1" {
		t.Fatalf("expected actor on event, got %+v", events[0].Actor)
	}
}

func TestServiceGrantWithoutWriter(t *testing.T) {
	svc := New()

	err := svc.Grant(context.Background(), gate.FeatureFPA, gate.Scope{System: true}, gate.Actor{})
	if err == nil {
		t.Fatal("expected error when no writer configured")
	}
	rich, ok := naverrors.As(err)
	if !ok || rich.TextCode != naverrors.TextCodeStoreRequired {
		t.Fatalf("expected %s, got %v", naverrors.TextCodeStoreRequired, err)
	}
}

func TestServiceCheckHookReceivesTrace(t *testing.T) {
	var got []gate.CheckEvent
	svc := New(
		WithPlans(DefaultPlans()),
		WithCheckHook(gate.CheckHookFunc(func(_ context.Context, event gate.CheckEvent) {
			got = append(got, event)
		})),
	)

	if _, err := svc.Check(sessionContext(role.Solo), gate.FeatureFPA, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 check event, got %d", len(got))
	}
	if got[0].Source != gate.CheckSourcePlan {
		t.Fatalf("expected plan source, got %s", got[0].Source)
	}
	if got[0].Access.HasAccess {
		t.Fatal("expected denied access in event")
	}
}
