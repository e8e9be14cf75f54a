package urlbuilder

import "testing"

type recordingBuilder struct {
	group string
	route string
	query map[string]string
	url   string
	err   error
}

func (b *recordingBuilder) Resolve(groupPath, route string, _ map[string]any, query map[string]string) (string, error) {
	b.group = groupPath
	b.route = route
	b.query = query
	return b.url, b.err
}

func TestRoutesSignInCarriesRedirect(t *testing.T) {
	builder := &recordingBuilder{url: "/sign-in?redirect_to=%2Fdeals"}
	routes := NewRoutes(builder)

	url, err := routes.SignIn("/deals")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != builder.url {
		t.Fatalf("unexpected url: %q", url)
	}
	if builder.group != DefaultAuthGroup || builder.route != RouteSignIn {
		t.Fatalf("unexpected route: %s/%s", builder.group, builder.route)
	}
	if builder.query[DefaultRedirectParam] != "/deals" {
		t.Fatalf("expected redirect param, got %v", builder.query)
	}
}

func TestRoutesUnauthorizedDistinctFromSignIn(t *testing.T) {
	builder := &recordingBuilder{url: "/unauthorized"}
	routes := NewRoutes(builder)

	if _, err := routes.Unauthorized(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if builder.route != RouteUnauthorized {
		t.Fatalf("unexpected route: %q", builder.route)
	}
	if builder.query != nil {
		t.Fatalf("expected no query, got %v", builder.query)
	}
}

func TestRoutesUpgradeIncludesFeatureAndTier(t *testing.T) {
	builder := &recordingBuilder{url: "/pricing"}
	routes := NewRoutes(builder)

	if _, err := routes.Upgrade("fpa", "growth"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if builder.group != DefaultBillingGroup || builder.route != RoutePricing {
		t.Fatalf("unexpected route: %s/%s", builder.group, builder.route)
	}
	if builder.query[FeatureParam] != "fpa" || builder.query[RequiredTierParam] != "growth" {
		t.Fatalf("unexpected query: %v", builder.query)
	}
}

func TestRoutesRequireBuilder(t *testing.T) {
	routes := Routes{}
	if _, err := routes.SignIn("/deals"); err == nil {
		t.Fatalf("expected error without builder")
	}
}
