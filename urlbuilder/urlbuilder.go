package urlbuilder

import (
	"strings"

	"github.com/goliatone/go-navgate/naverrors"
)

// Builder resolves group/route pairs into URLs.
type Builder interface {
	Resolve(groupPath, route string, params map[string]any, query map[string]string) (string, error)
}

// Route names resolved through the auth and billing groups.
const (
	DefaultAuthGroup     = "auth"
	RouteSignIn          = "sign-in"
	RouteUnauthorized    = "unauthorized"
	DefaultBillingGroup  = "billing"
	RoutePricing         = "pricing"
	DefaultRedirectParam = "redirect_to"
	FeatureParam         = "feature"
	RequiredTierParam    = "required_tier"
)

// Routes resolves the destinations the guard and gate redirect to. Group
// and route names follow the host application's urlkit route registry.
type Routes struct {
	Builder       Builder
	AuthGroup     string
	BillingGroup  string
	RedirectParam string
}

// NewRoutes builds a Routes resolver with the default group names.
func NewRoutes(builder Builder) Routes {
	return Routes{
		Builder:       builder,
		AuthGroup:     DefaultAuthGroup,
		BillingGroup:  DefaultBillingGroup,
		RedirectParam: DefaultRedirectParam,
	}
}

// SignIn resolves the sign-in destination, carrying the originally requested
// path so the user lands back where they started after authenticating.
func (r Routes) SignIn(redirectTo string) (string, error) {
	query := map[string]string{}
	if trimmed := strings.TrimSpace(redirectTo); trimmed != "" {
		query[r.redirectParam()] = trimmed
	}
	return r.resolve(r.authGroup(), RouteSignIn, nil, query)
}

// Unauthorized resolves the role-mismatch destination. It is distinct from
// sign-in: the user is authenticated, just under-privileged.
func (r Routes) Unauthorized() (string, error) {
	return r.resolve(r.authGroup(), RouteUnauthorized, nil, nil)
}

// Upgrade resolves the pricing destination for a denied feature.
func (r Routes) Upgrade(feature, requiredTier string) (string, error) {
	query := map[string]string{}
	if trimmed := strings.TrimSpace(feature); trimmed != "" {
		query[FeatureParam] = trimmed
	}
	if trimmed := strings.TrimSpace(requiredTier); trimmed != "" {
		query[RequiredTierParam] = trimmed
	}
	return r.resolve(r.billingGroup(), RoutePricing, nil, query)
}

func (r Routes) resolve(group, route string, params map[string]any, query map[string]string) (string, error) {
	if r.Builder == nil {
		return "", naverrors.WrapSentinel(naverrors.ErrResolverRequired, "urlbuilder: builder is required", map[string]any{
			naverrors.MetaOperation: route,
		})
	}
	if len(query) == 0 {
		query = nil
	}
	return r.Builder.Resolve(group, route, params, query)
}

func (r Routes) authGroup() string {
	if r.AuthGroup != "" {
		return r.AuthGroup
	}
	return DefaultAuthGroup
}

func (r Routes) billingGroup() string {
	if r.BillingGroup != "" {
		return r.BillingGroup
	}
	return DefaultBillingGroup
}

func (r Routes) redirectParam() string {
	if r.RedirectParam != "" {
		return r.RedirectParam
	}
	return DefaultRedirectParam
}
