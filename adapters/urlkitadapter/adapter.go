package urlkitadapter

import (
	"github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-navgate/naverrors"
	"github.com/goliatone/go-navgate/urlbuilder"
)

// ErrResolverRequired indicates the urlkit resolver is missing.
var ErrResolverRequired = naverrors.ErrResolverRequired

// Adapter wraps a urlkit.Resolver to satisfy urlbuilder.Builder, so guard
// and gate destinations resolve through the host's route registry.
type Adapter struct {
	Resolver urlkit.Resolver
}

// New builds a new Adapter for the provided resolver.
func New(resolver urlkit.Resolver) Adapter {
	return Adapter{Resolver: resolver}
}

// Routes builds a urlbuilder.Routes backed by the resolver.
func Routes(resolver urlkit.Resolver) urlbuilder.Routes {
	return urlbuilder.NewRoutes(New(resolver))
}

// Resolve implements urlbuilder.Builder.
func (a Adapter) Resolve(groupPath, route string, params map[string]any, query map[string]string) (string, error) {
	if a.Resolver == nil {
		return "", naverrors.WrapSentinel(naverrors.ErrResolverRequired, "urlkitadapter: resolver is required", map[string]any{
			naverrors.MetaAdapter:   "urlkit",
			naverrors.MetaOperation: "resolve",
		})
	}
	url, err := a.Resolver.Resolve(groupPath, route, params, query)
	if err != nil {
		return "", naverrors.WrapExternal(err, naverrors.TextCodeAdapterFailed, "urlkitadapter: resolve failed", map[string]any{
			naverrors.MetaAdapter:   "urlkit",
			naverrors.MetaOperation: "resolve",
		})
	}
	return url, nil
}

var _ urlbuilder.Builder = Adapter{}
