package routeradapter

import (
	"context"

	"github.com/goliatone/go-router"

	"github.com/goliatone/go-navgate/gate"
	"github.com/goliatone/go-navgate/navigation"
	"github.com/goliatone/go-navgate/session"
)

// Context extracts the standard context from a router context.
func Context(ctx router.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx.Context()
}

// Session derives the session snapshot from a router context.
func Session(ctx router.Context) session.Session {
	sess, _ := session.FromContext(Context(ctx))
	return sess
}

// Scope derives an entitlement scope from a router context.
func Scope(ctx router.Context) gate.Scope {
	return gate.ScopeFromContext(Context(ctx))
}

// VisibleItems filters the catalog by the role carried in the router
// context's session.
func VisibleItems(ctx router.Context, catalog *navigation.Catalog) []navigation.Item {
	if catalog == nil {
		return nil
	}
	return catalog.Visible(Session(ctx).Role)
}

// ActiveItem resolves the active navigation item for the request path.
func ActiveItem(ctx router.Context, catalog *navigation.Catalog) (navigation.Item, bool) {
	if ctx == nil || catalog == nil {
		return navigation.Item{}, false
	}
	return catalog.Active(ctx.Path())
}
