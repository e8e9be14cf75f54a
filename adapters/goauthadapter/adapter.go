package goauthadapter

import (
	"context"
	"net/http"

	"github.com/goliatone/go-auth"

	"github.com/goliatone/go-navgate/entitlement"
	"github.com/goliatone/go-navgate/gate"
	"github.com/goliatone/go-navgate/guard"
	"github.com/goliatone/go-navgate/role"
	"github.com/goliatone/go-navgate/session"
)

// ActorExtractor extracts an auth.ActorContext from context.
type ActorExtractor func(context.Context) (*auth.ActorContext, bool)

// Option customizes the adapter behavior.
type Option func(*Adapter)

// Adapter bridges go-auth actor context into navgate sessions and scopes.
// The raw role claim is normalized through role.Resolve, so downstream code
// only ever sees the closed enum.
type Adapter struct {
	extractor ActorExtractor
}

// New builds an adapter using go-auth's actor context extractor.
func New(opts ...Option) *Adapter {
	adapter := &Adapter{
		extractor: auth.ActorFromContext,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	if adapter.extractor == nil {
		adapter.extractor = auth.ActorFromContext
	}
	return adapter
}

// WithActorExtractor overrides the actor context extractor.
func WithActorExtractor(extractor ActorExtractor) Option {
	return func(adapter *Adapter) {
		if adapter == nil {
			return
		}
		adapter.extractor = extractor
	}
}

// Session implements guard.SessionSource. A missing actor means the auth
// middleware finished without a signed-in user, so the session loads as
// anonymous rather than staying unknown.
func (a *Adapter) Session(r *http.Request) session.Session {
	if a == nil || r == nil {
		return session.Session{}
	}
	return a.SessionFromContext(r.Context())
}

// SessionFromContext derives a session snapshot from the actor in context.
func (a *Adapter) SessionFromContext(ctx context.Context) session.Session {
	if a == nil || a.extractor == nil {
		return session.Session{}
	}
	actor, ok := a.extractor(ctx)
	if !ok || actor == nil {
		return session.Anonymous()
	}
	return SessionFromActor(actor)
}

// Resolve implements entitlement.ScopeResolver.
func (a *Adapter) Resolve(ctx context.Context) (gate.Scope, error) {
	if a == nil || a.extractor == nil {
		return gate.Scope{}, nil
	}
	actor, ok := a.extractor(ctx)
	if !ok || actor == nil {
		return gate.Scope{}, nil
	}
	return ScopeFromActor(actor), nil
}

// SessionFromActor builds a session snapshot from an auth.ActorContext.
func SessionFromActor(actor *auth.ActorContext) session.Session {
	if actor == nil {
		return session.Session{}
	}
	userID := actor.ActorID
	if userID == "" {
		userID = actor.Subject
	}
	return session.Session{
		Loaded:   true,
		SignedIn: true,
		Role:     role.Resolve(actor.Role),
		TenantID: actor.TenantID,
		OrgID:    actor.OrganizationID,
		UserID:   userID,
	}
}

// ScopeFromActor builds a Scope from an auth.ActorContext.
func ScopeFromActor(actor *auth.ActorContext) gate.Scope {
	if actor == nil {
		return gate.Scope{}
	}
	userID := actor.ActorID
	if userID == "" {
		userID = actor.Subject
	}
	return gate.Scope{
		TenantID: actor.TenantID,
		OrgID:    actor.OrganizationID,
		UserID:   userID,
	}
}

// ActorFromContext extracts a gate.Actor for audit trails.
func ActorFromContext(ctx context.Context) (gate.Actor, bool) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok || actor == nil {
		return gate.Actor{}, false
	}
	id := actor.ActorID
	if id == "" {
		id = actor.Subject
	}
	return gate.Actor{
		ID:   id,
		Type: actor.Subject,
		Name: actor.Role,
	}, true
}

var _ guard.SessionSource = (*Adapter)(nil)
var _ entitlement.ScopeResolver = (*Adapter)(nil)
