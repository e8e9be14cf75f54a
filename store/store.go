package store

import (
	"context"

	"github.com/goliatone/go-navgate/gate"
)

// GrantState captures the tri-state entitlement grant status.
type GrantState string

const (
	GrantStateMissing GrantState = "missing"
	GrantStateGranted GrantState = "granted"
	GrantStateRevoked GrantState = "revoked"
	GrantStateUnset   GrantState = "unset"
)

// Grant captures a runtime entitlement grant for a feature within a scope.
type Grant struct {
	State GrantState
	Tier  string
}

// MissingGrant builds a placeholder for absent grants.
func MissingGrant() Grant {
	return Grant{State: GrantStateMissing}
}

// UnsetGrant builds a placeholder for explicit unsets.
func UnsetGrant() Grant {
	return Grant{State: GrantStateUnset}
}

// GrantedGrant marks a feature granted, optionally recording the plan tier
// that carried it.
func GrantedGrant(tier string) Grant {
	return Grant{State: GrantStateGranted, Tier: tier}
}

// RevokedGrant marks a feature revoked.
func RevokedGrant() Grant {
	return Grant{State: GrantStateRevoked}
}

// HasValue reports whether the grant contains a concrete decision.
func (g Grant) HasValue() bool {
	return g.State == GrantStateGranted || g.State == GrantStateRevoked
}

// Reader resolves runtime entitlement grants.
type Reader interface {
	Get(ctx context.Context, feature string, scope gate.Scope) (Grant, error)
}

// Writer stores runtime entitlement grants.
type Writer interface {
	Set(ctx context.Context, feature string, scope gate.Scope, granted bool, actor gate.Actor) error
	Unset(ctx context.Context, feature string, scope gate.Scope, actor gate.Actor) error
}

// ReadWriter is a combined reader/writer.
type ReadWriter interface {
	Reader
	Writer
}
