package activity

import (
	"context"

	"github.com/goliatone/go-navgate/role"
)

// Action describes an audited authorization event.
type Action string

const (
	ActionGrantSet    Action = "grant.set"
	ActionGrantUnset  Action = "grant.unset"
	ActionGuardDenied Action = "guard.denied"
	ActionGateDenied  Action = "gate.denied"
	ActionGateFailed  Action = "gate.failed"
)

// Scope identifies where a decision applied. Field-compatible with the gate
// package's scope so emitters convert with a plain type conversion.
type Scope struct {
	System   bool
	TenantID string
	OrgID    string
	UserID   string
}

// Actor identifies who performed a mutation.
type Actor struct {
	ID   string
	Type string
	Name string
}

// Event captures one audited authorization decision or mutation. Feature is
// set for entitlement events, Path and Role for guard events.
type Event struct {
	Action        Action
	Feature       string
	NormalizedKey string
	Path          string
	Role          role.Role
	Scope         Scope
	Actor         Actor
	Granted       *bool
	Reason        string
}

// Hook receives audit events.
type Hook interface {
	OnEvent(ctx context.Context, event Event)
}

// HookFunc wraps a function as a Hook.
type HookFunc func(context.Context, Event)

// OnEvent implements Hook.
func (fn HookFunc) OnEvent(ctx context.Context, event Event) {
	if fn == nil {
		return
	}
	fn(ctx, event)
}

// NoopHook ignores events.
type NoopHook struct{}

// OnEvent implements Hook.
func (NoopHook) OnEvent(context.Context, Event) {}

// Emit fans an event out to hooks, skipping nil entries.
func Emit(ctx context.Context, hooks []Hook, event Event) {
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		hook.OnEvent(ctx, event)
	}
}
