package gate

import "context"

// CheckSource captures which layer produced the final access decision.
type CheckSource string

const (
	CheckSourceOverride CheckSource = "override"
	CheckSourcePlan     CheckSource = "plan"
	CheckSourceRemote   CheckSource = "remote"
	CheckSourceFallback CheckSource = "fallback"
)

// CheckTrace captures provenance for a single entitlement check.
type CheckTrace struct {
	Feature       string
	NormalizedKey string
	Scope         Scope
	Access        Access
	Source        CheckSource
	CacheHit      bool
}

// CheckEvent is emitted after every entitlement check for hooks.
type CheckEvent struct {
	Feature       string
	NormalizedKey string
	Scope         Scope
	Access        Access
	Source        CheckSource
	Error         error
	Trace         CheckTrace
}

// CheckHook receives check events.
type CheckHook interface {
	OnCheck(ctx context.Context, event CheckEvent)
}

// CheckHookFunc wraps a function as a CheckHook.
type CheckHookFunc func(context.Context, CheckEvent)

// OnCheck implements CheckHook.
func (fn CheckHookFunc) OnCheck(ctx context.Context, event CheckEvent) {
	if fn == nil {
		return
	}
	fn(ctx, event)
}
