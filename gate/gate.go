package gate

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-navgate/session"
)

// Scope captures the resolution scope for an entitlement check.
type Scope struct {
	System   bool
	TenantID string
	OrgID    string
	UserID   string
}

// ScopeFromSession derives a Scope from a session snapshot.
func ScopeFromSession(sess session.Session) Scope {
	return Scope{
		TenantID: sess.TenantID,
		OrgID:    sess.OrgID,
		UserID:   sess.UserID,
	}
}

// ScopeFromContext derives a Scope from the session stored in context.
func ScopeFromContext(ctx context.Context) Scope {
	sess, _ := session.FromContext(ctx)
	return ScopeFromSession(sess)
}

// Actor identifies who performed an entitlement mutation.
type Actor struct {
	ID   string
	Type string
	Name string
}

// DefaultUpgradeCTAURL is used when the entitlement backend does not supply
// a call-to-action destination.
const DefaultUpgradeCTAURL = "/pricing"

// Access is the outcome of an entitlement check for one feature.
type Access struct {
	HasAccess      bool
	RequiredTier   string
	UpgradeMessage string
	UpgradeCTAURL  string
}

// Message returns the server-provided upgrade copy, falling back to a
// generic message built from the required tier.
func (a Access) Message() string {
	if a.UpgradeMessage != "" {
		return a.UpgradeMessage
	}
	tier := strings.TrimSpace(a.RequiredTier)
	if tier == "" {
		return "This feature is not included in your current plan."
	}
	return fmt.Sprintf("This feature requires the %s plan.", tier)
}

// CTAURL returns the upgrade destination, defaulting to the pricing page.
func (a Access) CTAURL() string {
	if a.UpgradeCTAURL != "" {
		return a.UpgradeCTAURL
	}
	return DefaultUpgradeCTAURL
}

// State enumerates the renderable outcomes of a gated check. A failed check
// is deliberately distinct from a denied one: a transient outage must never
// be presented as "you need to upgrade".
type State string

const (
	StatePending State = "pending"
	StateGranted State = "granted"
	StateDenied  State = "denied"
	StateFailed  State = "failed"
)

// Result is the renderable value produced by a gate evaluation. Exactly one
// of the four states applies; errors are carried as a value, never thrown
// into the surrounding tree.
type Result struct {
	State  State
	Access Access
	Err    error
}

// Pending returns a result for a check still in flight.
func Pending() Result {
	return Result{State: StatePending}
}

// Granted returns a pass-through result.
func Granted(access Access) Result {
	access.HasAccess = true
	return Result{State: StateGranted, Access: access}
}

// Denied returns an upgrade-prompt result.
func Denied(access Access) Result {
	access.HasAccess = false
	return Result{State: StateDenied, Access: access}
}

// Failed returns an error-state result.
func Failed(err error) Result {
	return Result{State: StateFailed, Err: err}
}

// ResultFor folds a checker response into a renderable Result.
func ResultFor(access Access, err error) Result {
	if err != nil {
		return Failed(err)
	}
	if access.HasAccess {
		return Granted(access)
	}
	return Denied(access)
}

// Watch starts the check in the background and returns the pending result
// alongside a channel that delivers the settled one. Callers render the
// pending state until the channel yields; a canceled ctx settles as Failed.
func Watch(ctx context.Context, checker Checker, feature string, requiredTier string) (Result, <-chan Result) {
	settled := make(chan Result, 1)
	if checker == nil {
		settled <- Failed(fmt.Errorf("gate: checker is required"))
		return Pending(), settled
	}
	go func() {
		access, err := checker.Check(ctx, feature, requiredTier)
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		settled <- ResultFor(access, err)
	}()
	return Pending(), settled
}

// Checker resolves entitlement access for a feature key. Implementations
// derive scope from the session in ctx. requiredTier is advisory; an empty
// value lets the backend decide.
type Checker interface {
	Check(ctx context.Context, feature string, requiredTier string) (Access, error)
}

// CheckerFunc adapts a function into a Checker.
type CheckerFunc func(ctx context.Context, feature string, requiredTier string) (Access, error)

// Check implements Checker.
func (fn CheckerFunc) Check(ctx context.Context, feature string, requiredTier string) (Access, error) {
	if fn == nil {
		return Access{}, nil
	}
	return fn(ctx, feature, requiredTier)
}
