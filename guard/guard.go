package guard

import (
	"github.com/goliatone/go-navgate/role"
	"github.com/goliatone/go-navgate/session"
)

// State enumerates the guard's three outcomes. Unknown means the identity
// provider has not finished loading; it must never trigger a redirect.
type State string

const (
	StateUnknown State = "unknown"
	StateDenied  State = "denied"
	StateGranted State = "granted"
)

// Reason qualifies a denial. Unauthenticated and role-mismatch denials
// redirect to different destinations.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonRoleMismatch    Reason = "role_mismatch"
)

// Decision is the renderable outcome of a guard evaluation. It is a value,
// never an error: being signed out or under-privileged is expected, not
// exceptional.
type Decision struct {
	State  State
	Reason Reason
	Role   role.Role
}

// Granted reports whether the decision allows rendering the protected
// content.
func (d Decision) Granted() bool {
	return d.State == StateGranted
}

// Evaluate derives a guard decision from the current session snapshot. An
// empty requirement admits any signed-in user. Evaluation is pure and
// re-derives from the snapshot on every call, so a fresh auth-state change
// simply restarts it.
func Evaluate(sess session.Session, required role.Set) Decision {
	if !sess.Loaded {
		return Decision{State: StateUnknown}
	}
	if !sess.SignedIn {
		return Decision{State: StateDenied, Reason: ReasonUnauthenticated}
	}
	resolved := sess.Role
	if !resolved.Valid() {
		resolved = role.Solo
	}
	if !required.Empty() && !required.Contains(resolved) {
		return Decision{State: StateDenied, Reason: ReasonRoleMismatch, Role: resolved}
	}
	return Decision{State: StateGranted, Role: resolved}
}
