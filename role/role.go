package role

import (
	"fmt"
	"strings"
)

// Role is the closed set of identity tiers that govern navigation and
// route visibility.
type Role string

const (
	Solo        Role = "solo"
	Growth      Role = "growth"
	Enterprise  Role = "enterprise"
	Admin       Role = "admin"
	MasterAdmin Role = "master_admin"
)

// All returns every defined role in ascending privilege order.
func All() []Role {
	return []Role{Solo, Growth, Enterprise, Admin, MasterAdmin}
}

// Valid reports whether the role is one of the defined values.
func (r Role) Valid() bool {
	switch r {
	case Solo, Growth, Enterprise, Admin, MasterAdmin:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// Resolve normalizes an arbitrary identity claim into a Role. It is total:
// any input that does not exactly match growth, enterprise, admin, or
// master_admin maps to Solo. Failing closed to the least privileged role is
// deliberate; a malformed claim is not an error.
func Resolve(candidate any) Role {
	switch typed := candidate.(type) {
	case Role:
		if typed.Valid() {
			return typed
		}
		return Solo
	case string:
		return fromString(typed)
	case *string:
		if typed == nil {
			return Solo
		}
		return fromString(*typed)
	case fmt.Stringer:
		return fromString(typed.String())
	default:
		return Solo
	}
}

func fromString(value string) Role {
	switch Role(strings.TrimSpace(value)) {
	case Growth:
		return Growth
	case Enterprise:
		return Enterprise
	case Admin:
		return Admin
	case MasterAdmin:
		return MasterAdmin
	default:
		return Solo
	}
}

// Set is an ordered collection of roles used to declare who may see a
// navigation item or pass a route guard.
type Set []Role

// NewSet builds a Set preserving declaration order and dropping duplicates
// and invalid values.
func NewSet(roles ...Role) Set {
	out := make(Set, 0, len(roles))
	for _, r := range roles {
		if !r.Valid() || out.Contains(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ParseSet resolves arbitrary claim values into a Set.
func ParseSet(values ...any) Set {
	roles := make([]Role, 0, len(values))
	for _, value := range values {
		roles = append(roles, Resolve(value))
	}
	return NewSet(roles...)
}

// Contains reports whether the set includes the role.
func (s Set) Contains(r Role) bool {
	for _, member := range s {
		if member == r {
			return true
		}
	}
	return false
}

// Empty reports whether the set has no members.
func (s Set) Empty() bool {
	return len(s) == 0
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	if len(s) == 0 {
		return nil
	}
	out := make(Set, len(s))
	copy(out, s)
	return out
}

// Strings returns the set as plain strings.
func (s Set) Strings() []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}
