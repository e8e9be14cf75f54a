package role

import (
	"strings"
	"testing"
)

type stringerClaim struct {
	value string
}

func (s stringerClaim) String() string {
	return s.value
}

func TestResolveIsTotal(t *testing.T) {
	inputs := []any{
		nil,
		"",
		"   ",
		"unknown",
		"SOLO",
		"Admin",
		42,
		3.14,
		true,
		[]string{"admin"},
		map[string]any{"role": "admin"},
		struct{}{},
		(*string)(nil),
	}
	for _, input := range inputs {
		if got := Resolve(input); got != Solo {
			t.Fatalf("Resolve(%v) = %q, want solo", input, got)
		}
	}
}

func TestResolveExactMatches(t *testing.T) {
	cases := map[string]Role{
		"solo":         Solo,
		"growth":       Growth,
		"enterprise":   Enterprise,
		"admin":        Admin,
		"master_admin": MasterAdmin,
	}
	for input, want := range cases {
		if got := Resolve(input); got != want {
			t.Fatalf("Resolve(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestResolveTrimsWhitespace(t *testing.T) {
	if got := Resolve("  admin  "); got != Admin {
		t.Fatalf("expected admin, got %q", got)
	}
}

func TestResolveStringerAndPointer(t *testing.T) {
	if got := Resolve(stringerClaim{value: "enterprise"}); got != Enterprise {
		t.Fatalf("expected enterprise, got %q", got)
	}
	claim := "master_admin"
	if got := Resolve(&claim); got != MasterAdmin {
		t.Fatalf("expected master_admin, got %q", got)
	}
}

func TestResolveAlwaysValid(t *testing.T) {
	inputs := []any{nil, "nonsense", 7, Role("bogus"), strings.Repeat("x", 512)}
	for _, input := range inputs {
		if got := Resolve(input); !got.Valid() {
			t.Fatalf("Resolve(%v) produced invalid role %q", input, got)
		}
	}
}

func TestNewSetDropsDuplicatesAndInvalid(t *testing.T) {
	set := NewSet(Admin, Role("bogus"), Admin, Solo)
	if len(set) != 2 {
		t.Fatalf("unexpected set: %v", set)
	}
	if !set.Contains(Admin) || !set.Contains(Solo) {
		t.Fatalf("expected admin and solo, got %v", set)
	}
	if set.Contains(Growth) {
		t.Fatalf("did not expect growth in %v", set)
	}
}

func TestSetCloneIsIndependent(t *testing.T) {
	set := NewSet(Solo, Growth)
	clone := set.Clone()
	clone[0] = Admin
	if set[0] != Solo {
		t.Fatalf("clone mutation leaked into original: %v", set)
	}
}
