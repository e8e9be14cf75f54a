package guard

import (
	"testing"

	"github.com/goliatone/go-navgate/role"
	"github.com/goliatone/go-navgate/session"
)

func TestEvaluateUnknownWhileLoading(t *testing.T) {
	// isSignedIn must be ignored until the provider reports loaded
	for _, signedIn := range []bool{true, false} {
		decision := Evaluate(session.Session{Loaded: false, SignedIn: signedIn}, nil)
		if decision.State != StateUnknown {
			t.Fatalf("expected unknown while loading (signedIn=%v), got %s", signedIn, decision.State)
		}
	}
}

func TestEvaluateDeniesSignedOut(t *testing.T) {
	decision := Evaluate(session.Anonymous(), nil)
	if decision.State != StateDenied || decision.Reason != ReasonUnauthenticated {
		t.Fatalf("expected unauthenticated denial, got %+v", decision)
	}
}

func TestEvaluateDeniesRoleMismatch(t *testing.T) {
	sess := session.Session{Loaded: true, SignedIn: true, Role: role.Solo}
	decision := Evaluate(sess, role.NewSet(role.Admin))
	if decision.State != StateDenied || decision.Reason != ReasonRoleMismatch {
		t.Fatalf("expected role mismatch denial, got %+v", decision)
	}
}

func TestEvaluateGrantsWithoutRequirement(t *testing.T) {
	sess := session.Session{Loaded: true, SignedIn: true, Role: role.Solo}
	decision := Evaluate(sess, nil)
	if !decision.Granted() {
		t.Fatalf("expected grant, got %+v", decision)
	}
}

func TestEvaluateGrantsRoleSetMember(t *testing.T) {
	sess := session.Session{Loaded: true, SignedIn: true, Role: role.Growth}
	decision := Evaluate(sess, role.NewSet(role.Growth, role.Enterprise))
	if !decision.Granted() {
		t.Fatalf("expected grant for set member, got %+v", decision)
	}
}

func TestEvaluateNormalizesInvalidSessionRole(t *testing.T) {
	sess := session.Session{Loaded: true, SignedIn: true, Role: role.Role("bogus")}
	decision := Evaluate(sess, role.NewSet(role.Solo))
	if !decision.Granted() {
		t.Fatalf("invalid role should fail closed to solo and still match a solo requirement, got %+v", decision)
	}
	decision = Evaluate(sess, role.NewSet(role.Admin))
	if decision.State != StateDenied {
		t.Fatalf("invalid role must not satisfy admin, got %+v", decision)
	}
}

func TestEvaluateMasterAdminIsNotImplicit(t *testing.T) {
	// the superuser override applies to navigation visibility, not guards
	sess := session.Session{Loaded: true, SignedIn: true, Role: role.MasterAdmin}
	decision := Evaluate(sess, role.NewSet(role.Admin))
	if decision.State != StateDenied {
		t.Fatalf("master_admin must not implicitly pass an admin-only guard, got %+v", decision)
	}
}
