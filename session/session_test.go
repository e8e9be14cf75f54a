package session

import (
	"context"
	"testing"

	"github.com/goliatone/go-navgate/role"
)

func TestFromContextMissing(t *testing.T) {
	sess, ok := FromContext(context.Background())
	if ok {
		t.Fatalf("expected no session")
	}
	if sess.Loaded {
		t.Fatalf("missing session must be unloaded")
	}
	if sess.Role != role.Solo {
		t.Fatalf("missing session must carry solo role, got %q", sess.Role)
	}
}

func TestWithSessionRoundTrip(t *testing.T) {
	ctx := WithSession(context.Background(), Session{
		Loaded:   true,
		SignedIn: true,
		Role:     role.Admin,
		TenantID: " tenant-1 ",
		UserID:   "user-1",
	})
	sess, ok := FromContext(ctx)
	if !ok {
		t.Fatalf("expected session in context")
	}
	if sess.TenantID != "tenant-1" {
		t.Fatalf("expected trimmed tenant id, got %q", sess.TenantID)
	}
	if sess.Role != role.Admin {
		t.Fatalf("unexpected role %q", sess.Role)
	}
}

func TestWithSessionNormalizesInvalidRole(t *testing.T) {
	ctx := WithSession(context.Background(), Session{Loaded: true, Role: role.Role("bogus")})
	sess, _ := FromContext(ctx)
	if sess.Role != role.Solo {
		t.Fatalf("expected invalid role to normalize to solo, got %q", sess.Role)
	}
}

func TestAnonymous(t *testing.T) {
	sess := Anonymous()
	if !sess.Loaded || sess.SignedIn {
		t.Fatalf("anonymous session must be loaded and signed out: %+v", sess)
	}
}
