package session

import (
	"context"
	"strings"

	"github.com/goliatone/go-navgate/role"
)

// Session is a read-only snapshot of the identity provider's state for one
// request. Loaded=false means the provider has not finished resolving; that
// is distinct from both signed-in and signed-out and must not be treated as
// either.
type Session struct {
	Loaded   bool
	SignedIn bool
	Role     role.Role
	TenantID string
	OrgID    string
	UserID   string
}

// Anonymous returns a loaded, signed-out session.
func Anonymous() Session {
	return Session{Loaded: true, Role: role.Solo}
}

// Known reports whether the identity provider finished loading.
func (s Session) Known() bool {
	return s.Loaded
}

type contextKey string

const sessionKey contextKey = "navgate.session"

// WithSession stores a session snapshot in context.
func WithSession(ctx context.Context, sess Session) context.Context {
	sess.TenantID = strings.TrimSpace(sess.TenantID)
	sess.OrgID = strings.TrimSpace(sess.OrgID)
	sess.UserID = strings.TrimSpace(sess.UserID)
	if !sess.Role.Valid() {
		sess.Role = role.Solo
	}
	return context.WithValue(ctx, sessionKey, sess)
}

// FromContext extracts the session snapshot from context. A missing session
// is reported as an unloaded one so callers keep treating it as unknown.
func FromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{Role: role.Solo}, false
	}
	sess, ok := ctx.Value(sessionKey).(Session)
	if !ok {
		return Session{Role: role.Solo}, false
	}
	return sess, true
}
