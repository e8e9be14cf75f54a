package guard

import (
	"net/http"
	"net/url"

	"github.com/goliatone/go-navgate/activity"
	"github.com/goliatone/go-navgate/gate"
	"github.com/goliatone/go-navgate/logger"
	"github.com/goliatone/go-navgate/role"
	"github.com/goliatone/go-navgate/session"
)

// Default redirect destinations. Sign-in and unauthorized are deliberately
// distinct: a signed-in user with the wrong role must not be bounced to the
// sign-in form.
const (
	DefaultSignInURL       = "/sign-in"
	DefaultUnauthorizedURL = "/unauthorized"

	// RedirectParam carries the originally requested path through the
	// sign-in flow.
	RedirectParam = "redirect_to"
)

const loadingBody = `<div role="status" aria-live="polite" class="auth-loading">Loading…</div>`

// SessionSource provides the session snapshot for a request.
type SessionSource interface {
	Session(r *http.Request) session.Session
}

// SessionSourceFunc adapts a function into a SessionSource.
type SessionSourceFunc func(r *http.Request) session.Session

// Session implements SessionSource.
func (fn SessionSourceFunc) Session(r *http.Request) session.Session {
	if fn == nil {
		return session.Session{}
	}
	return fn(r)
}

// ContextSource reads the session placed in the request context by an
// upstream identity integration.
type ContextSource struct{}

// Session implements SessionSource.
func (ContextSource) Session(r *http.Request) session.Session {
	sess, _ := session.FromContext(r.Context())
	return sess
}

// Guard wraps protected handlers with authentication and role checks.
type Guard struct {
	required        role.Set
	sessions        SessionSource
	signInURL       string
	unauthorizedURL string
	log             logger.Logger
	hooks           []activity.Hook
}

// Option customizes a Guard.
type Option func(*Guard)

// WithRequiredRoles restricts the guard to members of the set. No roles
// means any signed-in user passes.
func WithRequiredRoles(roles ...role.Role) Option {
	return func(g *Guard) {
		if g == nil {
			return
		}
		g.required = role.NewSet(roles...)
	}
}

// WithSessionSource overrides where the guard reads sessions from.
func WithSessionSource(source SessionSource) Option {
	return func(g *Guard) {
		if g == nil || source == nil {
			return
		}
		g.sessions = source
	}
}

// WithSignInURL overrides the sign-in redirect destination.
func WithSignInURL(target string) Option {
	return func(g *Guard) {
		if g == nil || target == "" {
			return
		}
		g.signInURL = target
	}
}

// WithUnauthorizedURL overrides the role-mismatch redirect destination.
func WithUnauthorizedURL(target string) Option {
	return func(g *Guard) {
		if g == nil || target == "" {
			return
		}
		g.unauthorizedURL = target
	}
}

// WithLogger sets the guard logger.
func WithLogger(log logger.Logger) Option {
	return func(g *Guard) {
		if g == nil || log == nil {
			return
		}
		g.log = log
	}
}

// WithActivityHook registers an audit hook for denials.
func WithActivityHook(hook activity.Hook) Option {
	return func(g *Guard) {
		if g == nil || hook == nil {
			return
		}
		g.hooks = append(g.hooks, hook)
	}
}

// New constructs a Guard with the provided options.
func New(opts ...Option) *Guard {
	g := &Guard{
		sessions:        ContextSource{},
		signInURL:       DefaultSignInURL,
		unauthorizedURL: DefaultUnauthorizedURL,
		log:             logger.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Handler wraps next with the guard. Granted requests pass through
// unchanged; the guard adds no wrapper of its own.
func (g *Guard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := g.sessions.Session(r)
		decision := Evaluate(sess, g.required)
		switch decision.State {
		case StateUnknown:
			// The provider owns load completion; surface a loading
			// indicator and let the client retry. Redirecting here would
			// bounce users whose session is still resolving.
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Cache-Control", "no-store")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(loadingBody))
		case StateDenied:
			g.deny(w, r, sess, decision)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// Middleware returns the guard as a func(http.Handler) http.Handler chain
// element.
func (g *Guard) Middleware() func(http.Handler) http.Handler {
	return g.Handler
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, sess session.Session, decision Decision) {
	target := g.unauthorizedURL
	if decision.Reason == ReasonUnauthenticated {
		target = signInTarget(g.signInURL, r.URL)
	}
	g.log.Debug("guard.denied",
		"path", r.URL.Path,
		"reason", string(decision.Reason),
		"role", string(sess.Role),
	)
	activity.Emit(r.Context(), g.hooks, activity.Event{
		Action: activity.ActionGuardDenied,
		Path:   r.URL.Path,
		Role:   sess.Role,
		Scope:  activity.Scope(gate.ScopeFromSession(sess)),
		Reason: string(decision.Reason),
	})
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func signInTarget(signInURL string, requested *url.URL) string {
	target, err := url.Parse(signInURL)
	if err != nil {
		return signInURL
	}
	query := target.Query()
	original := requested.Path
	if requested.RawQuery != "" {
		original += "?" + requested.RawQuery
	}
	query.Set(RedirectParam, original)
	target.RawQuery = query.Encode()
	return target.String()
}
