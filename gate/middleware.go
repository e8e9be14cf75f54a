package gate

import (
	"net/http"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-navgate/activity"
	"github.com/goliatone/go-navgate/logger"
)

var upgradeTemplate = pongo2.Must(pongo2.FromString(`<section class="upgrade-prompt" data-feature="{{ feature }}">
  <h2>Upgrade required</h2>
  <p>{{ message }}</p>
  <a href="{{ cta_url }}" class="upgrade-cta">View plans</a>
</section>`))

var failureTemplate = pongo2.Must(pongo2.FromString(`<section class="feature-error" role="alert" data-feature="{{ feature }}">
  <h2>Something went wrong</h2>
  <p>We could not verify access to this feature. {{ error }}</p>
</section>`))

// Middleware gates a subtree on an entitlement check. Denials render an
// upgrade prompt and failures render an error state; the two are never
// conflated.
type Middleware struct {
	checker      Checker
	feature      string
	requiredTier string
	log          logger.Logger
	hooks        []activity.Hook
}

// MiddlewareOption customizes a Middleware.
type MiddlewareOption func(*Middleware)

// WithTier forwards an advisory tier requirement to the checker.
func WithTier(tier string) MiddlewareOption {
	return func(m *Middleware) {
		if m == nil {
			return
		}
		m.requiredTier = tier
	}
}

// WithMiddlewareLogger sets the middleware logger.
func WithMiddlewareLogger(log logger.Logger) MiddlewareOption {
	return func(m *Middleware) {
		if m == nil || log == nil {
			return
		}
		m.log = log
	}
}

// WithMiddlewareHook registers an audit hook for denials and failures.
func WithMiddlewareHook(hook activity.Hook) MiddlewareOption {
	return func(m *Middleware) {
		if m == nil || hook == nil {
			return
		}
		m.hooks = append(m.hooks, hook)
	}
}

// RequireFeature builds a Middleware for one feature key.
func RequireFeature(checker Checker, feature string, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		checker: checker,
		feature: NormalizeKey(feature),
		log:     logger.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Handler wraps next with the entitlement check. Granted requests pass
// through unchanged.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.checker == nil {
			next.ServeHTTP(w, r)
			return
		}
		access, err := m.checker.Check(r.Context(), m.feature, m.requiredTier)
		result := ResultFor(access, err)
		switch result.State {
		case StateFailed:
			m.fail(w, r, result.Err)
		case StateDenied:
			m.denied(w, r, result.Access)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// Middleware returns the gate as a func(http.Handler) http.Handler chain
// element.
func (m *Middleware) Middleware() func(http.Handler) http.Handler {
	return m.Handler
}

func (m *Middleware) denied(w http.ResponseWriter, r *http.Request, access Access) {
	denied := false
	activity.Emit(r.Context(), m.hooks, activity.Event{
		Action:        activity.ActionGateDenied,
		Feature:       m.feature,
		NormalizedKey: m.feature,
		Path:          r.URL.Path,
		Scope:         activity.Scope(ScopeFromContext(r.Context())),
		Granted:       &denied,
	})
	body, err := upgradeTemplate.Execute(pongo2.Context{
		"feature": m.feature,
		"message": access.Message(),
		"cta_url": access.CTAURL(),
	})
	if err != nil {
		m.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(body))
}

func (m *Middleware) fail(w http.ResponseWriter, r *http.Request, cause error) {
	m.log.Error("gate.check_failed",
		"feature", m.feature,
		"path", r.URL.Path,
		"error", cause,
	)
	activity.Emit(r.Context(), m.hooks, activity.Event{
		Action:        activity.ActionGateFailed,
		Feature:       m.feature,
		NormalizedKey: m.feature,
		Path:          r.URL.Path,
		Scope:         activity.Scope(ScopeFromContext(r.Context())),
		Reason:        causeMessage(cause),
	})
	body, err := failureTemplate.Execute(pongo2.Context{
		"feature": m.feature,
		"error":   causeMessage(cause),
	})
	if err != nil {
		http.Error(w, "feature check failed", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadGateway)
	w.Write([]byte(body))
}

func causeMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
