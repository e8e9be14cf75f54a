package templates

import (
	"context"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-navgate/gate"
	"github.com/goliatone/go-navgate/logger"
	"github.com/goliatone/go-navgate/naverrors"
	"github.com/goliatone/go-navgate/navigation"
	"github.com/goliatone/go-navgate/role"
	"github.com/goliatone/go-navgate/session"
)

// Template data keys read by the helpers.
const (
	TemplateContextKey  = "nav_ctx"
	TemplateSessionKey  = "nav_session"
	TemplatePathKey     = "nav_path"
	TemplateSnapshotKey = "feature_snapshot"
)

// HelperConfig configures template helpers.
type HelperConfig struct {
	ContextKey         string
	SessionKey         string
	PathKey            string
	SnapshotKey        string
	EnableErrorLogging bool
	Logger             logger.Logger
}

// HelperOption configures template helpers.
type HelperOption func(*HelperConfig)

// DefaultHelperConfig returns the default helper configuration.
func DefaultHelperConfig() HelperConfig {
	return HelperConfig{
		ContextKey:  TemplateContextKey,
		SessionKey:  TemplateSessionKey,
		PathKey:     TemplatePathKey,
		SnapshotKey: TemplateSnapshotKey,
	}
}

// WithContextKey overrides the template context key name.
func WithContextKey(key string) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.ContextKey = strings.TrimSpace(key)
	}
}

// WithSessionKey overrides the template session key name.
func WithSessionKey(key string) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.SessionKey = strings.TrimSpace(key)
	}
}

// WithPathKey overrides the template path key name.
func WithPathKey(key string) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.PathKey = strings.TrimSpace(key)
	}
}

// WithSnapshotKey overrides the template snapshot key name.
func WithSnapshotKey(key string) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.SnapshotKey = strings.TrimSpace(key)
	}
}

// WithErrorLogging toggles error logging for helper failures.
func WithErrorLogging(enabled bool) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.EnableErrorLogging = enabled
	}
}

// WithLogger injects a logger for helper error logging.
func WithLogger(lgr logger.Logger) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.Logger = lgr
	}
}

// TemplateHelpers returns a helper set suitable for registration with the
// host template engine. Navigation helpers read the session and current
// path from template data; feature helpers resolve through the checker,
// preferring a precomputed snapshot when one is present.
func TemplateHelpers(catalog *navigation.Catalog, checker gate.Checker, opts ...HelperOption) map[string]any {
	cfg := DefaultHelperConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.EnableErrorLogging && cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	helpers := &helperSet{
		catalog: catalog,
		checker: checker,
		cfg:     cfg,
	}

	return map[string]any{
		"nav_items":     helpers.navItems,
		"nav_sections":  helpers.navSections,
		"nav_active":    helpers.navActive,
		"nav_aria":      helpers.navAria,
		"nav_class":     helpers.navClass,
		"nav_sub_items": helpers.navSubItems,
		"feature":       helpers.feature,
		"feature_if":    helpers.featureIf,
		"feature_class": helpers.featureClass,
	}
}

type helperSet struct {
	catalog *navigation.Catalog
	checker gate.Checker
	cfg     HelperConfig
}

// navItems returns the catalog entries visible to the session role, in
// declaration order.
func (h *helperSet) navItems(execCtx *pongo2.ExecutionContext) []navigation.Item {
	if h.catalog == nil {
		return nil
	}
	return h.catalog.Visible(h.role(execCtx))
}

// navSections groups the visible items by section label, preserving both
// section and item declaration order.
func (h *helperSet) navSections(execCtx *pongo2.ExecutionContext) []NavSection {
	items := h.navItems(execCtx)
	if len(items) == 0 {
		return nil
	}
	var sections []NavSection
	index := map[string]int{}
	for _, item := range items {
		pos, ok := index[item.Section]
		if !ok {
			pos = len(sections)
			index[item.Section] = pos
			sections = append(sections, NavSection{Label: item.Section})
		}
		sections[pos].Items = append(sections[pos].Items, item)
	}
	return sections
}

// navActive returns the id of the active item for the current path, or an
// empty string when nothing matches.
func (h *helperSet) navActive(execCtx *pongo2.ExecutionContext) string {
	if h.catalog == nil {
		return ""
	}
	active, ok := h.catalog.ActiveFor(h.path(execCtx), h.navItems(execCtx))
	if !ok {
		return ""
	}
	return active.ID
}

// navAria returns `aria-current="page"` when the item path is the active
// one, otherwise an empty string.
func (h *helperSet) navAria(execCtx *pongo2.ExecutionContext, itemPath any) string {
	path, ok := parseString(itemPath)
	if !ok || h.catalog == nil {
		return ""
	}
	active, found := h.catalog.ActiveFor(h.path(execCtx), h.navItems(execCtx))
	if !found || active.Path != path {
		return ""
	}
	return `aria-current="page"`
}

// navClass returns the on class when the item path is active, otherwise the
// optional off class.
func (h *helperSet) navClass(execCtx *pongo2.ExecutionContext, itemPath any, on any, off ...any) any {
	var fallback any = ""
	if len(off) > 0 {
		fallback = off[0]
	}
	path, ok := parseString(itemPath)
	if !ok || h.catalog == nil {
		return fallback
	}
	active, found := h.catalog.ActiveFor(h.path(execCtx), h.navItems(execCtx))
	if found && active.Path == path {
		return on
	}
	return fallback
}

// navSubItems returns the sub-items of the parent matching the current
// path, or nil when no parent matches. Templates render nothing in that
// case rather than an empty shell.
func (h *helperSet) navSubItems(execCtx *pongo2.ExecutionContext) []navigation.SubItem {
	if h.catalog == nil {
		return nil
	}
	active, ok := h.catalog.ActiveFor(h.path(execCtx), h.navItems(execCtx))
	if !ok || len(active.SubItems) == 0 {
		return nil
	}
	return active.SubItems
}

// feature reports whether the session has access to the feature key. Errors
// fail closed; the template shows nothing rather than gated content.
func (h *helperSet) feature(execCtx *pongo2.ExecutionContext, key any) bool {
	normalized, ok := parseKey(key)
	if !ok {
		return false
	}
	value, err := h.resolveAccess(execCtx, normalized)
	if err != nil {
		h.logHelperError("feature", err)
		return false
	}
	return value
}

func (h *helperSet) featureIf(execCtx *pongo2.ExecutionContext, key any, whenTrue any, whenFalse ...any) any {
	var fallback any = ""
	if len(whenFalse) > 0 {
		fallback = whenFalse[0]
	}
	normalized, ok := parseKey(key)
	if !ok {
		h.logHelperError("feature_if", naverrors.WrapSentinel(naverrors.ErrInvalidKey, "feature key is required", map[string]any{
			naverrors.MetaFeatureKey: key,
		}))
		return fallback
	}
	value, err := h.resolveAccess(execCtx, normalized)
	if err != nil {
		h.logHelperError("feature_if", err)
		return fallback
	}
	if value {
		return whenTrue
	}
	return fallback
}

func (h *helperSet) featureClass(execCtx *pongo2.ExecutionContext, key any, on any, off ...any) any {
	var fallback any = ""
	if len(off) > 0 {
		fallback = off[0]
	}
	normalized, ok := parseKey(key)
	if !ok {
		return fallback
	}
	value, err := h.resolveAccess(execCtx, normalized)
	if err != nil {
		h.logHelperError("feature_class", err)
		return fallback
	}
	if value {
		return on
	}
	return fallback
}

func (h *helperSet) resolveAccess(execCtx *pongo2.ExecutionContext, key string) (bool, error) {
	if key == "" {
		return false, naverrors.WrapSentinel(naverrors.ErrInvalidKey, "feature key is required", map[string]any{
			naverrors.MetaFeatureKey: key,
		})
	}
	if snapshot := h.snapshot(execCtx); snapshot != nil {
		if value, ok := snapshotValue(snapshot, key); ok {
			return value, nil
		}
	}
	if h.checker == nil {
		return false, naverrors.WrapSentinel(naverrors.ErrCheckerRequired, "entitlement checker is required", nil)
	}
	ctx := h.context(execCtx)
	access, err := h.checker.Check(ctx, key, "")
	if err != nil {
		return false, err
	}
	return access.HasAccess, nil
}

// NavSection is one section of grouped visible navigation items.
type NavSection struct {
	Label string
	Items []navigation.Item
}

// Snapshot holds precomputed feature access values keyed by normalized
// feature key, so templates avoid per-helper checker round-trips.
type Snapshot struct {
	Values map[string]bool
}

// Enabled implements SnapshotReader.
func (s Snapshot) Enabled(key string) (bool, bool) {
	key = gate.NormalizeKey(strings.TrimSpace(key))
	if key == "" {
		return false, false
	}
	value, ok := s.Values[key]
	return value, ok
}

// SnapshotReader reports stored feature access by key.
type SnapshotReader interface {
	Enabled(key string) (bool, bool)
}

func (h *helperSet) context(execCtx *pongo2.ExecutionContext) context.Context {
	ctx := context.Background()
	data := templateData(execCtx)
	if data == nil {
		return ctx
	}
	key := h.cfg.ContextKey
	if key == "" {
		key = TemplateContextKey
	}
	if raw, ok := data[key]; ok && raw != nil {
		ctx = contextFromValue(raw)
	}
	// keep the session visible to scope derivation inside the checker, with
	// or without a caller-provided context entry
	if sess, ok := h.sessionValue(data); ok {
		if _, present := session.FromContext(ctx); !present {
			ctx = session.WithSession(ctx, sess)
		}
	}
	return ctx
}

func (h *helperSet) role(execCtx *pongo2.ExecutionContext) role.Role {
	data := templateData(execCtx)
	if data == nil {
		return role.Solo
	}
	if sess, ok := h.sessionValue(data); ok {
		return sess.Role
	}
	return role.Solo
}

func (h *helperSet) path(execCtx *pongo2.ExecutionContext) string {
	data := templateData(execCtx)
	if data == nil {
		return ""
	}
	key := h.cfg.PathKey
	if key == "" {
		key = TemplatePathKey
	}
	if value, ok := data[key].(string); ok {
		return value
	}
	return ""
}

func (h *helperSet) sessionValue(data map[string]any) (session.Session, bool) {
	key := h.cfg.SessionKey
	if key == "" {
		key = TemplateSessionKey
	}
	raw, ok := data[key]
	if !ok || raw == nil {
		return session.Session{}, false
	}
	return sessionFromValue(raw)
}

func (h *helperSet) snapshot(execCtx *pongo2.ExecutionContext) any {
	data := templateData(execCtx)
	if data == nil {
		return nil
	}
	key := h.cfg.SnapshotKey
	if key == "" {
		key = TemplateSnapshotKey
	}
	raw, ok := data[key]
	if !ok {
		return nil
	}
	return raw
}

func (h *helperSet) logHelperError(helper string, err error) {
	if h == nil || !h.cfg.EnableErrorLogging || h.cfg.Logger == nil || err == nil {
		return
	}
	args := []any{
		"helper", helper,
		"error", err,
	}
	if rich, ok := naverrors.As(err); ok {
		args = append(args,
			"category", rich.Category,
			"text_code", rich.TextCode,
			"metadata", rich.Metadata,
		)
	}
	h.cfg.Logger.Error("navgate.helper_error", args...)
}

func parseKey(value any) (string, bool) {
	raw, ok := parseString(value)
	if !ok {
		return "", false
	}
	normalized := gate.NormalizeKey(raw)
	if normalized == "" {
		return "", false
	}
	return normalized, true
}

func parseString(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return "", false
		}
		return trimmed, true
	case *pongo2.Value:
		if typed == nil {
			return "", false
		}
		return parseString(typed.Interface())
	default:
		return "", false
	}
}

func snapshotValue(snapshot any, key string) (bool, bool) {
	if reader, ok := snapshot.(SnapshotReader); ok {
		return reader.Enabled(key)
	}
	switch typed := snapshot.(type) {
	case map[string]bool:
		value, ok := typed[key]
		return value, ok
	case map[string]gate.Access:
		access, ok := typed[key]
		return access.HasAccess, ok
	case map[string]any:
		if value, ok := typed[key]; ok {
			return boolFromValue(value)
		}
	}
	return false, false
}

func boolFromValue(value any) (bool, bool) {
	switch typed := value.(type) {
	case bool:
		return typed, true
	case *bool:
		if typed == nil {
			return false, false
		}
		return *typed, true
	case gate.Access:
		return typed.HasAccess, true
	default:
		return false, false
	}
}

func sessionFromValue(value any) (session.Session, bool) {
	switch typed := value.(type) {
	case session.Session:
		return typed, true
	case *session.Session:
		if typed == nil {
			return session.Session{}, false
		}
		return *typed, true
	case map[string]any:
		sess := session.Session{}
		if v, ok := typed["loaded"].(bool); ok {
			sess.Loaded = v
		}
		if v, ok := typed["signed_in"].(bool); ok {
			sess.SignedIn = v
		}
		sess.Role = role.Resolve(typed["role"])
		if v, ok := typed["tenant_id"].(string); ok {
			sess.TenantID = v
		}
		if v, ok := typed["org_id"].(string); ok {
			sess.OrgID = v
		}
		if v, ok := typed["user_id"].(string); ok {
			sess.UserID = v
		}
		return sess, true
	default:
		return session.Session{}, false
	}
}

func contextFromValue(value any) context.Context {
	switch typed := value.(type) {
	case context.Context:
		return typed
	case interface{ Context() context.Context }:
		return typed.Context()
	default:
		return context.Background()
	}
}

func templateData(execCtx *pongo2.ExecutionContext) map[string]any {
	if execCtx == nil || execCtx.Public == nil {
		return nil
	}
	data := make(map[string]any, len(execCtx.Public))
	for key, value := range execCtx.Public {
		data[key] = value
	}
	return data
}
