package renderer

import (
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-navgate/naverrors"
	"github.com/goliatone/go-navgate/navigation"
	"github.com/goliatone/go-navgate/role"
	"github.com/goliatone/go-navgate/session"
)

// DefaultLabel is the accessible name announced for the navigation region.
const DefaultLabel = "Main navigation"

var navTemplate = pongo2.Must(pongo2.FromString(`<nav role="navigation" aria-label="{{ label }}">
{% for section in sections %}{% if section.Label %}  <h2 class="nav-section">{{ section.Label }}</h2>
{% endif %}  <ul class="nav-list">
{% for entry in section.Entries %}    <li><a href="{{ entry.Path }}"{% if entry.Active %} class="active" aria-current="page"{% endif %}>{{ entry.Label }}</a></li>
{% endfor %}  </ul>
{% endfor %}</nav>`))

var subNavTemplate = pongo2.Must(pongo2.FromString(`<nav role="navigation" aria-label="{{ label }}">
  <ul class="subnav-list">
{% for entry in entries %}    <li><a href="{{ entry.Path }}"{% if entry.Active %} class="active" aria-current="page"{% endif %}>{{ entry.Label }}</a></li>
{% endfor %}  </ul>
</nav>`))

// Entry is one rendered link.
type Entry struct {
	ID     string
	Label  string
	Path   string
	Active bool
}

// Section groups entries under a section heading.
type Section struct {
	Label   string
	Entries []Entry
}

// Renderer turns the catalog into accessible HTML navigation for a session.
// It emits link elements only; following them is the host router's job.
type Renderer struct {
	catalog *navigation.Catalog
	label   string
}

// Option customizes a Renderer.
type Option func(*Renderer)

// WithLabel overrides the accessible navigation label.
func WithLabel(label string) Option {
	return func(r *Renderer) {
		if r == nil || strings.TrimSpace(label) == "" {
			return
		}
		r.label = label
	}
}

// New constructs a Renderer over a catalog.
func New(catalog *navigation.Catalog, opts ...Option) *Renderer {
	r := &Renderer{
		catalog: catalog,
		label:   DefaultLabel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Sections computes the render model: items visible to the session role,
// grouped by section in declaration order, with the active entry marked.
func (r *Renderer) Sections(sess session.Session, path string) []Section {
	if r == nil || r.catalog == nil {
		return nil
	}
	visible := r.catalog.Visible(sessionRole(sess))
	if len(visible) == 0 {
		return nil
	}
	active, hasActive := r.catalog.ActiveFor(path, visible)

	var sections []Section
	index := map[string]int{}
	for _, item := range visible {
		pos, ok := index[item.Section]
		if !ok {
			pos = len(sections)
			index[item.Section] = pos
			sections = append(sections, Section{Label: item.Section})
		}
		sections[pos].Entries = append(sections[pos].Entries, Entry{
			ID:     item.ID,
			Label:  item.Label,
			Path:   item.Path,
			Active: hasActive && item.ID == active.ID,
		})
	}
	return sections
}

// Render emits the navigation region for the session and current path.
func (r *Renderer) Render(sess session.Session, path string) (string, error) {
	if r == nil || r.catalog == nil {
		return "", naverrors.WrapSentinel(naverrors.ErrCatalogInvalid, "renderer: catalog is required", nil)
	}
	body, err := navTemplate.Execute(pongo2.Context{
		"label":    r.label,
		"sections": r.Sections(sess, path),
	})
	if err != nil {
		return "", naverrors.WrapInternal(err, naverrors.TextCodeRenderFailed, "renderer: navigation render failed", map[string]any{
			naverrors.MetaPath: path,
		})
	}
	return body, nil
}

// RenderSubNav emits the contextual sub-menu for the active parent, or an
// empty string when no parent matches. The caller renders nothing in that
// case, not an empty shell.
func (r *Renderer) RenderSubNav(sess session.Session, path string) (string, error) {
	if r == nil || r.catalog == nil {
		return "", naverrors.WrapSentinel(naverrors.ErrCatalogInvalid, "renderer: catalog is required", nil)
	}
	visible := r.catalog.Visible(sessionRole(sess))
	active, ok := r.catalog.ActiveFor(path, visible)
	if !ok || len(active.SubItems) == 0 {
		return "", nil
	}

	entries := make([]Entry, 0, len(active.SubItems))
	for _, sub := range active.SubItems {
		entries = append(entries, Entry{
			Label:  sub.Label,
			Path:   sub.Path,
			Active: navigation.Item{Path: sub.Path, Exact: true}.Matches(path),
		})
	}

	body, err := subNavTemplate.Execute(pongo2.Context{
		"label":   active.Label + " navigation",
		"entries": entries,
	})
	if err != nil {
		return "", naverrors.WrapInternal(err, naverrors.TextCodeRenderFailed, "renderer: sub navigation render failed", map[string]any{
			naverrors.MetaPath:   path,
			naverrors.MetaItemID: active.ID,
		})
	}
	return body, nil
}

func sessionRole(sess session.Session) role.Role {
	if sess.Role.Valid() {
		return sess.Role
	}
	return role.Solo
}
