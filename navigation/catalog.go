package navigation

import (
	"strings"

	"github.com/goliatone/go-navgate/naverrors"
	"github.com/goliatone/go-navgate/role"
)

// SubItem is a contextual child entry rendered under an active parent. Sub
// items inherit the parent's role set.
type SubItem struct {
	Label string
	Path  string
}

// Item is one entry in the navigation catalog.
type Item struct {
	ID       string
	Label    string
	Path     string
	Roles    role.Set
	Exact    bool
	Section  string
	SubItems []SubItem
}

func (i Item) clone() Item {
	i.Roles = i.Roles.Clone()
	if len(i.SubItems) > 0 {
		subs := make([]SubItem, len(i.SubItems))
		copy(subs, i.SubItems)
		i.SubItems = subs
	}
	return i
}

// FlatEntry is one row of a flattened catalog view: either a top-level item
// or one of its sub-items, in deterministic parent-then-children order.
type FlatEntry struct {
	ItemID string
	Label  string
	Path   string
	Sub    bool
}

// Catalog is the immutable, ordered set of navigation entries built once at
// startup. Per-user visibility is a pure filter over it, never a mutation.
type Catalog struct {
	items []Item
}

// Option appends conditional entries during construction.
type Option func(*builder)

type builder struct {
	conditional []Item
}

// WithConditionalItem appends item to the end of the catalog when enabled is
// true. The flag gates catalog membership at startup; per-user visibility
// stays governed by the item's role set.
func WithConditionalItem(enabled bool, item Item) Option {
	return func(b *builder) {
		if b == nil || !enabled {
			return
		}
		b.conditional = append(b.conditional, item)
	}
}

// New builds a catalog from the base items plus any enabled conditional
// entries, in declaration order. It rejects duplicate IDs or paths and empty
// role sets; an item nobody can see is a modeling error.
func New(items []Item, opts ...Option) (*Catalog, error) {
	b := &builder{}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	all := make([]Item, 0, len(items)+len(b.conditional))
	for _, item := range items {
		all = append(all, item.clone())
	}
	for _, item := range b.conditional {
		all = append(all, item.clone())
	}

	seenIDs := make(map[string]struct{}, len(all))
	seenPaths := make(map[string]struct{}, len(all))
	for i := range all {
		item := &all[i]
		item.ID = strings.TrimSpace(item.ID)
		item.Path = strings.TrimSpace(item.Path)
		if item.ID == "" {
			return nil, catalogError("navigation: item id is required", item.Path)
		}
		if item.Label == "" {
			return nil, catalogError("navigation: item label is required", item.ID)
		}
		if item.Path == "" || !strings.HasPrefix(item.Path, "/") {
			return nil, catalogError("navigation: item path must be absolute", item.ID)
		}
		if item.Roles.Empty() {
			return nil, catalogError("navigation: item role set must not be empty", item.ID)
		}
		if _, dup := seenIDs[item.ID]; dup {
			return nil, catalogError("navigation: duplicate item id", item.ID)
		}
		if _, dup := seenPaths[item.Path]; dup {
			return nil, catalogError("navigation: duplicate item path", item.Path)
		}
		seenIDs[item.ID] = struct{}{}
		seenPaths[item.Path] = struct{}{}
		for _, sub := range item.SubItems {
			if sub.Label == "" || strings.TrimSpace(sub.Path) == "" {
				return nil, catalogError("navigation: sub item label and path are required", item.ID)
			}
		}
	}

	return &Catalog{items: all}, nil
}

func catalogError(message, id string) error {
	return naverrors.WrapSentinel(naverrors.ErrCatalogInvalid, message, map[string]any{
		naverrors.MetaItemID: id,
	})
}

// Items returns a copy of the catalog entries in declaration order.
func (c *Catalog) Items() []Item {
	if c == nil || len(c.items) == 0 {
		return nil
	}
	out := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item.clone())
	}
	return out
}

// Len returns the number of top-level entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Get returns the item with the given id.
func (c *Catalog) Get(id string) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	id = strings.TrimSpace(id)
	for _, item := range c.items {
		if item.ID == id {
			return item.clone(), true
		}
	}
	return Item{}, false
}

// Visible filters the catalog by role. A master_admin sees the entire
// catalog regardless of declared role sets; the override lives here and only
// here so role sets stay usable for other authorization decisions.
func (c *Catalog) Visible(r role.Role) []Item {
	if c == nil {
		return nil
	}
	if r == role.MasterAdmin {
		return c.Items()
	}
	out := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		if item.Roles.Contains(r) {
			out = append(out, item.clone())
		}
	}
	return out
}

// Flatten returns the catalog as a deterministic flat list: each parent
// immediately followed by its sub-items in declared order.
func (c *Catalog) Flatten() []FlatEntry {
	if c == nil {
		return nil
	}
	out := make([]FlatEntry, 0, len(c.items)*2)
	for _, item := range c.items {
		out = append(out, FlatEntry{ItemID: item.ID, Label: item.Label, Path: item.Path})
		for _, sub := range item.SubItems {
			out = append(out, FlatEntry{ItemID: item.ID, Label: sub.Label, Path: sub.Path, Sub: true})
		}
	}
	return out
}
