package navigation

import "strings"

// Matches reports whether the item is active for the current path: an exact
// match when Exact is set, otherwise a prefix match.
func (i Item) Matches(path string) bool {
	path = normalizePath(path)
	if path == "" {
		return false
	}
	if i.Exact {
		return path == i.Path
	}
	return strings.HasPrefix(path, i.Path)
}

// Active returns the single item considered active for the current path.
// When several items match, the longest path wins; declaration order breaks
// ties.
func (c *Catalog) Active(path string) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	best := -1
	for i, item := range c.items {
		if !item.Matches(path) {
			continue
		}
		if best < 0 || len(item.Path) > len(c.items[best].Path) {
			best = i
		}
	}
	if best < 0 {
		return Item{}, false
	}
	return c.items[best].clone(), true
}

// ActiveFor mirrors Active but only considers items visible to the role, so
// highlighting never points at an entry the user cannot see.
func (c *Catalog) ActiveFor(path string, visible []Item) (Item, bool) {
	best := -1
	for i, item := range visible {
		if !item.Matches(path) {
			continue
		}
		if best < 0 || len(item.Path) > len(visible[best].Path) {
			best = i
		}
	}
	if best < 0 {
		return Item{}, false
	}
	return visible[best], true
}

// SubItemsFor returns the sub-items of the single parent matching the
// current path, or nil when no parent matches. Consumers render nothing in
// that case rather than an empty shell.
func (c *Catalog) SubItemsFor(path string) []SubItem {
	active, ok := c.Active(path)
	if !ok || len(active.SubItems) == 0 {
		return nil
	}
	out := make([]SubItem, len(active.SubItems))
	copy(out, active.SubItems)
	return out
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
