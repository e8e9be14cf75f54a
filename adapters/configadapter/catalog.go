package configadapter

import (
	"strings"

	"github.com/goliatone/go-config/config"

	"github.com/goliatone/go-navgate/navigation"
	"github.com/goliatone/go-navgate/role"
)

// Flags are the boot-time toggles that gate catalog membership. They are
// read once at startup; per-user visibility stays governed by role sets.
// A nil field behaves as unset.
type Flags struct {
	MasterAdminPortal *config.OptionalBool
	CustomerPortal    *config.OptionalBool
}

// Options maps the flags onto catalog construction options in their fixed
// append order: master-admin portal first, then customer portal.
func (f Flags) Options() []navigation.Option {
	return []navigation.Option{
		navigation.WithMasterAdminPortal(f.MasterAdminPortal.IsSet() && f.MasterAdminPortal.Value()),
		navigation.WithCustomerPortal(f.CustomerPortal.IsSet() && f.CustomerPortal.Value()),
	}
}

// FlagsFromMap reads boot flags from a config map. Accepts bool and
// config.OptionalBool values under master_admin_portal and customer_portal.
func FlagsFromMap(data map[string]any) Flags {
	flags := Flags{}
	if value, ok := boolFromValue(data["master_admin_portal"]); ok {
		flags.MasterAdminPortal = config.NewOptionalBool(value)
	}
	if value, ok := boolFromValue(data["customer_portal"]); ok {
		flags.CustomerPortal = config.NewOptionalBool(value)
	}
	return flags
}

// NewCatalog builds a navigation catalog from a config map. The map carries
// an items list in declaration order plus optional boot flags:
//
//	items:
//	  - id: deals
//	    label: Deals
//	    path: /deals
//	    roles: [solo, growth, enterprise, admin]
//	    section: Overview
//	    sub_items:
//	      - {label: Pipeline, path: /deals/pipeline}
//	flags:
//	  master_admin_portal: true
func NewCatalog(data map[string]any, opts ...navigation.Option) (*navigation.Catalog, error) {
	items := itemsFromValue(data["items"])

	var options []navigation.Option
	if flags, ok := data["flags"].(map[string]any); ok {
		options = append(options, FlagsFromMap(flags).Options()...)
	}
	options = append(options, opts...)

	return navigation.New(items, options...)
}

func itemsFromValue(value any) []navigation.Item {
	raw, ok := value.([]any)
	if !ok {
		return nil
	}
	items := make([]navigation.Item, 0, len(raw))
	for _, entry := range raw {
		data, ok := mapFromValue(entry)
		if !ok {
			continue
		}
		items = append(items, itemFromMap(data))
	}
	return items
}

func itemFromMap(data map[string]any) navigation.Item {
	item := navigation.Item{
		ID:      stringFrom(data["id"]),
		Label:   stringFrom(data["label"]),
		Path:    stringFrom(data["path"]),
		Section: stringFrom(data["section"]),
		Roles:   rolesFromValue(data["roles"]),
	}
	if exact, ok := boolFromValue(data["exact"]); ok {
		item.Exact = exact
	}
	if subs, ok := data["sub_items"].([]any); ok {
		for _, sub := range subs {
			subMap, ok := mapFromValue(sub)
			if !ok {
				continue
			}
			item.SubItems = append(item.SubItems, navigation.SubItem{
				Label: stringFrom(subMap["label"]),
				Path:  stringFrom(subMap["path"]),
			})
		}
	}
	return item
}

func rolesFromValue(value any) role.Set {
	switch typed := value.(type) {
	case []any:
		return role.ParseSet(typed...)
	case []string:
		values := make([]any, len(typed))
		for i, v := range typed {
			values[i] = v
		}
		return role.ParseSet(values...)
	case string:
		parts := strings.Split(typed, ",")
		values := make([]any, 0, len(parts))
		for _, part := range parts {
			values = append(values, strings.TrimSpace(part))
		}
		return role.ParseSet(values...)
	default:
		return nil
	}
}

func mapFromValue(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case map[string]string:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func stringFrom(value any) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
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
	case config.OptionalBool:
		if !typed.IsSet() {
			return false, false
		}
		return typed.Value(), true
	case *config.OptionalBool:
		if typed == nil || !typed.IsSet() {
			return false, false
		}
		return typed.Value(), true
	default:
		return false, false
	}
}
