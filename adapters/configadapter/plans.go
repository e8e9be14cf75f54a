package configadapter

import (
	"strings"

	"github.com/goliatone/go-navgate/entitlement"
)

type configOptions struct {
	delimiter string
}

// Option configures configadapter parsing.
type Option func(*configOptions)

// WithDelimiter sets the key delimiter used when flattening nested maps.
func WithDelimiter(delimiter string) Option {
	return func(cfg *configOptions) {
		if cfg == nil {
			return
		}
		cfg.delimiter = delimiter
	}
}

// NewPlans builds plan requirements from a nested config map. Leaf values
// are either a tier name or a map carrying tier, upgrade_message, and
// upgrade_cta_url:
//
//	valuation:
//	  monte_carlo:
//	    tier: enterprise
//	    upgrade_message: Monte Carlo simulations require the Enterprise plan.
//	fpa: growth
func NewPlans(data map[string]any, opts ...Option) *entitlement.StaticPlans {
	cfg := configOptions{delimiter: "."}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.delimiter == "" {
		cfg.delimiter = "."
	}

	requirements := map[string]entitlement.PlanRequirement{}
	flattenPlans("", data, cfg.delimiter, requirements)
	return entitlement.NewStaticPlans(requirements)
}

func flattenPlans(prefix string, data map[string]any, delim string, out map[string]entitlement.PlanRequirement) {
	if len(data) == 0 {
		return
	}
	for key, value := range data {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		path := trimmedKey
		if prefix != "" {
			path = prefix + delim + trimmedKey
		}

		switch typed := value.(type) {
		case map[string]any:
			if requirement, ok := requirementFromMap(typed); ok {
				out[path] = requirement
				continue
			}
			flattenPlans(path, typed, delim, out)
		case map[string]string:
			raw := make(map[string]any, len(typed))
			for k, v := range typed {
				raw[k] = v
			}
			if requirement, ok := requirementFromMap(raw); ok {
				out[path] = requirement
			}
		case string:
			tier := strings.TrimSpace(typed)
			if tier == "" {
				continue
			}
			out[path] = entitlement.PlanRequirement{Tier: tier}
		}
	}
}

func requirementFromMap(data map[string]any) (entitlement.PlanRequirement, bool) {
	tier := stringFrom(data["tier"])
	if tier == "" {
		return entitlement.PlanRequirement{}, false
	}
	return entitlement.PlanRequirement{
		Tier:           tier,
		UpgradeMessage: stringFrom(data["upgrade_message"]),
		UpgradeCTAURL:  stringFrom(data["upgrade_cta_url"]),
	}, true
}
