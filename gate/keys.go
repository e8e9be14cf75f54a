package gate

import "strings"

// Feature keys for the gated product modules.
const (
	FeatureFPA              = "fpa"
	FeaturePMI              = "pmi"
	FeaturePodcast          = "podcast"
	FeatureValuationSuite   = "valuation.suite"
	FeatureMonteCarlo       = "valuation.monte_carlo"
	FeatureDocumentBulkOps  = "documents.bulk_ops"
	FeatureCustomerPortal   = "portal.customer"
	FeatureMasterAdminTools = "admin.master_tools"
)

// Tier names recognized by entitlement responses.
const (
	TierSolo       = "solo"
	TierGrowth     = "growth"
	TierEnterprise = "enterprise"
)

var tierRank = map[string]int{
	TierSolo:       0,
	TierGrowth:     1,
	TierEnterprise: 2,
}

// TierAtLeast reports whether have satisfies the want tier. Unknown tiers
// never satisfy anything except an empty requirement.
func TierAtLeast(have, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return true
	}
	haveRank, ok := tierRank[strings.TrimSpace(have)]
	if !ok {
		return false
	}
	wantRank, ok := tierRank[want]
	if !ok {
		return false
	}
	return haveRank >= wantRank
}

var keyAliases = map[string]string{
	"fpna":                "fpa",
	"valuation.simulator": FeatureMonteCarlo,
}

// NormalizeKey trims whitespace and resolves any known legacy aliases.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if alias, ok := keyAliases[key]; ok {
		return alias
	}
	return key
}

// IsAlias reports whether the key is a known legacy alias.
func IsAlias(key string) bool {
	_, ok := keyAliases[strings.TrimSpace(key)]
	return ok
}
