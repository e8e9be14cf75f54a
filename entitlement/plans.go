package entitlement

import (
	"context"

	"github.com/goliatone/go-navgate/gate"
)

// StaticPlans resolves plan requirements from an in-memory map keyed by
// normalized feature key.
type StaticPlans struct {
	requirements map[string]PlanRequirement
}

// NewStaticPlans builds a StaticPlans from feature key to requirement.
// Keys are normalized, so aliases resolve to the same entry.
func NewStaticPlans(requirements map[string]PlanRequirement) *StaticPlans {
	plans := &StaticPlans{
		requirements: make(map[string]PlanRequirement, len(requirements)),
	}
	for key, requirement := range requirements {
		normalized := gate.NormalizeKey(key)
		if normalized == "" {
			continue
		}
		requirement.Set = true
		plans.requirements[normalized] = requirement
	}
	return plans
}

// DefaultPlans maps the built-in premium features onto their tiers.
func DefaultPlans() *StaticPlans {
	return NewStaticPlans(map[string]PlanRequirement{
		gate.FeatureFPA: {
			Tier:           gate.TierGrowth,
			UpgradeMessage: "FP&A requires the Growth plan.",
		},
		gate.FeatureMonteCarlo: {
			Tier:           gate.TierEnterprise,
			UpgradeMessage: "Monte Carlo simulations require the Enterprise plan.",
		},
		gate.FeaturePodcast: {
			Tier:           gate.TierGrowth,
			UpgradeMessage: "The podcast studio requires the Growth plan.",
		},
		gate.FeatureDocumentBulkOps: {
			Tier:           gate.TierGrowth,
			UpgradeMessage: "Bulk document operations require the Growth plan.",
		},
		gate.FeatureCustomerPortal: {
			Tier:           gate.TierEnterprise,
			UpgradeMessage: "The customer portal requires the Enterprise plan.",
		},
	})
}

// Requirement implements PlanSource.
func (p *StaticPlans) Requirement(_ context.Context, feature string) (PlanRequirement, error) {
	if p == nil {
		return PlanRequirement{}, nil
	}
	requirement, ok := p.requirements[gate.NormalizeKey(feature)]
	if !ok {
		return PlanRequirement{}, nil
	}
	return requirement, nil
}

var _ PlanSource = (*StaticPlans)(nil)
