package navigation

import "github.com/goliatone/go-navgate/role"

// Section labels used by the default catalog.
const (
	SectionOverview  = "Overview"
	SectionAnalysis  = "Analysis"
	SectionWorkspace = "Workspace"
	SectionAdmin     = "Administration"
)

// WithMasterAdminPortal appends the master-admin portal entry when the boot
// flag is enabled.
func WithMasterAdminPortal(enabled bool) Option {
	return WithConditionalItem(enabled, Item{
		ID:      "master-admin",
		Label:   "Master Admin",
		Path:    "/master-admin",
		Roles:   role.NewSet(role.MasterAdmin),
		Section: SectionAdmin,
	})
}

// WithCustomerPortal appends the customer portal entry when the boot flag is
// enabled.
func WithCustomerPortal(enabled bool) Option {
	return WithConditionalItem(enabled, Item{
		ID:      "customer-portal",
		Label:   "Customer Portal",
		Path:    "/portal",
		Roles:   role.NewSet(role.Solo, role.Growth, role.Enterprise, role.Admin),
		Section: SectionWorkspace,
	})
}

// DefaultItems returns the base deal-management catalog in render order.
func DefaultItems() []Item {
	return []Item{
		{
			ID:      "dashboard",
			Label:   "Dashboard",
			Path:    "/dashboard",
			Roles:   role.NewSet(role.Solo, role.Growth, role.Enterprise, role.Admin),
			Exact:   true,
			Section: SectionOverview,
		},
		{
			ID:      "deals",
			Label:   "Deals",
			Path:    "/deals",
			Roles:   role.NewSet(role.Solo, role.Growth, role.Enterprise, role.Admin),
			Section: SectionOverview,
			SubItems: []SubItem{
				{Label: "Pipeline", Path: "/deals/pipeline"},
				{Label: "Due Diligence", Path: "/deals/due-diligence"},
				{Label: "Closing", Path: "/deals/closing"},
			},
		},
		{
			ID:      "valuation",
			Label:   "Valuation",
			Path:    "/valuation",
			Roles:   role.NewSet(role.Growth, role.Enterprise, role.Admin),
			Section: SectionAnalysis,
			SubItems: []SubItem{
				{Label: "DCF Models", Path: "/valuation/dcf"},
				{Label: "Comparables", Path: "/valuation/comparables"},
				{Label: "Monte Carlo", Path: "/valuation/monte-carlo"},
			},
		},
		{
			ID:      "fpa",
			Label:   "FP&A",
			Path:    "/fpa",
			Roles:   role.NewSet(role.Enterprise, role.Admin),
			Section: SectionAnalysis,
		},
		{
			ID:      "documents",
			Label:   "Documents",
			Path:    "/documents",
			Roles:   role.NewSet(role.Solo, role.Growth, role.Enterprise, role.Admin),
			Section: SectionWorkspace,
		},
		{
			ID:      "podcast",
			Label:   "Podcast",
			Path:    "/podcast",
			Roles:   role.NewSet(role.Growth, role.Enterprise, role.Admin),
			Section: SectionWorkspace,
		},
		{
			ID:      "admin",
			Label:   "Admin Panel",
			Path:    "/admin",
			Roles:   role.NewSet(role.Admin),
			Section: SectionAdmin,
		},
	}
}

// Default builds the deal-management catalog with the provided boot-time
// options applied.
func Default(opts ...Option) (*Catalog, error) {
	return New(DefaultItems(), opts...)
}
