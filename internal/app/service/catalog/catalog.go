package catalog

// Placement is an ad placement slot a plan may or may not unlock.
type Placement string

const (
	PlacementFeed    Placement = "feed"
	PlacementStories Placement = "stories"
	PlacementSidebar Placement = "sidebar"
)

// EntitlementSet is derived from a plan, never persisted. It is recomputed on
// every resolution call.
type EntitlementSet struct {
	PackageID           string      `json:"package_id"`
	AdLimit             int         `json:"ad_limit"`
	ImpressionLimit     int         `json:"impression_limit"`
	Placements          []Placement `json:"placements"`
	AdvancedReporting   bool        `json:"advanced_reporting"`
	ExportEnabled       bool        `json:"export_enabled"`
	ComplimentaryAccess bool        `json:"complimentary_access"`
}

type Plan struct {
	ID              string
	Name            string
	Price           string
	Currency        string
	DurationDays    int
	AdLimit         int
	ImpressionLimit int
	Placements      []Placement
	// ProviderPlanID couples the plan to the provider's recurring billing
	// plan for subscription verification.
	ProviderPlanID    string
	AdvancedReporting bool
	ExportEnabled     bool
}

const (
	PackageStarter = "starter"
	PackageGrowth  = "growth"
	PackagePro     = "pro"
)

// lowestTier is the fallback for missing or unrecognized package ids.
const lowestTier = PackageStarter

var plans = map[string]*Plan{
	PackageStarter: {
		ID:              PackageStarter,
		Name:            "Starter",
		Price:           "0.00",
		Currency:        "USD",
		DurationDays:    30,
		AdLimit:         1,
		ImpressionLimit: 1000,
		Placements:      []Placement{PlacementFeed},
	},
	PackageGrowth: {
		ID:              PackageGrowth,
		Name:            "Growth",
		Price:           "19.99",
		Currency:        "USD",
		DurationDays:    30,
		AdLimit:         5,
		ImpressionLimit: 25000,
		Placements:      []Placement{PlacementFeed, PlacementSidebar},
		ProviderPlanID:  "P-GROWTH-MONTHLY",
	},
	PackagePro: {
		ID:                PackagePro,
		Name:              "Pro",
		Price:             "49.99",
		Currency:          "USD",
		DurationDays:      30,
		AdLimit:           20,
		ImpressionLimit:   200000,
		Placements:        []Placement{PlacementFeed, PlacementStories, PlacementSidebar},
		ProviderPlanID:    "P-PRO-MONTHLY",
		AdvancedReporting: true,
		ExportEnabled:     true,
	},
}

// PlanByID returns the plan for the given package id, or nil when unknown.
func PlanByID(id string) *Plan {
	return plans[id]
}

// TopTierPlan backs complimentary access.
func TopTierPlan() *Plan {
	return plans[PackagePro]
}

// EntitlementsFor maps a package id to its entitlement set. Absent or unknown
// ids fall back to the lowest tier; this never errors.
func EntitlementsFor(id string) EntitlementSet {
	p := plans[id]
	if p == nil {
		p = plans[lowestTier]
	}
	return entitlements(p)
}

func entitlements(p *Plan) EntitlementSet {
	placements := make([]Placement, len(p.Placements))
	copy(placements, p.Placements)
	return EntitlementSet{
		PackageID:         p.ID,
		AdLimit:           p.AdLimit,
		ImpressionLimit:   p.ImpressionLimit,
		Placements:        placements,
		AdvancedReporting: p.AdvancedReporting,
		ExportEnabled:     p.ExportEnabled,
	}
}

// IsPlacementAllowed reports whether the plan identified by id may use the
// placement. Unknown ids degrade to the lowest tier.
func IsPlacementAllowed(id string, placement Placement) bool {
	set := EntitlementsFor(id)
	for _, p := range set.Placements {
		if p == placement {
			return true
		}
	}
	return false
}
