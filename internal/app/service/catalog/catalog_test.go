package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntitlementsFor_KnownPlan(t *testing.T) {
	set := EntitlementsFor(PackagePro)
	require.Equal(t, PackagePro, set.PackageID)
	require.Equal(t, 20, set.AdLimit)
	require.True(t, set.AdvancedReporting)
}

func TestEntitlementsFor_UnknownFallsBackToLowestTier(t *testing.T) {
	for _, id := range []string{"", "enterprise", "growth-legacy"} {
		set := EntitlementsFor(id)
		require.Equal(t, PackageStarter, set.PackageID)
		require.Equal(t, 1, set.AdLimit)
		require.False(t, set.ExportEnabled)
	}
}

func TestPlanByID_UnknownReturnsNil(t *testing.T) {
	require.Nil(t, PlanByID("no-such-plan"))
	require.NotNil(t, PlanByID(PackageGrowth))
}

func TestIsPlacementAllowed(t *testing.T) {
	require.True(t, IsPlacementAllowed(PackageStarter, PlacementFeed))
	require.False(t, IsPlacementAllowed(PackageStarter, PlacementStories))
	require.True(t, IsPlacementAllowed(PackagePro, PlacementStories))
	// unknown package behaves like the lowest tier
	require.False(t, IsPlacementAllowed("bogus", PlacementSidebar))
}

func TestEntitlementsFor_CopiesPlacements(t *testing.T) {
	a := EntitlementsFor(PackagePro)
	a.Placements[0] = Placement("mutated")
	b := EntitlementsFor(PackagePro)
	require.Equal(t, PlacementFeed, b.Placements[0])
}
