package entitlement

import (
	"context"
	"testing"

	"github.com/bloomfeed/billing/internal/app/service/catalog"
	models "github.com/bloomfeed/billing/internal/models"
	"github.com/bloomfeed/billing/pkg/config"
	types "github.com/bloomfeed/billing/pkg/types"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveOwnerPlanAccess_ComplimentaryShortCircuits(t *testing.T) {
	cfg := &config.Config{ComplimentaryOwners: []string{"founder-1"}}
	// nil db: the complimentary path must never reach the datastore
	s := NewService(cfg, nil, nil, zap.NewNop().Sugar())

	access, err := s.ResolveOwnerPlanAccess(context.Background(),
		types.OwnerRef{ID: "founder-1", Type: types.OwnerTypeUser}, true)
	require.NoError(t, err)
	require.True(t, access.Entitlements.ComplimentaryAccess)
	require.Equal(t, catalog.PackagePro, access.Entitlements.PackageID)
	require.Nil(t, access.Subscription)
}

func TestIsComplimentaryOwner_EmptyIDNeverMatches(t *testing.T) {
	cfg := &config.Config{ComplimentaryOwners: []string{""}}
	require.False(t, cfg.IsComplimentaryOwner(""))
}

func TestEntitlementsOf_NilSubscriptionIsLowestTier(t *testing.T) {
	set := EntitlementsOf(nil)
	require.Equal(t, catalog.PackageStarter, set.PackageID)
	require.False(t, set.ComplimentaryAccess)
}

func TestEntitlementsOf_UnknownPackageIsLowestTier(t *testing.T) {
	set := EntitlementsOf(&models.Subscription{PackageID: "discontinued-tier"})
	require.Equal(t, catalog.PackageStarter, set.PackageID)
}

func TestEntitlementsOf_KnownPackage(t *testing.T) {
	set := EntitlementsOf(&models.Subscription{PackageID: catalog.PackageGrowth})
	require.Equal(t, catalog.PackageGrowth, set.PackageID)
	require.Equal(t, 5, set.AdLimit)
}
