package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bloomfeed/billing/internal/app/service/entitlement"
	models "github.com/bloomfeed/billing/internal/models"
	"github.com/bloomfeed/billing/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func entitlementsRouter(ent *entitlement.Service, lg *stubLedger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterEntitlementRoutes(r.Group("/api/v1"), ent, lg)
	return r
}

func TestApiResolveOwnerAccess_ReturnsBalance(t *testing.T) {
	// complimentary owners resolve without a datastore, so the only ledger
	// interaction is the profile read
	ent := entitlement.NewService(&config.Config{ComplimentaryOwners: []string{"user-1"}}, nil, nil, zap.NewNop().Sugar())
	lg := &stubLedger{profile: &models.OwnerProfile{Credits: 25}}
	r := entitlementsRouter(ent, lg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/owners/user/user-1/entitlements", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"credits":25`)
	require.Contains(t, w.Body.String(), `"complimentary_access":true`)
	require.Equal(t, 1, lg.profiles, "resolving access is the owner's first billing touch")
}

func TestApiResolveOwnerAccess_InvalidOwnerType(t *testing.T) {
	ent := entitlement.NewService(&config.Config{}, nil, nil, zap.NewNop().Sugar())
	lg := &stubLedger{}
	r := entitlementsRouter(ent, lg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/owners/team/t-1/entitlements", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Zero(t, lg.profiles)
}
