package handlers

import (
	"net/http"

	"github.com/bloomfeed/billing/internal/app/service/entitlement"
	"github.com/bloomfeed/billing/internal/app/service/ledger"
	"github.com/bloomfeed/billing/pkg/response"
	types "github.com/bloomfeed/billing/pkg/types"

	"github.com/gin-gonic/gin"
)

type ownerAccessResponse struct {
	*entitlement.Access
	Credits int64 `json:"credits"`
}

// @Summary      Resolve Owner Entitlements
// @Description  Returns the owner's currently-applicable plan, entitlement set and credit balance.
// @Tags         Entitlements
// @Produce      json
// @Param        ownerType  path   string  true   "user or company"
// @Param        ownerId    path   string  true   "owner id"
// @Param        refresh    query  bool    false  "roll the billing period forward before reading usage counters"
// @Success      200  {object}  handlers.RespOwnerAccess
// @Failure      400  {object}  handlers.RespError
// @Router       /api/v1/owners/{ownerType}/{ownerId}/entitlements [get]
func ApiResolveOwnerAccess(svc *entitlement.Service, lg ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerType := types.OwnerType(c.Param("ownerType"))
		ownerID := c.Param("ownerId")
		if !ownerType.Valid() || ownerID == "" {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid owner reference"))
			return
		}
		owner := types.OwnerRef{ID: ownerID, Type: ownerType}

		refresh := c.Query("refresh") == "true"
		access, err := svc.ResolveOwnerPlanAccess(c.Request.Context(), owner, refresh)
		if err != nil {
			writeServiceError(c, err)
			return
		}

		// Resolving access counts as the owner's first billing touch; the
		// ledger seeds the profile with the starting grant here.
		profile, err := lg.GetProfile(c.Request.Context(), owner)
		if err != nil {
			writeServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, response.OKT(&ownerAccessResponse{
			Access:  access,
			Credits: profile.Credits,
		}))
	}
}

func RegisterEntitlementRoutes(r gin.IRouter, svc *entitlement.Service, lg ledger.Ledger) {
	r.GET("/owners/:ownerType/:ownerId/entitlements", ApiResolveOwnerAccess(svc, lg))
}
