package handlers

import (
	"net/http"

	"github.com/bloomfeed/billing/internal/app/api/middleware"
	"github.com/bloomfeed/billing/internal/app/service/ledger"
	"github.com/bloomfeed/billing/internal/app/service/reconcile"
	"github.com/bloomfeed/billing/pkg/response"
	types "github.com/bloomfeed/billing/pkg/types"

	"github.com/gin-gonic/gin"
)

type purchaseCreditsRequest struct {
	BundleName string `json:"bundle_name"`
	OrderID    string `json:"order_id"`
}

type spendCreditsRequest struct {
	Credits int64  `json:"credits"`
	Reason  string `json:"reason"`
}

type spendCreditsResponse struct {
	PreviousCredits int64 `json:"previous_credits"`
	NewCredits      int64 `json:"new_credits"`
	CreditsSpent    int64 `json:"credits_spent"`
}

// @Summary      Purchase Credits
// @Description  Converts a provider-confirmed order into a credit grant, exactly once per order id.
// @Tags         Credits
// @Accept       json
// @Produce      json
// @Param        request body handlers.PurchaseCreditsBody true "Credit purchase request"
// @Success      201  {object}  handlers.RespPurchaseCredits
// @Failure      400  {object}  handlers.RespError
// @Failure      409  {object}  handlers.RespError
// @Router       /api/v1/credits/purchase [post]
func ApiPurchaseCredits(rec reconcile.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req purchaseCreditsRequest
		if err := bindStrict(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.BundleName == "" || req.OrderID == "" {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "bundle_name and order_id are required"))
			return
		}

		owner := types.OwnerRef{ID: middleware.ActorID(c), Type: types.OwnerTypeUser}
		res, err := rec.PurchaseCredits(c.Request.Context(), &reconcile.PurchaseCreditsRequest{
			Owner:      owner,
			BundleName: req.BundleName,
			OrderID:    req.OrderID,
		})
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, response.OKT(res))
	}
}

// @Summary      Spend Credits
// @Description  Atomically deducts credits from the caller's balance.
// @Tags         Credits
// @Accept       json
// @Produce      json
// @Param        request body handlers.SpendCreditsBody true "Credit spend request"
// @Success      200  {object}  handlers.RespSpendCredits
// @Failure      400  {object}  handlers.RespError
// @Failure      402  {object}  handlers.RespError
// @Router       /api/v1/credits/spend [post]
func ApiSpendCredits(lg ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req spendCreditsRequest
		if err := bindStrict(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeInvalidAmount, err.Error()))
			return
		}

		owner := types.OwnerRef{ID: middleware.ActorID(c), Type: types.OwnerTypeUser}
		change, err := lg.Spend(c.Request.Context(), owner, req.Credits)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&spendCreditsResponse{
			PreviousCredits: change.PreviousCredits,
			NewCredits:      change.NewCredits,
			CreditsSpent:    change.CreditsSpent,
		}))
	}
}

func RegisterCreditRoutes(r gin.IRouter, rec reconcile.Reconciler, lg ledger.Ledger) {
	r.POST("/credits/purchase", ApiPurchaseCredits(rec))
	r.POST("/credits/spend", ApiSpendCredits(lg))
}
