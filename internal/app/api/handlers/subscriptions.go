package handlers

import (
	"net/http"

	"github.com/bloomfeed/billing/internal/app/api/middleware"
	"github.com/bloomfeed/billing/internal/app/service/reconcile"
	"github.com/bloomfeed/billing/pkg/response"
	types "github.com/bloomfeed/billing/pkg/types"

	"github.com/gin-gonic/gin"
)

type createSubscriptionRequest struct {
	PackageID            string          `json:"package_id"`
	OwnerType            types.OwnerType `json:"owner_type"`
	OwnerID              string          `json:"owner_id"`
	PayPalSubscriptionID string          `json:"paypal_subscription_id"`
	PayPalOrderID        string          `json:"paypal_order_id"`
}

// @Summary      Create Subscription
// @Description  Verifies a provider subscription or order and activates the plan for the owner.
// @Tags         Subscriptions
// @Accept       json
// @Produce      json
// @Param        request body handlers.CreateSubscriptionBody true "Subscription request"
// @Success      201  {object}  handlers.RespSubscription
// @Failure      400  {object}  handlers.RespError
// @Failure      403  {object}  handlers.RespError
// @Failure      409  {object}  handlers.RespError
// @Router       /api/v1/subscriptions [post]
func ApiCreateSubscription(rec reconcile.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createSubscriptionRequest
		if err := bindStrict(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.PackageID == "" {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "package_id is required"))
			return
		}
		if req.OwnerType != "" && !req.OwnerType.Valid() {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid owner_type"))
			return
		}

		sub, err := rec.CreateSubscription(c.Request.Context(), &reconcile.CreateSubscriptionRequest{
			ActorID:              middleware.ActorID(c),
			Owner:                types.OwnerRef{ID: req.OwnerID, Type: req.OwnerType},
			PackageID:            req.PackageID,
			PayPalSubscriptionID: req.PayPalSubscriptionID,
			PayPalOrderID:        req.PayPalOrderID,
		})
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, response.OKT(sub))
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, rec reconcile.Reconciler) {
	r.POST("/subscriptions", ApiCreateSubscription(rec))
}
