package handlers

import (
	"net/http"

	"github.com/bloomfeed/billing/internal/app/service/reconcile"
	"github.com/bloomfeed/billing/internal/app/service/statistics"
	"github.com/bloomfeed/billing/pkg/response"

	"github.com/gin-gonic/gin"
)

// @Summary      Scan Transactions (Admin)
// @Description  Paginated, filterable transaction listing used by operators to reconcile failed payments.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body reconcile.ScanTransactionsRequest true "Scan request"
// @Success      200  {object}  handlers.RespScanTransactions
// @Router       /api/v1/admin/transactions/scan [post]
func ApiScanTransactions(svc *reconcile.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reconcile.ScanTransactionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := svc.ScanTransactions(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Billing Statistics (Admin)
// @Description  Revenue, transaction and subscription growth series for the operator dashboard.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.BillingStatisticRequest true "Statistics request"
// @Success      200  {object}  handlers.RespBillingStatistics
// @Router       /api/v1/admin/statistics [post]
func ApiBillingStatistics(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.BillingStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if len(req.DataItems) == 0 {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "data_items is required"))
			return
		}

		res, err := svc.GetBillingStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, svc *reconcile.Service, stats *statistics.Service) {
	r.POST("/transactions/scan", ApiScanTransactions(svc))
	r.POST("/statistics", ApiBillingStatistics(stats))
}
