package handlers

import (
	"errors"
	"net/http"

	"github.com/bloomfeed/billing/internal/app/service/identity"
	"github.com/bloomfeed/billing/internal/app/service/ledger"
	"github.com/bloomfeed/billing/internal/app/service/reconcile"
	"github.com/bloomfeed/billing/pkg/response"

	"github.com/gin-gonic/gin"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Business-rule failures keep their specific codes; provider and internal
// failures collapse to generic messages.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reconcile.ErrUnknownBundle),
		errors.Is(err, reconcile.ErrUnknownPackage),
		errors.Is(err, reconcile.ErrMissingPaymentReference):
		c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, nil))

	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeInvalidAmount, nil))

	case errors.Is(err, reconcile.ErrInvalidPaymentAmount):
		c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeInvalidPayment, nil))

	case errors.Is(err, reconcile.ErrOrderNotCompleted),
		errors.Is(err, reconcile.ErrSubscriptionNotActive):
		c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeSubNotActive, nil))

	case errors.Is(err, identity.ErrForbidden):
		c.JSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeForbidden, nil))

	case errors.Is(err, ledger.ErrInsufficientCredits):
		c.JSON(http.StatusPaymentRequired, response.ErrorT[any](response.APIResponseCodeInsufficientCredits, nil))

	case errors.Is(err, ledger.ErrOwnerNotFound):
		c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, nil))

	case errors.Is(err, reconcile.ErrDuplicateTransaction),
		errors.Is(err, reconcile.ErrSubscriptionExists):
		c.JSON(http.StatusConflict, response.ErrorT[any](response.APIResponseCodeDuplicate, nil))

	case errors.Is(err, reconcile.ErrProviderUnavailable):
		c.JSON(http.StatusBadGateway, response.ErrorT[any](response.APIResponseCodeUpstream, nil))

	default:
		c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
	}
}
