package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/bloomfeed/billing/internal/app/service/identity"
	"github.com/bloomfeed/billing/internal/app/service/reconcile"
	models "github.com/bloomfeed/billing/internal/models"
	types "github.com/bloomfeed/billing/pkg/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func subscriptionsRouter(rec reconcile.Reconciler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterSubscriptionRoutes(r.Group("/api/v1"), rec)
	return r
}

func TestApiCreateSubscription_Created(t *testing.T) {
	now := time.Now()
	r := subscriptionsRouter(&stubReconciler{subRes: &models.Subscription{
		ID:          "sub-1",
		OwnerID:     "user-1",
		OwnerType:   types.OwnerTypeUser,
		PackageID:   "growth",
		Status:      types.SubscriptionStatusActive,
		PeriodStart: now,
		PeriodEnd:   now.AddDate(0, 1, 0),
	}})

	w := postJSON(t, r, "/api/v1/subscriptions", map[string]any{
		"package_id": "growth", "paypal_subscription_id": "I-ABC123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"package_id":"growth"`)
}

func TestApiCreateSubscription_NotActive(t *testing.T) {
	r := subscriptionsRouter(&stubReconciler{subErr: reconcile.ErrSubscriptionNotActive})

	w := postJSON(t, r, "/api/v1/subscriptions", map[string]any{
		"package_id": "growth", "paypal_subscription_id": "I-ABC123",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApiCreateSubscription_Forbidden(t *testing.T) {
	r := subscriptionsRouter(&stubReconciler{subErr: identity.ErrForbidden})

	w := postJSON(t, r, "/api/v1/subscriptions", map[string]any{
		"package_id": "growth", "owner_type": "company", "owner_id": "org-9",
		"paypal_subscription_id": "I-ABC123",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestApiCreateSubscription_DuplicateIsConflict(t *testing.T) {
	r := subscriptionsRouter(&stubReconciler{subErr: reconcile.ErrDuplicateTransaction})

	w := postJSON(t, r, "/api/v1/subscriptions", map[string]any{
		"package_id": "growth", "paypal_order_id": "ORDER-1",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestApiCreateSubscription_InvalidOwnerType(t *testing.T) {
	r := subscriptionsRouter(&stubReconciler{})

	w := postJSON(t, r, "/api/v1/subscriptions", map[string]any{
		"package_id": "growth", "owner_type": "team", "paypal_order_id": "ORDER-1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
