package handlers

import (
	"github.com/bloomfeed/billing/internal/app/service/catalog"
	"github.com/bloomfeed/billing/internal/app/service/reconcile"
	"github.com/bloomfeed/billing/internal/app/service/statistics"
	"github.com/bloomfeed/billing/pkg/response"
	types "github.com/bloomfeed/billing/pkg/types"
)

// Request bodies, restated for documentation purposes.
type PurchaseCreditsBody struct {
	BundleName string `json:"bundle_name"`
	OrderID    string `json:"order_id"`
}

type SpendCreditsBody struct {
	Credits int64  `json:"credits"`
	Reason  string `json:"reason"`
}

type CreateSubscriptionBody struct {
	PackageID            string          `json:"package_id"`
	OwnerType            types.OwnerType `json:"owner_type"`
	OwnerID              string          `json:"owner_id"`
	PayPalSubscriptionID string          `json:"paypal_subscription_id"`
	PayPalOrderID        string          `json:"paypal_order_id"`
}

// RespError is the generic error envelope.
type RespError struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespPurchaseCredits wraps the purchase result in the standard envelope.
type RespPurchaseCredits struct {
	Code    response.APIResponseCode        `json:"code"`
	Message string                          `json:"message"`
	Data    reconcile.PurchaseCreditsResult `json:"data"`
}

// RespSpendCredits wraps the spend result in the standard envelope.
type RespSpendCredits struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    spendCreditsResponse     `json:"data"`
}

// RespSubscription wraps the created subscription view in the standard envelope.
type RespSubscription struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    types.SubscriptionInfo   `json:"data"`
}

// RespOwnerAccess wraps the resolved entitlement set in the standard envelope.
type RespOwnerAccess struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    struct {
		Entitlements catalog.EntitlementSet  `json:"entitlements"`
		Subscription *types.SubscriptionInfo `json:"subscription,omitempty"`
		Credits      int64                   `json:"credits"`
	} `json:"data"`
}

// RespBillingStatistics wraps the dashboard series in the standard envelope.
type RespBillingStatistics struct {
	Code    response.APIResponseCode            `json:"code"`
	Message string                              `json:"message"`
	Data    statistics.BillingStatisticResponse `json:"data"`
}

// RespScanTransactions wraps the admin scan result in the standard envelope.
type RespScanTransactions struct {
	Code    response.APIResponseCode           `json:"code"`
	Message string                             `json:"message"`
	Data    reconcile.ScanTransactionsResponse `json:"data"`
}
