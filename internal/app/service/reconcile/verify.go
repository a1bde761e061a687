package reconcile

import (
	"fmt"
	"strings"

	"github.com/bloomfeed/billing/internal/platform/paypalclient"

	"github.com/shopspring/decimal"
)

// OrderReferenceKey derives the deterministic idempotency key for a one-time
// provider order.
func OrderReferenceKey(orderID string) string {
	return "paypal_order:" + orderID
}

// SubscriptionReferenceKey derives the deterministic idempotency key for a
// recurring provider subscription.
func SubscriptionReferenceKey(subscriptionID string) string {
	return "paypal_sub:" + subscriptionID
}

// verifyCapturedAmount checks that the order's captured total equals the
// expected price exactly. Values are compared as decimals parsed from the
// provider's strings; floats never enter the comparison.
func verifyCapturedAmount(order *paypalclient.Order, currency, price string) error {
	expected, err := decimal.NewFromString(price)
	if err != nil {
		return fmt.Errorf("malformed configured price %q: %w", price, err)
	}

	if len(order.Captures) == 0 {
		return fmt.Errorf("%w: order %s has no captures", ErrInvalidPaymentAmount, order.ID)
	}

	total := decimal.Zero
	for _, cap := range order.Captures {
		if !strings.EqualFold(cap.CurrencyCode, currency) {
			return fmt.Errorf("%w: currency %s, want %s", ErrInvalidPaymentAmount, cap.CurrencyCode, currency)
		}
		v, err := decimal.NewFromString(cap.Value)
		if err != nil {
			return fmt.Errorf("%w: malformed captured value %q", ErrInvalidPaymentAmount, cap.Value)
		}
		total = total.Add(v)
	}

	if !total.Equal(expected) {
		return fmt.Errorf("%w: captured %s, want %s", ErrInvalidPaymentAmount, total.String(), expected.String())
	}
	return nil
}
