package paypalclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bloomfeed/billing/pkg/config"

	"github.com/plutov/paypal/v4"
)

// Provider-side statuses this system acts on. Anything else is treated as
// not-yet-usable.
const (
	OrderStatusCompleted     = "COMPLETED"
	SubscriptionStatusActive = "ACTIVE"
)

// CapturedAmount is the authoritative amount the provider captured for an
// order. Currency and Value stay as the provider's strings; no float ever
// touches them.
type CapturedAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type Order struct {
	ID       string           `json:"id"`
	Status   string           `json:"status"`
	Captures []CapturedAmount `json:"captures"`
}

type Subscription struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	PlanID string `json:"plan_id"`
}

// Client is the provider contract the reconciler depends on. Tests stub it;
// production wires the PayPal REST implementation below.
type Client interface {
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
}

// tokenCache holds the short-lived OAuth token state. Stale entries are
// harmless; the worst case is one extra token exchange round trip.
type tokenCache struct {
	mu        sync.Mutex
	expiresAt time.Time
}

type paypalClient struct {
	sdk   *paypal.Client
	token tokenCache
}

func New(cfg *config.Config) (Client, error) {
	base := paypal.APIBaseSandBox
	if cfg.PayPal.IsProd {
		base = paypal.APIBaseLive
	}
	sdk, err := paypal.NewClient(cfg.PayPal.ClientID, cfg.PayPal.Secret, base)
	if err != nil {
		return nil, fmt.Errorf("failed to init paypal client: %w", err)
	}
	return &paypalClient{sdk: sdk}, nil
}

// ensureToken exchanges credentials for an access token unless the cached one
// is still comfortably inside its lifetime.
func (c *paypalClient) ensureToken(ctx context.Context) error {
	c.token.mu.Lock()
	defer c.token.mu.Unlock()

	if time.Now().Before(c.token.expiresAt.Add(-time.Minute)) {
		return nil
	}
	tok, err := c.sdk.GetAccessToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to get paypal access token: %w", err)
	}
	c.token.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return nil
}

func (c *paypalClient) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}
	o, err := c.sdk.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get paypal order: %w", err)
	}

	res := &Order{ID: o.ID, Status: string(o.Status)}
	for _, pu := range o.PurchaseUnits {
		if pu.Payments != nil {
			for _, cap := range pu.Payments.Captures {
				if cap.Amount != nil {
					res.Captures = append(res.Captures, CapturedAmount{
						CurrencyCode: cap.Amount.Currency,
						Value:        cap.Amount.Value,
					})
				}
			}
		}
		// Orders without separate capture objects still carry the purchase
		// unit amount.
		if len(res.Captures) == 0 && pu.Amount != nil {
			res.Captures = append(res.Captures, CapturedAmount{
				CurrencyCode: pu.Amount.Currency,
				Value:        pu.Amount.Value,
			})
		}
	}
	return res, nil
}

func (c *paypalClient) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}
	sub, err := c.sdk.GetSubscriptionDetails(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get paypal subscription: %w", err)
	}
	return &Subscription{
		ID:     sub.ID,
		Status: string(sub.SubscriptionStatus),
		PlanID: sub.PlanID,
	}, nil
}
