package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/bloomfeed/billing/internal/app/service/catalog"
	"github.com/bloomfeed/billing/internal/app/service/identity"
	"github.com/bloomfeed/billing/internal/app/service/ledger"
	models "github.com/bloomfeed/billing/internal/models"
	"github.com/bloomfeed/billing/internal/platform/paypalclient"
	"github.com/bloomfeed/billing/pkg/config"
	types "github.com/bloomfeed/billing/pkg/types"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type stubProvider struct {
	order  *paypalclient.Order
	sub    *paypalclient.Subscription
	err    error
	orders int
}

func (p *stubProvider) GetOrder(_ context.Context, _ string) (*paypalclient.Order, error) {
	p.orders++
	return p.order, p.err
}

func (p *stubProvider) GetSubscription(_ context.Context, _ string) (*paypalclient.Subscription, error) {
	return p.sub, p.err
}

type stubLedger struct {
	change *ledger.BalanceChange
	err    error
	grants int
}

func (l *stubLedger) Spend(_ context.Context, _ types.OwnerRef, _ int64) (*ledger.BalanceChange, error) {
	panic("not used")
}

func (l *stubLedger) Grant(_ context.Context, _ types.OwnerRef, _ int64) (*ledger.BalanceChange, error) {
	l.grants++
	return l.change, l.err
}

func (l *stubLedger) GetProfile(_ context.Context, _ types.OwnerRef) (*models.OwnerProfile, error) {
	panic("not used")
}

type stubIdentity struct {
	owner *types.OwnerRef
	err   error
}

func (i *stubIdentity) Resolve(_ context.Context, _ string, _ types.OwnerRef) (*types.OwnerRef, error) {
	return i.owner, i.err
}

func testConfig() *config.Config {
	return &config.Config{
		CreditBundles: []*types.CreditBundle{
			{Name: "Neural Spark", Price: "39.99", Currency: "USD", Credits: 100},
		},
	}
}

func newTestReconciler(provider paypalclient.Client, lg ledger.Ledger, ids identity.Resolver) *Service {
	// nil db: these tests exercise only paths that fail before any write
	return NewService(testConfig(), nil, zap.NewNop().Sugar(), provider, lg, ids)
}

var testOwner = types.OwnerRef{ID: "user-1", Type: types.OwnerTypeUser}

func TestPurchaseCredits_UnknownBundle(t *testing.T) {
	p := &stubProvider{}
	s := newTestReconciler(p, &stubLedger{}, &stubIdentity{})

	_, err := s.PurchaseCredits(context.Background(), &PurchaseCreditsRequest{
		Owner: testOwner, BundleName: "Quantum Leap", OrderID: "ORDER-OK",
	})
	require.ErrorIs(t, err, ErrUnknownBundle)
	require.Zero(t, p.orders, "unknown bundle must be rejected before the provider call")
}

func TestPurchaseCredits_ProviderFailureGrantsNothing(t *testing.T) {
	lg := &stubLedger{}
	s := newTestReconciler(&stubProvider{err: errors.New("timeout")}, lg, &stubIdentity{})

	_, err := s.PurchaseCredits(context.Background(), &PurchaseCreditsRequest{
		Owner: testOwner, BundleName: "Neural Spark", OrderID: "ORDER-OK",
	})
	require.ErrorIs(t, err, ErrProviderUnavailable)
	require.Zero(t, lg.grants)
}

func TestPurchaseCredits_OrderNotCompleted(t *testing.T) {
	lg := &stubLedger{}
	s := newTestReconciler(&stubProvider{order: &paypalclient.Order{ID: "o", Status: "CREATED"}}, lg, &stubIdentity{})

	_, err := s.PurchaseCredits(context.Background(), &PurchaseCreditsRequest{
		Owner: testOwner, BundleName: "Neural Spark", OrderID: "ORDER-OK",
	})
	require.ErrorIs(t, err, ErrOrderNotCompleted)
	require.Zero(t, lg.grants)
}

func TestPurchaseCredits_AmountMismatchRejectedBeforeAnyWrite(t *testing.T) {
	lg := &stubLedger{}
	p := &stubProvider{order: &paypalclient.Order{
		ID:       "o",
		Status:   paypalclient.OrderStatusCompleted,
		Captures: []paypalclient.CapturedAmount{{CurrencyCode: "USD", Value: "10.00"}},
	}}
	s := newTestReconciler(p, lg, &stubIdentity{})

	_, err := s.PurchaseCredits(context.Background(), &PurchaseCreditsRequest{
		Owner: testOwner, BundleName: "Neural Spark", OrderID: "ORDER-OK",
	})
	require.ErrorIs(t, err, ErrInvalidPaymentAmount)
	require.Zero(t, lg.grants)
}

func TestCreateSubscription_ForbiddenActor(t *testing.T) {
	s := newTestReconciler(&stubProvider{}, &stubLedger{}, &stubIdentity{err: identity.ErrForbidden})

	_, err := s.CreateSubscription(context.Background(), &CreateSubscriptionRequest{
		ActorID: "user-2",
		Owner:   types.OwnerRef{ID: "org-1", Type: types.OwnerTypeCompany},
	})
	require.ErrorIs(t, err, identity.ErrForbidden)
}

func TestCreateSubscription_UnknownPackage(t *testing.T) {
	s := newTestReconciler(&stubProvider{}, &stubLedger{}, &stubIdentity{owner: &testOwner})

	_, err := s.CreateSubscription(context.Background(), &CreateSubscriptionRequest{
		ActorID: "user-1", Owner: testOwner, PackageID: "unlimited",
	})
	require.ErrorIs(t, err, ErrUnknownPackage)
}

func TestCreateSubscription_ProviderSubscriptionNotActive(t *testing.T) {
	p := &stubProvider{sub: &paypalclient.Subscription{ID: "I-1", Status: "SUSPENDED"}}
	s := newTestReconciler(p, &stubLedger{}, &stubIdentity{owner: &testOwner})

	_, err := s.CreateSubscription(context.Background(), &CreateSubscriptionRequest{
		ActorID: "user-1", Owner: testOwner,
		PackageID: catalog.PackageGrowth, PayPalSubscriptionID: "I-1",
	})
	require.ErrorIs(t, err, ErrSubscriptionNotActive)
}

func TestCreateSubscription_ProviderPlanMismatch(t *testing.T) {
	p := &stubProvider{sub: &paypalclient.Subscription{
		ID: "I-1", Status: paypalclient.SubscriptionStatusActive, PlanID: "P-OTHER",
	}}
	s := newTestReconciler(p, &stubLedger{}, &stubIdentity{owner: &testOwner})

	_, err := s.CreateSubscription(context.Background(), &CreateSubscriptionRequest{
		ActorID: "user-1", Owner: testOwner,
		PackageID: catalog.PackagePro, PayPalSubscriptionID: "I-1",
	})
	require.ErrorIs(t, err, ErrInvalidPaymentAmount)
}

// The reserved audit entry must keep the state it saw; the request goroutine
// keeps mutating the live transaction while the entry is persisted.
func TestAuditSnapshotInsulatedFromLaterWrites(t *testing.T) {
	txn := &models.Transaction{
		ID:                  "t-1",
		OwnerID:             "user-1",
		Status:              types.TransactionStatusPending,
		PaymentReferenceKey: "paypal_order:ORDER-OK",
		Extra:               datatypes.NewJSONType(&models.TransactionExtra{}),
	}
	entry := auditSnapshot(nil, txn, types.TransactionChangeReasonReserved)

	txn.Status = types.TransactionStatusCompleted
	txn.CreditsApplied = true
	txn.Extra = datatypes.NewJSONType(&models.TransactionExtra{CreditsAfter: lo.ToPtr(int64(125))})

	after := entry.After.Data()
	require.Equal(t, types.TransactionStatusPending, after.Status)
	require.False(t, after.CreditsApplied)
	require.Nil(t, after.Extra.Data().CreditsAfter)
	require.Nil(t, entry.Before.Data())
	require.Equal(t, "paypal_order:ORDER-OK", entry.PaymentReferenceKey)
}

func TestCreateSubscription_MissingPaymentReference(t *testing.T) {
	s := newTestReconciler(&stubProvider{}, &stubLedger{}, &stubIdentity{owner: &testOwner})

	_, err := s.CreateSubscription(context.Background(), &CreateSubscriptionRequest{
		ActorID: "user-1", Owner: testOwner, PackageID: catalog.PackageGrowth,
	})
	require.ErrorIs(t, err, ErrMissingPaymentReference)
}
