package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bloomfeed/billing/internal/app/service/catalog"
	"github.com/bloomfeed/billing/internal/app/service/identity"
	"github.com/bloomfeed/billing/internal/app/service/ledger"
	models "github.com/bloomfeed/billing/internal/models"
	"github.com/bloomfeed/billing/internal/platform/paypalclient"
	"github.com/bloomfeed/billing/pkg/config"
	"github.com/bloomfeed/billing/pkg/logctx"
	"github.com/bloomfeed/billing/pkg/tool"
	types "github.com/bloomfeed/billing/pkg/types"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PurchaseCreditsRequest struct {
	Owner      types.OwnerRef
	BundleName string
	OrderID    string
}

type PurchaseCreditsResult struct {
	CreditsAdded    int64 `json:"credits_added"`
	PreviousCredits int64 `json:"previous_credits"`
	NewCredits      int64 `json:"new_credits"`
}

type CreateSubscriptionRequest struct {
	ActorID string
	Owner   types.OwnerRef

	PackageID            string
	PayPalSubscriptionID string
	PayPalOrderID        string
}

// Reconciler turns client-asserted payments into exactly one durable effect
// each, verified against the provider's own record.
type Reconciler interface {
	PurchaseCredits(ctx context.Context, req *PurchaseCreditsRequest) (*PurchaseCreditsResult, error)
	CreateSubscription(ctx context.Context, req *CreateSubscriptionRequest) (*models.Subscription, error)
}

type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	log      *zap.SugaredLogger
	provider paypalclient.Client
	ledger   ledger.Ledger
	ids      identity.Resolver
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, provider paypalclient.Client, lg ledger.Ledger, ids identity.Resolver) *Service {
	return &Service{cfg: cfg, db: db, log: log, provider: provider, ledger: lg, ids: ids}
}

// PurchaseCredits verifies the order with the provider, reserves the payment
// reference, then applies the ledger grant. All verification happens before
// any write; the unique reference key makes the reservation the idempotency
// boundary.
func (s *Service) PurchaseCredits(ctx context.Context, req *PurchaseCreditsRequest) (*PurchaseCreditsResult, error) {
	bundle := s.cfg.GetCreditBundle(req.BundleName)
	if bundle == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBundle, req.BundleName)
	}

	order, err := s.provider.GetOrder(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if order.Status != paypalclient.OrderStatusCompleted {
		return nil, fmt.Errorf("%w: status %s", ErrOrderNotCompleted, order.Status)
	}
	if err := verifyCapturedAmount(order, bundle.Currency, bundle.Price); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		ID:                  tool.GenerateUUIDV7(),
		OwnerID:             req.Owner.ID,
		OwnerType:           req.Owner.Type,
		Type:                types.TransactionTypeCreditPurchase,
		Status:              types.TransactionStatusPending,
		PaymentReferenceKey: OrderReferenceKey(req.OrderID),
		Amount:              bundle.Price,
		Currency:            bundle.Currency,
		Credits:             bundle.Credits,
		Extra:               datatypes.NewJSONType(&models.TransactionExtra{BundleSnapshot: bundle}),
	}
	if err := s.reserveTransaction(ctx, txn); err != nil {
		return nil, err
	}

	change, err := s.ledger.Grant(ctx, req.Owner, bundle.Credits)
	if err != nil {
		// The reservation stays behind as failed so an operator can replay
		// it; retrying here could double-grant.
		s.finalizeTransaction(ctx, txn, types.TransactionStatusFailed, func(extra *models.TransactionExtra) {
			extra.FailureReason = err.Error()
		})
		return nil, fmt.Errorf("failed to apply credit grant: %w", err)
	}

	s.finalizeTransaction(ctx, txn, types.TransactionStatusCompleted, func(extra *models.TransactionExtra) {
		extra.CreditsBefore = lo.ToPtr(change.PreviousCredits)
		extra.CreditsAfter = lo.ToPtr(change.NewCredits)
	})

	return &PurchaseCreditsResult{
		CreditsAdded:    bundle.Credits,
		PreviousCredits: change.PreviousCredits,
		NewCredits:      change.NewCredits,
	}, nil
}

// CreateSubscription verifies the provider subscription (or one-time order),
// then inserts the subscription row and its transaction. If the transaction
// write collides after the subscription insert, the subscription is deleted
// again in the same request: both land or neither does.
func (s *Service) CreateSubscription(ctx context.Context, req *CreateSubscriptionRequest) (*models.Subscription, error) {
	owner, err := s.ids.Resolve(ctx, req.ActorID, req.Owner)
	if err != nil {
		return nil, err
	}

	plan := catalog.PlanByID(req.PackageID)
	if plan == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPackage, req.PackageID)
	}

	txn := &models.Transaction{
		ID:        tool.GenerateUUIDV7(),
		OwnerID:   owner.ID,
		OwnerType: owner.Type,
		Type:      types.TransactionTypeSubscriptionPurchase,
		Amount:    plan.Price,
		Currency:  plan.Currency,
	}
	sub := &models.Subscription{
		ID:              tool.GenerateUUIDV7(),
		OwnerID:         owner.ID,
		OwnerType:       owner.Type,
		PackageID:       plan.ID,
		Status:          types.SubscriptionStatusActive,
		AdLimit:         plan.AdLimit,
		ImpressionLimit: plan.ImpressionLimit,
	}

	switch {
	case req.PayPalSubscriptionID != "":
		provSub, err := s.provider.GetSubscription(ctx, req.PayPalSubscriptionID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		if provSub.Status != paypalclient.SubscriptionStatusActive {
			return nil, fmt.Errorf("%w: status %s", ErrSubscriptionNotActive, provSub.Status)
		}
		if plan.ProviderPlanID != "" && provSub.PlanID != plan.ProviderPlanID {
			return nil, fmt.Errorf("%w: provider plan %s does not match package %s", ErrInvalidPaymentAmount, provSub.PlanID, plan.ID)
		}
		txn.PaymentReferenceKey = SubscriptionReferenceKey(req.PayPalSubscriptionID)
		sub.ProviderSubscriptionID = lo.ToPtr(req.PayPalSubscriptionID)

	case req.PayPalOrderID != "":
		order, err := s.provider.GetOrder(ctx, req.PayPalOrderID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		if order.Status != paypalclient.OrderStatusCompleted {
			return nil, fmt.Errorf("%w: order status %s", ErrSubscriptionNotActive, order.Status)
		}
		if err := verifyCapturedAmount(order, plan.Currency, plan.Price); err != nil {
			return nil, err
		}
		txn.PaymentReferenceKey = OrderReferenceKey(req.PayPalOrderID)
		sub.ProviderOrderID = lo.ToPtr(req.PayPalOrderID)
		// One-time purchases do not renew; the plan window is the lifetime.
		sub.EndDate = lo.ToPtr(time.Now().AddDate(0, 0, plan.DurationDays))

	default:
		return nil, ErrMissingPaymentReference
	}

	now := time.Now()
	sub.StartDate = now
	sub.PeriodStart = now
	sub.PeriodEnd = now.AddDate(0, 0, plan.DurationDays)

	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSubscriptionExists
		}
		return nil, fmt.Errorf("failed to insert subscription: %w", err)
	}

	txn.Status = types.TransactionStatusCompleted
	if err := s.reserveTransaction(ctx, txn); err != nil {
		// Compensating action: the subscription must not outlive a failed
		// transaction write.
		if delErr := s.db.WithContext(ctx).Delete(&models.Subscription{}, "id = ?", sub.ID).Error; delErr != nil {
			logctx.FromCtx(ctx, s.log).Errorw("failed to undo subscription after transaction collision",
				"subscription_id", sub.ID, "err", delErr)
		}
		return nil, err
	}
	s.logTransaction(ctx, nil, txn, types.TransactionChangeReasonCompleted)

	logctx.FromCtx(ctx, s.log).Infow("subscription created",
		"owner_id", owner.ID, "owner_type", owner.Type,
		"package_id", plan.ID, "reference", txn.PaymentReferenceKey)
	return sub, nil
}

// reserveTransaction claims the payment reference key. A unique-key collision
// means another request already owns this payment.
func (s *Service) reserveTransaction(ctx context.Context, txn *models.Transaction) error {
	if err := s.db.WithContext(ctx).Create(txn).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrDuplicateTransaction, txn.PaymentReferenceKey)
		}
		return fmt.Errorf("failed to reserve transaction: %w", err)
	}
	s.logTransaction(ctx, nil, txn, types.TransactionChangeReasonReserved)
	return nil
}

// finalizeTransaction moves a reserved transaction to its terminal state.
// Completion also flips credits_applied; that bit never flips back.
func (s *Service) finalizeTransaction(ctx context.Context, txn *models.Transaction, status types.TransactionStatus, mutate func(*models.TransactionExtra)) {
	before := *txn

	// Clone before mutating: earlier audit snapshots hold a pointer to the
	// current extra and must keep the state they saw.
	extra := &models.TransactionExtra{}
	if prev := txn.Extra.Data(); prev != nil {
		*extra = *prev
	}
	if mutate != nil {
		mutate(extra)
	}
	txn.Extra = datatypes.NewJSONType(extra)
	txn.Status = status
	txn.CreditsApplied = status == types.TransactionStatusCompleted

	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ?", txn.ID).
		Updates(map[string]interface{}{
			"status":          txn.Status,
			"credits_applied": txn.CreditsApplied,
			"extra":           txn.Extra,
		}).Error
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to finalize transaction",
			"transaction_id", txn.ID, "status", status, "err", err)
		return
	}

	reason := types.TransactionChangeReasonCompleted
	if status == types.TransactionStatusFailed {
		reason = types.TransactionChangeReasonFailed
	}
	s.logTransaction(ctx, &before, txn, reason)
}

// auditSnapshot freezes the transaction state into a log entry. The copies
// matter: the caller keeps mutating the live transaction while the entry is
// persisted on another goroutine.
func auditSnapshot(before, after *models.Transaction, reason types.TransactionChangeReason) *models.TransactionLog {
	var beforeCopy *models.Transaction
	if before != nil {
		b := *before
		beforeCopy = &b
	}
	afterCopy := *after
	return &models.TransactionLog{
		ID:                  tool.GenerateUUIDV7(),
		OwnerID:             afterCopy.OwnerID,
		PaymentReferenceKey: afterCopy.PaymentReferenceKey,
		Reason:              reason,
		Before:              datatypes.NewJSONType(beforeCopy),
		After:               datatypes.NewJSONType(&afterCopy),
		Extra:               datatypes.JSONMap{},
	}
}

// logTransaction writes the audit trail asynchronously; failures are logged,
// never surfaced. The snapshot is taken before the goroutine starts.
func (s *Service) logTransaction(ctx context.Context, before, after *models.Transaction, reason types.TransactionChangeReason) {
	entry := auditSnapshot(before, after, reason)
	go func() {
		if err := s.db.Create(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save transaction log: %v", err)
		}
	}()
}
