package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bloomfeed/billing/internal/app/service/catalog"
	"github.com/bloomfeed/billing/internal/app/service/period"
	models "github.com/bloomfeed/billing/internal/models"
	"github.com/bloomfeed/billing/pkg/config"
	types "github.com/bloomfeed/billing/pkg/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Access is the resolved, read-only view the rest of the platform consumes.
type Access struct {
	Entitlements catalog.EntitlementSet  `json:"entitlements"`
	Subscription *types.SubscriptionInfo `json:"subscription,omitempty"`
}

type Service struct {
	cfg     *config.Config
	db      *gorm.DB
	periods *period.Manager
	log     *zap.SugaredLogger
}

func NewService(cfg *config.Config, db *gorm.DB, periods *period.Manager, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, db: db, periods: periods, log: log}
}

// ResolveOwnerPlanAccess derives the owner's current entitlements.
// Complimentary owners short-circuit to the top tier without touching the
// datastore, so a database write can never mint complimentary access. When
// refresh is set the billing window is rolled forward before the usage
// counters are returned.
func (s *Service) ResolveOwnerPlanAccess(ctx context.Context, owner types.OwnerRef, refresh bool) (*Access, error) {
	if s.cfg.IsComplimentaryOwner(owner.ID) {
		set := catalog.EntitlementsFor(catalog.TopTierPlan().ID)
		set.ComplimentaryAccess = true
		return &Access{Entitlements: set}, nil
	}

	sub, err := s.findActiveSubscription(ctx, owner)
	if err != nil {
		return nil, err
	}

	if sub != nil && refresh {
		sub, err = s.periods.EnsureCurrentPeriod(ctx, sub)
		if err != nil {
			return nil, err
		}
	}

	access := &Access{Entitlements: EntitlementsOf(sub)}
	if sub != nil {
		access.Subscription = sub.Info()
	}
	return access, nil
}

// EntitlementsOf maps a subscription (possibly nil) onto its entitlement set,
// defaulting to the lowest tier for missing subscriptions and unknown
// packages alike.
func EntitlementsOf(sub *models.Subscription) catalog.EntitlementSet {
	if sub == nil {
		return catalog.EntitlementsFor("")
	}
	return catalog.EntitlementsFor(sub.PackageID)
}

func (s *Service) findActiveSubscription(ctx context.Context, owner types.OwnerRef) (*models.Subscription, error) {
	q := s.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", owner.ID, types.SubscriptionStatusActive).
		Where("end_date IS NULL OR end_date > ?", time.Now())

	// Rows written before owner_type existed carry an empty value; they all
	// belong to individual users.
	if owner.Type == types.OwnerTypeUser {
		q = q.Where("owner_type = ? OR owner_type = '' OR owner_type IS NULL", types.OwnerTypeUser)
	} else {
		q = q.Where("owner_type = ?", owner.Type)
	}

	var sub models.Subscription
	if err := q.First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query subscription: %w", err)
	}
	return &sub, nil
}
