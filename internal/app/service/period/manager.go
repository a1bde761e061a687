package period

import (
	"context"
	"fmt"
	"time"

	models "github.com/bloomfeed/billing/internal/models"
	"github.com/bloomfeed/billing/pkg/logctx"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxAdvances bounds the rollover loop (~5 years of monthly periods) so a
// corrupted period_end can never spin forever.
const maxAdvances = 60

// Manager owns the billing-period state machine. EnsureCurrentPeriod must run
// before any caller trusts ads_used/ad_limit for enforcement.
type Manager struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewManager(db *gorm.DB, log *zap.SugaredLogger) *Manager {
	return &Manager{db: db, log: log}
}

// Advance moves the billing window forward in place until it contains now,
// resetting the usage counter on every rollover. Subscriptions predating the
// period fields get them initialized from the start date first. Returns
// whether anything changed.
func Advance(sub *models.Subscription, now time.Time) bool {
	changed := false

	if sub.PeriodEnd.IsZero() {
		start := sub.StartDate
		if sub.PeriodStart.IsZero() {
			sub.PeriodStart = start
		}
		sub.PeriodEnd = sub.PeriodStart.AddDate(0, 1, 0)
		changed = true
	}

	for i := 0; !now.Before(sub.PeriodEnd) && i < maxAdvances; i++ {
		sub.PeriodStart = sub.PeriodEnd
		sub.PeriodEnd = sub.PeriodEnd.AddDate(0, 1, 0)
		sub.AdsUsed = 0
		changed = true
	}
	return changed
}

// EnsureCurrentPeriod advances the subscription's billing window and persists
// it only when something actually moved.
func (m *Manager) EnsureCurrentPeriod(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	if sub == nil {
		return nil, nil
	}

	now := time.Now()
	if !Advance(sub, now) {
		return sub, nil
	}

	err := m.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", sub.ID).
		Updates(map[string]interface{}{
			"period_start": sub.PeriodStart,
			"period_end":   sub.PeriodEnd,
			"ads_used":     sub.AdsUsed,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to persist period rollover: %w", err)
	}

	logctx.FromCtx(ctx, m.log).Infow("billing period advanced",
		"subscription_id", sub.ID,
		"owner_id", sub.OwnerID,
		"period_start", sub.PeriodStart,
		"period_end", sub.PeriodEnd)
	return sub, nil
}
