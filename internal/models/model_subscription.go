package models

import (
	"github.com/bloomfeed/billing/pkg/types"
	"time"

	"gorm.io/datatypes"
)

// Subscription stores one owner's recurring plan. The partial unique index
// keeps at most one active row per (owner_id, owner_type).
// Use Active() before trusting the usage counters; callers that enforce
// limits must run the period manager first so a stale window never leaks
// last period's ads_used.
type Subscription struct {
	ID        string          `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OwnerID   string          `gorm:"column:owner_id;type:varchar(64);not null;uniqueIndex:unique_active_owner,priority:1,where:status = 'active'" json:"owner_id"`
	OwnerType types.OwnerType `gorm:"column:owner_type;type:varchar(16);uniqueIndex:unique_active_owner,priority:2,where:status = 'active'" json:"owner_type"`

	PackageID string                   `gorm:"column:package_id;type:varchar(64);not null" json:"package_id"`
	Status    types.SubscriptionStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`

	// Provider coupling: exactly one of the two is set depending on whether
	// the plan was bought as a recurring billing subscription or a one-time
	// order.
	ProviderSubscriptionID *string `gorm:"column:provider_subscription_id;type:varchar(64)" json:"provider_subscription_id"`
	ProviderOrderID        *string `gorm:"column:provider_order_id;type:varchar(64)" json:"provider_order_id"`

	StartDate time.Time  `gorm:"column:start_date;not null" json:"start_date"`
	EndDate   *time.Time `gorm:"column:end_date" json:"end_date"`

	// Billing window. While the row is active, period_start <= now < period_end
	// must hold; the period manager advances the window when it no longer does.
	PeriodStart time.Time `gorm:"column:period_start" json:"period_start"`
	PeriodEnd   time.Time `gorm:"column:period_end" json:"period_end"`

	// AdsUsed resets to zero at every period rollover.
	AdsUsed         int `gorm:"column:ads_used;not null;default:0" json:"ads_used"`
	AdLimit         int `gorm:"column:ad_limit;not null;default:0" json:"ad_limit"`
	ImpressionLimit int `gorm:"column:impression_limit;not null;default:0" json:"impression_limit"`

	Extra     datatypes.JSON `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

func (s *Subscription) Active(now time.Time) bool {
	return s != nil &&
		s.Status == types.SubscriptionStatusActive &&
		(s.EndDate == nil || s.EndDate.After(now))
}

func (s *Subscription) Info() *types.SubscriptionInfo {
	if s == nil {
		return nil
	}
	return &types.SubscriptionInfo{
		PackageID:   s.PackageID,
		Status:      s.Status,
		PeriodStart: s.PeriodStart,
		PeriodEnd:   s.PeriodEnd,
		AdsUsed:     s.AdsUsed,
		AdLimit:     s.AdLimit,
	}
}
