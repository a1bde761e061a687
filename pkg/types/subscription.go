package types

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// SubscriptionInfo is the read view handed to the surrounding platform.
type SubscriptionInfo struct {
	PackageID   string             `json:"package_id"`
	Status      SubscriptionStatus `json:"status"`
	PeriodStart time.Time          `json:"period_start"`
	PeriodEnd   time.Time          `json:"period_end"`
	AdsUsed     int                `json:"ads_used"`
	AdLimit     int                `json:"ad_limit"`
}
