package models

import (
	"github.com/bloomfeed/billing/pkg/types"
	"time"

	"gorm.io/datatypes"
)

type TransactionExtra struct {
	// BundleSnapshot freezes the bundle definition that priced this purchase.
	BundleSnapshot *types.CreditBundle `json:"bundle_snapshot,omitempty"`
	// CreditsBefore/CreditsAfter record the balance around the ledger grant
	// for audit. Only set on completed credit purchases.
	CreditsBefore *int64 `json:"credits_before,omitempty"`
	CreditsAfter  *int64 `json:"credits_after,omitempty"`
	// FailureReason is set when the transaction is marked failed so operators
	// can reconcile manually.
	FailureReason string `json:"failure_reason,omitempty"`
}

// Transaction records one value-moving event. The payment reference key is
// the idempotency boundary: its unique index is what makes concurrent
// reconciliations of the same external payment collapse to one effect.
type Transaction struct {
	ID        string          `gorm:"column:id;primary_key;type:uuid;index:idx_owner_id_id,priority:2,sort:desc" json:"id"`
	OwnerID   string          `gorm:"column:owner_id;type:varchar(64);not null;index:idx_owner_id_id,priority:1" json:"owner_id"`
	OwnerType types.OwnerType `gorm:"column:owner_type;type:varchar(16);not null" json:"owner_type"`

	Type   types.TransactionType   `gorm:"column:type;type:varchar(32);not null" json:"type"`
	Status types.TransactionStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`

	// PaymentReferenceKey is derived deterministically from the provider's
	// payment identifier, e.g. "paypal_order:8XY12345".
	PaymentReferenceKey string `gorm:"column:payment_reference_key;type:varchar(128);not null;uniqueIndex:unique_payment_reference_key" json:"payment_reference_key"`

	// Amount/Currency are the values the provider confirmed, never the
	// client's claim.
	Amount   string `gorm:"column:amount;type:varchar(32)" json:"amount"`
	Currency string `gorm:"column:currency;type:varchar(8)" json:"currency"`

	// CreditsApplied flips false->true exactly once, after the ledger grant
	// lands.
	CreditsApplied bool  `gorm:"column:credits_applied;not null;default:false" json:"credits_applied"`
	Credits        int64 `gorm:"column:credits;type:bigint;not null;default:0" json:"credits"`

	Extra     datatypes.JSONType[*TransactionExtra] `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time                             `json:"created_at"`
	UpdatedAt time.Time                             `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transaction"
}

func (t *Transaction) Finalized() bool {
	if t == nil {
		return false
	}
	return t.Status == types.TransactionStatusCompleted || t.Status == types.TransactionStatusFailed
}
