package models

import (
	"github.com/bloomfeed/billing/pkg/types"
	"time"

	"gorm.io/datatypes"
)

// TransactionLog is an append-only trail of transaction state transitions,
// kept for incident investigation and manual reconciliation of failed
// payments.
type TransactionLog struct {
	ID                  string                        `gorm:"column:id;primary_key;type:uuid;index:idx_owner_id_id,priority:2,sort:desc"`
	OwnerID             string                        `gorm:"column:owner_id;type:varchar(64);index:idx_owner_id_id,priority:1;not null"`
	PaymentReferenceKey string                        `gorm:"column:payment_reference_key;type:varchar(128);not null;index"`
	Reason              types.TransactionChangeReason `gorm:"column:reason;type:varchar(32);not null"`
	// Before/After snapshot the transaction around the transition.
	Before    datatypes.JSONType[*Transaction] `gorm:"column:before;type:jsonb;default:'null'"`
	After     datatypes.JSONType[*Transaction] `gorm:"column:after;type:jsonb;default:'null'"`
	Extra     datatypes.JSONMap                `gorm:"column:extra;type:jsonb;default:'{}'"`
	CreatedAt time.Time                        `json:"created_at"`
}

func (TransactionLog) TableName() string {
	return "transaction_log"
}
