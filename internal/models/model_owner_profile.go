package models

import (
	"github.com/bloomfeed/billing/pkg/types"
	"time"
)

// OwnerProfile holds the spendable credit balance for an owner. Exactly one
// row may exist per (owner_id, owner_type); the balance is mutated only by
// the credit ledger's conditional updates, never rewritten wholesale.
type OwnerProfile struct {
	ID        string          `gorm:"column:id;primary_key;type:uuid" json:"id"`
	OwnerID   string          `gorm:"column:owner_id;type:varchar(64);not null;uniqueIndex:unique_owner,priority:1" json:"owner_id"`
	OwnerType types.OwnerType `gorm:"column:owner_type;type:varchar(16);not null;uniqueIndex:unique_owner,priority:2" json:"owner_type"`
	// Credits never goes below zero; the spend predicate enforces it in the
	// same statement that decrements it.
	Credits int64 `gorm:"column:credits;type:bigint;not null;default:0" json:"credits"`
	// CreditsSpent is cumulative and only ever grows.
	CreditsSpent int64     `gorm:"column:credits_spent;type:bigint;not null;default:0" json:"credits_spent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (OwnerProfile) TableName() string {
	return "owner_profile"
}
