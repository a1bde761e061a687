package types

type TransactionType string

const (
	TransactionTypeCreditPurchase       TransactionType = "credit_purchase"
	TransactionTypeSubscriptionPurchase TransactionType = "subscription_purchase"
)

// TransactionStatus follows pending -> processing -> completed | failed.
// A completed transaction is immutable.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
)

type TransactionChangeReason string

const (
	TransactionChangeReasonReserved  TransactionChangeReason = "reserved"
	TransactionChangeReasonCompleted TransactionChangeReason = "completed"
	TransactionChangeReasonFailed    TransactionChangeReason = "failed"
)
