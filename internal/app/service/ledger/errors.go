package ledger

import "errors"

var (
	// ErrInvalidAmount rejects non-positive amounts before storage is touched.
	ErrInvalidAmount = errors.New("amount must be a positive integer")
	// ErrInsufficientCredits means the conditional decrement matched no row.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrOwnerNotFound means no profile row exists for the owner.
	ErrOwnerNotFound = errors.New("owner profile not found")
)
