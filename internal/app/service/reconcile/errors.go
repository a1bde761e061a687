package reconcile

import "errors"

var (
	// ErrUnknownBundle rejects purchase requests naming a bundle that is not
	// configured server-side.
	ErrUnknownBundle = errors.New("unknown credit bundle")
	// ErrUnknownPackage rejects subscription requests for a package id the
	// catalog does not carry.
	ErrUnknownPackage = errors.New("unknown package")
	// ErrInvalidPaymentAmount means the provider-confirmed amount does not
	// exactly match the server-side price. Nothing was written.
	ErrInvalidPaymentAmount = errors.New("payment amount does not match")
	// ErrOrderNotCompleted means the provider has not captured the order yet.
	ErrOrderNotCompleted = errors.New("order is not completed")
	// ErrSubscriptionNotActive means the provider subscription is not in a
	// usable state.
	ErrSubscriptionNotActive = errors.New("subscription is not active")
	// ErrDuplicateTransaction is the idempotency hit: this payment reference
	// was already claimed by an earlier request.
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	// ErrSubscriptionExists means the owner already holds an active
	// subscription.
	ErrSubscriptionExists = errors.New("owner already has an active subscription")
	// ErrMissingPaymentReference means the request carried neither an order
	// id nor a subscription id.
	ErrMissingPaymentReference = errors.New("missing payment reference")
	// ErrProviderUnavailable wraps any provider round-trip failure. Local
	// state is never written when verification did not resolve.
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)
