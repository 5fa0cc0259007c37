package payment

import "errors"

// Validation errors.
var (
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrInvalidTier   = errors.New("unknown subscription tier")
	ErrMissingEmail  = errors.New("customer email is required")
)

// Not-found errors.
var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNotFarmer            = errors.New("farmer not found")
)

// ErrNotOrderOwner rejects checkout attempts against someone else's order.
var ErrNotOrderOwner = errors.New("order belongs to another customer")

// ErrSubscriptionExists signals an active-subscription conflict.
var ErrSubscriptionExists = errors.New("farmer already has an active subscription")

// ErrGateway wraps payment-provider failures so the transport layer can
// report an upstream error rather than a local one.
var ErrGateway = errors.New("payment gateway error")

// ErrInvalidSignature rejects webhook payloads that fail verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")
