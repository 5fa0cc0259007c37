package order

import "errors"

// Validation failures.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrMissingAddress    = errors.New("delivery address is required")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrOrderNotConfirmed = errors.New("order is not in confirmed status")
)

// Not found.
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product referenced by cart no longer exists")
)

// Authorization.
var ErrForbidden = errors.New("caller is not permitted to perform this action")

// Conflict.
var ErrAlreadyAssigned = errors.New("order already has a delivery person assigned")
