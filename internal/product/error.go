package product

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNotOwner        = errors.New("product does not belong to this farmer")
	ErrInvalidPrice    = errors.New("price must be greater than zero")
	ErrInvalidStock    = errors.New("stock cannot be negative")
)
