package delivery

import "errors"

var (
	ErrDeliveryNotFound = errors.New("delivery not found")
	ErrNotAssignee      = errors.New("delivery belongs to another delivery person")
)
