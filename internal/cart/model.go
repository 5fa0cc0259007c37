package cart

import "farmdirect-be/internal/product"

type CartItem struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// EnrichedItem is a cart line joined with its product for display.
// Product is nil when the referenced listing has been deleted.
type EnrichedItem struct {
	CartItem
	Product *product.Product `json:"product"`
}
