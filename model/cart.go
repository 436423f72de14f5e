package model

// CartItem is one line of a user's cart. Quantity is never below 1; updates
// trying to go lower are ignored.
type CartItem struct {
	ProductID uint64  `json:"product_id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"required,gt=0"`
	Quantity  int64   `json:"quantity" validate:"required,gte=1"`
	ImageURL  string  `json:"image_url,omitempty"`
}

type CartResponse struct {
	Items []CartItem `json:"items"`
}

type UpdateCartQuantityRequest struct {
	Quantity int64 `json:"quantity" validate:"required"`
}
