package model

type CheckoutItem struct {
	ProductID uint64  `json:"product_id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"required,gt=0"`
	Quantity  int64   `json:"quantity" validate:"required,gte=1"`
	ImageURL  string  `json:"image_url"`
}

type ShippingInfo struct {
	Name    string          `json:"name" validate:"required"`
	Phone   string          `json:"phone"`
	Address ShippingAddress `json:"address" validate:"required"`
}

type CheckoutRequest struct {
	Items        []CheckoutItem `json:"items" validate:"required,min=1,dive,required"`
	ShippingInfo ShippingInfo   `json:"shippingInfo" validate:"required"`
}

type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
}
