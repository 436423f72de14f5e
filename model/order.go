package model

import (
	"time"

	"github.com/roastline/storefront/constant"
)

// OrderEntity is the durable record of a completed purchase. One row per
// Stripe checkout session, enforced by a unique constraint on
// stripe_session_id.
type OrderEntity struct {
	ID                    string               `db:"id" json:"id"`
	UserID                string               `db:"user_id" json:"user_id"`
	Status                constant.OrderStatus `db:"status" json:"status"`
	TotalAmount           float64              `db:"total_amount" json:"total_amount"`
	ShippingFee           float64              `db:"shipping_fee" json:"shipping_fee"`
	StripeSessionID       string               `db:"stripe_session_id" json:"-"`
	StripePaymentIntentID string               `db:"stripe_payment_intent_id" json:"-"`
	ShippingAddressLine1  string               `db:"shipping_address_line1" json:"shipping_address_line1"`
	ShippingAddressLine2  *string              `db:"shipping_address_line2" json:"shipping_address_line2,omitempty"`
	ShippingCity          string               `db:"shipping_city" json:"shipping_city"`
	ShippingPostalCode    string               `db:"shipping_postal_code" json:"shipping_postal_code"`
	ShippingCountry       string               `db:"shipping_country" json:"shipping_country"`
	CustomerEmail         string               `db:"customer_email" json:"customer_email"`
	CustomerName          string               `db:"customer_name" json:"customer_name"`
	CustomerPhone         *string              `db:"customer_phone" json:"customer_phone,omitempty"`
	CreatedAt             time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time            `db:"updated_at" json:"updated_at"`

	Items []OrderItemEntity `db:"-" json:"items,omitempty"`
}

// OrderItemEntity belongs to exactly one order. ProductID is nullable: a paid
// line item that cannot be matched to a catalog product is still recorded.
type OrderItemEntity struct {
	ID        uint64  `db:"id" json:"id"`
	OrderID   string  `db:"order_id" json:"order_id"`
	ProductID *uint64 `db:"product_id" json:"product_id,omitempty"`
	Name      string  `db:"name" json:"name"`
	Quantity  int64   `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
	TotalPrice float64 `db:"total_price" json:"total_price"`
}

type UpdateOrderStatusRequest struct {
	Status constant.OrderStatus `json:"status" validate:"required"`
}

type UpdateOrderStatusResponse struct {
	Message string               `json:"message"`
	Status  constant.OrderStatus `json:"status"`
}

type OrderListResponse struct {
	Items      []OrderEntity `json:"items"`
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
}

// ShippingAddress is the serialized form embedded in checkout session
// metadata. It is the only shipping data the webhook handler can rely on.
type ShippingAddress struct {
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}
