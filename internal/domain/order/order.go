package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a completed customer order with pricing and discount
// details. Orders carrying a discount code are what the engine's usage-limit
// count reads: writing an order is the implicit usage increment.
type Order struct {
	ID              string
	UserID          string // empty for guest checkouts
	Items           []Item
	ShippingAddress Address
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	DiscountCode    string
	Status          string
	CreatedAt       time.Time
}

// Item represents a single line item in an order.
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// Address is the shipping destination captured at checkout. Email identifies
// guest customers for discount usage counting.
type Address struct {
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Street   string `json:"street"`
	City     string `json:"city"`
	Country  string `json:"country"`
}

// StatusPending is the initial status of a freshly placed order.
const StatusPending = "pending"

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
}
