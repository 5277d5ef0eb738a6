package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rawanamrrr/alanod-api/internal/domain/discount"
	"github.com/rawanamrrr/alanod-api/internal/domain/product"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems = errors.New("items required")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// DiscountCheckError marks any failure raised while resolving the discount
// code during checkout, rejection or infrastructure alike. Unwrap keeps the
// underlying rejection inspectable with errors.Is/As, while the marker lets
// the transport layer distinguish discount failures from order failures.
type DiscountCheckError struct {
	Err error
}

func (e *DiscountCheckError) Error() string { return "check discount code: " + e.Err.Error() }

func (e *DiscountCheckError) Unwrap() error { return e.Err }

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	Identity        discount.Identity
	Items           []Item
	ShippingAddress Address
	DiscountCode    string
}

// PlaceOrderResult holds the output of a successfully placed order.
type PlaceOrderResult struct {
	Order    *Order
	Products []product.Product
}

// Resolver resolves a discount code against a cart and identity.
type Resolver interface {
	Resolve(ctx context.Context, code string, cart discount.Cart, id discount.Identity) (*discount.Pricing, error)
}

// Service encapsulates order placement business logic.
type Service struct {
	products  product.Repository
	discounts Resolver
	orders    Repository
}

// NewService creates an order Service with the required domain dependencies.
func NewService(products product.Repository, discounts Resolver, orders Repository) *Service {
	return &Service{
		products:  products,
		discounts: discounts,
		orders:    orders,
	}
}

// PlaceOrder validates items, fetches products in a single batch, resolves the
// discount code against the priced cart, persists the order, and returns the
// result. Discount failures come back wrapped in DiscountCheckError with the
// underlying rejection intact so the transport layer can render it.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	// Batch fetch all products in a single query.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	productMap := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	products := make([]product.Product, 0, len(req.Items))
	for _, item := range req.Items {
		p, ok := productMap[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		products = append(products, p)
	}

	// Build the cart snapshot for the discount engine and the order lines to
	// persist, both carrying the catalog name and price at time of purchase.
	cartItems := make([]discount.Item, len(req.Items))
	orderItems := make([]Item, len(req.Items))
	subtotal := decimal.Zero
	for i, item := range req.Items {
		price := products[i].Price
		qty := decimal.NewFromInt(int64(item.Quantity))

		cartItems[i] = discount.Item{
			ProductID: item.ProductID,
			Name:      products[i].Name,
			Price:     price,
			Quantity:  item.Quantity,
		}
		orderItems[i] = Item{
			ProductID: item.ProductID,
			Name:      products[i].Name,
			Quantity:  item.Quantity,
		}
		subtotal = subtotal.Add(price.Mul(qty))
	}

	discountAmount := decimal.Zero
	canonicalCode := ""
	if req.DiscountCode != "" {
		pricing, err := s.discounts.Resolve(ctx, req.DiscountCode, discount.Cart{
			OrderAmount: subtotal,
			Items:       cartItems,
		}, req.Identity)
		if err != nil {
			return nil, &DiscountCheckError{Err: err}
		}
		discountAmount = pricing.Amount
		canonicalCode = pricing.Code
	}

	// Total = subtotal - discount, floored at zero and rounded to 2 decimal
	// places at the settlement boundary.
	total := subtotal.Sub(discountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	total = total.Round(2)
	discountAmount = discountAmount.Round(2)

	o := &Order{
		ID:              uuid.New().String(),
		UserID:          req.Identity.UserID,
		Items:           orderItems,
		ShippingAddress: req.ShippingAddress,
		Subtotal:        subtotal.Round(2),
		Discount:        discountAmount,
		Total:           total,
		DiscountCode:    canonicalCode,
		Status:          StatusPending,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return &PlaceOrderResult{
		Order:    o,
		Products: products,
	}, nil
}
