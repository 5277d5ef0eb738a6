package order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawanamrrr/alanod-api/internal/domain/discount"
	"github.com/rawanamrrr/alanod-api/internal/domain/product"
)

type mockProductRepo struct {
	byID map[string]product.Product
	err  error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockResolver struct {
	pricing  *discount.Pricing
	err      error
	lastCode string
	lastCart discount.Cart
	lastID   discount.Identity
}

func (m *mockResolver) Resolve(_ context.Context, code string, cart discount.Cart, id discount.Identity) (*discount.Pricing, error) {
	m.lastCode = code
	m.lastCart = cart
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return m.pricing, nil
}

type mockOrderRepo struct {
	lastOrder *Order
	err       error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.lastOrder = o
	return m.err
}

func testCatalog() *mockProductRepo {
	return &mockProductRepo{byID: map[string]product.Product{
		"oud-noir":   {ID: "oud-noir", Name: "Oud Noir", Price: decimal.NewFromInt(120)},
		"rose-veil":  {ID: "rose-veil", Name: "Rose Veil", Price: decimal.NewFromInt(80)},
		"amber-silk": {ID: "amber-silk", Name: "Amber Silk", Price: decimal.NewFromInt(45)},
	}}
}

func TestService_PlaceOrder(t *testing.T) {
	t.Run("computes subtotal and persists without a code", func(t *testing.T) {
		orders := &mockOrderRepo{}
		resolver := &mockResolver{}
		svc := NewService(testCatalog(), resolver, orders)

		result, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
			Identity: discount.Guest("amal@example.com"),
			Items: []Item{
				{ProductID: "oud-noir", Quantity: 1},
				{ProductID: "rose-veil", Quantity: 2},
			},
			ShippingAddress: Address{FullName: "Amal", Email: "amal@example.com"},
		})
		require.NoError(t, err)
		require.NotNil(t, orders.lastOrder)

		assert.True(t, decimal.NewFromInt(280).Equal(result.Order.Total))
		assert.True(t, result.Order.Discount.IsZero())
		assert.Empty(t, result.Order.DiscountCode)
		assert.Empty(t, resolver.lastCode, "resolver must not run without a code")
		assert.Equal(t, StatusPending, result.Order.Status)
		assert.Len(t, result.Products, 2)
	})

	t.Run("applies resolved discount and stores canonical code", func(t *testing.T) {
		orders := &mockOrderRepo{}
		resolver := &mockResolver{pricing: &discount.Pricing{
			Code:   "SAVE10",
			Kind:   discount.KindPercentage,
			Value:  decimal.NewFromInt(10),
			Amount: decimal.NewFromInt(12),
		}}
		svc := NewService(testCatalog(), resolver, orders)

		result, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
			Identity:     discount.User("u-1"),
			Items:        []Item{{ProductID: "oud-noir", Quantity: 1}},
			DiscountCode: " save10 ",
		})
		require.NoError(t, err)

		assert.Equal(t, " save10 ", resolver.lastCode, "normalization belongs to the resolver")
		assert.True(t, decimal.NewFromInt(120).Equal(resolver.lastCart.OrderAmount))
		assert.Equal(t, "u-1", resolver.lastID.UserID)
		assert.True(t, decimal.NewFromInt(108).Equal(result.Order.Total))
		assert.Equal(t, "SAVE10", result.Order.DiscountCode)
	})

	t.Run("discount rejection propagates unchanged", func(t *testing.T) {
		resolver := &mockResolver{err: discount.ErrExpired}
		svc := NewService(testCatalog(), resolver, &mockOrderRepo{})

		_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
			Identity:     discount.Guest(""),
			Items:        []Item{{ProductID: "oud-noir", Quantity: 1}},
			DiscountCode: "OLD",
		})
		require.ErrorIs(t, err, discount.ErrExpired)
		var dcErr *DiscountCheckError
		require.ErrorAs(t, err, &dcErr, "discount failures carry the checkout marker")
	})

	t.Run("rejects empty items", func(t *testing.T) {
		svc := NewService(testCatalog(), &mockResolver{}, &mockOrderRepo{})

		_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{})
		require.ErrorIs(t, err, ErrEmptyItems)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		svc := NewService(testCatalog(), &mockResolver{}, &mockOrderRepo{})

		_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
			Items: []Item{{ProductID: "oud-noir", Quantity: 0}},
		})
		var iqErr *InvalidQuantityError
		require.ErrorAs(t, err, &iqErr)
		assert.Equal(t, "oud-noir", iqErr.ProductID)
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		svc := NewService(testCatalog(), &mockResolver{}, &mockOrderRepo{})

		_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
			Items: []Item{{ProductID: "ghost", Quantity: 1}},
		})
		var pnfErr *ProductNotFoundError
		require.ErrorAs(t, err, &pnfErr)
		assert.Equal(t, "ghost", pnfErr.ProductID)
	})

	t.Run("total never goes negative", func(t *testing.T) {
		orders := &mockOrderRepo{}
		resolver := &mockResolver{pricing: &discount.Pricing{
			Code:   "BIG",
			Kind:   discount.KindFixed,
			Value:  decimal.NewFromInt(500),
			Amount: decimal.NewFromInt(500),
		}}
		svc := NewService(testCatalog(), resolver, orders)

		result, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
			Items:        []Item{{ProductID: "amber-silk", Quantity: 1}},
			DiscountCode: "BIG",
		})
		require.NoError(t, err)
		assert.True(t, result.Order.Total.IsZero())
	})
}
