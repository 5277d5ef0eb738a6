// Package handler exposes the storefront API over HTTP: discount validation,
// catalog reads, and checkout. Routing is chi; responses are encoded with jx.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rawanamrrr/alanod-api/internal/domain/auth"
	"github.com/rawanamrrr/alanod-api/internal/domain/discount"
	"github.com/rawanamrrr/alanod-api/internal/domain/order"
	"github.com/rawanamrrr/alanod-api/internal/domain/product"
)

// Resolver resolves a discount code against a cart and identity.
type Resolver interface {
	Resolve(ctx context.Context, code string, cart discount.Cart, id discount.Identity) (*discount.Pricing, error)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored in the database.
	ImageBaseURL string
	// TokenPepper is the HMAC key for session token hashing.
	TokenPepper []byte
}

// Handler wires the domain services to their HTTP routes.
type Handler struct {
	products     product.Repository
	discounts    Resolver
	orders       *order.Service
	sessions     auth.Repository
	pepper       []byte
	imageBaseURL string
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products product.Repository,
	discounts Resolver,
	orders *order.Service,
	sessions auth.Repository,
) *Handler {
	return &Handler{
		products:     products,
		discounts:    discounts,
		orders:       orders,
		sessions:     sessions,
		pepper:       cfg.TokenPepper,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes returns the chi router for all /api endpoints.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{productID}", h.GetProduct)
		r.Post("/discount/validate", h.ValidateDiscount)
		r.Post("/orders", h.PlaceOrder)
	})

	return r
}
