package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/rawanamrrr/alanod-api/internal/domain/order"
)

type placeOrderRequest struct {
	Items           []orderItemRequest `json:"items"`
	DiscountCode    string             `json:"discountCode"`
	ShippingAddress addressRequest     `json:"shippingAddress"`
}

type orderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type addressRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Street   string `json:"street"`
	City     string `json:"city"`
	Country  string `json:"country"`
}

// PlaceOrder handles POST /api/orders: checkout with optional discount code.
// The order row it writes is what future usage-limit checks count.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items := make([]order.Item, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.Item{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	identity := h.identityFromRequest(r, req.ShippingAddress.Email)

	result, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		Identity: identity,
		Items:    items,
		ShippingAddress: order.Address{
			FullName: req.ShippingAddress.FullName,
			Email:    req.ShippingAddress.Email,
			Phone:    req.ShippingAddress.Phone,
			Street:   req.ShippingAddress.Street,
			City:     req.ShippingAddress.City,
			Country:  req.ShippingAddress.Country,
		},
		DiscountCode: req.DiscountCode,
	})
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeOrder(e, result.Order)
	})
}

// writeOrderError maps checkout failures: order validation to 4xx, discount
// rejections to their standard bodies, everything else to a logged 500.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, order.ErrEmptyItems) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var iqErr *order.InvalidQuantityError
	if errors.As(err, &iqErr) {
		writeError(w, http.StatusUnprocessableEntity, iqErr.Error())
		return
	}

	var pnfErr *order.ProductNotFoundError
	if errors.As(err, &pnfErr) {
		writeError(w, http.StatusUnprocessableEntity, pnfErr.Error())
		return
	}

	var dcErr *order.DiscountCheckError
	if errors.As(err, &dcErr) {
		h.writeDiscountRejection(w, r, dcErr.Err, "An error occurred while validating discount code")
		return
	}

	zctx.From(r.Context()).Error("place order failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Failed to place order")
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("subtotal")
	encodeDecimal(e, o.Subtotal)
	e.FieldStart("discount")
	encodeDecimal(e, o.Discount)
	e.FieldStart("total")
	encodeDecimal(e, o.Total)
	if o.DiscountCode != "" {
		e.FieldStart("discountCode")
		e.Str(o.DiscountCode)
	}
	e.FieldStart("status")
	e.Str(o.Status)
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range o.Items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(item.ProductID)
		e.FieldStart("quantity")
		e.Int(item.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}
