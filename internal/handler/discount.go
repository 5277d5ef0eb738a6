package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rawanamrrr/alanod-api/internal/domain/discount"
)

type validateDiscountRequest struct {
	Code        string          `json:"code"`
	OrderAmount float64         `json:"orderAmount"`
	Items       json.RawMessage `json:"items"`
	Email       string          `json:"email"`
}

type cartItemRequest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity *int    `json:"quantity"`
}

// ValidateDiscount handles POST /api/discount/validate: it resolves the
// candidate code against the submitted cart and the caller's identity and
// renders either the pricing or a structured rejection.
func (h *Handler) ValidateDiscount(w http.ResponseWriter, r *http.Request) {
	var req validateDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "Discount code is required")
		return
	}

	items, ok := decodeCartItems(req.Items)
	if !ok {
		writeError(w, http.StatusBadRequest, "Items must be an array")
		return
	}

	cart := discount.Cart{
		OrderAmount: decimal.NewFromFloat(req.OrderAmount),
		Items:       items,
	}
	id := h.identityFromRequest(r, req.Email)

	pricing, err := h.discounts.Resolve(r.Context(), req.Code, cart, id)
	if err != nil {
		h.writeDiscountRejection(w, r, err, "Failed to validate discount code")
		return
	}

	writePricing(w, pricing)
}

// decodeCartItems parses the raw items field. Absent or null items yield an
// empty cart; anything other than an array of items is malformed. Quantity
// defaults to 1 and price to 0 when omitted, matching guest carts assembled
// client-side.
func decodeCartItems(raw json.RawMessage) ([]discount.Item, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, true
	}

	var parsed []cartItemRequest
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, false
	}

	items := make([]discount.Item, len(parsed))
	for i, it := range parsed {
		qty := 1
		if it.Quantity != nil && *it.Quantity > 0 {
			qty = *it.Quantity
		}
		items[i] = discount.Item{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     decimal.NewFromFloat(it.Price),
			Quantity:  qty,
		}
	}
	return items, true
}

// writeDiscountRejection maps engine rejections to their wire bodies.
// Anything that is not a known rejection is an infrastructure failure: it is
// logged and surfaced as a generic 500 so callers can tell "this code doesn't
// work" from "try again".
func (h *Handler) writeDiscountRejection(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	switch {
	case errors.Is(err, discount.ErrInvalidCode),
		errors.Is(err, discount.ErrNotYetValid),
		errors.Is(err, discount.ErrExpired),
		errors.Is(err, discount.ErrEmptyCart),
		errors.Is(err, discount.ErrInvalidConfig),
		errors.Is(err, discount.ErrUnsupportedKind):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var limitErr *discount.UsageLimitError
	if errors.As(err, &limitErr) {
		writeError(w, http.StatusBadRequest, limitErr.Error())
		return
	}

	var minErr *discount.MinOrderError
	if errors.As(err, &minErr) {
		writeJSON(w, http.StatusBadRequest, func(e *jx.Encoder) {
			e.ObjStart()
			e.FieldStart("error")
			e.Str("MIN_ORDER_AMOUNT")
			e.FieldStart("minOrderAmount")
			encodeDecimal(e, minErr.Minimum)
			e.FieldStart("minOrderRemaining")
			encodeDecimal(e, minErr.Remaining)
			e.ObjEnd()
		})
		return
	}

	var insufficientErr *discount.InsufficientItemsError
	if errors.As(err, &insufficientErr) {
		writeInsufficientItems(w, insufficientErr)
		return
	}

	zctx.From(r.Context()).Error("discount validation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, internalMsg)
}

func writeInsufficientItems(w http.ResponseWriter, rej *discount.InsufficientItemsError) {
	writeJSON(w, http.StatusBadRequest, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("error")
		e.Str(rej.Error())
		e.FieldStart("neededItems")
		e.Int(rej.Needed)
		e.FieldStart("buyX")
		e.Int(rej.BuyX)
		if rej.Kind == discount.KindBuyXGetYPercent {
			e.FieldStart("discountPercentage")
			encodeDecimal(e, rej.Percent)
		} else {
			e.FieldStart("getX")
			e.Int(rej.GetX)
			e.FieldStart("minimumRequired")
			e.Int(rej.MinimumRequired)
		}
		e.ObjEnd()
	})
}
