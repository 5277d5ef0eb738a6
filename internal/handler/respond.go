package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/rawanamrrr/alanod-api/internal/domain/discount"
)

// writeJSON renders the object built by fn with status. The encoder is pooled.
func writeJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	fn(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError renders the standard {"error": message} body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("error")
		e.Str(message)
		e.ObjEnd()
	})
}

// encodeDecimal writes a decimal as a raw JSON number, preserving the exact
// value the engine computed.
func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

// writePricing renders the success body of a resolved discount.
func writePricing(w http.ResponseWriter, p *discount.Pricing) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("valid")
		e.Bool(true)
		e.FieldStart("discountAmount")
		encodeDecimal(e, p.Amount)
		e.FieldStart("code")
		e.Str(p.Code)
		e.FieldStart("type")
		e.Str(string(p.Kind))
		e.FieldStart("value")
		encodeDecimal(e, p.Value)
		e.FieldStart("discountDetails")
		encodeDetails(e, p.Details)
		e.ObjEnd()
	})
}

// encodeDetails renders the strategy-specific breakdown. The Details set is
// closed, so the switch covers every concrete type.
func encodeDetails(e *jx.Encoder, details discount.Details) {
	e.ObjStart()
	switch d := details.(type) {
	case discount.PercentageDetails:
		e.FieldStart("percentage")
		encodeDecimal(e, d.Percentage)
	case discount.FixedDetails:
		e.FieldStart("fixedAmount")
		encodeDecimal(e, d.FixedAmount)
	case discount.BuyXGetXDetails:
		e.FieldStart("buyX")
		e.Int(d.BuyX)
		e.FieldStart("getX")
		e.Int(d.GetX)
		e.FieldStart("freeItemsCount")
		e.Int(d.FreeItemsCount)
		e.FieldStart("type")
		e.Str(string(discount.KindBuyXGetX))
	case discount.BuyXGetYPercentDetails:
		e.FieldStart("buyX")
		e.Int(d.BuyX)
		e.FieldStart("discountPercentage")
		encodeDecimal(e, d.DiscountPercentage)
		e.FieldStart("type")
		e.Str(string(discount.KindBuyXGetYPercent))
	}
	e.ObjEnd()
}
