//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func testAddress(email string) addressRequest {
	return addressRequest{
		FullName: "Test Customer",
		Email:    email,
		Phone:    "+966500000000",
		Street:   "1 Test St",
		City:     "Riyadh",
		Country:  "SA",
	}
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	req := orderRequest{
		Items:           []orderItemRequest{},
		ShippingAddress: testAddress("empty@example.com"),
	}
	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_InvalidProduct(t *testing.T) {
	req := orderRequest{
		Items:           []orderItemRequest{{ProductID: "no-such-product", Quantity: 1}},
		ShippingAddress: testAddress("invalid@example.com"),
	}
	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_ZeroQuantity(t *testing.T) {
	req := orderRequest{
		Items:           []orderItemRequest{{ProductID: "oud-noir-50", Quantity: 0}},
		ShippingAddress: testAddress("zero@example.com"),
	}
	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_SingleItem(t *testing.T) {
	req := orderRequest{
		Items:           []orderItemRequest{{ProductID: "oud-noir-50", Quantity: 1}},
		ShippingAddress: testAddress("single@example.com"),
	}
	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	if order.Subtotal != 280 {
		t.Errorf("subtotal: got %v, want 280", order.Subtotal)
	}
	if order.Discount != 0 {
		t.Errorf("discount: got %v, want 0", order.Discount)
	}
	if order.Total != 280 {
		t.Errorf("total: got %v, want 280", order.Total)
	}
	if order.Status != "pending" {
		t.Errorf("status: got %q, want %q", order.Status, "pending")
	}
}

func TestPlaceOrder_MultipleItems(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{
			{ProductID: "oud-noir-50", Quantity: 2},  // 2 x 280 = 560
			{ProductID: "rose-musk-50", Quantity: 1}, // 220
		},
		ShippingAddress: testAddress("multi@example.com"),
	}
	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	if order.Total != 780 {
		t.Errorf("total: got %v, want 780", order.Total)
	}
}

func TestPlaceOrder_WithPercentageCode(t *testing.T) {
	req := orderRequest{
		Items:           []orderItemRequest{{ProductID: "velvet-saffron-30", Quantity: 1}}, // 520
		DiscountCode:    "welcome10",
		ShippingAddress: testAddress("percentage@example.com"),
	}
	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	// 10% of 520 = 52.
	if order.Discount != 52 {
		t.Errorf("discount: got %v, want 52", order.Discount)
	}
	if order.Total != 468 {
		t.Errorf("total: got %v, want 468", order.Total)
	}
	// The stored code is canonical regardless of request casing.
	if order.DiscountCode != "WELCOME10" {
		t.Errorf("discountCode: got %q, want %q", order.DiscountCode, "WELCOME10")
	}
}

func TestPlaceOrder_WithBuyXGetXCode(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{
			{ProductID: "amber-santal-100", Quantity: 1},    // 420
			{ProductID: "oud-noir-50", Quantity: 1},         // 280
			{ProductID: "white-tea-discovery", Quantity: 1}, // 140
		},
		DiscountCode:    "B2G1",
		ShippingAddress: testAddress("b2g1@example.com"),
	}
	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	// Cheapest of three free: 140.
	if order.Discount != 140 {
		t.Errorf("discount: got %v, want 140", order.Discount)
	}
	if order.Total != 700 {
		t.Errorf("total: got %v, want 700", order.Total)
	}
}

func TestPlaceOrder_InvalidCode(t *testing.T) {
	req := orderRequest{
		Items:           []orderItemRequest{{ProductID: "oud-noir-50", Quantity: 1}},
		DiscountCode:    "NONEXISTENT",
		ShippingAddress: testAddress("badcode@example.com"),
	}
	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Error != "Invalid discount code" {
		t.Errorf("error: got %q, want %q", errResp.Error, "Invalid discount code")
	}
}

func TestPlaceOrder_MinOrderNotMet(t *testing.T) {
	req := orderRequest{
		Items:           []orderItemRequest{{ProductID: "white-tea-discovery", Quantity: 1}}, // 140 < 300
		DiscountCode:    "SAR50",
		ShippingAddress: testAddress("minorder@example.com"),
	}
	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	body := decodeJSON[minOrderResponse](t, resp)
	if body.Error != "MIN_ORDER_AMOUNT" {
		t.Errorf("error: got %q, want %q", body.Error, "MIN_ORDER_AMOUNT")
	}
	if body.MinOrderRemaining != 160 {
		t.Errorf("minOrderRemaining: got %v, want 160", body.MinOrderRemaining)
	}
}

func TestPlaceOrder_ResponseStructure(t *testing.T) {
	req := orderRequest{
		Items:           []orderItemRequest{{ProductID: "citrus-vetiver-50", Quantity: 2}},
		ShippingAddress: testAddress("structure@example.com"),
	}
	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)

	if !uuidPattern.MatchString(order.ID) {
		t.Errorf("order ID %q is not a valid UUID", order.ID)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(order.Items))
	}
	if order.Items[0].ProductID != "citrus-vetiver-50" {
		t.Errorf("item productId: got %q, want %q", order.Items[0].ProductID, "citrus-vetiver-50")
	}
	if order.Items[0].Quantity != 2 {
		t.Errorf("item quantity: got %d, want 2", order.Items[0].Quantity)
	}
}

// A registered user (Bearer token) exhausts a single-use code by user ID, not
// by email.
func TestPlaceOrder_RegisteredUserUsageLimit(t *testing.T) {
	req := orderRequest{
		Items:           []orderItemRequest{{ProductID: "rose-musk-50", Quantity: 1}},
		DiscountCode:    "WELCOME10",
		ShippingAddress: testAddress("registered@example.com"),
	}
	resp := doPostWithToken(t, "/api/orders", req, "integration-test-token")
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first order: expected 201, got %d", resp.StatusCode)
	}

	resp = doPostWithToken(t, "/api/orders", req, "integration-test-token")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("second order: expected 400, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	want := "You have already used this discount code 1 times."
	if errResp.Error != want {
		t.Errorf("error: got %q, want %q", errResp.Error, want)
	}
}
