package payments

import (
	"encoding/json"
	"strings"
	"testing"

	"gorm.io/datatypes"

	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/bookings"
)

func TestBuildPaymentLinkRequest(t *testing.T) {
	o := bookings.Order{
		ID:        "order-123",
		Total:     450.00,
		Currency:  "",
		Name:      "Ana de la Cruz",
		Email:     "ana@example.com",
		LineItems: datatypes.JSON(`[{"name":"Morning Hunt","amount":450.00,"quantity":1}]`),
	}

	req := BuildPaymentLinkRequest(o, "https://ranch.example/success", "https://ranch.example/cancel")

	if req.Amount.Amount != 450.00 || req.Amount.Currency != "USD" {
		t.Errorf("amount = %+v, want 450.00 USD", req.Amount)
	}
	if req.FirstName != "Ana de la" || req.LastName != "Cruz" {
		t.Errorf("name = %q %q", req.FirstName, req.LastName)
	}
	if req.OrderData.OrderID != "order-123" {
		t.Errorf("orderData.orderId = %q", req.OrderData.OrderID)
	}
	if req.PaymentLinkExpiry != "9 DAYS" {
		t.Errorf("paymentLinkExpiry = %q", req.PaymentLinkExpiry)
	}
	if len(req.AcceptPaymentMethod) != 1 || req.AcceptPaymentMethod[0] != "Card" {
		t.Errorf("acceptPaymentMethod = %v", req.AcceptPaymentMethod)
	}
	if req.DeliveryMethod != "ReturnOnly" {
		t.Errorf("deliveryMethod = %q", req.DeliveryMethod)
	}
	if req.Level3 == nil {
		t.Fatal("level3 missing despite line items")
	}

	want := map[string]string{
		"successUrl": "https://ranch.example/success",
		"cancelUrl":  "https://ranch.example/cancel",
		"email":      "ana@example.com",
	}
	got := map[string]string{}
	for _, e := range req.CustomData {
		got[e.Name] = e.Value
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("customData[%s] = %q, want %q", k, got[k], v)
		}
	}
}

func TestBuildPaymentLinkRequestOmitsEmpties(t *testing.T) {
	req := BuildPaymentLinkRequest(bookings.Order{ID: "o-1", Total: 10}, "", "")
	if req.Level3 != nil {
		t.Error("level3 present without line items")
	}
	if len(req.CustomData) != 0 {
		t.Errorf("customData = %v, want none", req.CustomData)
	}
	if req.FirstName != "Guest" || req.LastName != "User" {
		t.Errorf("placeholder name = %q %q", req.FirstName, req.LastName)
	}
}

func TestBuildRefundRequestHasNoReasonField(t *testing.T) {
	body := BuildRefundRequest("pay-9", 25.50, "", false)
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "reason") {
		t.Errorf("refund body must not carry a reason field: %s", raw)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["paymentId"] != "pay-9" {
		t.Errorf("paymentId = %v", decoded["paymentId"])
	}
	amt, _ := decoded["amount"].(map[string]any)
	if amt["amount"] != 25.50 || amt["currency"] != "USD" {
		t.Errorf("amount = %v", amt)
	}
	if _, present := decoded["isACH"]; present {
		t.Errorf("isACH should be omitted when false: %s", raw)
	}
}

func TestSanitizeProducts(t *testing.T) {
	in := []map[string]any{
		{"name": "Hunt", "amount": "150.999", "quantity": 2},
		{"name": "", "amount": 10.0},           // nameless, dropped
		{"name": "No money"},                   // no money field, dropped
		{"name": "Bad money", "amount": "abc"}, // money invalid, dropped
		nil,
	}
	out := SanitizeProducts(in)
	if len(out) != 1 {
		t.Fatalf("got %d products, want 1: %v", len(out), out)
	}
	if out[0]["amount"] != 151.00 {
		t.Errorf("amount not normalized: %v", out[0]["amount"])
	}
	if out[0]["quantity"] != 2 {
		t.Errorf("non-money field altered: %v", out[0]["quantity"])
	}

	if got := SanitizeProducts(nil); got != nil {
		t.Errorf("empty input should be nil, got %v", got)
	}
	if got := SanitizeProducts([]map[string]any{{"name": ""}}); got != nil {
		t.Errorf("all-dropped input should be nil, got %v", got)
	}
}

func TestSanitizeEntries(t *testing.T) {
	in := []map[string]any{
		{"firstName": "Ana", "total": "99.955"},
		{"note": "no money keys"},
		{"price": -5.0},
	}
	out := SanitizeEntries(in)
	if len(out) != 3 {
		t.Fatalf("got %d entries, want 3", len(out))
	}
	if out[0]["total"] != 99.96 {
		t.Errorf("total not normalized: %v", out[0]["total"])
	}
	if out[1]["note"] != "no money keys" {
		t.Errorf("entry without money keys altered: %v", out[1])
	}
	if _, present := out[2]["price"]; present {
		t.Errorf("invalid money value should be removed, got %v", out[2])
	}

	// Inputs must not be mutated.
	if in[0]["total"] != "99.955" {
		t.Errorf("input mutated: %v", in[0]["total"])
	}
}
