package payments

import (
	"encoding/json"

	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/bookings"
)

type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type OrderData struct {
	OrderID string `json:"orderId"`
}

type CustomDataEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Level3Data struct {
	Items json.RawMessage `json:"items"`
}

// PaymentLinkRequest is the body for POST /paymentlinks.
type PaymentLinkRequest struct {
	Amount              Money             `json:"amount"`
	FirstName           string            `json:"firstName"`
	LastName            string            `json:"lastName"`
	OrderData           OrderData         `json:"orderData"`
	PaymentLinkExpiry   string            `json:"paymentLinkExpiry"`
	AcceptPaymentMethod []string          `json:"acceptPaymentMethod"`
	DeliveryMethod      string            `json:"deliveryMethod"`
	Level3              *Level3Data       `json:"level3,omitempty"`
	CustomData          []CustomDataEntry `json:"customData,omitempty"`
}

// RefundRequestBody is the body for POST /refunds. Deliberately no free-text
// reason field; Deluxe never receives one from us.
type RefundRequestBody struct {
	PaymentID string `json:"paymentId"`
	Amount    Money  `json:"amount"`
	IsACH     bool   `json:"isACH,omitempty"`
}

// PaymentSearchRequest is the body for POST /payments (search).
type PaymentSearchRequest struct {
	TransactionID string `json:"transactionId,omitempty"`
	OrderID       string `json:"orderId,omitempty"`
}

// BuildPaymentLinkRequest maps an order onto the gateway's payment-link shape.
// Pure transform, no I/O.
func BuildPaymentLinkRequest(o bookings.Order, successURL, cancelURL string) PaymentLinkRequest {
	name := ResolveName(o.FirstName, o.LastName, o.Name)

	req := PaymentLinkRequest{
		Amount:              Money{Amount: o.Total, Currency: currencyOr(o.Currency)},
		FirstName:           name.FirstName,
		LastName:            name.LastName,
		OrderData:           OrderData{OrderID: o.ID},
		PaymentLinkExpiry:   "9 DAYS",
		AcceptPaymentMethod: []string{"Card"},
		DeliveryMethod:      "ReturnOnly",
	}

	if len(o.LineItems) > 0 {
		req.Level3 = &Level3Data{Items: json.RawMessage(o.LineItems)}
	}

	if successURL != "" {
		req.CustomData = append(req.CustomData, CustomDataEntry{Name: "successUrl", Value: successURL})
	}
	if cancelURL != "" {
		req.CustomData = append(req.CustomData, CustomDataEntry{Name: "cancelUrl", Value: cancelURL})
	}
	if o.Email != "" {
		req.CustomData = append(req.CustomData, CustomDataEntry{Name: "email", Value: o.Email})
	}

	return req
}

// BuildRefundRequest builds the refund body from an already-resolved payment id.
func BuildRefundRequest(paymentID string, amount float64, currency string, isACH bool) RefundRequestBody {
	return RefundRequestBody{
		PaymentID: paymentID,
		Amount:    Money{Amount: amount, Currency: currencyOr(currency)},
		IsACH:     isACH,
	}
}

// moneyKeys are the fields treated as monetary in caller-supplied embedded
// payload entries.
var moneyKeys = []string{"amount", "price", "unitPrice", "total"}

// SanitizeEntries normalizes money fields on caller-supplied objects; invalid
// money values are dropped from the entry rather than defaulted.
func SanitizeEntries(in []map[string]any) []map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(in))
	for _, e := range in {
		if e == nil {
			continue
		}
		out = append(out, sanitizeEntry(e))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SanitizeProducts additionally discards entries that lack a name or a valid
// money amount; a nil result means the products array is omitted entirely.
func SanitizeProducts(in []map[string]any) []map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(in))
	for _, e := range in {
		if e == nil {
			continue
		}
		name, _ := e["name"].(string)
		if name == "" {
			continue
		}
		clean := sanitizeEntry(e)
		if !hasMoney(clean) {
			continue
		}
		out = append(out, clean)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sanitizeEntry(e map[string]any) map[string]any {
	clean := make(map[string]any, len(e))
	for k, v := range e {
		clean[k] = v
	}
	for _, k := range moneyKeys {
		v, ok := clean[k]
		if !ok {
			continue
		}
		if m, valid := ParseMoney(v); valid {
			clean[k] = m
		} else {
			delete(clean, k)
		}
	}
	return clean
}

func hasMoney(e map[string]any) bool {
	for _, k := range moneyKeys {
		if _, ok := e[k]; ok {
			return true
		}
	}
	return false
}

func currencyOr(c string) string {
	if c == "" {
		return "USD"
	}
	return c
}
