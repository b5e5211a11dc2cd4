package bookings

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// Order is the central booking document. Loose gateway-facing data lives in
// JSON columns so the row survives gateway field drift without migrations.
type Order struct {
	ID       string  `gorm:"type:char(36);primaryKey"`
	Total    float64 `gorm:"type:decimal(10,2);not null"`
	Currency string  `gorm:"type:char(3);not null;default:'USD'"`
	Status   string  `gorm:"type:varchar(16);not null;index:ix_orders_status"`

	FirstName string `gorm:"type:varchar(100)"`
	LastName  string `gorm:"type:varchar(100)"`
	Name      string `gorm:"type:varchar(200)"` // composite display name, legacy orders only
	Email     string `gorm:"type:varchar(255)"`

	BillingAddress datatypes.JSON `gorm:"type:json"`

	BookingDates    datatypes.JSON `gorm:"type:json"` // ordered ISO date strings
	NumberOfHunters int            `gorm:"not null;default:0"`
	PartyDeckDates  datatypes.JSON `gorm:"type:json"` // subset of BookingDates

	LineItems datatypes.JSON `gorm:"type:json"` // optional level-3 items

	PaymentLinkID  *string        `gorm:"type:varchar(128)"`
	PaymentLinkURL *string        `gorm:"type:varchar(512)"`
	GatewayData    datatypes.JSON `gorm:"type:json"` // last payment-link request/response, recorded payment id
	LastWebhook    datatypes.JSON `gorm:"type:json"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Order) TableName() string { return "orders" }

func (o Order) Dates() []string { return jsonStrings(o.BookingDates) }

func (o Order) DeckDates() []string { return jsonStrings(o.PartyDeckDates) }

// paymentIDKeys lists the historical spellings under which the gateway payment
// id has been recorded. "paymentId" is canonical; the rest are migration reads.
var paymentIDKeys = []string{"paymentId", "PaymentId", "paymentID", "payment_id"}

// GatewayPaymentID returns the payment id previously recorded on this order,
// or "" when none is stored.
func (o Order) GatewayPaymentID() string {
	for _, raw := range []datatypes.JSON{o.GatewayData, o.LastWebhook} {
		if len(raw) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		for _, k := range paymentIDKeys {
			if v, ok := m[k].(string); ok && v != "" {
				return v
			}
		}
	}
	return ""
}

func jsonStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
