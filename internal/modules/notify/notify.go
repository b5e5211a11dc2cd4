package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/mailer"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/bookings"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/payments"
)

// Service composes and sends customer-facing booking emails. Rendering here
// is deliberately plain; fancy templated mail lives in the frontend stack.
type Service struct {
	Mailer   mailer.Service
	From     string
	FromName string
}

func NewService(m mailer.Service, from, fromName string) *Service {
	return &Service{Mailer: m, From: from, FromName: fromName}
}

// BookingConfirmed emails the customer once their payment is reconciled.
func (s *Service) BookingConfirmed(ctx context.Context, o bookings.Order) error {
	if o.Email == "" {
		return nil
	}

	name := payments.ResolveName(o.FirstName, o.LastName, o.Name)
	dates := strings.Join(o.Dates(), ", ")
	total := fmt.Sprintf("%.2f %s", o.Total, o.Currency)

	subject := "Booking Confirmed - Rancho de Paloma Blanca"
	textBody := "Hello " + name.FirstName + ",\n\n" +
		"Your hunt is booked. Payment received: " + total + "\n" +
		"Booking #" + o.ID + "\n" +
		"Dates: " + dates + "\n" +
		fmt.Sprintf("Hunters: %d\n", o.NumberOfHunters) +
		"\nSee you at the ranch!"

	htmlBody := `
<html>
  <body style="font-family: sans-serif;">
    <h2>Booking Confirmed</h2>
    <p>Hello ` + name.FirstName + `,</p>
    <p>Your hunt is booked and your payment has been received.</p>
    <p><strong>Booking:</strong> #` + o.ID + `</p>
    <p><strong>Dates:</strong> ` + dates + `</p>
    <p><strong>Hunters:</strong> ` + fmt.Sprintf("%d", o.NumberOfHunters) + `</p>
    <p><strong>Total:</strong> ` + total + `</p>
    <p>See you at the ranch!</p>
  </body>
</html>
`

	return s.Mailer.Send(ctx, mailer.Email{
		FromName: s.FromName,
		From:     s.From,
		To:       []string{o.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	})
}
