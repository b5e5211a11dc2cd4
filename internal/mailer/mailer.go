package mailer

import "context"

type Service interface {
	Send(ctx context.Context, e Email) error
}

type Email struct {
	FromName string // optional: "Rancho de Paloma Blanca"
	From     string // required: "no-reply@ranchodepalomablanca.com"

	To []string

	Subject string

	TextBody string
	HTMLBody string

	Headers map[string]string // optional extra headers
}
