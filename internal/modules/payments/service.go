package payments

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/config"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/metrics"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/bookings"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/shared/apperr"
)

// OrderStore is the slice of the booking store the orchestrators need.
type OrderStore interface {
	Get(ctx context.Context, id string) (bookings.Order, error)
	AttachPaymentLink(ctx context.Context, id string, att bookings.PaymentLinkAttachment) error
}

// Service sequences signer / OAuth / builders against the gateway for the
// synchronous operations: merchant status, embedded session, payment link.
// Each operation is a single-shot pipeline; failures abort immediately.
type Service struct {
	logger  *slog.Logger
	store   OrderStore
	gw      Gateway
	signer  *TokenSigner
	deluxe  config.DeluxeConfig
	metrics *metrics.Metrics
}

func NewService(logger *slog.Logger, store OrderStore, gw Gateway, signer *TokenSigner, deluxe config.DeluxeConfig, m *metrics.Metrics) *Service {
	return &Service{logger: logger, store: store, gw: gw, signer: signer, deluxe: deluxe, metrics: m}
}

// fallbackMerchantStatus is the single place the capability probe degrades to.
func fallbackMerchantStatus() map[string]any {
	return map[string]any{"applePayEnabled": false, "googlePayEnabled": false}
}

// MerchantStatus probes the embedded host for wallet capabilities. This is a
// capability probe, not a transactional call: every failure degrades to the
// all-disabled shape and the caller still gets a 200.
func (s *Service) MerchantStatus(ctx context.Context) map[string]any {
	token, _, err := s.signer.Sign(nil, MerchantStatusTokenTTL)
	if err != nil {
		s.logger.ErrorContext(ctx, "merchant status token signing failed", "err", err)
		return fallbackMerchantStatus()
	}

	start := time.Now()
	status, body, err := s.gw.EmbeddedMerchantStatus(ctx, token)
	s.metrics.ObserveGatewayRequest("merchant_status", time.Since(start).Seconds())
	if err != nil {
		s.logger.WarnContext(ctx, "merchant status probe failed", "err", err)
		return fallbackMerchantStatus()
	}
	if status < 200 || status > 299 {
		s.logger.WarnContext(ctx, "merchant status probe rejected", "status", status, "body", string(body))
		return fallbackMerchantStatus()
	}

	out := decodeObject(body)
	if out == nil {
		s.logger.WarnContext(ctx, "merchant status probe returned non-JSON body")
		return fallbackMerchantStatus()
	}
	if _, ok := out["applePayEnabled"]; !ok {
		out["applePayEnabled"] = false
	}
	if _, ok := out["googlePayEnabled"]; !ok {
		out["googlePayEnabled"] = false
	}
	return out
}

type EmbeddedSessionInput struct {
	Amount   any
	Currency string
	OrderID  string
	Customer []map[string]any
	Products []map[string]any
	Summary  map[string]any
}

type EmbeddedSessionResult struct {
	JWT          string `json:"jwt"`
	Exp          int64  `json:"exp"`
	EmbeddedBase string `json:"embeddedBase"`
	Env          string `json:"env"`
}

// CreateEmbeddedSession issues the signed token the client-side embedded
// widget authenticates with. When the caller names an order we already hold,
// the stored total overrides whatever amount the client sent.
func (s *Service) CreateEmbeddedSession(ctx context.Context, in EmbeddedSessionInput) (EmbeddedSessionResult, error) {
	amount, ok := ParseMoney(in.Amount)
	if !ok || amount <= 0 {
		return EmbeddedSessionResult{}, apperr.InvalidErr("invalid-amount", map[string]string{"amount": "A positive amount is required."})
	}

	currency := currencyOr(in.Currency)

	if in.OrderID != "" {
		o, err := s.store.Get(ctx, in.OrderID)
		switch {
		case err == nil:
			// trust the ledger over the client
			if o.Total > 0 {
				amount = o.Total
				currency = currencyOr(o.Currency)
			}
		case err == bookings.ErrNotFound:
			// unknown order: keep the caller-supplied amount
		default:
			return EmbeddedSessionResult{}, apperr.Wrap(err)
		}
	}

	claims := map[string]any{
		"amount":   amount,
		"currency": currency,
	}
	if c := SanitizeEntries(in.Customer); c != nil {
		claims["customer"] = c
	}
	if p := SanitizeProducts(in.Products); p != nil {
		claims["products"] = p
	}
	if len(in.Summary) > 0 {
		claims["summary"] = in.Summary
	}

	token, exp, err := s.signer.Sign(claims, EmbeddedSessionTokenTTL)
	if err != nil {
		return EmbeddedSessionResult{}, &apperr.AppError{
			Kind:      apperr.Internal,
			PublicMsg: "jwt-failed",
			Err:       err,
		}
	}

	s.metrics.IncEmbeddedSession()
	return EmbeddedSessionResult{
		JWT:          token,
		Exp:          exp.Unix(),
		EmbeddedBase: s.deluxe.ResolveEmbeddedBase(),
		Env:          s.deluxe.Env,
	}, nil
}

type PaymentLinkInput struct {
	OrderID    string
	SuccessURL string
	CancelURL  string
}

type PaymentLinkResult struct {
	PaymentURL    string `json:"paymentUrl"`
	PaymentLinkID string `json:"paymentLinkId"`
}

// CreatePaymentLink creates a hosted checkout URL for an existing order and
// merge-writes the link plus the raw request/response pair onto the order.
func (s *Service) CreatePaymentLink(ctx context.Context, in PaymentLinkInput) (PaymentLinkResult, error) {
	if in.OrderID == "" {
		return PaymentLinkResult{}, apperr.InvalidErr("orderId is required.", map[string]string{"orderId": "This field is required."})
	}

	o, err := s.store.Get(ctx, in.OrderID)
	if err != nil {
		if err == bookings.ErrNotFound {
			return PaymentLinkResult{}, apperr.NotFoundErr("Order not found.")
		}
		return PaymentLinkResult{}, apperr.Wrap(err)
	}

	bearer, err := s.gw.AcquireToken(ctx)
	if err != nil {
		return PaymentLinkResult{}, err
	}

	reqBody := BuildPaymentLinkRequest(o, in.SuccessURL, in.CancelURL)

	start := time.Now()
	status, respBody, err := s.gw.CreatePaymentLink(ctx, bearer, reqBody)
	s.metrics.ObserveGatewayRequest("payment_link", time.Since(start).Seconds())
	if err != nil {
		return PaymentLinkResult{}, apperr.Wrap(err)
	}
	if status < 200 || status > 299 {
		// relay Deluxe's status and body verbatim for diagnosis
		return PaymentLinkResult{}, apperr.UpstreamErr(status, "Gateway rejected the payment link request.", relayDetail(respBody))
	}

	resp := decodeObject(respBody)
	paymentURL := stringField(resp, "paymentUrl")
	if paymentURL == "" {
		return PaymentLinkResult{}, apperr.UpstreamErr(http.StatusBadGateway,
			"Gateway response is missing paymentUrl.", relayDetail(respBody))
	}
	linkID := stringField(resp, "paymentLinkId", "id")

	rawReq, _ := json.Marshal(reqBody)
	if err := s.store.AttachPaymentLink(ctx, o.ID, bookings.PaymentLinkAttachment{
		LinkID:   linkID,
		LinkURL:  paymentURL,
		Request:  rawReq,
		Response: respBody,
	}); err != nil {
		return PaymentLinkResult{}, apperr.Wrap(err)
	}

	s.metrics.IncPaymentLinkCreated()
	s.logger.InfoContext(ctx, "payment link created", "order_id", o.ID, "payment_link_id", linkID)

	return PaymentLinkResult{PaymentURL: paymentURL, PaymentLinkID: linkID}, nil
}

// --- loose-response helpers ---

func decodeObject(b []byte) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

// relayDetail decodes a gateway body for relaying; non-JSON bodies are passed
// through as a string.
func relayDetail(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return string(b)
	}
	return v
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
