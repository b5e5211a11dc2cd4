package payments

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/metrics"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/bookings"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/shared/apperr"
)

// RefundService resolves a refundable payment id and posts the refund. The
// gateway's refund endpoint wants its own payment identifier, which callers
// rarely have, so resolution degrades: caller-supplied id -> id recorded on
// our order -> gateway payment search -> give up with 404.
type RefundService struct {
	logger  *slog.Logger
	store   OrderStore
	gw      Gateway
	metrics *metrics.Metrics
}

func NewRefundService(logger *slog.Logger, store OrderStore, gw Gateway, m *metrics.Metrics) *RefundService {
	return &RefundService{logger: logger, store: store, gw: gw, metrics: m}
}

type RefundInput struct {
	Amount        any
	Currency      string
	PaymentID     string
	OrderID       string
	TransactionID string
	IsACH         bool

	// Debug short-circuits before the gateway call and echoes the built body.
	Debug bool
}

func (s *RefundService) Refund(ctx context.Context, in RefundInput) (map[string]any, error) {
	amount, ok := ParseMoney(in.Amount)
	if !ok || amount <= 0 {
		s.metrics.IncRefund("invalid")
		return nil, apperr.InvalidErr("invalid-amount", map[string]string{"amount": "A positive amount is required."})
	}
	if in.PaymentID == "" && in.OrderID == "" && in.TransactionID == "" {
		s.metrics.IncRefund("invalid")
		return nil, apperr.InvalidErr("One of paymentId, orderId or transactionId is required.", nil)
	}

	paymentID := in.PaymentID

	// stored on our order?
	if paymentID == "" && in.OrderID != "" {
		o, err := s.store.Get(ctx, in.OrderID)
		switch {
		case err == nil:
			paymentID = o.GatewayPaymentID()
		case err == bookings.ErrNotFound:
			// fall through to search
		default:
			return nil, apperr.Wrap(err)
		}
	}

	var bearer string

	// last resort: ask the gateway
	if paymentID == "" {
		var err error
		bearer, err = s.gw.AcquireToken(ctx)
		if err != nil {
			return nil, err
		}

		searchReq := PaymentSearchRequest{TransactionID: in.TransactionID, OrderID: in.OrderID}

		start := time.Now()
		status, body, err := s.gw.SearchPayments(ctx, bearer, searchReq)
		s.metrics.ObserveGatewayRequest("payment_search", time.Since(start).Seconds())
		if err != nil {
			return nil, apperr.Wrap(err)
		}

		if status >= 200 && status <= 299 {
			paymentID = firstSearchPaymentID(body)
		}
		if paymentID == "" {
			s.metrics.IncRefund("not_found")
			return nil, apperr.NotFoundDetailErr("payment-not-found", map[string]any{
				"search":   searchReq,
				"response": relayDetail(body),
				"status":   status,
			})
		}
	}

	refundReq := BuildRefundRequest(paymentID, amount, in.Currency, in.IsACH)

	if in.Debug {
		return map[string]any{"debug": true, "refundRequest": refundReq}, nil
	}

	if bearer == "" {
		var err error
		bearer, err = s.gw.AcquireToken(ctx)
		if err != nil {
			return nil, err
		}
	}

	start := time.Now()
	status, body, err := s.gw.Refund(ctx, bearer, refundReq)
	s.metrics.ObserveGatewayRequest("refund", time.Since(start).Seconds())
	if err != nil {
		s.metrics.IncRefund("error")
		return nil, apperr.Wrap(err)
	}

	resp := decodeObject(body)
	requestID := stringField(resp, "requestId", "requestID", "request_id")

	if status < 200 || status > 299 {
		s.metrics.IncRefund("rejected")
		return nil, apperr.UpstreamErr(status, "Gateway rejected the refund.", map[string]any{
			"resolvedPaymentId": paymentID,
			"requestId":         requestID,
			"response":          relayDetail(body),
		})
	}

	if resp == nil {
		resp = map[string]any{}
	}
	resp["resolvedPaymentId"] = paymentID
	if requestID != "" {
		resp["requestId"] = requestID
	}

	s.metrics.IncRefund("ok")
	s.logger.InfoContext(ctx, "refund accepted", "payment_id", paymentID, "amount", amount, "request_id", requestID)
	return resp, nil
}

// firstSearchPaymentID pulls the payment id off the first search result,
// tolerating both a bare array and a wrapped {payments: []} shape.
func firstSearchPaymentID(body []byte) string {
	pick := func(items []any) string {
		for _, it := range items {
			if m, ok := it.(map[string]any); ok {
				if id := stringField(m, "paymentId", "id"); id != "" {
					return id
				}
			}
		}
		return ""
	}

	if obj := decodeObject(body); obj != nil {
		for _, k := range []string{"payments", "results", "data"} {
			if arr, ok := obj[k].([]any); ok {
				return pick(arr)
			}
		}
		return stringField(obj, "paymentId", "id")
	}

	var arr []any
	if err := json.Unmarshal(body, &arr); err == nil {
		return pick(arr)
	}
	return ""
}
