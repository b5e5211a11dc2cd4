package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/metrics"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/bookings"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/storage"
)

// ConfirmStore performs the pending->paid transition plus the capacity
// increments atomically, reporting whether the transition actually happened.
type ConfirmStore interface {
	ConfirmPaid(ctx context.Context, id string, event json.RawMessage, paymentID string) (bookings.Order, bool, error)
}

// Notifier sends the booking-confirmation email. Best effort.
type Notifier interface {
	BookingConfirmed(ctx context.Context, o bookings.Order) error
}

// WebhookService reconciles asynchronous payment-status events against
// orders. Every event ends in one of two states: unresolved (logged and
// acknowledged, nothing mutated) or resolved (order marked paid, capacity
// counted). The HTTP handler acknowledges 200 regardless; failure detail
// lives in logs and metrics only, so Deluxe's redelivery never storms us.
type WebhookService struct {
	logger  *slog.Logger
	store   ConfirmStore
	metrics *metrics.Metrics

	archive  storage.Storage
	notifier Notifier
}

func NewWebhookService(logger *slog.Logger, store ConfirmStore, m *metrics.Metrics) *WebhookService {
	return &WebhookService{logger: logger, store: store, metrics: m}
}

func (s *WebhookService) SetArchive(a storage.Storage) { s.archive = a }

func (s *WebhookService) SetNotifier(n Notifier) { s.notifier = n }

// approvalTerms match anywhere in the gateway's status string,
// case-insensitively. Deluxe has been seen sending all three spellings.
var approvalTerms = []string{"approved", "captured", "paid"}

func IsApprovedStatus(status string) bool {
	status = strings.ToLower(status)
	for _, t := range approvalTerms {
		if strings.Contains(status, t) {
			return true
		}
	}
	return false
}

// ExtractOrderID tries the structured orderData.orderId field first, then
// scans the customData array for an entry named orderId.
func ExtractOrderID(event map[string]any) string {
	if od, ok := event["orderData"].(map[string]any); ok {
		if id, ok := od["orderId"].(string); ok && id != "" {
			return id
		}
	}
	if cd, ok := event["customData"].([]any); ok {
		for _, entry := range cd {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if name, _ := m["name"].(string); name == "orderId" {
				if v, ok := m["value"].(string); ok && v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// Handle consumes one raw event. The returned error is for logging only; the
// handler acknowledges 200 either way.
func (s *WebhookService) Handle(ctx context.Context, raw []byte) error {
	s.metrics.IncWebhookReceived()
	s.archivePayload(ctx, raw)

	event := decodeObject(raw)
	if event == nil {
		s.metrics.IncWebhookUnresolved()
		s.logger.WarnContext(ctx, "webhook payload is not a JSON object")
		return nil
	}

	orderID := ExtractOrderID(event)
	status := stringField(event, "status", "paymentStatus", "transactionStatus")
	paymentID := stringField(event, "paymentId", "paymentID", "payment_id", "id")

	if orderID == "" {
		s.metrics.IncWebhookUnresolved()
		s.logger.WarnContext(ctx, "webhook event carries no order id", "status", status)
		return nil
	}
	if !IsApprovedStatus(status) {
		s.metrics.IncWebhookUnresolved()
		s.logger.InfoContext(ctx, "webhook status not approved, ignoring", "order_id", orderID, "status", status)
		return nil
	}

	o, transitioned, err := s.store.ConfirmPaid(ctx, orderID, raw, paymentID)
	if err != nil {
		if err == bookings.ErrNotFound {
			s.metrics.IncWebhookUnresolved()
			s.logger.WarnContext(ctx, "webhook order not found", "order_id", orderID)
			return nil
		}
		s.logger.ErrorContext(ctx, "webhook reconciliation failed", "order_id", orderID, "err", err)
		return err
	}

	if !transitioned {
		// redelivery or non-pending order; capacity already counted
		s.logger.InfoContext(ctx, "webhook already reconciled, skipping", "order_id", orderID, "order_status", o.Status)
		return nil
	}

	s.metrics.IncWebhookConfirmed()
	s.logger.InfoContext(ctx, "booking confirmed",
		"order_id", o.ID, "hunters", o.NumberOfHunters, "dates", len(o.Dates()))

	if s.notifier != nil && o.Email != "" {
		if err := s.notifier.BookingConfirmed(ctx, o); err != nil {
			s.logger.WarnContext(ctx, "confirmation email failed", "order_id", o.ID, "err", err)
		}
	}

	return nil
}

func (s *WebhookService) archivePayload(ctx context.Context, raw []byte) {
	if s.archive == nil {
		return
	}
	key := "webhooks/" + uuid.NewString() + ".json"
	if _, err := s.archive.Put(ctx, bytes.NewReader(raw), storage.PutInput{
		Key:         key,
		ContentType: "application/json",
	}); err != nil {
		s.logger.WarnContext(ctx, "webhook archive failed", "key", key, "err", err)
	}
}
