package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/config"
	apphttp "github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/http"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/http/handlers"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/bookings"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/payments"
)

type stubStore struct {
	GetFunc func(ctx context.Context, id string) (bookings.Order, error)
}

func (s *stubStore) Get(ctx context.Context, id string) (bookings.Order, error) {
	if s.GetFunc != nil {
		return s.GetFunc(ctx, id)
	}
	return bookings.Order{}, bookings.ErrNotFound
}

func (s *stubStore) AttachPaymentLink(ctx context.Context, id string, att bookings.PaymentLinkAttachment) error {
	return nil
}

type stubGateway struct {
	tokenCalls int
	linkCalls  int

	LinkStatus int
	LinkBody   []byte
}

func (g *stubGateway) AcquireToken(ctx context.Context) (string, error) {
	g.tokenCalls++
	return "bearer", nil
}

func (g *stubGateway) CreatePaymentLink(ctx context.Context, bearer string, body payments.PaymentLinkRequest) (int, []byte, error) {
	g.linkCalls++
	if g.LinkStatus != 0 {
		return g.LinkStatus, g.LinkBody, nil
	}
	return http.StatusOK, []byte(`{"paymentUrl":"https://pay.example/l/1","paymentLinkId":"pl-1"}`), nil
}

func (g *stubGateway) SearchPayments(ctx context.Context, bearer string, body payments.PaymentSearchRequest) (int, []byte, error) {
	return http.StatusOK, []byte(`{"payments":[]}`), nil
}

func (g *stubGateway) Refund(ctx context.Context, bearer string, body payments.RefundRequestBody) (int, []byte, error) {
	return http.StatusOK, []byte(`{"responseCode":0}`), nil
}

func (g *stubGateway) EmbeddedMerchantStatus(ctx context.Context, signedToken string) (int, []byte, error) {
	return 0, nil, errors.New("embedded host unreachable")
}

type stubConfirmStore struct {
	ConfirmFunc func(ctx context.Context, id string, event json.RawMessage, paymentID string) (bookings.Order, bool, error)
}

func (s *stubConfirmStore) ConfirmPaid(ctx context.Context, id string, event json.RawMessage, paymentID string) (bookings.Order, bool, error) {
	if s.ConfirmFunc != nil {
		return s.ConfirmFunc(ctx, id, event, paymentID)
	}
	return bookings.Order{}, false, bookings.ErrNotFound
}

func newTestRouter(t *testing.T, store *stubStore, gw *stubGateway, confirm *stubConfirmStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	signer := payments.NewTokenSigner("test-secret", "access-token")
	deluxe := config.DeluxeConfig{Env: "sandbox"}

	svc := payments.NewService(logger, store, gw, signer, deluxe, nil)
	refunds := payments.NewRefundService(logger, store, gw, nil)
	webhooks := payments.NewWebhookService(logger, confirm, nil)

	return apphttp.NewRouter(apphttp.RouterDeps{
		Logger:   logger,
		Payments: handlers.NewPaymentsHandler(logger, svc, refunds),
		Webhooks: handlers.NewWebhookHandler(logger, webhooks),
	})
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &stubStore{}, &stubGateway{}, &stubConfirmStore{})
	w := doJSON(r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
}

func TestMerchantStatusEndpointDegradesTo200(t *testing.T) {
	r := newTestRouter(t, &stubStore{}, &stubGateway{}, &stubConfirmStore{})
	w := doJSON(r, http.MethodGet, "/getEmbeddedMerchantStatus", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, capability probe must not fail toward the caller", w.Code)
	}
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out["applePayEnabled"] != false || out["googlePayEnabled"] != false {
		t.Errorf("body = %v, want all-disabled fallback", out)
	}
}

func TestCreateEmbeddedJwtValidation(t *testing.T) {
	r := newTestRouter(t, &stubStore{}, &stubGateway{}, &stubConfirmStore{})

	w := doJSON(r, http.MethodPost, "/createEmbeddedJwt", map[string]any{"amount": -5})
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative amount: code = %d, want 400", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/createEmbeddedJwt", map[string]any{"amount": 10, "currency": "EUR"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unsupported currency: code = %d, want 400", w.Code)
	}
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out["error"] == nil {
		t.Errorf("error body missing: %v", out)
	}
}

func TestCreateEmbeddedJwtSuccess(t *testing.T) {
	r := newTestRouter(t, &stubStore{}, &stubGateway{}, &stubConfirmStore{})
	w := doJSON(r, http.MethodPost, "/createEmbeddedJwt", map[string]any{"amount": "150.00"})
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", w.Code, w.Body.String())
	}
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out["jwt"] == "" || out["jwt"] == nil {
		t.Error("jwt missing from response")
	}
	if out["env"] != "sandbox" {
		t.Errorf("env = %v", out["env"])
	}
}

func TestCreateDeluxePaymentUnknownOrder(t *testing.T) {
	gw := &stubGateway{}
	r := newTestRouter(t, &stubStore{}, gw, &stubConfirmStore{})

	w := doJSON(r, http.MethodPost, "/createDeluxePayment", map[string]any{"orderId": "ghost"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404: %s", w.Code, w.Body.String())
	}
	if gw.tokenCalls != 0 || gw.linkCalls != 0 {
		t.Errorf("gateway contacted before order existence was settled")
	}
}

func TestCreateDeluxePaymentMissingOrderID(t *testing.T) {
	r := newTestRouter(t, &stubStore{}, &stubGateway{}, &stubConfirmStore{})
	w := doJSON(r, http.MethodPost, "/createDeluxePayment", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
	var out map[string]any
	json.Unmarshal(w.Body.Bytes(), &out)
	if out["fields"] == nil {
		t.Errorf("field errors missing: %v", out)
	}
}

func TestCreateDeluxePaymentRelaysGatewayStatus(t *testing.T) {
	store := &stubStore{GetFunc: func(ctx context.Context, id string) (bookings.Order, error) {
		return bookings.Order{ID: id, Total: 100}, nil
	}}
	gw := &stubGateway{LinkStatus: http.StatusUnprocessableEntity, LinkBody: []byte(`{"responseMessage":"bad amount"}`)}
	r := newTestRouter(t, store, gw, &stubConfirmStore{})

	w := doJSON(r, http.MethodPost, "/createDeluxePayment", map[string]any{"orderId": "order-1"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("code = %d, want the gateway's 422", w.Code)
	}
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out["gateway"] == nil {
		t.Errorf("gateway detail missing from relay: %v", out)
	}
}

func TestRefundDebugQuery(t *testing.T) {
	r := newTestRouter(t, &stubStore{}, &stubGateway{}, &stubConfirmStore{})
	w := doJSON(r, http.MethodPost, "/refundDeluxePayment?debug=1", map[string]any{
		"amount":    25.0,
		"paymentId": "pay-1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", w.Code, w.Body.String())
	}
	var out map[string]any
	json.Unmarshal(w.Body.Bytes(), &out)
	if out["debug"] != true {
		t.Errorf("debug echo missing: %v", out)
	}
}

func TestRefundLegacyTransactionField(t *testing.T) {
	r := newTestRouter(t, &stubStore{}, &stubGateway{}, &stubConfirmStore{})
	// originalTransactionId alone must satisfy the identifier requirement;
	// the stub search is empty so resolution ends in 404, not 400.
	w := doJSON(r, http.MethodPost, "/refundDeluxePayment", map[string]any{
		"amount":                10.0,
		"originalTransactionId": "txn-legacy",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestWebhookPanicStillAcknowledges(t *testing.T) {
	confirm := &stubConfirmStore{ConfirmFunc: func(ctx context.Context, id string, event json.RawMessage, paymentID string) (bookings.Order, bool, error) {
		panic("store blew up")
	}}
	r := newTestRouter(t, &stubStore{}, &stubGateway{}, confirm)

	body := `{"status":"Approved","orderData":{"orderId":"order-1"}}`
	req := httptest.NewRequest(http.MethodPost, "/deluxe/webhook", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, webhook must acknowledge 200 even on panic", w.Code)
	}
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out["ok"] != false {
		t.Errorf("ok = %v, want false", out["ok"])
	}
}

func TestRequestIDHeader(t *testing.T) {
	r := newTestRouter(t, &stubStore{}, &stubGateway{}, &stubConfirmStore{})

	w := doJSON(r, http.MethodGet, "/health", nil)
	rid := w.Header().Get("X-Request-ID")
	if !strings.HasPrefix(rid, "req_") {
		t.Errorf("generated id = %q, want req_ prefix", rid)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "upstream-7")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "upstream-7" {
		t.Errorf("incoming id not preserved: %q", got)
	}
}

func TestWebhookAlwaysAcknowledges(t *testing.T) {
	tests := []struct {
		name    string
		confirm *stubConfirmStore
		body    string
		wantOK  bool
	}{
		{
			name:    "garbage body",
			confirm: &stubConfirmStore{},
			body:    "not json",
			wantOK:  true,
		},
		{
			name:    "unknown order",
			confirm: &stubConfirmStore{},
			body:    `{"status":"Approved","orderData":{"orderId":"ghost"}}`,
			wantOK:  true,
		},
		{
			name: "store failure",
			confirm: &stubConfirmStore{ConfirmFunc: func(ctx context.Context, id string, event json.RawMessage, paymentID string) (bookings.Order, bool, error) {
				return bookings.Order{}, false, errors.New("db gone")
			}},
			body:   `{"status":"Approved","orderData":{"orderId":"order-1"}}`,
			wantOK: false,
		},
		{
			name: "confirmed",
			confirm: &stubConfirmStore{ConfirmFunc: func(ctx context.Context, id string, event json.RawMessage, paymentID string) (bookings.Order, bool, error) {
				return bookings.Order{ID: id, Status: bookings.StatusPaid}, true, nil
			}},
			body:   `{"status":"Approved","orderData":{"orderId":"order-1"}}`,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, &stubStore{}, &stubGateway{}, tt.confirm)
			req := httptest.NewRequest(http.MethodPost, "/deluxe/webhook", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("code = %d, webhook must always be 200", w.Code)
			}
			var out map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatal(err)
			}
			if out["ok"] != tt.wantOK {
				t.Errorf("ok = %v, want %v", out["ok"], tt.wantOK)
			}
		})
	}
}
