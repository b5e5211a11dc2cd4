package payments

import (
	"context"
	"net/http"

	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/bookings"
)

// fakeStore implements OrderStore with overridable behavior per test.
type fakeStore struct {
	GetFunc    func(ctx context.Context, id string) (bookings.Order, error)
	AttachFunc func(ctx context.Context, id string, att bookings.PaymentLinkAttachment) error

	getCalls    int
	attachCalls int
	lastAttach  bookings.PaymentLinkAttachment
}

func (f *fakeStore) Get(ctx context.Context, id string) (bookings.Order, error) {
	f.getCalls++
	if f.GetFunc != nil {
		return f.GetFunc(ctx, id)
	}
	return bookings.Order{}, bookings.ErrNotFound
}

func (f *fakeStore) AttachPaymentLink(ctx context.Context, id string, att bookings.PaymentLinkAttachment) error {
	f.attachCalls++
	f.lastAttach = att
	if f.AttachFunc != nil {
		return f.AttachFunc(ctx, id, att)
	}
	return nil
}

// fakeGateway implements Gateway with overridable behavior and call counters.
type fakeGateway struct {
	AcquireTokenFunc           func(ctx context.Context) (string, error)
	CreatePaymentLinkFunc      func(ctx context.Context, bearer string, body PaymentLinkRequest) (int, []byte, error)
	SearchPaymentsFunc         func(ctx context.Context, bearer string, body PaymentSearchRequest) (int, []byte, error)
	RefundFunc                 func(ctx context.Context, bearer string, body RefundRequestBody) (int, []byte, error)
	EmbeddedMerchantStatusFunc func(ctx context.Context, signedToken string) (int, []byte, error)

	tokenCalls  int
	linkCalls   int
	searchCalls int
	refundCalls int
	statusCalls int

	lastSearch PaymentSearchRequest
	lastRefund RefundRequestBody
}

func (f *fakeGateway) AcquireToken(ctx context.Context) (string, error) {
	f.tokenCalls++
	if f.AcquireTokenFunc != nil {
		return f.AcquireTokenFunc(ctx)
	}
	return "test-bearer", nil
}

func (f *fakeGateway) CreatePaymentLink(ctx context.Context, bearer string, body PaymentLinkRequest) (int, []byte, error) {
	f.linkCalls++
	if f.CreatePaymentLinkFunc != nil {
		return f.CreatePaymentLinkFunc(ctx, bearer, body)
	}
	return http.StatusOK, []byte(`{"paymentUrl":"https://pay.example/l/1","paymentLinkId":"pl-1"}`), nil
}

func (f *fakeGateway) SearchPayments(ctx context.Context, bearer string, body PaymentSearchRequest) (int, []byte, error) {
	f.searchCalls++
	f.lastSearch = body
	if f.SearchPaymentsFunc != nil {
		return f.SearchPaymentsFunc(ctx, bearer, body)
	}
	return http.StatusOK, []byte(`{"payments":[]}`), nil
}

func (f *fakeGateway) Refund(ctx context.Context, bearer string, body RefundRequestBody) (int, []byte, error) {
	f.refundCalls++
	f.lastRefund = body
	if f.RefundFunc != nil {
		return f.RefundFunc(ctx, bearer, body)
	}
	return http.StatusOK, []byte(`{"responseCode":0,"requestId":"req-1"}`), nil
}

func (f *fakeGateway) EmbeddedMerchantStatus(ctx context.Context, signedToken string) (int, []byte, error) {
	f.statusCalls++
	if f.EmbeddedMerchantStatusFunc != nil {
		return f.EmbeddedMerchantStatusFunc(ctx, signedToken)
	}
	return http.StatusOK, []byte(`{"applePayEnabled":true,"googlePayEnabled":true}`), nil
}
