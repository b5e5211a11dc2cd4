package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/http/middleware"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/http/validation"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/payments"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/shared/apperr"
)

type PaymentsHandler struct {
	Logger       *slog.Logger
	Orchestrator *payments.Service
	Refunds      *payments.RefundService
}

func NewPaymentsHandler(logger *slog.Logger, svc *payments.Service, refunds *payments.RefundService) *PaymentsHandler {
	return &PaymentsHandler{Logger: logger, Orchestrator: svc, Refunds: refunds}
}

// GET /getEmbeddedMerchantStatus
// Capability probe; never fails toward the caller.
func (h *PaymentsHandler) GetEmbeddedMerchantStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Orchestrator.MerchantStatus(c.Request.Context()))
}

type createEmbeddedJwtInput struct {
	Amount   any              `json:"amount"`
	Currency string           `json:"currency" binding:"omitempty,oneof=USD CAD"`
	OrderID  string           `json:"orderId" binding:"omitempty,max=64"`
	Customer []map[string]any `json:"customer"`
	Products []map[string]any `json:"products"`
	Summary  map[string]any   `json:"summary"`
}

// POST /createEmbeddedJwt
func (h *PaymentsHandler) CreateEmbeddedJWT(c *gin.Context) {
	var in createEmbeddedJwtInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Request body is invalid.", validation.FromBindError(err, &in)))
		return
	}

	res, err := h.Orchestrator.CreateEmbeddedSession(c.Request.Context(), payments.EmbeddedSessionInput{
		Amount:   in.Amount,
		Currency: in.Currency,
		OrderID:  in.OrderID,
		Customer: in.Customer,
		Products: in.Products,
		Summary:  in.Summary,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type createPaymentInput struct {
	OrderID    string `json:"orderId" binding:"required,max=64"`
	SuccessURL string `json:"successUrl" binding:"omitempty,url,max=512"`
	CancelURL  string `json:"cancelUrl" binding:"omitempty,url,max=512"`
}

// POST /createDeluxePayment
func (h *PaymentsHandler) CreateDeluxePayment(c *gin.Context) {
	var in createPaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Request body is invalid.", validation.FromBindError(err, &in)))
		return
	}

	res, err := h.Orchestrator.CreatePaymentLink(c.Request.Context(), payments.PaymentLinkInput{
		OrderID:    in.OrderID,
		SuccessURL: in.SuccessURL,
		CancelURL:  in.CancelURL,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type refundInput struct {
	Amount        any    `json:"amount"`
	Currency      string `json:"currency" binding:"omitempty,oneof=USD CAD"`
	PaymentID     string `json:"paymentId" binding:"omitempty,max=128"`
	OrderID       string `json:"orderId" binding:"omitempty,max=64"`
	TransactionID string `json:"transactionId" binding:"omitempty,max=128"`
	// some callers still send the long-form field name
	OriginalTransactionID string `json:"originalTransactionId" binding:"omitempty,max=128"`
	IsACH                 bool   `json:"isACH"`
}

// POST /refundDeluxePayment
// ?debug=1 echoes the refund body that would be sent, without calling Deluxe.
func (h *PaymentsHandler) RefundDeluxePayment(c *gin.Context) {
	var in refundInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Request body is invalid.", validation.FromBindError(err, &in)))
		return
	}

	txID := in.TransactionID
	if txID == "" {
		txID = in.OriginalTransactionID
	}

	debug := c.Query("debug") == "1" || c.Query("debug") == "true"

	res, err := h.Refunds.Refund(c.Request.Context(), payments.RefundInput{
		Amount:        in.Amount,
		Currency:      in.Currency,
		PaymentID:     in.PaymentID,
		OrderID:       in.OrderID,
		TransactionID: txID,
		IsACH:         in.IsACH,
		Debug:         debug,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
