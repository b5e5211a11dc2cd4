package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/payments"
)

type WebhookHandler struct {
	Logger     *slog.Logger
	WebhookSvc *payments.WebhookService
}

func NewWebhookHandler(logger *slog.Logger, svc *payments.WebhookService) *WebhookHandler {
	return &WebhookHandler{Logger: logger, WebhookSvc: svc}
}

// POST /deluxe/webhook
// Always acknowledges 200, even on internal failure: a non-200 would put the
// event on Deluxe's redelivery treadmill with no way off. Failures are logged.
func (h *WebhookHandler) Handle(c *gin.Context) {
	// panics included; the shared recovery middleware answers 500, which
	// this endpoint must never do
	defer func() {
		if r := recover(); r != nil {
			h.Logger.Error("webhook handler panic", "panic", r)
			if !c.Writer.Written() {
				c.JSON(http.StatusOK, gin.H{"ok": false})
			}
		}
	}()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.Logger.Error("webhook body read failed", "err", err)
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}

	if err := h.WebhookSvc.Handle(c.Request.Context(), body); err != nil {
		h.Logger.Error("webhook reconciliation failed", "err", err)
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
