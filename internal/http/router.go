package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/http/handlers"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/http/middleware"
)

type RouterDeps struct {
	Logger   *slog.Logger
	Payments *handlers.PaymentsHandler
	Webhooks *handlers.WebhookHandler

	AllowedOrigins []string
	Registry       *prometheus.Registry
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.ErrorHandler(d.Logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(d.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = d.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", handlers.Health)
	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	r.GET("/getEmbeddedMerchantStatus", d.Payments.GetEmbeddedMerchantStatus)
	r.POST("/createEmbeddedJwt", d.Payments.CreateEmbeddedJWT)
	r.POST("/createDeluxePayment", d.Payments.CreateDeluxePayment)
	r.POST("/refundDeluxePayment", d.Payments.RefundDeluxePayment)

	r.POST("/deluxe/webhook", d.Webhooks.Handle)

	return r
}
