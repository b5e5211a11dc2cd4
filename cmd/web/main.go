package main

import (
	"context"
	"log"
	"os"

	"log/slog"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/config"
	apphttp "github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/http"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/http/handlers"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/mailer"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/metrics"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/bookings"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/notify"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/payments"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/storage"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store := bookings.NewStore(db)
	gw := payments.NewGatewayClient(cfg.Deluxe)
	signer := payments.NewTokenSigner(cfg.Deluxe.JWTSecret, cfg.Deluxe.AccessToken)

	orchestrator := payments.NewService(logger, store, gw, signer, cfg.Deluxe, m)
	refunds := payments.NewRefundService(logger, store, gw, m)
	webhooks := payments.NewWebhookService(logger, store, m)

	archive, err := storage.FromEnv(context.Background())
	if err != nil {
		log.Fatalf("archive storage: %v", err)
	}
	if archive.Storage != nil {
		webhooks.SetArchive(archive.Storage)
	}
	logger.Info("webhook archive configured", "driver", archive.Driver)

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP)
	webhooks.SetNotifier(notify.NewService(smtpMailer, cfg.SMTP.From, cfg.SMTP.FromName))

	r := apphttp.NewRouter(apphttp.RouterDeps{
		Logger:         logger,
		Payments:       handlers.NewPaymentsHandler(logger, orchestrator, refunds),
		Webhooks:       handlers.NewWebhookHandler(logger, webhooks),
		AllowedOrigins: cfg.AllowedOrigins,
		Registry:       reg,
	})

	logger.Info("listening", "port", cfg.Port, "deluxe_env", cfg.Deluxe.Env)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
