package config

import (
	"fmt"
	"os"
	"strings"
)

// Config is built once in main and handed to every constructor.
// No package-level state; tests build their own instances.
type Config struct {
	Env     string // development | production
	Port    string
	BaseURL string

	DBDSN string

	AllowedOrigins []string

	Deluxe DeluxeConfig
	SMTP   SMTPConfig
}

// DeluxeConfig holds everything needed to talk to the Deluxe gateway:
// OAuth client credentials for the transactional API, the static partner
// token header, and the secret + access token used for embedded JWTs.
type DeluxeConfig struct {
	Env string // sandbox | production

	ClientID     string
	ClientSecret string
	PartnerToken string

	JWTSecret   string
	AccessToken string

	// Optional overrides; when empty the env-derived hosts are used.
	GatewayBase  string
	OAuthURL     string
	EmbeddedBase string
}

type SMTPConfig struct {
	Host          string
	Port          string
	User          string
	Pass          string
	From          string
	FromName      string
	TLSMode       string // "", "tls", "starttls"
	SkipVerifyTLS bool
}

const (
	gatewayBaseSandbox = "https://sandbox.api.deluxe.com/dpp/v1/gateway"
	gatewayBaseProd    = "https://api.deluxe.com/dpp/v1/gateway"

	oauthURLSandbox = "https://sandbox.api.deluxe.com/secservices/oauth2/v2/token"
	oauthURLProd    = "https://api.deluxe.com/secservices/oauth2/v2/token"

	embeddedBaseSandbox = "https://payments2.sandbox.deluxe.com"
	embeddedBaseProd    = "https://payments2.deluxe.com"
)

func Load() (Config, error) {
	cfg := Config{
		Env:     envOr("APP_ENV", "development"),
		Port:    envOr("PORT", "8080"),
		BaseURL: envOr("BASE_URL", "http://localhost:8080"),
		DBDSN:   os.Getenv("DB_DSN"),
		Deluxe: DeluxeConfig{
			Env:          envOr("DELUXE_ENV", "sandbox"),
			ClientID:     os.Getenv("DELUXE_CLIENT_ID"),
			ClientSecret: os.Getenv("DELUXE_CLIENT_SECRET"),
			PartnerToken: os.Getenv("DELUXE_PARTNER_TOKEN"),
			JWTSecret:    os.Getenv("DELUXE_JWT_SECRET"),
			AccessToken:  os.Getenv("DELUXE_ACCESS_TOKEN"),
			GatewayBase:  os.Getenv("DELUXE_GATEWAY_BASE"),
			OAuthURL:     os.Getenv("DELUXE_OAUTH_URL"),
			EmbeddedBase: os.Getenv("DELUXE_EMBEDDED_BASE"),
		},
		SMTP: SMTPConfig{
			Host:          envOr("SMTP_HOST", "localhost"),
			Port:          envOr("SMTP_PORT", "1025"),
			User:          os.Getenv("SMTP_USER"),
			Pass:          os.Getenv("SMTP_PASS"),
			From:          envOr("SMTP_FROM", "no-reply@ranchodepalomablanca.com"),
			FromName:      envOr("SMTP_FROM_NAME", "Rancho de Paloma Blanca"),
			TLSMode:       os.Getenv("SMTP_TLS_MODE"),
			SkipVerifyTLS: os.Getenv("SMTP_SKIP_VERIFY_TLS") == "true",
		},
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	if cfg.DBDSN == "" {
		return Config{}, fmt.Errorf("config: DB_DSN is required")
	}
	if cfg.Deluxe.Env != "sandbox" && cfg.Deluxe.Env != "production" {
		return Config{}, fmt.Errorf("config: DELUXE_ENV must be sandbox or production, got %q", cfg.Deluxe.Env)
	}

	return cfg, nil
}

// IsProduction reports whether the gateway side runs against live Deluxe hosts.
func (d DeluxeConfig) IsProduction() bool { return d.Env == "production" }

func (d DeluxeConfig) ResolveGatewayBase() string {
	if d.GatewayBase != "" {
		return d.GatewayBase
	}
	if d.IsProduction() {
		return gatewayBaseProd
	}
	return gatewayBaseSandbox
}

func (d DeluxeConfig) ResolveOAuthURL() string {
	if d.OAuthURL != "" {
		return d.OAuthURL
	}
	if d.IsProduction() {
		return oauthURLProd
	}
	return oauthURLSandbox
}

func (d DeluxeConfig) ResolveEmbeddedBase() string {
	if d.EmbeddedBase != "" {
		return d.EmbeddedBase
	}
	if d.IsProduction() {
		return embeddedBaseProd
	}
	return embeddedBaseSandbox
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
