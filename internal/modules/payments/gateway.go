package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/config"
	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/shared/apperr"
)

// Gateway is the outbound surface of the Deluxe API as the orchestrators see
// it. Implemented by *GatewayClient; tests substitute fakes.
type Gateway interface {
	AcquireToken(ctx context.Context) (string, error)
	CreatePaymentLink(ctx context.Context, bearer string, body PaymentLinkRequest) (int, []byte, error)
	SearchPayments(ctx context.Context, bearer string, body PaymentSearchRequest) (int, []byte, error)
	Refund(ctx context.Context, bearer string, body RefundRequestBody) (int, []byte, error)
	EmbeddedMerchantStatus(ctx context.Context, signedToken string) (int, []byte, error)
}

// GatewayClient talks to Deluxe: OAuth-protected transactional endpoints
// (Bearer + static PartnerToken header) and the JWT-protected embedded
// endpoints. Single-attempt, no retries; the caller is the retry boundary.
type GatewayClient struct {
	httpc *http.Client

	clientID     string
	clientSecret string
	partnerToken string

	oauthURL     string
	gatewayBase  string
	embeddedBase string
}

func NewGatewayClient(cfg config.DeluxeConfig) *GatewayClient {
	return &GatewayClient{
		httpc:        &http.Client{Timeout: 30 * time.Second},
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		partnerToken: cfg.PartnerToken,
		oauthURL:     cfg.ResolveOAuthURL(),
		gatewayBase:  strings.TrimRight(cfg.ResolveGatewayBase(), "/"),
		embeddedBase: strings.TrimRight(cfg.ResolveEmbeddedBase(), "/"),
	}
}

// AcquireToken performs the client-credentials exchange. The bearer is held
// for one call sequence only; every orchestrated operation re-authenticates.
func (g *GatewayClient) AcquireToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.oauthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperr.Wrap(err)
	}
	req.SetBasicAuth(g.clientID, g.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpc.Do(req)
	if err != nil {
		return "", apperr.Wrap(fmt.Errorf("oauth token request: %w", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperr.UpstreamErr(http.StatusInternalServerError,
			"Gateway authentication failed.",
			map[string]any{"status": resp.StatusCode, "body": string(body)})
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tok); err != nil || tok.AccessToken == "" {
		return "", apperr.UpstreamErr(http.StatusInternalServerError,
			"Gateway returned a malformed token response.",
			map[string]any{"body": string(body)})
	}
	return tok.AccessToken, nil
}

func (g *GatewayClient) CreatePaymentLink(ctx context.Context, bearer string, body PaymentLinkRequest) (int, []byte, error) {
	return g.postJSON(ctx, g.gatewayBase+"/paymentlinks", bearer, body)
}

func (g *GatewayClient) SearchPayments(ctx context.Context, bearer string, body PaymentSearchRequest) (int, []byte, error) {
	return g.postJSON(ctx, g.gatewayBase+"/payments", bearer, body)
}

func (g *GatewayClient) Refund(ctx context.Context, bearer string, body RefundRequestBody) (int, []byte, error) {
	return g.postJSON(ctx, g.gatewayBase+"/refunds", bearer, body)
}

// EmbeddedMerchantStatus posts the signed token to the embedded host. No
// Bearer header here; the token itself authenticates.
func (g *GatewayClient) EmbeddedMerchantStatus(ctx context.Context, signedToken string) (int, []byte, error) {
	return g.postJSON(ctx, g.embeddedBase+"/embedded/merchantStatus", "", map[string]string{"jwt": signedToken})
}

func (g *GatewayClient) postJSON(ctx context.Context, rawURL, bearer string, payload any) (int, []byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(buf))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
		if g.partnerToken != "" {
			req.Header.Set("PartnerToken", g.partnerToken)
		}
	}

	resp, err := g.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}
