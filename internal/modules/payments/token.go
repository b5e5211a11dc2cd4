package payments

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Token lifetimes Deluxe expects per embedded endpoint.
	MerchantStatusTokenTTL  = 5 * time.Minute
	EmbeddedSessionTokenTTL = 10 * time.Minute
)

// TokenSigner issues the short-lived HS256 tokens the embedded Deluxe
// endpoints require. Tokens are generated fresh per request and never cached.
type TokenSigner struct {
	secret      string
	accessToken string
	now         func() time.Time
}

func NewTokenSigner(secret, accessToken string) *TokenSigner {
	return &TokenSigner{secret: secret, accessToken: accessToken, now: time.Now}
}

// Sign produces a compact token carrying the merchant accessor credential,
// issued-at, expiry and the given endpoint-specific claims. A missing secret
// is a configuration error, not a retryable condition.
func (s *TokenSigner) Sign(claims map[string]any, ttl time.Duration) (string, time.Time, error) {
	if s.secret == "" {
		return "", time.Time{}, fmt.Errorf("token signer: DELUXE_JWT_SECRET is not configured")
	}

	now := s.now().UTC()
	exp := now.Add(ttl)

	mc := jwt.MapClaims{
		"accessToken": s.accessToken,
		"iat":         now.Unix(),
		"exp":         exp.Unix(),
	}
	for k, v := range claims {
		mc[k] = v
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	signed, err := t.SignedString([]byte(s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
