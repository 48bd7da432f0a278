// Package jwt signs and verifies BillingLogix request tokens.
//
// A request token carries three claims, all times in epoch milliseconds:
//
//	{"iss": "<access key>", "iat": 1700000000000, "exp": 1700000030000}
//
// Tokens are generated per request and never reused.
//
//	svc, err := jwt.NewService(&jwt.Config{})
//	token, err := svc.GenerateToken(auth.Keys{AccessKey: "ABC123", SecretKey: "s3cr3t"})
//	claims, err := svc.Parse(token, "s3cr3t")
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/billinglogix/billinglogix-go/auth"
)

var (
	// ErrTokenExpired is returned by Parse when "exp" has passed.
	ErrTokenExpired = errors.New("jwt: token expired")
	// ErrInvalidClaims is returned by Parse when a claim is missing or mistyped.
	ErrInvalidClaims = errors.New("jwt: invalid claims")
)

// Claims are the decoded request token claims.
type Claims struct {
	Issuer    string `json:"iss"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// IssuedTime returns IssuedAt as a time.Time.
func (c *Claims) IssuedTime() time.Time { return time.UnixMilli(c.IssuedAt) }

// ExpiresTime returns ExpiresAt as a time.Time.
func (c *Claims) ExpiresTime() time.Time { return time.UnixMilli(c.ExpiresAt) }

// Service generates and parses request tokens.
type Service struct {
	cfg Config
}

var _ auth.TokenGenerator = (*Service)(nil)

// NewService creates a new token service.
func NewService(cfg *Config) (*Service, error) {
	c := *cfg
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: c}, nil
}

// GenerateToken signs a fresh token for keys. Missing keys yield
// auth.ErrNoCredentials.
func (s *Service) GenerateToken(keys auth.Keys) (string, error) {
	if !keys.Valid() {
		return "", auth.ErrNoCredentials
	}
	iat := s.cfg.Now().UnixMilli()
	claims := gojwt.MapClaims{
		"iss": keys.AccessKey,
		"iat": iat,
		"exp": iat + s.cfg.TTL.Milliseconds(),
	}
	token := gojwt.NewWithClaims(s.cfg.signingMethod(), claims)
	signed, err := token.SignedString([]byte(keys.SecretKey))
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature with secret and checks "exp" in
// milliseconds against the service clock.
func (s *Service) Parse(tokenString, secret string) (*Claims, error) {
	mapClaims := gojwt.MapClaims{}
	token, err := gojwt.ParseWithClaims(tokenString, mapClaims, func(t *gojwt.Token) (interface{}, error) {
		if t.Method.Alg() != s.cfg.signingMethod().Alg() {
			return nil, fmt.Errorf("jwt: unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(secret), nil
	},
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		// registered-claim checks assume seconds; expiry is checked below in ms
		gojwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("jwt: parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("jwt: invalid token")
	}

	claims, err := decodeClaims(mapClaims)
	if err != nil {
		return nil, err
	}
	if s.cfg.Now().UnixMilli() > claims.ExpiresAt {
		return claims, ErrTokenExpired
	}
	return claims, nil
}

func decodeClaims(m gojwt.MapClaims) (*Claims, error) {
	iss, ok := m["iss"].(string)
	if !ok || iss == "" {
		return nil, fmt.Errorf("%w: iss", ErrInvalidClaims)
	}
	iat, ok := m["iat"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: iat", ErrInvalidClaims)
	}
	exp, ok := m["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: exp", ErrInvalidClaims)
	}
	return &Claims{Issuer: iss, IssuedAt: int64(iat), ExpiresAt: int64(exp)}, nil
}
