// Package auth verifies customer access tokens issued by the backend.
package auth

import (
	"errors"
	"fmt"
	"time"

	"froid-storefront/internal/config"
	"froid-storefront/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var signingMethod = jwt.SigningMethodHS256

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid access token")

// Claims is the customer access token payload.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks tokens against the shared secret.
type Verifier struct {
	secret []byte
	opts   []jwt.ParserOption
}

func NewVerifier(cfg config.AuthConfig) *Verifier {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{signingMethod.Alg()})}
	if cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWTIssuer))
	}
	return &Verifier{secret: []byte(cfg.JWTSecret), opts: opts}
}

// Actor validates tokenString and returns the customer it identifies.
// The raw token is kept on the actor so backend calls can forward it.
func (v *Verifier) Actor(tokenString string) (model.Actor, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != signingMethod {
			return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
		}
		return v.secret, nil
	}, v.opts...)
	if err != nil {
		return model.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return model.Actor{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return model.Actor{
		Kind:       model.ActorCustomer,
		CustomerID: claims.Subject,
		Email:      claims.Email,
		Token:      tokenString,
	}, nil
}

// Mint signs a token for customerID. Used by tests and local tooling.
func Mint(cfg config.AuthConfig, customerID, email string, now time.Time, ttl time.Duration) (string, error) {
	if cfg.JWTSecret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}

	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID,
			Issuer:    cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}
