// Package auth issues and checks the HS256 bearer tokens that guard catalog writes.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeWrite is the scope a token needs to create, update or delete properties.
const ScopeWrite = "properties:write"

const issuer = "property-catalog"

type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// HasScope reports whether scope appears in the space separated scope claim.
func (c *Claims) HasScope(scope string) bool {
	for _, s := range strings.Fields(c.Scope) {
		if s == scope {
			return true
		}
	}
	return false
}

type TokenDetails struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	TokenType string `json:"token_type"`
}

func GenerateJWT(subject, scope, secret string, ttl time.Duration) (*TokenDetails, error) {
	if secret == "" {
		return nil, errors.New("secret key cannot be empty")
	}
	if subject == "" {
		return nil, errors.New("subject cannot be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	now := time.Now()
	claims := &Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &TokenDetails{
		Token:     signed,
		ExpiresIn: int64(ttl / time.Second),
		TokenType: "Bearer",
	}, nil
}

func ValidateJWT(tokenString, secret string) (*Claims, error) {
	if secret == "" {
		return nil, errors.New("secret key cannot be empty")
	}
	if tokenString == "" {
		return nil, errors.New("token string cannot be empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
