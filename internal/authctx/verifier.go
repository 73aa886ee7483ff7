// Package authctx is a minimal stand-in for the out-of-scope magic-link
// auth service. It validates a bearer JWT and extracts the identity claims
// the core depends on (user id, timezone, locale), grounded on the
// teacher's AuthService.ValidateToken/GenerateJWT pair but narrowed to
// verification only: issuance, registration, and session storage are left
// to the external collaborator this stands in for.
package authctx

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"reminder-engine/internal/domain/interfaces"
)

// JWTVerifier implements interfaces.IdentityVerifier against HS256 tokens
// carrying "user_id", "tz", and "locale" claims.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

var _ interfaces.IdentityVerifier = (*JWTVerifier)(nil)

func (v *JWTVerifier) VerifyToken(ctx context.Context, tokenString string) (interfaces.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return interfaces.Identity{}, fmt.Errorf("invalid token")
	}

	if exp, ok := claims["exp"].(float64); ok {
		if time.Unix(int64(exp), 0).Before(time.Now()) {
			return interfaces.Identity{}, fmt.Errorf("token expired")
		}
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return interfaces.Identity{}, fmt.Errorf("missing user_id claim")
	}

	tz, _ := claims["tz"].(string)
	if tz == "" {
		tz = "UTC"
	}
	locale, _ := claims["locale"].(string)
	if locale == "" {
		locale = "en"
	}

	return interfaces.Identity{
		UserID: uint64(userIDFloat),
		TZ:     tz,
		Locale: locale,
	}, nil
}

// Sign issues a token carrying the given identity, used by tests and by
// local tooling that needs to mint a bearer token without the external
// magic-link issuer.
func (v *JWTVerifier) Sign(identity interfaces.Identity, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": identity.UserID,
		"tz":      identity.TZ,
		"locale":  identity.Locale,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
