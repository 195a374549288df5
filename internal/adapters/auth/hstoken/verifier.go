// Package hstoken verifica JWTs firmados con HS256 usando el secreto
// compartido JWT_SECRET. Es el verificador por defecto cuando no hay
// servicio de identidad remoto.
package hstoken

import (
	"context"
	"errors"
	"strings"

	"shelter-ops/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(ctx context.Context, tokenString string) (auth.Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" || len(v.secret) == 0 {
		return auth.Claims{}, ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return auth.Claims{}, ErrInvalidToken
	}

	claims := auth.Claims{}
	if sub, ok := mc["sub"].(string); ok {
		claims.UserID = sub
	}
	if claims.UserID == "" {
		if uid, ok := mc["user_id"].(string); ok {
			claims.UserID = uid
		}
	}
	if email, ok := mc["email"].(string); ok {
		claims.Email = email
	}

	if strings.TrimSpace(claims.UserID) == "" {
		return auth.Claims{}, ErrInvalidToken
	}
	return claims, nil
}
