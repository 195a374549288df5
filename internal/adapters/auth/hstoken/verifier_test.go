package hstoken

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func TestVerifyValidToken(t *testing.T) {
	v := NewVerifier("s3cret")

	tok := signed(t, "s3cret", jwt.MapClaims{
		"sub":   "user-1",
		"email": "user-1@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.Verify(context.Background(), tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "user-1@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	v := NewVerifier("s3cret")

	tok := signed(t, "otro", jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	if _, err := v.Verify(context.Background(), tok); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	v := NewVerifier("s3cret")

	tok := signed(t, "s3cret", jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	if _, err := v.Verify(context.Background(), tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestVerifyUserIDFallback(t *testing.T) {
	v := NewVerifier("s3cret")

	tok := signed(t, "s3cret", jwt.MapClaims{
		"user_id": "user-2",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.Verify(context.Background(), tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "user-2" {
		t.Fatalf("expected user_id fallback, got %+v", claims)
	}
}

func TestVerifyMissingSubject(t *testing.T) {
	v := NewVerifier("s3cret")

	tok := signed(t, "s3cret", jwt.MapClaims{
		"email": "x@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	if _, err := v.Verify(context.Background(), tok); err == nil {
		t.Fatal("expected error without subject")
	}
}
