package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewService("secret", time.Minute, time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "guard")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != userID || claims.Role != "guard" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestExpiredAccessToken(t *testing.T) {
	svc := NewService("secret", time.Minute, time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateAccessToken(uuid.New(), "driver")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	svc.now = time.Now
	if _, err := svc.ValidateAccessToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := NewService("one", time.Minute, time.Hour).GenerateAccessToken(uuid.New(), "owner")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := NewService("two", time.Minute, time.Hour).ValidateAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshTokenHashIsStable(t *testing.T) {
	token, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(token))
	}
	if HashToken(token) != HashToken(token) || HashToken(token) == token {
		t.Fatal("unexpected hash behaviour")
	}
}
