package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret")

	raw, err := m.Issue("user-1", "a@example.com", "USER", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := m.Validate(raw)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Fatalf("got userID %q, want %q", claims.UserID, "user-1")
	}
	if claims.Email != "a@example.com" {
		t.Fatalf("got email %q, want %q", claims.Email, "a@example.com")
	}
	if claims.Role != "USER" {
		t.Fatalf("got role %q, want %q", claims.Role, "USER")
	}
}

func TestValidate_Expired(t *testing.T) {
	m := NewTokenManager("test-secret")

	raw, err := m.Issue("user-1", "a@example.com", "USER", -time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := m.Validate(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a")
	verifier := NewTokenManager("secret-b")

	raw, err := issuer.Issue("user-1", "a@example.com", "USER", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := verifier.Validate(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestValidate_Malformed(t *testing.T) {
	m := NewTokenManager("test-secret")

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.Validate(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", raw, err)
		}
	}
}
