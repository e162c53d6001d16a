package config

import (
	"errors"
	"testing"
)

func TestLoad_RequiresSecretOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SESSION_JWT_SECRET", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingSessionSecret) {
		t.Fatalf("expected ErrMissingSessionSecret, got %v", err)
	}
}

func TestLoad_DevFallbackSecret(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SESSION_JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.SessionSecret == "" {
		t.Fatalf("dev must get a fallback secret")
	}
}

func TestLoad_ExplicitSecretWins(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SESSION_JWT_SECRET", "strong-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.SessionSecret != "strong-secret" {
		t.Fatalf("got %q", cfg.SessionSecret)
	}
}
