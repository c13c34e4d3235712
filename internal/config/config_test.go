package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("INVITE_MAX_ATTEMPTS", "")
	t.Setenv("EMAIL_CHECK_MAX_ATTEMPTS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ServerPort != "5000" {
		t.Errorf("ServerPort = %q, want 5000", cfg.ServerPort)
	}
	if cfg.InviteMaxAttempts != 5 {
		t.Errorf("InviteMaxAttempts = %d, want 5", cfg.InviteMaxAttempts)
	}
	if cfg.EmailCheckMaxAttempts != 10 {
		t.Errorf("EmailCheckMaxAttempts = %d, want 10", cfg.EmailCheckMaxAttempts)
	}
	if cfg.InvitationTTLDays != 7 {
		t.Errorf("InvitationTTLDays = %d, want 7", cfg.InvitationTTLDays)
	}
	if !cfg.RateLimitEnabled {
		t.Error("RateLimitEnabled should default to true")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("INVITE_MAX_ATTEMPTS", "3")
	t.Setenv("INVITE_WINDOW_MINUTES", "30")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.InviteMaxAttempts != 3 {
		t.Errorf("InviteMaxAttempts = %d, want 3", cfg.InviteMaxAttempts)
	}
	if cfg.InviteWindowMinutes != 30 {
		t.Errorf("InviteWindowMinutes = %d, want 30", cfg.InviteWindowMinutes)
	}
	if cfg.RateLimitEnabled {
		t.Error("RateLimitEnabled should be overridable to false")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("expected an error when JWT_SECRET is unset")
	}
}

func TestGetEnvIntBadValue(t *testing.T) {
	t.Setenv("INVITE_MAX_ATTEMPTS", "not-a-number")

	if got := getEnvInt("INVITE_MAX_ATTEMPTS", 5); got != 5 {
		t.Errorf("getEnvInt = %d, want fallback 5", got)
	}
}
