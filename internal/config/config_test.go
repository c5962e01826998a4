package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/chronobus")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.SessionTTL != 30*24*time.Hour {
		t.Fatalf("expected 30 day session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.ConfirmTTL != 3*time.Hour {
		t.Fatalf("expected 3h confirm ttl, got %v", cfg.ConfirmTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.BcryptCost)
	}
	if cfg.AllowedOrigin != "http://localhost:5173" {
		t.Fatalf("unexpected allowed origin %q", cfg.AllowedOrigin)
	}
	if !cfg.MigrationsEnabled || cfg.IsDevelopment() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfig_RequiresSecretAndDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when required variables are missing")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/chronobus")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "development")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("RECOVERY_WINDOW", "2m")
	t.Setenv("REDIS_DB", "2")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.IsDevelopment() || cfg.SessionTTL != time.Hour || cfg.RecoveryWindow != 2*time.Minute || cfg.RedisDB != 2 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}
