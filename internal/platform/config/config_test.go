package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GATEWAY_URL", "")
	t.Setenv("GATEWAY_TIMEOUT", "not-a-duration")
	t.Setenv("GATEWAY_DOUBLE_ENCODE", "true")

	cfg := Load()
	if cfg.GatewayURL != "http://localhost:8090" {
		t.Fatalf("unexpected gateway url %q", cfg.GatewayURL)
	}
	if cfg.GatewayTimeout != 15*time.Second {
		t.Fatalf("invalid duration should fall back, got %v", cfg.GatewayTimeout)
	}
	if !cfg.DoubleEncode {
		t.Fatal("expected double encoding enabled")
	}
	if err := cfg.ValidateConsole(); err != nil {
		t.Fatalf("default console config should validate: %v", err)
	}
	if err := cfg.ValidateGateway(); err != nil {
		t.Fatalf("default gateway config should validate: %v", err)
	}
}

func TestProductionRequiresSecrets(t *testing.T) {
	cfg := Config{
		GatewayURL:      "http://gateway.internal",
		GatewayTimeout:  time.Second,
		SessionTTL:      time.Hour,
		GatewayTokenTTL: time.Hour,
		MaxBodyBytes:    4096,
		Environment:     "production",
	}
	if err := cfg.ValidateConsole(); err == nil {
		t.Fatal("expected missing session secret to fail")
	}
	cfg.SessionSecret = "strong"
	if err := cfg.ValidateConsole(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.DatabaseURL = "postgres://localhost/hr"
	cfg.GatewayJWTSecret = "strong"
	cfg.RunSeed = true
	cfg.SeedAdminPassword = DefaultSeedPassword
	if err := cfg.ValidateGateway(); err == nil {
		t.Fatal("expected default seed password to be rejected in production")
	}
	cfg.SeedAdminPassword = "Another-Secret-1"
	if err := cfg.ValidateGateway(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
