package config

import (
	"testing"
)

func TestLoadRequiresDSNAndSecret(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Error("Load accepted an empty DB_DSN")
	}

	t.Setenv("DB_DSN", "user:pass@tcp(localhost:3306)/wuroud")
	if _, err := Load(); err == nil {
		t.Error("Load accepted an empty JWT_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "user:pass@tcp(localhost:3306)/wuroud")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SALES_RETENTION_DAYS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Sales.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", cfg.Sales.RetentionDays)
	}
	if cfg.Shop.Name != "WUROUD" {
		t.Errorf("Shop.Name = %q, want WUROUD", cfg.Shop.Name)
	}
}

func TestGetenvIntRejectsGarbage(t *testing.T) {
	t.Setenv("SALES_RETENTION_DAYS", "not-a-number")
	if got := getenvInt("SALES_RETENTION_DAYS", 30); got != 30 {
		t.Errorf("getenvInt = %d, want fallback 30", got)
	}
	t.Setenv("SALES_RETENTION_DAYS", "-4")
	if got := getenvInt("SALES_RETENTION_DAYS", 30); got != 30 {
		t.Errorf("getenvInt(-4) = %d, want fallback 30", got)
	}
}
