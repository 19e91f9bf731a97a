package config

import "testing"

func TestValidateRequiresStorageTarget(t *testing.T) {
	cfg := Load()
	cfg.DBPath = ""
	cfg.DatabaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when no storage target is configured")
	}

	cfg.DBPath = "database/local_db.json"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("file store config should validate: %v", err)
	}
}

func TestValidateRejectsWeakJWTSecret(t *testing.T) {
	cfg := Load()
	cfg.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short JWT secret")
	}

	cfg.JWTSecret = "change-me-in-production"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for default JWT secret")
	}

	cfg.JWTSecret = "a-sufficiently-long-secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("strong secret should validate: %v", err)
	}
}

func TestGetEnvCSV(t *testing.T) {
	t.Setenv("TEST_CSV_KEY", " a , b ,, c ")
	got := getEnvCSV("TEST_CSV_KEY", []string{"fallback"})
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("unexpected csv parse: %v", got)
	}

	t.Setenv("TEST_CSV_KEY", "  ")
	got = getEnvCSV("TEST_CSV_KEY", []string{"fallback"})
	if len(got) != 1 || got[0] != "fallback" {
		t.Fatalf("expected fallback, got %v", got)
	}
}
