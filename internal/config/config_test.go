package config

import (
	"errors"
	"testing"
)

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingDatabaseURL) {
		t.Fatalf("expected ErrMissingDatabaseURL, got: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/digitspan?sslmode=disable")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port: got %q, want 8080", cfg.Port)
	}
	if cfg.DBMaxOpenConns != 25 || cfg.DBMaxIdleConns != 5 {
		t.Errorf("pool defaults: got open=%d idle=%d", cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	}
	if cfg.SessionTTLHours != 12 || cfg.JWTExpireHours != 24 {
		t.Errorf("ttl defaults: got session=%d jwt=%d", cfg.SessionTTLHours, cfg.JWTExpireHours)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat: got %q", cfg.LogFormat)
	}
}

func TestLoad_ProdRequiresJWTSecret(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/digitspan?sslmode=disable")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for default JWT secret in prod")
	}
}

func TestGetEnvInt_IgnoresGarbage(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	if got := getEnvInt("DB_MAX_OPEN_CONNS", 25); got != 25 {
		t.Errorf("got %d, want fallback 25", got)
	}
}
