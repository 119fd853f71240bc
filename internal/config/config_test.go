package config

import (
	"errors"
	"testing"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ALLOW_MANUAL_CONNECT", "")

	_, err := Load()
	var missing MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingError, got %v", err)
	}
	if missing.Key != "DATABASE_URL" {
		t.Fatalf("unexpected key %q", missing.Key)
	}
}

func TestLoadManualConnectAllowsEmptyURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ALLOW_MANUAL_CONNECT", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.AllowManualConnect {
		t.Fatal("expected manual connect to be enabled")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/valkiria")
	t.Setenv("PORT", "")
	t.Setenv("LOG_RETENTION_DAYS", "30")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("ANALYTICS_DEFAULT_DAYS", "nope")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.LogRetentionDays != 7 {
		t.Errorf("retention = %d, want 7", cfg.LogRetentionDays)
	}
	if len(cfg.CorsOrigins) != 2 || cfg.CorsOrigins[1] != "http://b.test" {
		t.Errorf("cors = %v", cfg.CorsOrigins)
	}
	if cfg.AnalyticsDefaultDays != 30 {
		t.Errorf("analytics days = %d", cfg.AnalyticsDefaultDays)
	}
}
