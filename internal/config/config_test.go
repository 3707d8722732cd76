package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredDBEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_NAME", "bridges")
	t.Setenv("DB_USER", "b2p")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db.internal")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredDBEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Database.Port != 5432 {
		t.Fatalf("expected default port 5432, got %d", cfg.Database.Port)
	}
	if cfg.Database.Schema != "public" || cfg.Database.Table != "B2P_oct_2018" {
		t.Fatalf("unexpected table location %s.%s", cfg.Database.Schema, cfg.Database.Table)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Name != "bridges" {
		t.Fatalf("credentials not mapped: %+v", cfg.Database)
	}
	if cfg.Server.Port != "8000" {
		t.Fatalf("expected default server port 8000, got %s", cfg.Server.Port)
	}
	if !cfg.Database.VerifySchema {
		t.Fatalf("expected schema verification on by default")
	}
	if cfg.Observability.ServiceName != ServiceName {
		t.Fatalf("expected service name %q, got %q", ServiceName, cfg.Observability.ServiceName)
	}
	if cfg.Observability.Environment != cfg.Primary.Env {
		t.Fatalf("observability environment %q does not follow primary env %q",
			cfg.Observability.Environment, cfg.Primary.Env)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredDBEnv(t)
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("DB_VERIFY_SCHEMA", "false")
	t.Setenv("BRIDGEAPI_PRIMARY__ENV", "production")
	t.Setenv("BRIDGEAPI_SERVER__PORT", "9090")
	t.Setenv("BRIDGEAPI_SERVER__CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("BRIDGEAPI_OBSERVABILITY__LOGGING__LEVEL", "warn")
	t.Setenv("BRIDGEAPI_OBSERVABILITY__HEALTH_CHECKS__INTERVAL", "1m")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Database.Port != 6543 {
		t.Fatalf("expected DB_PORT to be honoured, got %d", cfg.Database.Port)
	}
	if cfg.Database.MaxConns != 25 {
		t.Fatalf("expected max conns 25, got %d", cfg.Database.MaxConns)
	}
	if cfg.Database.VerifySchema {
		t.Fatalf("expected schema verification disabled")
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.Server.Port)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 CORS origins, got %v", cfg.Server.CORSAllowedOrigins)
	}
	if cfg.Observability.Logging.Level != "warn" {
		t.Fatalf("expected log level warn, got %s", cfg.Observability.Logging.Level)
	}
	// Untouched observability defaults survive a partial override.
	if cfg.Observability.Logging.Format != "json" {
		t.Fatalf("expected default log format json, got %s", cfg.Observability.Logging.Format)
	}
	if cfg.Observability.HealthChecks.Interval != time.Minute {
		t.Fatalf("expected interval 1m, got %s", cfg.Observability.HealthChecks.Interval)
	}
	if !cfg.Observability.IsProduction() {
		t.Fatalf("expected production environment")
	}
}

func TestLoadConfig_MissingCredentials(t *testing.T) {
	t.Setenv("DB_NAME", "bridges")
	t.Setenv("DB_USER", "b2p")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "")

	_, err := LoadConfig()
	if err == nil {
		t.Fatalf("expected error for missing DB_PASSWORD")
	}
	if !strings.Contains(err.Error(), "Password") {
		t.Fatalf("expected error to name the Password field, got %v", err)
	}
}

func TestLoadConfig_InvalidLogLevel(t *testing.T) {
	setRequiredDBEnv(t)
	t.Setenv("BRIDGEAPI_OBSERVABILITY__LOGGING__LEVEL", "verbose")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for invalid log level")
	}
}

func TestObservabilityConfig_UnknownCheck(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	cfg.HealthChecks.Checks = []string{"database", "kafka"}

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown check")
	}
}

func TestObservabilityConfig_GetLogLevel(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	cfg.Logging.Level = ""

	cfg.Environment = "production"
	if got := cfg.GetLogLevel(); got != "info" {
		t.Fatalf("production default: expected info, got %s", got)
	}

	cfg.Environment = "development"
	if got := cfg.GetLogLevel(); got != "debug" {
		t.Fatalf("development default: expected debug, got %s", got)
	}
}
