package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:8080"
  read_timeout: "60s"

relay:
  default_model: "gpt-4o"
  max_tokens: 2000

upstream:
  base_url: "https://llm.internal/v1"
  timeout: "30s"

credentials:
  mode: "server"
  secret_name: "vet-llm-key"

telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:8080" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:8080", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("expected read timeout %v, got %v", 60*time.Second, cfg.Server.ReadTimeout)
	}
	if cfg.Relay.DefaultModel != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %q", cfg.Relay.DefaultModel)
	}
	if cfg.Relay.MaxTokens != 2000 {
		t.Errorf("expected max tokens 2000, got %d", cfg.Relay.MaxTokens)
	}
	if cfg.Upstream.Timeout != 30*time.Second {
		t.Errorf("expected upstream timeout 30s, got %v", cfg.Upstream.Timeout)
	}
	if cfg.Credentials.Mode != CredentialModeServer {
		t.Errorf("expected server mode, got %q", cfg.Credentials.Mode)
	}
	if cfg.Credentials.SecretName != "vet-llm-key" {
		t.Errorf("expected secret name vet-llm-key, got %q", cfg.Credentials.SecretName)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
	// untouched sections receive defaults
	if cfg.Relay.Temperature == nil || *cfg.Relay.Temperature != DefaultTemperature {
		t.Errorf("expected default temperature, got %v", cfg.Relay.Temperature)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server:\n  listen_address: [unterminated\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
credentials:
  mode: "both"
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var valErr ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if valErr.Errors[0].Field != "credentials.mode" {
		t.Errorf("expected credentials.mode error, got %q", valErr.Errors[0].Field)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:8080"
credentials:
  mode: "client"
`)

	t.Setenv("VETCHAT_SERVER_LISTEN_ADDRESS", "0.0.0.0:9999")
	t.Setenv("VETCHAT_CREDENTIALS_MODE", "server")
	t.Setenv("VETCHAT_CREDENTIALS_API_KEY", "sk-from-env")
	t.Setenv("VETCHAT_UPSTREAM_TIMEOUT", "15s")
	t.Setenv("VETCHAT_RELAY_MAX_TOKENS", "800")
	t.Setenv("VETCHAT_RELAY_RATE_LIMIT_ENABLED", "true")
	t.Setenv("VETCHAT_SERVER_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("VETCHAT_TELEMETRY_METRICS_ENABLED", "false")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9999" {
		t.Errorf("expected env listen address, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Credentials.Mode != CredentialModeServer {
		t.Errorf("expected env mode server, got %q", cfg.Credentials.Mode)
	}
	if cfg.Credentials.APIKey != "sk-from-env" {
		t.Error("expected API key from environment")
	}
	if cfg.Upstream.Timeout != 15*time.Second {
		t.Errorf("expected 15s timeout, got %v", cfg.Upstream.Timeout)
	}
	if cfg.Relay.MaxTokens != 800 {
		t.Errorf("expected 800 max tokens, got %d", cfg.Relay.MaxTokens)
	}
	if !cfg.Relay.RateLimit.Enabled {
		t.Error("expected rate limit enabled from env")
	}
	if len(cfg.Server.CORS.AllowedOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.Server.CORS.AllowedOrigins)
	}
	if cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("expected metrics disabled from env")
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("VETCHAT_UPSTREAM_BASE_URL", "http://localhost:11434/v1")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}
	if cfg.Upstream.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("expected env base URL, got %q", cfg.Upstream.BaseURL)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected default listen address, got %q", cfg.Server.ListenAddress)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidEnvValue(t *testing.T) {
	t.Setenv("VETCHAT_UPSTREAM_TIMEOUT", "soon")

	_, err := LoadConfigWithEnvOverrides("")
	if err == nil {
		t.Fatal("expected error for unparseable duration")
	}
	if !strings.Contains(err.Error(), "environment overrides") {
		t.Errorf("unexpected error: %v", err)
	}
}
