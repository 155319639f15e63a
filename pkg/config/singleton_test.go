package config

import (
	"os"
	"sync"
	"testing"
)

func resetGlobal() {
	current.Store(nil)
	initOnce = sync.Once{}
}

func TestInitialize(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:8181"
`)

	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if cfg.Server.ListenAddress != "127.0.0.1:8181" {
		t.Errorf("expected listen address %q, got %q", "127.0.0.1:8181", cfg.Server.ListenAddress)
	}
}

func TestInitialize_MultipleCallsIgnored(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	first := writeConfig(t, "server:\n  listen_address: \"127.0.0.1:1111\"\n")
	second := writeConfig(t, "server:\n  listen_address: \"127.0.0.1:2222\"\n")

	if err := Initialize(first); err != nil {
		t.Fatalf("first Initialize failed: %v", err)
	}
	if err := Initialize(second); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}

	if got := GetConfig().Server.ListenAddress; got != "127.0.0.1:1111" {
		t.Errorf("second Initialize should be ignored, got %q", got)
	}
}

func TestGetConfig_BeforeInitialize(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	if GetConfig() != nil {
		t.Error("expected nil config before initialization")
	}
}

func TestReloadConfig(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	path := writeConfig(t, "telemetry:\n  logging:\n    level: \"info\"\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("telemetry:\n  logging:\n    level: \"debug\"\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	cfg, err := ReloadConfig(path)
	if err != nil {
		t.Fatalf("ReloadConfig failed: %v", err)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected reloaded level debug, got %q", cfg.Telemetry.Logging.Level)
	}
	if GetConfig() != cfg {
		t.Error("expected global config to be replaced")
	}
}

func TestReloadConfig_ValidationFailureKeepsPrevious(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	path := writeConfig(t, "telemetry:\n  logging:\n    level: \"info\"\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	before := GetConfig()

	if err := os.WriteFile(path, []byte("telemetry:\n  logging:\n    level: \"chatty\"\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	if _, err := ReloadConfig(path); err == nil {
		t.Fatal("expected reload to fail validation")
	}
	if GetConfig() != before {
		t.Error("failed reload must keep the previous configuration")
	}
}

func TestMustGetConfig(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	defer func() {
		if recover() == nil {
			t.Error("expected panic before initialization")
		}
	}()
	MustGetConfig()
}
