package config

import (
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	current  atomic.Pointer[Config]
	initOnce sync.Once
)

// Initialize loads the configuration at path, with environment overrides,
// and installs it as the process-wide configuration. Only the first call
// has any effect; its error is returned to that caller alone.
func Initialize(path string) error {
	var err error
	initOnce.Do(func() {
		var cfg *Config
		if cfg, err = LoadConfigWithEnvOverrides(path); err == nil {
			current.Store(cfg)
		}
	})
	return err
}

// GetConfig returns the process-wide configuration, or nil before a
// successful Initialize. Callers must treat the result as read-only; a
// reload swaps in a new value rather than mutating it.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig replaces the process-wide configuration. Intended for tests.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// ReloadConfig loads path again and swaps the result in. On failure the
// previous configuration stays active.
func ReloadConfig(path string) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to reload configuration: %w", err)
	}
	current.Store(cfg)
	return cfg, nil
}

// MustGetConfig is GetConfig for code that runs after startup. It panics
// when Initialize has not succeeded.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
