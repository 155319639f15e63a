package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vetchat/relay/pkg/config"
)

// Manager tries providers in order and returns the first value found.
type Manager struct {
	providers []Provider
}

// NewManager creates a manager over providers, tried in the given order.
func NewManager(providers ...Provider) *Manager {
	return &Manager{providers: providers}
}

// GetSecret returns the first value any provider has for name. It returns
// an error wrapping ErrNotFound only when every provider reports the
// secret missing; any other provider failure is returned as is.
func (m *Manager) GetSecret(ctx context.Context, name string) (string, error) {
	var errs []error
	for _, p := range m.providers {
		value, err := p.GetSecret(ctx, name)
		if err == nil {
			slog.Debug("secret resolved", "provider", p.Provider(), "name", name)
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("provider %s: %w", p.Provider(), err)
		}
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return "", fmt.Errorf("%w: %s (no providers configured)", ErrNotFound, name)
	}
	return "", errors.Join(errs...)
}

// ForCredentials builds the provider chain for a credentials section:
// environment first, then the secrets directory when one is set.
func ForCredentials(cfg *config.CredentialsConfig) (*Manager, error) {
	providers := []Provider{NewEnvProvider("")}
	if cfg.SecretsDir != "" {
		fp, err := NewFileProvider(cfg.SecretsDir)
		if err != nil {
			return nil, err
		}
		providers = append(providers, fp)
	}
	return NewManager(providers...), nil
}

// ServerKey resolves the server-held upstream key once at startup. It
// returns "" without error in client mode, and also in server mode when no
// key is configured anywhere, since that case is reported per request.
// An inline key in the configuration takes precedence over providers.
func ServerKey(ctx context.Context, cfg *config.CredentialsConfig) (string, error) {
	if cfg.Mode != config.CredentialModeServer {
		return "", nil
	}
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	if cfg.SecretName == "" {
		return "", nil
	}

	m, err := ForCredentials(cfg)
	if err != nil {
		return "", err
	}
	key, err := m.GetSecret(ctx, cfg.SecretName)
	if errors.Is(err, ErrNotFound) {
		slog.Warn("server-held API key not configured; relay requests will fail until it is set",
			"secret", cfg.SecretName)
		return "", nil
	}
	return key, err
}
