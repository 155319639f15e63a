// Package config provides configuration loading, validation, and hot reload
// for the vetchat relay.
//
// Configuration is read from a YAML file, overridden by VETCHAT_* environment
// variables, completed with defaults, and validated. All validation errors are
// collected and reported together.
//
// # Loading
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// An empty path builds the configuration from defaults and the environment
// only, which is how container deployments usually run.
//
// # Environment Overrides
//
// Every field has a variable named after its YAML path:
//
//	VETCHAT_SERVER_LISTEN_ADDRESS=0.0.0.0:8080
//	VETCHAT_CREDENTIALS_MODE=server
//	VETCHAT_UPSTREAM_TIMEOUT=45s
//	VETCHAT_TELEMETRY_LOGGING_LEVEL=debug
//
// # Credential Modes
//
// Exactly one sourcing mode is active per deployment:
//
//   - client: each request carries its own key, which must start with
//     credentials.key_prefix.
//   - server: the relay resolves one key at startup and never echoes it.
//
// # Global Configuration
//
// Initialize stores the loaded configuration as a process-wide singleton,
// and Watcher reloads it when the file changes:
//
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
package config
