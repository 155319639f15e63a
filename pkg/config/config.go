package config

import "time"

// Config is the root configuration structure for the vetchat relay.
// It contains all configuration sections for the HTTP server, the relay
// endpoint, the upstream chat-completion provider, credential sourcing,
// telemetry, and health probing.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS.
	Server ServerConfig `yaml:"server" envPrefix:"SERVER_"`

	// Relay contains configuration for the relay endpoint itself: routes,
	// generation parameters forwarded upstream, and request limits.
	Relay RelayConfig `yaml:"relay" envPrefix:"RELAY_"`

	// Upstream contains configuration for the chat-completion provider.
	Upstream UpstreamConfig `yaml:"upstream" envPrefix:"UPSTREAM_"`

	// Credentials selects how the upstream API key is sourced.
	Credentials CredentialsConfig `yaml:"credentials" envPrefix:"CREDENTIALS_"`

	// Telemetry contains configuration for logging, metrics, and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`

	// Health contains configuration for the scheduled upstream probe.
	Health HealthConfig `yaml:"health" envPrefix:"HEALTH_"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address" env:"LISTEN_ADDRESS"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must exceed the upstream timeout or slow completions are
	// cut off mid-response.
	// Default: 90s
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes" env:"MAX_HEADER_BYTES"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors" envPrefix:"CORS_"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
// The defaults reproduce the permissive headers the browser client expects.
type CORSConfig struct {
	// Enabled controls whether CORS headers are written. Validation rejects
	// false, since browser clients cannot reach the relay without them.
	// Default: true
	Enabled *bool `yaml:"enabled" env:"ENABLED"`

	// AllowedOrigins is a list of allowed origins. ["*"] allows any origin.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`

	// AllowedMethods is written as Access-Control-Allow-Methods.
	// Default: ["POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods" env:"ALLOWED_METHODS"`

	// AllowedHeaders is written as Access-Control-Allow-Headers.
	// Default: ["Content-Type", "Authorization"]
	AllowedHeaders []string `yaml:"allowed_headers" env:"ALLOWED_HEADERS"`

	// ExposedHeaders is written as Access-Control-Expose-Headers.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers" env:"EXPOSED_HEADERS"`

	// MaxAge is the preflight cache duration in seconds. Zero omits the header.
	MaxAge int `yaml:"max_age" env:"MAX_AGE"`
}

// IsEnabled reports whether CORS is enabled, treating an unset value as true.
func (c CORSConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// RelayConfig contains configuration for the relay endpoint.
type RelayConfig struct {
	// Paths are the routes the relay handler is mounted on.
	// Default: ["/api/chat", "/.netlify/functions/openai"]
	Paths []string `yaml:"paths" env:"PATHS"`

	// DefaultModel is used when a request omits the model identifier.
	// Default: "gpt-4o-mini"
	DefaultModel string `yaml:"default_model" env:"DEFAULT_MODEL"`

	// MaxTokens is the completion token ceiling sent upstream.
	// Default: 1500
	MaxTokens int `yaml:"max_tokens" env:"MAX_TOKENS"`

	// Temperature is the sampling temperature sent upstream.
	// Default: 0.3
	Temperature *float64 `yaml:"temperature" env:"TEMPERATURE"`

	// MaxBodyBytes caps the inbound request body. Base64 attachments make
	// bodies large, so the default is generous.
	// Default: 20971520 (20MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`

	// RateLimit optionally throttles the relay route.
	RateLimit RateLimitConfig `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
}

// RateLimitConfig contains token bucket settings for the relay route.
type RateLimitConfig struct {
	// Enabled turns rate limiting on.
	// Default: false
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// RequestsPerSecond is the sustained rate per client address.
	// Default: 2
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`

	// Burst is the bucket size per client address.
	// Default: 5
	Burst int `yaml:"burst" env:"BURST"`
}

// UpstreamConfig contains configuration for the chat-completion provider.
type UpstreamConfig struct {
	// Name identifies the provider in logs and metrics.
	// Default: "openai"
	Name string `yaml:"name" env:"NAME"`

	// BaseURL is the provider API root; "/chat/completions" is appended.
	// Default: "https://api.openai.com/v1"
	BaseURL string `yaml:"base_url" env:"BASE_URL"`

	// Timeout is the explicit deadline for one upstream call.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	// MaxIdleConns is the connection pool size.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`

	// IdleConnTimeout closes idle pooled connections.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout" env:"IDLE_CONN_TIMEOUT"`
}

// Credential sourcing modes. Exactly one is active per deployment.
const (
	// CredentialModeClient requires every request to carry its own API key.
	CredentialModeClient = "client"

	// CredentialModeServer uses a single key held by the relay process.
	CredentialModeServer = "server"
)

// CredentialsConfig selects how the upstream API key is sourced.
type CredentialsConfig struct {
	// Mode is "client" or "server".
	// Default: "client"
	Mode string `yaml:"mode" env:"MODE"`

	// KeyPrefix is the prefix a client-supplied key must carry.
	// Default: "sk-"
	KeyPrefix string `yaml:"key_prefix" env:"KEY_PREFIX"`

	// APIKey is a server-held key given inline. Prefer SecretName.
	APIKey string `yaml:"api_key" env:"API_KEY"`

	// SecretName names the server-held key in the secret providers. It is
	// looked up as an environment variable (upper-cased, hyphens to
	// underscores) and as a file under SecretsDir.
	// Default: "openai-api-key"
	SecretName string `yaml:"secret_name" env:"SECRET_NAME"`

	// SecretsDir is a directory of secret files (e.g. /run/secrets).
	SecretsDir string `yaml:"secrets_dir" env:"SECRETS_DIR"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging" envPrefix:"LOGGING_"`
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
	Tracing TracingConfig `yaml:"tracing" envPrefix:"TRACING_"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level" env:"LEVEL"`

	// Format is "json" or "text".
	// Default: "json"
	Format string `yaml:"format" env:"FORMAT"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source" env:"ADD_SOURCE"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint.
	// Default: true
	Enabled *bool `yaml:"enabled" env:"ENABLED"`

	// Path is the metrics route.
	// Default: "/metrics"
	Path string `yaml:"path" env:"PATH"`

	// Namespace prefixes every metric name.
	// Default: "vetchat"
	Namespace string `yaml:"namespace" env:"NAMESPACE"`

	// Subsystem follows Namespace in metric names.
	// Default: "relay"
	Subsystem string `yaml:"subsystem" env:"SUBSYSTEM"`

	// DurationBuckets are histogram buckets in seconds.
	DurationBuckets []float64 `yaml:"duration_buckets" env:"DURATION_BUCKETS"`
}

// IsEnabled reports whether metrics are enabled, treating an unset value as true.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled turns on span export.
	// Default: false
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Endpoint is the OTLP/gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure" env:"INSECURE"`

	// ServiceName is reported as service.name.
	// Default: "vetchat-relay"
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`

	// SampleRatio is the fraction of traces sampled (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio" env:"SAMPLE_RATIO"`
}

// ProbeDisabled turns off the scheduled upstream probe.
const ProbeDisabled = "off"

// HealthConfig contains configuration for the upstream reachability probe.
type HealthConfig struct {
	// ProbeSchedule is a cron expression ("@every 30s" style descriptors are
	// accepted). "off" disables the scheduled probe.
	// Default: "@every 1m"
	ProbeSchedule string `yaml:"probe_schedule" env:"PROBE_SCHEDULE"`

	// CheckTimeout bounds each readiness check.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout" env:"CHECK_TIMEOUT"`
}
