package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 90 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Relay defaults
	DefaultModel        = "gpt-4o-mini"
	DefaultMaxTokens    = 1500
	DefaultTemperature  = 0.3
	DefaultMaxBodyBytes = int64(20 * 1024 * 1024)
	DefaultRateLimitRPS = 2.0
	DefaultRateBurst    = 5

	// Upstream defaults
	DefaultUpstreamName            = "openai"
	DefaultUpstreamBaseURL         = "https://api.openai.com/v1"
	DefaultUpstreamTimeout         = 60 * time.Second
	DefaultUpstreamMaxIdleConns    = 100
	DefaultUpstreamIdleConnTimeout = 90 * time.Second

	// Credential defaults
	DefaultCredentialMode = CredentialModeClient
	DefaultKeyPrefix      = "sk-"
	DefaultSecretName     = "openai-api-key"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "vetchat"
	DefaultMetricsSubsystem   = "relay"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "vetchat-relay"
	DefaultTracingSampleRatio = 1.0

	// Health defaults
	DefaultProbeSchedule = "@every 1m"
	DefaultCheckTimeout  = 5 * time.Second
)

// DefaultRelayPaths are the routes the relay is mounted on. The second
// keeps the path the browser client used against the original serverless
// deployment.
var DefaultRelayPaths = []string{"/api/chat", "/.netlify/functions/openai"}

// DefaultCORS values reproduce the headers the browser client depends on.
var (
	DefaultCORSAllowedOrigins = []string{"*"}
	DefaultCORSAllowedMethods = []string{"POST", "OPTIONS"}
	DefaultCORSAllowedHeaders = []string{"Content-Type", "Authorization"}
	DefaultCORSExposedHeaders = []string{"X-Request-ID"}
)

// DefaultDurationBuckets are tuned for chat completions (100ms to 60s).
var DefaultDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}

// NewDefaultConfig returns a configuration with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. Fields that
// were set explicitly are left unchanged.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// CORS defaults
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		cfg.Server.CORS.AllowedOrigins = clone(DefaultCORSAllowedOrigins)
	}
	if len(cfg.Server.CORS.AllowedMethods) == 0 {
		cfg.Server.CORS.AllowedMethods = clone(DefaultCORSAllowedMethods)
	}
	if len(cfg.Server.CORS.AllowedHeaders) == 0 {
		cfg.Server.CORS.AllowedHeaders = clone(DefaultCORSAllowedHeaders)
	}
	if len(cfg.Server.CORS.ExposedHeaders) == 0 {
		cfg.Server.CORS.ExposedHeaders = clone(DefaultCORSExposedHeaders)
	}

	// Relay defaults
	if len(cfg.Relay.Paths) == 0 {
		cfg.Relay.Paths = clone(DefaultRelayPaths)
	}
	if cfg.Relay.DefaultModel == "" {
		cfg.Relay.DefaultModel = DefaultModel
	}
	if cfg.Relay.MaxTokens == 0 {
		cfg.Relay.MaxTokens = DefaultMaxTokens
	}
	if cfg.Relay.Temperature == nil {
		t := DefaultTemperature
		cfg.Relay.Temperature = &t
	}
	if cfg.Relay.MaxBodyBytes == 0 {
		cfg.Relay.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Relay.RateLimit.RequestsPerSecond == 0 {
		cfg.Relay.RateLimit.RequestsPerSecond = DefaultRateLimitRPS
	}
	if cfg.Relay.RateLimit.Burst == 0 {
		cfg.Relay.RateLimit.Burst = DefaultRateBurst
	}

	// Upstream defaults
	if cfg.Upstream.Name == "" {
		cfg.Upstream.Name = DefaultUpstreamName
	}
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = DefaultUpstreamBaseURL
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if cfg.Upstream.MaxIdleConns == 0 {
		cfg.Upstream.MaxIdleConns = DefaultUpstreamMaxIdleConns
	}
	if cfg.Upstream.IdleConnTimeout == 0 {
		cfg.Upstream.IdleConnTimeout = DefaultUpstreamIdleConnTimeout
	}

	// Credential defaults
	if cfg.Credentials.Mode == "" {
		cfg.Credentials.Mode = DefaultCredentialMode
	}
	if cfg.Credentials.KeyPrefix == "" {
		cfg.Credentials.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.Credentials.SecretName == "" {
		cfg.Credentials.SecretName = DefaultSecretName
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}

	// Health defaults
	if cfg.Health.ProbeSchedule == "" {
		cfg.Health.ProbeSchedule = DefaultProbeSchedule
	}
	if cfg.Health.CheckTimeout == 0 {
		cfg.Health.CheckTimeout = DefaultCheckTimeout
	}
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
