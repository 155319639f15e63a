// Package server assembles the relay HTTP server.
//
// Routes:
//
//	/api/chat, /.netlify/functions/openai   relay (POST, OPTIONS)
//	/health                                 liveness
//	/ready                                  readiness, including the upstream probe
//	/version                                build information
//	/health/upstream                        passive upstream health
//	/metrics                                Prometheus metrics when enabled
//
// Every route runs behind recovery, request ID, access logging and tracing
// middleware. Relay routes add CORS and, when configured, per-client rate
// limiting.
//
// Start blocks until its context is cancelled and then drains in-flight
// requests within server.shutdown_timeout:
//
//	srv := server.New(cfg, server.Components{
//	    Provider:    provider,
//	    Credentials: creds,
//	    Telemetry:   tel,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
package server
