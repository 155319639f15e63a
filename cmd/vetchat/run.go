package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vetchat/relay/pkg/cli"
	"vetchat/relay/pkg/config"
	"vetchat/relay/pkg/providers"
	"vetchat/relay/pkg/providers/openai"
	"vetchat/relay/pkg/proxy"
	"vetchat/relay/pkg/security/secrets"
	"vetchat/relay/pkg/server"
	"vetchat/relay/pkg/telemetry"
	"vetchat/relay/pkg/telemetry/health"
)

type runOptions struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the relay server",
		Long: `Start the relay server.

The relay accepts POST /api/chat (and /.netlify/functions/openai) with
{"messages": [...], "model": "...", "apiKey": "sk-..."} and forwards the
conversation to the configured chat-completions API.

Examples:
  # Start with defaults, client-supplied keys
  vetchat run

  # Hold the key on the server, read from OPENAI_API_KEY
  VETCHAT_CREDENTIALS_MODE=server vetchat run

  # Override listen address
  vetchat run --listen 0.0.0.0:8080

  # Validate and build everything without serving
  vetchat run --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.listenAddress, "listen", "l", "", "override listen address")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "validate config without starting server")
	return cmd
}

func runServer(cmd *cobra.Command, root *rootOptions, opts *runOptions) error {
	if err := config.Initialize(root.configFile); err != nil {
		return cli.NewConfigError(root.configFile, err)
	}
	cfg := config.GetConfig()

	if opts.listenAddress != "" {
		cfg.Server.ListenAddress = opts.listenAddress
	}
	if opts.logLevel != "" {
		cfg.Telemetry.Logging.Level = opts.logLevel
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	serverKey, err := secrets.ServerKey(ctx, &cfg.Credentials)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to resolve server API key: %w", err))
	}

	tel, err := telemetry.New(&cfg.Telemetry, Version, os.Stdout, serverKey)
	if err != nil {
		return cli.NewConfigError(root.configFile, err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	creds, err := proxy.NewCredentials(cfg.Credentials.Mode, cfg.Credentials.KeyPrefix, serverKey)
	if err != nil {
		return cli.NewConfigError(root.configFile, err)
	}

	provider, err := openai.NewProvider(providers.ProviderConfig{
		Name:                cfg.Upstream.Name,
		BaseURL:             cfg.Upstream.BaseURL,
		Timeout:             cfg.Upstream.Timeout,
		MaxIdleConns:        cfg.Upstream.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Upstream.MaxIdleConns,
		IdleConnTimeout:     cfg.Upstream.IdleConnTimeout,
	})
	if err != nil {
		return cli.NewConfigError(root.configFile, err)
	}
	defer provider.Close()

	if opts.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	checker := health.New(cfg.Health.CheckTimeout)
	if cfg.Health.ProbeSchedule != config.ProbeDisabled {
		prober, err := health.NewProber("upstream", cfg.Health.ProbeSchedule, cfg.Health.CheckTimeout,
			func(ctx context.Context) error { return provider.HealthCheck(ctx, serverKey) },
			func(err error) { tel.Metrics().UpdateUpstreamHealth(provider.GetName(), err == nil) },
		)
		if err != nil {
			return cli.NewConfigError(root.configFile, err)
		}
		checker.RegisterCheck("upstream", prober.Check)
		prober.Start(ctx)
		defer prober.Stop()
	}

	if root.configFile != "" {
		watcher, err := config.NewWatcher(root.configFile, func(c *config.Config) {
			if err := tel.ApplyConfig(&c.Telemetry); err != nil {
				slog.Warn("failed to apply reloaded telemetry settings", "error", err)
			}
		})
		if err != nil {
			slog.Warn("config hot reload disabled", "error", err)
		} else {
			watcher.Start(ctx)
			defer watcher.Stop()
		}
	}

	slog.Info("starting vetchat relay",
		"version", Version,
		"upstream", cfg.Upstream.BaseURL,
		"credential_mode", creds.Mode(),
		"server_key_configured", creds.HasServerKey(),
	)

	srv := server.New(cfg, server.Components{
		Provider:    provider,
		Credentials: creds,
		Telemetry:   tel,
		Checker:     checker,
		Build:       server.BuildInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate},
	})
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}
