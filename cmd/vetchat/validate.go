package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vetchat/relay/pkg/cli"
	"vetchat/relay/pkg/config"
	"vetchat/relay/pkg/knowledge"
	"vetchat/relay/pkg/security/secrets"
)

// Server key states reported by validate. The key itself is never printed.
const (
	keyNotUsed    = "not used (client mode)"
	keyConfigured = "configured"
)

type validateReport struct {
	ConfigFile     string   `json:"config_file"`
	ListenAddress  string   `json:"listen_address"`
	RelayPaths     []string `json:"relay_paths"`
	Upstream       string   `json:"upstream"`
	DefaultModel   string   `json:"default_model"`
	CredentialMode string   `json:"credential_mode"`
	ServerKey      string   `json:"server_key"`
	KnowledgeSize  string   `json:"knowledge_size"`
	Sources        int      `json:"knowledge_sources"`
}

func (r validateReport) String() string {
	file := r.ConfigFile
	if file == "" {
		file = "(defaults and environment)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Configuration valid: %s\n", file)
	fmt.Fprintf(&b, "  listen:      %s\n", r.ListenAddress)
	fmt.Fprintf(&b, "  relay paths: %s\n", strings.Join(r.RelayPaths, ", "))
	fmt.Fprintf(&b, "  upstream:    %s (model %s)\n", r.Upstream, r.DefaultModel)
	fmt.Fprintf(&b, "  credentials: %s, server key %s\n", r.CredentialMode, r.ServerKey)
	fmt.Fprintf(&b, "✓ Knowledge base loaded: %s, %d sources", r.KnowledgeSize, r.Sources)
	return b.String()
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration, credentials and the knowledge base",
		Long: `Load and validate the configuration exactly as "vetchat run" would, check
that a server-held key can be found when credentials.mode is server, and
parse the embedded FIP knowledge base.

Exits with status 2 when the configuration is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			formatter, err := cli.NewFormatter(cli.OutputFormat(output))
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfigWithEnvOverrides(root.configFile)
			if err != nil {
				return cli.NewConfigError(root.configFile, err)
			}

			report := validateReport{
				ConfigFile:     root.configFile,
				ListenAddress:  cfg.Server.ListenAddress,
				RelayPaths:     cfg.Relay.Paths,
				Upstream:       cfg.Upstream.BaseURL,
				DefaultModel:   cfg.Relay.DefaultModel,
				CredentialMode: cfg.Credentials.Mode,
				ServerKey:      keyNotUsed,
			}

			if cfg.Credentials.Mode == config.CredentialModeServer {
				key, err := secrets.ServerKey(cmd.Context(), &cfg.Credentials)
				if err != nil {
					return cli.NewConfigError(root.configFile, err)
				}
				if key == "" {
					return cli.NewConfigError(root.configFile, fmt.Errorf(
						"credentials.mode is server but no key was found (api_key, $%s or %s in secrets_dir)",
						secrets.NewEnvProvider("").EnvVar(cfg.Credentials.SecretName), cfg.Credentials.SecretName))
				}
				report.ServerKey = keyConfigured
			}

			kb, err := knowledge.Default()
			if err != nil {
				return cli.NewCommandError("validate", err)
			}
			report.KnowledgeSize = humanize.Bytes(uint64(kb.Size()))
			report.Sources = len(kb.Sources)

			return formatter.FormatTo(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json)")
	return cmd
}
