package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vetchat/relay/pkg/cli"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configFile string
	envFile    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "vetchat",
		Short: "FIP veterinary assistant relay and chat client",
		Long: `vetchat relays chat conversations about feline infectious peritonitis (FIP)
to an OpenAI-compatible chat-completions API.

The relay is stateless: each request carries the whole conversation and the
upstream answer is returned unchanged. The chat client embeds the FIP
reference data into the system prompt and sends photos, PDFs and text files
as message attachments.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			return loadEnvFile(opts.envFile)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file path (defaults and VETCHAT_* variables when empty)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before configuration; missing files are ignored")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(
		newRunCmd(opts),
		newChatCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadEnvFile loads variables from a dotenv file without overriding ones
// already set in the environment.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return cli.NewConfigError(path, err)
	}
	slog.Debug("loaded environment file", "path", path)
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}
