/*
Package cli provides helpers shared by the vetchat commands.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Errors and Exit Codes:

Commands return *ConfigError for unusable configuration and *CommandError
for other failures. ExitCode maps them to the process exit status:

	if err := root.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}

Output Formatting:

	formatter, err := cli.NewFormatter(cli.FormatJSON)
	if err != nil {
		return err
	}
	return formatter.FormatTo(os.Stdout, result)
*/
package cli
