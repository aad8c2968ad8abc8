// Package cli provides the askdb command-line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joacominatel/askdb/internal/config"
	"github.com/joacominatel/askdb/internal/logging"
	"github.com/joacominatel/askdb/internal/render"
)

// Version information, set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type rootOptions struct {
	configPath string
	connection string
	dsn        string
	output     string
	verbose    bool
}

// runtime is what every subcommand gets from PersistentPreRunE.
type runtime struct {
	opts   *rootOptions
	cfg    *config.Config
	log    *slog.Logger
	output string
}

type runtimeKey struct{}

func fromContext(ctx context.Context) *runtime {
	if rt, ok := ctx.Value(runtimeKey{}).(*runtime); ok {
		return rt
	}
	return &runtime{opts: &rootOptions{}, cfg: &config.Config{}, log: slog.Default(), output: "table"}
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "askdb",
		Short: "Ask your database questions in plain language",
		Long: `askdb turns natural-language requests into SQL using the schema of the
selected database, runs the query and shows the result.

Run without a subcommand to start the terminal UI.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			output := opts.output
			if output == "" {
				output = cfg.Preferences.Output
			}
			if output == "" {
				output = "table"
			}
			if !render.ValidFormat(output) {
				return fmt.Errorf("unknown output format %q (want one of %v)", output, render.Formats)
			}

			rt := &runtime{
				opts:   opts,
				cfg:    cfg,
				log:    logging.New(cfg.Log, cmd.ErrOrStderr(), opts.verbose),
				output: output,
			}
			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey{}, rt))

			if opts.verbose && cfg.Path() != "" {
				rt.log.Debug("using config file", "path", cfg.Path())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), fromContext(cmd.Context()))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: ~/.askdb/config.yaml)")
	flags.StringVarP(&opts.connection, "connection", "c", "", "saved connection to use")
	flags.StringVar(&opts.dsn, "dsn", "", "connection string, overrides --connection")
	flags.StringVarP(&opts.output, "output", "o", "", "output format (table|json|csv|markdown)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return render.Formats, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newDatabasesCommand())
	rootCmd.AddCommand(newSchemaCommand())
	rootCmd.AddCommand(newExecCommand())
	rootCmd.AddCommand(newAskCommand())
	rootCmd.AddCommand(newTranscribeCommand())
	rootCmd.AddCommand(newSecretCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
