// Package cli implements the report command-line interface.
//
// The main commands are:
//   - render: render a CSV file through the built-in table or grouping
//     controller
//   - formats: list the registered output formats
//   - templates: list the templates defined in a template file
//
// Every command accepts --log-level; loggers are passed through
// context.Context.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjaus/report/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c string) {
	version = v
	commit = c
}

// Execute runs the report CLI.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand constructs the top-level command with all subcommands
// attached.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "report",
		Short:         "Render tabular data as text, CSV, HTML, Markdown, JSON or YAML",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.Level())

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = config.NewContext(ctx, cfg)
			ctx = withLogger(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded", "file", cfg.ConfigFile, "format", cfg.Format)
			return nil
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("report %s\ncommit: %s\n", version, commit))

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .report.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("templates", "", "YAML or TOML file of report templates")

	cmd.AddCommand(
		newRenderCommand(),
		newFormatsCommand(),
		newTemplatesCommand(),
	)
	return cmd
}
