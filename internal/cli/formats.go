package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjaus/report"
	"github.com/bjaus/report/internal/config"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the output formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			grouped := report.GroupingController
			for _, f := range report.TableController.FormatNames() {
				note := ""
				if grouped.Supports(f) {
					note = " (group-by)"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", f, note); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newTemplatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the templates defined in the --templates file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg.Templates == "" {
				return fmt.Errorf("no template file: pass --templates or set REPORT_TEMPLATES")
			}
			registry := report.NewTemplateRegistry()
			if _, err := registry.LoadFile(cfg.Templates); err != nil {
				return err
			}
			for _, label := range registry.Labels() {
				t, err := registry.Lookup(label)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\n", label, t.Bundles()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
