package cli

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/bjaus/report"
	"github.com/bjaus/report/internal/config"
)

type renderFlags struct {
	template  string
	title     string
	border    string
	out       string
	groupBy   string
	delimiter string
	noHeaders bool
	noLayout  bool
}

func newRenderCommand() *cobra.Command {
	var fl renderFlags

	cmd := &cobra.Command{
		Use:   "render [file.csv]",
		Short: "Render a CSV file",
		Long: `Render reads a CSV file (or standard input when the file is omitted
or "-") whose first line holds the column names, and renders it in the
requested format.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runRender(cmd, path, fl)
		},
	}

	f := cmd.Flags()
	f.StringP("format", "f", "text", "output format")
	f.StringVarP(&fl.template, "template", "t", "", "template label")
	f.StringVar(&fl.title, "title", "", "report title")
	f.StringVar(&fl.border, "border", "", "text border: rounded, ascii, heavy, double, none")
	f.StringVarP(&fl.out, "out", "o", "", "write output to this file")
	f.StringVar(&fl.groupBy, "group-by", "", "group rows by this column")
	f.StringVar(&fl.delimiter, "delimiter", "", "input field delimiter (default ',')")
	f.BoolVar(&fl.noHeaders, "no-headers", false, "omit column headers")
	f.BoolVar(&fl.noLayout, "no-layout", false, "skip the formatter layout")
	return cmd
}

func runRender(cmd *cobra.Command, path string, fl renderFlags) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := loggerFromContext(ctx)
	p := newProgress(logger)

	registry := report.NewTemplateRegistry()
	if cfg.Templates != "" {
		loaded, err := registry.LoadFile(cfg.Templates)
		if err != nil {
			return err
		}
		logger.Debug("templates loaded", "file", cfg.Templates, "count", len(loaded))
	}

	table, err := readTable(cmd, path, fl.delimiter)
	if err != nil {
		return err
	}
	logger.Debug("input parsed", "rows", table.Len(), "columns", len(table.ColumnNames()))

	tables := report.NewTableController().UseTemplates(registry).SetLogger(logger)
	ctrl := tables
	var data any = table
	if fl.groupBy != "" {
		grouping, err := table.GroupBy(fl.groupBy)
		if err != nil {
			return err
		}
		ctrl = report.NewGroupingController(tables).UseTemplates(registry).SetLogger(logger)
		data = grouping
	}

	opts := report.Values{"data": data}
	if fl.template != "" {
		opts["template"] = fl.template
	}
	if fl.title != "" {
		opts["title"] = fl.title
	}
	if fl.border != "" {
		opts["border"] = fl.border
	}
	if fl.noHeaders {
		opts["show_table_headers"] = false
	}
	if fl.noLayout {
		opts["layout"] = false
	}
	if fl.out != "" {
		opts["file"] = fl.out
	}

	out, err := ctrl.Render(report.Format(cfg.Format), opts)
	if err != nil {
		return err
	}
	if fl.out == "" {
		if _, err := io.WriteString(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	}
	p.done("rendered", "format", cfg.Format, "bytes", len(out))
	return nil
}

func readTable(cmd *cobra.Command, path, delimiter string) (*report.Table, error) {
	var opts report.CSVOptions
	if delimiter != "" {
		r, _ := utf8.DecodeRuneInString(delimiter)
		opts.Comma = r
	}
	if path == "-" {
		return report.ParseCSV(cmd.InOrStdin(), opts)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()
	return report.ParseCSV(f, opts)
}
