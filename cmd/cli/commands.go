package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sheetcheck/adapters/datareadiness/coercer"
	"sheetcheck/app"
	"sheetcheck/domain/report"
	"sheetcheck/domain/schema"
	"sheetcheck/internal/render"
	"sheetcheck/internal/testkit"
	"sheetcheck/internal/tui"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"golang.org/x/term"
)

func newValidateCmd(opts *globalOptions) *cobra.Command {
	var schemaName, format, color string
	var preview int
	var failures bool

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a spreadsheet against a schema",
		Long: `Validate a spreadsheet against a schema and print the report.

Exits with status 1 when the report failed or the file could not be read.

Example: sheetcheck validate repairs.xlsx --schema Option_A --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			useColor, err := colorEnabled(color)
			if err != nil {
				return err
			}

			c, err := setup(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			run, err := runFile(cmd.Context(), c.ValidationService, args[0], schema.Name(schemaName), preview)
			if err != nil {
				return err
			}

			if err := render.Write(cmd.OutOrStdout(), run, outFormat, render.Options{
				Color:        useColor,
				ShowPreview:  preview > 0,
				ShowFailures: failures,
			}); err != nil {
				return err
			}
			if !run.Report.Passed() {
				return errReportFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&schemaName, "schema", "s", "", "schema to validate against (see `sheetcheck schemas`)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or markdown")
	cmd.Flags().StringVar(&color, "color", "auto", "colorize text output: auto, always or never")
	cmd.Flags().IntVar(&preview, "preview", 5, "rows to preview, 0 to hide the preview")
	cmd.Flags().BoolVar(&failures, "failures", false, "list the rows behind every invalid column")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func newSchemasCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "List the registered schemas and their columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			schemas := c.Registry.Schemas()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(schemas)
			}

			for i, sc := range schemas {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s (%d columns)\n", sc.Name, len(sc.Columns))
				for _, col := range sc.Columns {
					fmt.Fprintf(out, "  %-20s %s\n", col.Name, col.Type)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the schemas as JSON")
	return cmd
}

func newPreviewCmd(opts *globalOptions) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Show the first rows of a file and the type each column looks like",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			tbl, err := c.Decoder.Decode(cmd.Context(), filepath.Base(args[0]), file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, render.PreviewTable(tbl.Head(rows)))
			fmt.Fprintln(out)

			coercion := coercer.DefaultCoercionConfig()
			coercion.AllowFormattedNumbers = c.Config.Upload.AllowFormattedNumbers
			tc := coercer.NewTypeCoercer(coercion)
			for _, col := range tbl.Columns {
				analysis := tc.AnalyzeTypeDistribution(tbl.Cells(col))
				fmt.Fprintf(out, "  %-20s looks like %-6s (%d values, %.0f%% numeric, %.0f%% dates)\n",
					col, analysis.RecommendedType, analysis.ValidCount,
					analysis.NumericRatio*100, analysis.TimestampRatio*100)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", 5, "rows to show")
	return cmd
}

func newSampleCmd(opts *globalOptions) *cobra.Command {
	var output string
	var rows int
	var seed int64

	cmd := &cobra.Command{
		Use:   "sample <schema>",
		Short: "Write an example workbook that passes a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			sc, err := c.Registry.Lookup(schema.Name(args[0]))
			if err != nil {
				return err
			}
			if output == "" {
				output = strings.ToLower(string(sc.Name)) + "_sample.xlsx"
			}

			config := testkit.DefaultSampleConfig()
			config.Rows = rows
			config.Seed = seed
			data := testkit.NewSampleGenerator(config).Generate(sc)

			f := excelize.NewFile()
			defer f.Close()
			if err := testkit.WriteRows(f, "Sheet1", data); err != nil {
				return err
			}
			if err := f.SaveAs(output); err != nil {
				return fmt.Errorf("failed to save %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows for %s to %s\n", rows, sc.Name, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "workbook to write (default <schema>_sample.xlsx)")
	cmd.Flags().IntVarP(&rows, "rows", "n", 20, "data rows to generate")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed for deterministic output")
	return cmd
}

func newTUICmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui <file>",
		Short: "Pick a schema interactively and browse the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			path := args[0]
			model := tui.New(cmd.Context(), filepath.Base(path), c.Registry.Schemas(),
				func(ctx context.Context, name schema.Name) (*report.Run, error) {
					return runFile(ctx, c.ValidationService, path, name, 0)
				})

			final, err := tui.Run(model)
			if err != nil {
				return err
			}
			if run, _ := final.Result(); run != nil && !run.Report.Passed() {
				return errReportFailed
			}
			return nil
		},
	}
}

// runFile validates one file from disk
func runFile(ctx context.Context, service *app.ValidationService, path string, name schema.Name, preview int) (*report.Run, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	return service.Run(ctx, app.Request{
		Schema:      name,
		Filename:    filepath.Base(path),
		Body:        file,
		Size:        info.Size(),
		PreviewRows: preview,
	})
}

func colorEnabled(mode string) (bool, error) {
	switch strings.ToLower(mode) {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		return term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == "", nil
	default:
		return false, fmt.Errorf("unknown color mode %q: use auto, always or never", mode)
	}
}
