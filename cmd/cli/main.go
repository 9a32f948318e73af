package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"sheetcheck/internal"
	"sheetcheck/internal/config"
	"sheetcheck/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// errReportFailed marks a run that produced a failed report. The report has
// already been printed, so main only sets the exit code.
var errReportFailed = errors.New("data validation failed")

type globalOptions struct {
	schemaFile string
	sheet      string
	verbose    bool
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReportFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "sheetcheck",
		Short:         "Check spreadsheets against named column schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.schemaFile, "schema-file", "", "YAML schema catalog to load next to the built-in schemas (overrides SCHEMA_FILE)")
	rootCmd.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "worksheet to read instead of the first one (overrides SHEET_NAME)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log decoder and service activity to stderr")

	rootCmd.AddCommand(
		newValidateCmd(opts),
		newSchemasCmd(opts),
		newPreviewCmd(opts),
		newSampleCmd(opts),
		newTUICmd(opts),
	)
	return rootCmd
}

// setup builds the container the commands share from the environment plus
// the global flags
func setup(ctx context.Context, cmd *cobra.Command, opts *globalOptions) (*container.Container, error) {
	appConfig, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.schemaFile != "" {
		appConfig.Schemas.File = opts.schemaFile
	}
	if opts.sheet != "" {
		appConfig.Upload.SheetName = opts.sheet
	}
	appConfig.Metrics.Enabled = false

	level := internal.LogLevelWarn
	if opts.verbose {
		level = internal.LogLevelDebug
	}
	logger := internal.NewLogger(level, appConfig.Logging.Format, cmd.ErrOrStderr())

	return container.New(ctx, appConfig, logger)
}
