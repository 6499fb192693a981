package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/javajack/rowcalc"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "text" | "json" | "yaml"
	Settings string // settings file; defaults to the binary path with a .json extension

	// Logger is built in PersistentPreRunE unless a test sets it first.
	Logger *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the rowcalc CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rowcalc",
		Short: "Row-based calculator with named variables",
		Long: `rowcalc evaluates a list of rows. Each row holds an arithmetic expression
and may bind its result to a variable that rows further down can use.

Rows are kept in a JSON settings file next to the binary unless --settings
points elsewhere.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Settings == "" {
				path, err := rowcalc.DefaultSettingsPath()
				if err != nil {
					return err
				}
				opts.Settings = path
			}
			if opts.Logger == nil {
				logger, err := newLogger(opts.Verbose)
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				opts.Logger = logger
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.Logger != nil {
				_ = opts.Logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVarP(&opts.Settings, "settings", "s", "", "settings file (default: <binary>.json)")

	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewCalcCommand(opts))
	cmd.AddCommand(NewLintCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewTUICommand(opts))

	return cmd
}

// newLogger builds a production zap logger; verbose switches it to debug level.
func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// sheetOptions returns the library options shared by every command.
func (o *RootOptions) sheetOptions() []rowcalc.Option {
	return []rowcalc.Option{rowcalc.WithLogger(o.Logger)}
}

func (o *RootOptions) resource() *rowcalc.FileResource {
	return rowcalc.NewFileResource(o.Settings)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
