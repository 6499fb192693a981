package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/javajack/rowcalc"
)

// CalcOptions holds flags for the calc command.
type CalcOptions struct {
	*RootOptions
	DecimalComma bool
	Precision    int
	Strict       bool
}

// NewCalcCommand creates the calc command.
func NewCalcCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CalcOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "calc <row>...",
		Short: "Evaluate rows given on the command line",
		Long: `Evaluate each argument as a row, top to bottom, without touching the
settings file. A row is either an expression or NAME=EXPRESSION.

Example:
  rowcalc calc price=19,90 qty=3 price*qty
  rowcalc calc --format json "x = 1/3" "x*3"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.DecimalComma, "decimal-comma", true, "read ',' as a decimal separator")
	cmd.Flags().IntVar(&opts.Precision, "precision", rowcalc.DefaultPrecision, "decimal places results are rounded to")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit non-zero when any row fails")

	return cmd
}

func runCalc(cmd *cobra.Command, opts *CalcOptions, args []string) error {
	settings := rowcalc.DefaultSettings()
	settings.Rows = make([]rowcalc.SettingsRow, 0, len(args))
	for _, arg := range args {
		settings.Rows = append(settings.Rows, parseRowArg(arg))
	}

	normalizer := rowcalc.DefaultNormalizer()
	normalizer.DecimalComma = opts.DecimalComma
	sheetOpts := append(opts.sheetOptions(),
		rowcalc.WithNormalizer(normalizer),
		rowcalc.WithPrecision(opts.Precision))

	sheet := rowcalc.NewSheet(settings, sheetOpts...)
	if err := writeSheet(cmd.OutOrStdout(), opts.Format, sheet); err != nil {
		return err
	}
	if opts.Strict {
		return rowFailures(sheet.Report())
	}
	return nil
}

// parseRowArg reads "NAME=EXPRESSION" or a bare expression.
func parseRowArg(arg string) rowcalc.SettingsRow {
	name, expression, ok := strings.Cut(arg, "=")
	if ok {
		name = strings.TrimSpace(name)
		if rowcalc.IsValidVariableName(name) {
			return rowcalc.SettingsRow{Variable: name, Expression: strings.TrimSpace(expression)}
		}
	}
	return rowcalc.SettingsRow{Expression: strings.TrimSpace(arg)}
}
