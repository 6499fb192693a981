package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javajack/rowcalc"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Set    []string
	Save   bool
	Strict bool
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Recalculate the rows stored in the settings file",
		Long: `Load the settings file, recalculate every row and print the results.

--set replaces the expression of a row before the sweep. Use the index of the
trailing blank row to add a row.

Example:
  rowcalc eval
  rowcalc eval --set 1=v0/3 --save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "replace a row expression (INDEX=EXPRESSION), repeatable")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "write the edited rows back to the settings file")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit non-zero when any row fails")

	return cmd
}

func runEval(cmd *cobra.Command, opts *EvalOptions) error {
	res := opts.resource()
	sheet := rowcalc.OpenSheet(res, opts.sheetOptions()...)
	if err := sheet.LoadErr(); err != nil && opts.Strict {
		return exitf(ExitBadInput, "settings unusable: %w", err)
	}

	for _, set := range opts.Set {
		index, expression, err := parseSet(set)
		if err != nil {
			return exitf(ExitBadInput, "invalid --set: %w", err)
		}
		if err := sheet.SetExpression(index, expression); err != nil {
			return exitf(ExitBadInput, "invalid --set: %w", err)
		}
	}

	if opts.Save {
		written, err := sheet.Save(res)
		if err != nil {
			return exitf(ExitBadInput, "save failed: %w", err)
		}
		opts.Logger.Info("settings saved", zap.String("path", res.Name()), zap.Bool("written", written))
	}

	if err := writeSheet(cmd.OutOrStdout(), opts.Format, sheet); err != nil {
		return err
	}
	if opts.Strict {
		return rowFailures(sheet.Report())
	}
	return nil
}

// parseSet splits "INDEX=EXPRESSION".
func parseSet(s string) (int, string, error) {
	idx, expression, ok := strings.Cut(s, "=")
	if !ok {
		return 0, "", fmt.Errorf("%q: expected INDEX=EXPRESSION", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil {
		return 0, "", fmt.Errorf("%q: row index: %w", s, err)
	}
	return n, expression, nil
}
