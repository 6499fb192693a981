package cli

import (
	"github.com/spf13/cobra"

	"github.com/javajack/rowcalc"
)

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Check the settings file for problems without evaluating",
		Long: `Report invalid variable names, syntax errors, names that are only bound
further down, unknown names and variables that shadow an earlier row.

Exits with code 1 when any error-level issue is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := rowcalc.Load(rootOpts.resource())
			if err != nil {
				return exitf(ExitBadInput, "settings unusable: %w", err)
			}
			issues := rowcalc.Validate(settings, rootOpts.sheetOptions()...)
			if err := writeIssues(cmd.OutOrStdout(), rootOpts.Format, issues); err != nil {
				return err
			}
			errs := 0
			for _, is := range issues {
				if is.Severity == rowcalc.SeverityError {
					errs++
				}
			}
			if errs > 0 {
				return exitf(ExitRowErrors, "lint found %d errors", errs)
			}
			return nil
		},
	}
}
