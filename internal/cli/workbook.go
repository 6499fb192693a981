package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javajack/rowcalc"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <workbook.xlsx>",
		Short: "Write the recalculated rows to an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet := rowcalc.OpenSheet(rootOpts.resource(), rootOpts.sheetOptions()...)
			if err := sheet.LoadErr(); err != nil {
				return exitf(ExitBadInput, "settings unusable: %w", err)
			}
			if err := sheet.ExportWorkbook(args[0]); err != nil {
				return exitf(ExitBadInput, "export failed: %w", err)
			}
			rootOpts.Logger.Info("workbook exported", zap.String("path", args[0]), zap.Int("rows", sheet.Len()))
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", sheet.Len(), args[0])
			return err
		},
	}
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <workbook.xlsx>",
		Short: "Replace the rows in the settings file with rows from a workbook",
		Long: `Read Variable, Expression and Comment columns from the first worksheet
of a workbook and save them as the settings rows. The window geometry of an
existing settings file is kept. The previous file is kept as a .bak backup.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imported, err := rowcalc.ImportWorkbook(args[0])
			if err != nil {
				return exitf(ExitBadInput, "import failed: %w", err)
			}

			res := rootOpts.resource()
			if current, err := rowcalc.Load(res); err == nil {
				imported.Top, imported.Left = current.Top, current.Left
				imported.Height, imported.Width = current.Height, current.Width
			}

			sheet := rowcalc.NewSheet(imported, rootOpts.sheetOptions()...)
			if _, err := sheet.Save(res); err != nil {
				return exitf(ExitBadInput, "save failed: %w", err)
			}
			return writeSheet(cmd.OutOrStdout(), rootOpts.Format, sheet)
		},
	}
}
