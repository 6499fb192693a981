package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javajack/rowcalc"
	"github.com/javajack/rowcalc/internal/tui"
)

// NewTUICommand creates the interactive editor command.
func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	var noSave bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit rows interactively; results update as you type",
		Long: `Open the rows in a terminal editor. Every keystroke recalculates all rows.
The settings file is saved on exit unless --no-save is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := rootOpts.resource()
			model := tui.New(func(l rowcalc.RowListener) *rowcalc.Sheet {
				return rowcalc.OpenSheet(res, append(rootOpts.sheetOptions(), rowcalc.WithRowListener(l))...)
			})

			final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
			if err != nil {
				return exitf(ExitBadInput, "terminal UI failed: %w", err)
			}
			if noSave {
				return nil
			}
			m, ok := final.(*tui.Model)
			if !ok {
				return fmt.Errorf("unexpected model type %T", final)
			}
			written, err := m.Sheet().Save(res)
			if err != nil {
				return exitf(ExitBadInput, "save failed: %w", err)
			}
			rootOpts.Logger.Info("session ended", zap.String("path", res.Name()), zap.Bool("written", written))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the settings file on exit")
	return cmd
}
