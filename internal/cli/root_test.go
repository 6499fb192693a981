package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/javajack/rowcalc"
)

// testOptions returns root options pointing at a settings file in a temp dir.
func testOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	return &RootOptions{
		Format:   format,
		Settings: filepath.Join(t.TempDir(), "rowcalc.json"),
		Logger:   zap.NewNop(),
	}
}

func writeSettings(t *testing.T, opts *RootOptions, s *rowcalc.Settings) {
	t.Helper()
	_, err := rowcalc.Save(opts.resource(), s)
	require.NoError(t, err)
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "rowcalc", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"eval", "calc", "lint", "export", "import", "watch", "tui"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	settings := cmd.PersistentFlags().Lookup("settings")
	require.NotNil(t, settings)
	assert.Equal(t, "s", settings.Shorthand)
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "calc", "1+1"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRootCommand_EndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rowcalc.json")
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--settings", path, "eval", "--set", "2=v0+1", "--save"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "  2  v0+1  => 124\n")
	assert.FileExists(t, path)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitBadInput, ExitCode(errors.New("unknown flag: --x")), "cobra errors are bad input")
	assert.Equal(t, ExitRowErrors, ExitCode(exitf(ExitRowErrors, "lint found %d errors", 2)))

	wrapped := exitf(ExitBadInput, "settings unusable: %w", os.ErrNotExist)
	assert.True(t, errors.Is(wrapped, os.ErrNotExist))
	assert.Equal(t, "settings unusable: file does not exist", wrapped.Error())
}

func TestRowFailures(t *testing.T) {
	assert.NoError(t, rowFailures(rowcalc.NewSheet(nil).Report()))

	sheet := rowcalc.NewSheet(&rowcalc.Settings{Rows: []rowcalc.SettingsRow{
		{Expression: "1+"},
		{Variable: "2x", Expression: "2"},
		{Expression: "3"},
	}})
	err := rowFailures(sheet.Report())
	require.Error(t, err)
	assert.Equal(t, ExitRowErrors, ExitCode(err))
	assert.Equal(t, "2 of 3 rows have errors", err.Error())
}
