package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajack/rowcalc"
)

func newTestModel(t *testing.T, settings *rowcalc.Settings) *Model {
	t.Helper()
	return New(func(l rowcalc.RowListener) *rowcalc.Sheet {
		return rowcalc.NewSheet(settings, rowcalc.WithRowListener(l))
	})
}

func press(m *Model, keys ...tea.KeyMsg) {
	for _, k := range keys {
		m.Update(k)
	}
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// assertAligned checks that there is one editor per row holding that row's texts.
func assertAligned(t *testing.T, m *Model) {
	t.Helper()
	rows := m.Sheet().Rows()
	require.Len(t, m.editors, len(rows))
	for i, r := range rows {
		assert.Equal(t, r.Variable, m.editors[i].inputs[ColVariable].Value(), "row %d variable", i)
		assert.Equal(t, r.Expression, m.editors[i].inputs[ColExpression].Value(), "row %d expression", i)
		assert.Equal(t, r.Comment, m.editors[i].inputs[ColComment].Value(), "row %d comment", i)
	}
}

var (
	keyDown     = tea.KeyMsg{Type: tea.KeyDown}
	keyUp       = tea.KeyMsg{Type: tea.KeyUp}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyInsert   = tea.KeyMsg{Type: tea.KeyCtrlN}
	keyDelete   = tea.KeyMsg{Type: tea.KeyCtrlD}
	keyBack     = tea.KeyMsg{Type: tea.KeyBackspace}
)

func TestModel_InitialState(t *testing.T) {
	m := newTestModel(t, nil)
	assertAligned(t, m)
	row, col := m.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, ColVariable, col)
	assert.NotNil(t, m.Init())

	view := m.View()
	assert.Contains(t, view, "246")
	assert.Contains(t, view, rowcalc.StatusOK)
}

func TestModel_TypingRecalculates(t *testing.T) {
	m := newTestModel(t, nil)
	press(m, keyTab)
	_, col := m.Cursor()
	require.Equal(t, ColExpression, col)

	typeText(m, "0")
	r, _ := m.Sheet().Row(1)
	assert.Equal(t, "2460", r.DisplayResult(), "v0 is now 1230")
	assertAligned(t, m)
}

func TestModel_TypingInTrailingRowAppendsEditor(t *testing.T) {
	m := newTestModel(t, nil)
	press(m, keyDown, keyDown, keyTab)
	row, _ := m.Cursor()
	require.Equal(t, 2, row)

	typeText(m, "v0+1")
	assert.Equal(t, 4, m.Sheet().Len())
	assertAligned(t, m)
	r, _ := m.Sheet().Row(2)
	assert.Equal(t, "124", r.DisplayResult())

	press(m, keyBack, keyBack, keyBack, keyBack)
	assert.Equal(t, 3, m.Sheet().Len(), "only one trailing blank row remains")
	row, _ = m.Cursor()
	assert.Equal(t, 2, row)
	assertAligned(t, m)
}

func TestModel_InsertOnTrailingBlankRow(t *testing.T) {
	m := newTestModel(t, nil)
	press(m, keyDown, keyDown, keyInsert)

	assert.Equal(t, 3, m.Sheet().Len())
	row, _ := m.Cursor()
	assert.Equal(t, 2, row)
	assertAligned(t, m)
}

func TestModel_BadInputShowsStatus(t *testing.T) {
	m := newTestModel(t, nil)
	press(m, keyTab)
	typeText(m, "*")
	assert.NotEqual(t, rowcalc.StatusOK, m.status)
	assert.Contains(t, m.View(), "row 0")

	press(m, keyBack)
	assert.Equal(t, rowcalc.StatusOK, m.status)
}

func TestModel_InsertAndDelete(t *testing.T) {
	m := newTestModel(t, nil)

	press(m, keyInsert)
	assert.Equal(t, 4, m.Sheet().Len())
	row, _ := m.Cursor()
	assert.Equal(t, 1, row, "cursor moves to the inserted row")
	assertAligned(t, m)

	press(m, keyDelete)
	assert.Equal(t, 3, m.Sheet().Len())
	assertAligned(t, m)

	press(m, keyDown)
	row, _ = m.Cursor()
	require.Equal(t, 2, row)
	press(m, keyDelete)
	assert.Equal(t, 3, m.Sheet().Len(), "trailing blank row cannot be deleted")
	assert.Contains(t, m.View(), "trailing blank row")
}

func TestModel_DeleteKeepsCursorOnSamePosition(t *testing.T) {
	m := newTestModel(t, &rowcalc.Settings{Rows: []rowcalc.SettingsRow{{Expression: "1"}, {Expression: "2"}}})
	press(m, keyDown)
	press(m, keyDelete)

	row, _ := m.Cursor()
	assert.Equal(t, 1, row, "cursor lands on the row that moved up")
	assert.Equal(t, 2, m.Sheet().Len())
	assertAligned(t, m)
}

func TestModel_Navigation(t *testing.T) {
	m := newTestModel(t, nil)

	press(m, keyUp)
	row, col := m.Cursor()
	assert.Equal(t, 0, row, "cannot move above the first row")

	press(m, keyShiftTab)
	row, col = m.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, ColVariable, col, "cannot move before the first field")

	press(m, keyTab, keyTab, keyTab)
	row, col = m.Cursor()
	assert.Equal(t, 1, row, "tab wraps to the next row")
	assert.Equal(t, ColVariable, col)

	press(m, keyShiftTab)
	row, col = m.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, ColComment, col)

	press(m, keyDown, keyDown, keyDown)
	row, _ = m.Cursor()
	assert.Equal(t, 2, row, "cannot move below the last row")
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
